package schedule

import (
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"famisched/internal/kv"
	"famisched/internal/models"
)

func newTestKV(t *testing.T) *kv.Store {
	t.Helper()
	store, err := kv.New(filepath.Join(t.TempDir(), "test.db"), zap.NewNop())
	if err != nil {
		t.Fatalf("open kv: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func fiveTasks() []models.Task {
	return []models.Task{
		{ID: "task-1", Time: "08:00", Title: "a", Status: models.StatusPending},
		{ID: "task-2", Time: "09:00", Title: "b", Status: models.StatusPending},
		{ID: "task-3", Time: "10:00", Title: "c", Status: models.StatusPending},
		{ID: "task-4", Time: "11:00", Title: "d", Status: models.StatusPending},
		{ID: "task-5", Time: "12:00", Title: "e", Status: models.StatusPending},
	}
}

func TestLoadFallsBackToSeed(t *testing.T) {
	store := newTestKV(t)
	seed := []models.Task{{ID: "seed-1", Time: "07:00", Title: "seeded"}}

	s := New(store, seed, zap.NewNop())

	got := s.Tasks()
	if len(got) != 1 || got[0].ID != "seed-1" {
		t.Fatalf("fresh store did not fall back to seed: %v", got)
	}
}

func TestLoadPrefersPersisted(t *testing.T) {
	store := newTestKV(t)
	seed := []models.Task{{ID: "seed-1", Time: "07:00", Title: "seeded"}}

	first := New(store, seed, zap.NewNop())
	first.Replace([]models.Task{{ID: "t-1", Time: "10:00", Title: "persisted"}})

	second := New(store, seed, zap.NewNop())
	got := second.Tasks()
	if len(got) != 1 || got[0].ID != "t-1" {
		t.Fatalf("reload ignored persisted schedule: %v", got)
	}
}

func TestReplaceSortsStably(t *testing.T) {
	s := New(newTestKV(t), nil, zap.NewNop())

	s.Replace([]models.Task{
		{ID: "late", Time: "18:00"},
		{ID: "tie-a", Time: "09:00"},
		{ID: "tie-b", Time: "09:00"},
	})

	got := s.Tasks()
	wantOrder := []string{"tie-a", "tie-b", "late"}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID, id)
		}
	}
}

// TestToggleRoundTrip marks one task done and back, checking the other four
// are untouched and the persisted array stays five elements long.
func TestToggleRoundTrip(t *testing.T) {
	store := newTestKV(t)
	s := New(store, nil, zap.NewNop())
	s.Replace(fiveTasks())
	before := s.Tasks()

	s.Toggle("task-3", true)

	after := s.Tasks()
	if len(after) != 5 {
		t.Fatalf("task count changed: %d", len(after))
	}
	for i, task := range after {
		if task.ID == "task-3" {
			if task.Status != models.StatusCompleted {
				t.Errorf("task-3 status = %q, want completed", task.Status)
			}
			continue
		}
		if !reflect.DeepEqual(task, before[i]) {
			t.Errorf("task %s changed by toggling task-3: %+v", task.ID, task)
		}
	}

	var persisted []models.Task
	if ok := store.Get("schedule", &persisted); !ok || len(persisted) != 5 {
		t.Fatalf("persisted array wrong: ok=%v len=%d", ok, len(persisted))
	}

	s.Toggle("task-3", false)
	if got := s.Tasks(); !reflect.DeepEqual(got, before) {
		t.Errorf("toggle round trip did not restore original list")
	}
}

func TestToggleUnknownIDIsNoop(t *testing.T) {
	s := New(newTestKV(t), nil, zap.NewNop())
	s.Replace(fiveTasks())
	before := s.Tasks()

	s.Toggle("task-99", true)

	if got := s.Tasks(); !reflect.DeepEqual(got, before) {
		t.Errorf("unknown id mutated the list")
	}
}

func TestPendingCompletedSplit(t *testing.T) {
	s := New(newTestKV(t), nil, zap.NewNop())
	s.Replace([]models.Task{
		{ID: "p1", Time: "09:00", Status: models.StatusPending},
		{ID: "c1", Time: "10:00", Status: models.StatusCompleted},
		{ID: "n1", Time: "11:00"}, // no status: pending
		{ID: "i1", Time: "12:00", Status: models.StatusInProgress},
	})

	if got := len(s.Completed()); got != 1 {
		t.Errorf("Completed() = %d tasks, want 1", got)
	}
	if got := len(s.Pending()); got != 3 {
		t.Errorf("Pending() = %d tasks, want 3", got)
	}
}

func TestResetRestoresSeed(t *testing.T) {
	seed := []models.Task{{ID: "seed-1", Time: "07:00", Title: "seeded"}}
	s := New(newTestKV(t), seed, zap.NewNop())
	s.Replace(fiveTasks())

	s.Reset()

	got := s.Tasks()
	if len(got) != 1 || got[0].ID != "seed-1" {
		t.Fatalf("reset did not restore seed: %v", got)
	}
}
