package models

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"9:30am", 0, true},
		{"", 0, true},
		{"noon", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseClock(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseClock(%q) succeeded, want error", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

// TestSortByTimeStable verifies equal times keep their original relative
// order.
func TestSortByTimeStable(t *testing.T) {
	tasks := []Task{
		{ID: "c", Time: "12:00"},
		{ID: "a", Time: "09:00"},
		{ID: "b", Time: "09:00"},
		{ID: "d", Time: "08:00"},
	}
	SortByTime(tasks)

	wantOrder := []string{"d", "a", "b", "c"}
	for i, id := range wantOrder {
		if tasks[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (full order %v)", i, tasks[i].ID, id, taskIDs(tasks))
		}
	}
}

// TestSortByTimeInvalidLast verifies unparseable times sort after valid ones
// without reordering among themselves.
func TestSortByTimeInvalidLast(t *testing.T) {
	tasks := []Task{
		{ID: "bad1", Time: "later"},
		{ID: "ok", Time: "10:00"},
		{ID: "bad2", Time: ""},
	}
	SortByTime(tasks)

	wantOrder := []string{"ok", "bad1", "bad2"}
	for i, id := range wantOrder {
		if tasks[i].ID != id {
			t.Fatalf("position %d: got %s, want %s", i, tasks[i].ID, id)
		}
	}
}

func TestEffectiveStatusDefaultsToPending(t *testing.T) {
	if got := (Task{}).EffectiveStatus(); got != StatusPending {
		t.Errorf("EffectiveStatus() = %q, want %q", got, StatusPending)
	}
	if got := (Task{Status: StatusCancelled}).EffectiveStatus(); got != StatusCancelled {
		t.Errorf("EffectiveStatus() = %q, want %q", got, StatusCancelled)
	}
}

func taskIDs(tasks []Task) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}
