// Package schedule owns the current task list. Every mutation commits the
// in-memory list first, then writes the committed list through the kv
// adapter, so persisted state can never run ahead of what callers observe.
package schedule

import (
	"sync"

	"go.uber.org/zap"

	"famisched/internal/kv"
	"famisched/internal/models"
)

const storageKey = "schedule"

// DefaultSeed is the demo schedule shown on first launch. Callers inject it
// (or an empty list) into New; nothing mutates it at runtime.
var DefaultSeed = []models.Task{
	{ID: "task-1", Time: "06:30", Title: "起床・朝の準備", Description: "身支度、朝食の準備", Duration: 60, Priority: "medium", Status: models.StatusCompleted, Category: "personal"},
	{ID: "task-2", Time: "08:00", Title: "子供を学校へ送る", Description: "はなをさくら小学校へ、ゆうきをひまわり幼稚園へ", Duration: 45, Priority: "high", Status: models.StatusCompleted, Category: "family"},
	{ID: "task-3", Time: "09:00", Title: "仕事開始", Description: "朝のスタンドアップミーティング", Duration: 30, Priority: "high", Status: models.StatusInProgress, Category: "work"},
	{ID: "task-4", Time: "12:00", Title: "昼食", Duration: 60, Priority: "low", Status: models.StatusPending, Category: "personal"},
	{ID: "task-5", Time: "15:30", Title: "子供のお迎え", Description: "学校と幼稚園からお迎え", Duration: 45, Priority: "high", Status: models.StatusPending, Category: "family"},
	{ID: "task-6", Time: "17:00", Title: "子供の宿題", Description: "はなの算数の宿題を手伝う", Duration: 60, Priority: "medium", Status: models.StatusPending, Category: "family"},
	{ID: "task-7", Time: "18:30", Title: "夕食の準備", Description: "家族の夕食を作る", Duration: 60, Priority: "medium", Status: models.StatusPending, Category: "family"},
	{ID: "task-8", Time: "20:30", Title: "子供の就寝準備", Description: "お風呂、読み聞かせ、就寝", Duration: 45, Priority: "high", Status: models.StatusPending, Category: "family"},
}

type Store struct {
	mu     sync.Mutex
	tasks  []models.Task
	seed   []models.Task
	kv     *kv.Store
	logger *zap.Logger
}

// New loads the persisted schedule, falling back to seed when nothing valid
// is stored. The seed is also what Reset restores.
func New(store *kv.Store, seed []models.Task, logger *zap.Logger) *Store {
	s := &Store{seed: seed, kv: store, logger: logger}

	var stored []models.Task
	if ok := store.Get(storageKey, &stored); ok && stored != nil {
		s.tasks = stored
	} else {
		s.tasks = cloneTasks(seed)
	}
	return s
}

// Tasks returns a copy of the current list in time order.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneTasks(s.tasks)
}

// Replace swaps in a whole new task list, stable-sorted by time, and
// persists it. An empty list is a valid replacement only via Reset or an
// explicit caller decision; the orchestrator never calls Replace with an
// empty update.
func (s *Store) Replace(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneTasks(tasks)
	models.SortByTime(next)
	s.tasks = next
	s.persistLocked()
}

// Toggle marks the task with the given id completed or pending. Unknown ids
// are ignored.
func (s *Store) Toggle(id string, completed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if completed {
			s.tasks[i].Status = models.StatusCompleted
		} else {
			s.tasks[i].Status = models.StatusPending
		}
		s.persistLocked()
		return
	}
	s.logger.Debug("toggle on unknown task id", zap.String("id", id))
}

// Reset restores the injected seed list and persists it.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = cloneTasks(s.seed)
	s.persistLocked()
}

// Pending returns every task that is not completed, for the prompt's current
// schedule block.
func (s *Store) Pending() []models.Task {
	return s.filter(func(t models.Task) bool { return t.EffectiveStatus() != models.StatusCompleted })
}

// Completed returns the tasks the model must not reschedule.
func (s *Store) Completed() []models.Task {
	return s.filter(func(t models.Task) bool { return t.EffectiveStatus() == models.StatusCompleted })
}

func (s *Store) filter(keep func(models.Task) bool) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) persistLocked() {
	s.kv.Put(storageKey, s.tasks)
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	copy(out, tasks)
	return out
}
