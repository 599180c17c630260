package models

import (
	"fmt"
	"sort"
	"time"
)

// Task is one schedulable item on the day's timeline.
type Task struct {
	ID          string `json:"id"`
	Time        string `json:"time"` // 24-hour "HH:mm"
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Duration    int    `json:"duration,omitempty"` // minutes
	Priority    string `json:"priority,omitempty"` // high, medium, or low
	Status      string `json:"status,omitempty"`   // pending, in-progress, completed, or cancelled
	Category    string `json:"category,omitempty"` // work, family, personal, health, or errand
}

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ParseClock validates a 24-hour "HH:mm" string and returns its
// minutes-since-midnight value.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid HH:mm time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// EffectiveStatus treats a missing status as pending.
func (t Task) EffectiveStatus() string {
	if t.Status == "" {
		return StatusPending
	}
	return t.Status
}

// SortByTime orders tasks by their HH:mm time in place. The sort is stable:
// equal times keep their original relative order, and tasks whose time does
// not parse sort after all valid ones without being reordered among
// themselves.
func SortByTime(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		mi, erri := ParseClock(tasks[i].Time)
		mj, errj := ParseClock(tasks[j].Time)
		if erri != nil || errj != nil {
			return erri == nil && errj != nil
		}
		return mi < mj
	})
}
