package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"` // user or assistant
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"` // epoch millis
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ScheduleUpdate is the structured reply the model is asked to produce:
// a full replacement task list plus a user-facing explanation.
type ScheduleUpdate struct {
	Tasks         []Task   `json:"tasks"`
	Message       string   `json:"message"`
	AffectedTasks []string `json:"affectedTasks,omitempty"`
	Reasoning     string   `json:"reasoning,omitempty"`
}

// NewMessageID builds a unique message id from the wall clock plus a random
// suffix, so ids from the same millisecond never collide.
func NewMessageID(now time.Time) string {
	return fmt.Sprintf("msg-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
