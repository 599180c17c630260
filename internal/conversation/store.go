// Package conversation owns the chat history: an append-only log of user and
// assistant turns with one deliberate exception, edit-and-regenerate, which
// truncates everything after the edited turn because those replies were
// conditioned on the old content.
package conversation

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"famisched/internal/kv"
	"famisched/internal/models"
)

const storageKey = "chatHistory"

const (
	// summaryTurns bounds how many recent user turns feed the summary, and
	// summaryRunes how long each quoted turn may be. Together they cap the
	// token cost of giving the model memory of earlier exchanges.
	summaryTurns = 5
	summaryRunes = 60
)

type Store struct {
	mu       sync.Mutex
	messages []models.ChatMessage
	kv       *kv.Store
	logger   *zap.Logger
	now      func() time.Time
}

func New(store *kv.Store, logger *zap.Logger) *Store {
	s := &Store{kv: store, logger: logger, now: time.Now}

	var stored []models.ChatMessage
	if ok := store.Get(storageKey, &stored); ok && stored != nil {
		s.messages = stored
	}
	return s
}

// Messages returns the full history in insertion order.
func (s *Store) Messages() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cloneLocked()
}

// Recent returns the last n messages in insertion order; these are the turns
// sent to the model verbatim.
func (s *Store) Recent(n int) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := s.cloneLocked()
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	return msgs
}

// AddMessage appends a new turn with a generated id and timestamp, persists,
// and returns the created message.
func (s *Store) AddMessage(role, content string) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	msg := models.ChatMessage{
		ID:        models.NewMessageID(now),
		Role:      role,
		Content:   content,
		Timestamp: now.UnixMilli(),
	}
	s.messages = append(s.messages, msg)
	s.persistLocked()
	return msg
}

// UpdateMessage replaces the content of the matching message in place.
// Unknown ids are ignored.
func (s *Store) UpdateMessage(id, newContent string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].Content = newContent
			s.persistLocked()
			return
		}
	}
	s.logger.Debug("update on unknown message id", zap.String("id", id))
}

// EditAndRegenerate rewrites the matching message and drops every message
// after it. Returns the edited message, or nil (history untouched) when the
// id is not present.
func (s *Store) EditAndRegenerate(id, newContent string) *models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID != id {
			continue
		}
		s.messages[i].Content = newContent
		s.messages = s.messages[:i+1]
		s.persistLocked()
		edited := s.messages[i]
		return &edited
	}
	return nil
}

// ClearHistory empties the log and persists the empty state.
func (s *Store) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	s.persistLocked()
}

// Summary digests the most recent user turns into a short newline-joined
// list, each turn truncated to a fixed length. Assistant turns are skipped:
// the model's own words add nothing it does not already know. Empty history
// yields the empty string.
func (s *Store) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var userTurns []string
	for _, msg := range s.messages {
		if msg.Role == models.RoleUser {
			userTurns = append(userTurns, truncate(msg.Content, summaryRunes))
		}
	}
	if len(userTurns) == 0 {
		return ""
	}
	if len(userTurns) > summaryTurns {
		userTurns = userTurns[len(userTurns)-summaryTurns:]
	}

	var b strings.Builder
	for i, turn := range userTurns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(turn)
	}
	return b.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func (s *Store) persistLocked() {
	s.kv.Put(storageKey, s.messages)
}

func (s *Store) cloneLocked() []models.ChatMessage {
	out := make([]models.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}
