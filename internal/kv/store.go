// Package kv persists string-keyed JSON blobs in a local SQLite file. It is
// the only component that touches durable storage; every store above it
// fails soft, so a quota or serialization problem never interrupts the
// session — in-memory state stays authoritative and the error is logged.
package kv

import (
	"database/sql"
	"encoding/json"
	"errors"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *zap.Logger
}

func New(dbPath string, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get unmarshals the blob stored under key into dest. When the key is absent
// or its blob no longer parses, dest is left exactly as the caller passed it,
// so callers pre-fill dest with their default value. Returns whether dest was
// populated from storage.
func (s *Store) Get(key string, dest any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(key, dest)
}

func (s *Store) getLocked(key string, dest any) bool {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		s.logger.Error("failed to read stored value", zap.String("key", key), zap.Error(err))
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		// A corrupt blob degrades only this key; the other keys still load.
		s.logger.Error("stored value is malformed, falling back to default",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Put serializes value and upserts it under key. Failures are logged and
// swallowed: the in-memory copy the caller committed remains the truth for
// the rest of the session.
func (s *Store) Put(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(key, value)
}

func (s *Store) putLocked(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("failed to serialize value", zap.String("key", key), zap.Error(err))
		return
	}

	_, err = s.db.Exec(`
        INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(raw))
	if err != nil {
		s.logger.Error("failed to persist value", zap.String("key", key), zap.Error(err))
	}
}

// Update applies a transition function to the last committed value under the
// store lock and persists its result. Because apply always sees the committed
// bytes, a caller holding a stale copy cannot overwrite a later write: the
// store, not the caller, is the single writer.
func (s *Store) Update(key string, apply func(prev json.RawMessage) (any, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prev json.RawMessage
	if ok := s.getLocked(key, &prev); !ok {
		prev = nil
	}

	next, err := apply(prev)
	if err != nil {
		s.logger.Error("update function failed", zap.String("key", key), zap.Error(err))
		return
	}
	s.putLocked(key, next)
}
