// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is the default backend: helper boards are short-lived and a restart
// simply starts the player over.
//
// Characteristics:
//   - Stores encoded sessions keyed by ID, so callers never share a pointer.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Keeps each session's UpdatedAt next to its bytes so idle boards can be purged.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordle-helper/internal/session"
)

// ErrNotFound is returned by every backend for an unknown session ID.
var ErrNotFound = errors.New("session not found")

// Store defines the persistence interface for helper sessions.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *session.Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*session.Session, error)

	// Delete removes a session. Deleting an unknown ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// Purger is implemented by backends without native expiry (memory and SQLite).
type Purger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type entry struct {
	state   []byte
	updated time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]entry // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]entry)}
}

func (m *memory) Save(ctx context.Context, s *session.Session) error {
	b, err := session.Encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = entry{state: b, updated: s.UpdatedAt}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*session.Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return session.Decode(e.state)
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// PurgeBefore drops sessions not updated since cutoff and reports how many went.
func (m *memory) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, e := range m.sessions {
		if e.updated.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memory) Close() error { return nil }
