// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// This is the default backend for interactive solve sessions.
//
// Characteristics:
//   - Stores *game.Session objects keyed by ID in a map.
//   - Map access guarded by an RWMutex; each session additionally has its own
//     mutex so Update calls on one session are serialized.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for solve sessions.
type Store interface {
	// Save persists or replaces a session.
	Save(ctx context.Context, s *game.Session) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*game.Session, error)

	// Update loads a session, runs fn on it and persists the result, with
	// concurrent updates of the same session serialized.
	Update(ctx context.Context, id string, fn func(*game.Session) error) (*game.Session, error)

	// Delete removes a session and reports whether it was still active.
	// Returns ErrNotFound if the session does not exist.
	Delete(ctx context.Context, id string) (active bool, err error)

	// Sweep removes sessions not touched since before.
	Sweep(ctx context.Context, before time.Time) (SweepStats, error)
}

// SweepStats counts the sessions removed by Sweep.
type SweepStats struct {
	Removed int // all removed sessions
	Active  int // removed sessions that had not finished
}

type memEntry struct {
	mu       sync.Mutex // serializes Update on this session
	session  *game.Session
	touched  time.Time // guarded by memory.mu
	terminal bool      // session state mirror, guarded by memory.mu
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex         // guards sessions map
	sessions map[string]*memEntry // keyed by Session.ID
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*memEntry), now: time.Now}
}

// Save adds or replaces the session in the map.
func (m *memory) Save(ctx context.Context, s *game.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = &memEntry{session: s, touched: m.now(), terminal: s.State().Terminal()}
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.sessions[id]; ok {
		return e.session, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Session) error) (*game.Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	err := fn(e.session)
	terminal := e.session.State().Terminal()
	m.mu.Lock()
	e.terminal = terminal
	if err == nil {
		e.touched = m.now()
	}
	m.mu.Unlock()
	return e.session, err
}

func (m *memory) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return false, ErrNotFound
	}
	delete(m.sessions, id)
	return !e.terminal, nil
}

func (m *memory) Sweep(ctx context.Context, before time.Time) (SweepStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var st SweepStats
	for id, e := range m.sessions {
		if e.touched.Before(before) {
			delete(m.sessions, id)
			st.Removed++
			if !e.terminal {
				st.Active++
			}
		}
	}
	return st, nil
}
