// Package session provides SessionStore implementations for checkpointing
// pipeline state across runs sharing a session id.
package session

import (
	"context"
	"sync"

	"github.com/triagemesh/triagemesh/core"
)

// InMemoryStore is a volatile SessionStore keeping snapshots in a process
// local map. It is safe for concurrent access and best suited for tests or
// ephemeral demo servers. Snapshots are cloned on both read and write so a
// stored record never aliases a live run.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.State
}

var _ core.SessionStore = (*InMemoryStore)(nil)

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*core.State)}
}

// Get returns a clone of the stored snapshot, or found=false for an
// unknown id.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*core.State, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}
	return st.Clone(), true, nil
}

// Put stores a clone of the snapshot, replacing any previous one.
func (s *InMemoryStore) Put(_ context.Context, sessionID string, st *core.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = st.Clone()
	return nil
}

// Len returns the number of stored sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
