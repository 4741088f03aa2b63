package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/waggy/go-wizard/pkg/session"
)

// Store implements session.Store in memory.
// Safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	drafts map[string]session.Draft
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		drafts: make(map[string]session.Draft),
	}
}

// Save stores a copy of the draft.
func (s *Store) Save(_ context.Context, sessionID string, draft session.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[sessionID] = draft.Clone()
	return nil
}

// Load returns a copy so callers cannot mutate stored state.
func (s *Store) Load(_ context.Context, sessionID string) (session.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	draft, ok := s.drafts[sessionID]
	if !ok {
		return session.Draft{}, session.ErrNotFound
	}
	return draft.Clone(), nil
}

// Delete removes the draft. Missing sessions are not an error.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	return nil
}

// List returns stored session ids in lexical order.
func (s *Store) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.drafts))
	for id := range s.drafts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
