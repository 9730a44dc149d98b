// Package session provides the bearer-token stores the API client reads from.
package session

import (
	"context"
	"sync"

	"docrepo/internal/port"
)

// MemoryStore keeps the token in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

var _ port.TokenStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *MemoryStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ClearToken(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
