package session

import (
	"context"
	"sync"
)

// memoryStore implements Store using an in-memory map. It does not survive
// process restarts and exists for tests and throwaway sessions.
type memoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.values[key], nil
}

func (s *memoryStore) Set(ctx context.Context, key string, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

func (s *memoryStore) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = nil
	return nil
}
