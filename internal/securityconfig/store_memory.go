package securityconfig

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu    sync.Mutex
	rules Rules
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{rules: Defaults()}
}

func (s *InMemoryStore) Get(context.Context) (Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rules, nil
}

func (s *InMemoryStore) Update(_ context.Context, patch Patch) (Rules, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = patch.Apply(s.rules)
	return s.rules, nil
}
