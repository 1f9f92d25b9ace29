package memory

import (
	"context"
	"sync"

	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/sentinel"
)

var (
	_ audit.Sink   = (*InMemoryStore)(nil)
	_ audit.Reader = (*InMemoryStore)(nil)
)

// InMemoryStore is an append-only audit sink held in process memory.
// Records are kept in append order; the mutex serializes concurrent appends.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []audit.Record
	closed  bool
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, record audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sentinel.ErrClosed
	}
	s.records = append(s.records, record)
	return nil
}

// ListRecent returns up to limit records, newest first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.records) {
		limit = len(s.records)
	}
	out := make([]audit.Record, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

// All returns every record in append order. Used by tests and the debug CLI.
func (s *InMemoryStore) All() []audit.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Record{}, s.records...)
}

// Len returns the number of stored records.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *InMemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *InMemoryStore) Name() string { return "memory" }
