// Package store persists organizations.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"navbat/internal/org/models"
	"navbat/pkg/platform/sentinel"
)

// InMemoryStore keeps organizations in a map keyed by lowercased name.
type InMemoryStore struct {
	mu     sync.RWMutex
	byName map[string]models.Organization
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byName: make(map[string]models.Organization)}
}

// Create stores org and returns its assigned ID.
func (s *InMemoryStore) Create(_ context.Context, org models.Organization) (string, error) {
	key := strings.ToLower(org.Name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[key]; exists {
		return "", fmt.Errorf("organization %q: %w", org.Name, sentinel.ErrConflict)
	}
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	s.byName[key] = org
	return org.ID, nil
}
