package revocation

import (
	"context"
	"sync"
	"time"
)

// InMemoryTRL is a single-instance revocation list for development and tests.
type InMemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewInMemoryTRL() *InMemoryTRL {
	return &InMemoryTRL{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (t *InMemoryTRL) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if err := validate(jti, ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.now().Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.RLock()
	expiresAt, ok := t.revoked[jti]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !t.now().Before(expiresAt) {
		t.mu.Lock()
		delete(t.revoked, jti)
		t.mu.Unlock()
		return false, nil
	}
	return true, nil
}
