// Package revocation holds the token revocation lists consulted by
// RequireAuth. Redis is preferred for multi-instance deployments; Postgres
// and memory cover single-node and test setups.
package revocation

import (
	"context"
	"sync"
	"time"
)

// Clock returns the current time.
type Clock func() time.Time

// InMemoryTRL keeps revoked jtis in a map until their expiry.
type InMemoryTRL struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   Clock
}

func NewInMemoryTRL() *InMemoryTRL {
	return &InMemoryTRL{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
}

func (t *InMemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	if err := validateTTL(ttl); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revoked[jti] = t.clock().Add(ttl)
	return nil
}

func (t *InMemoryTRL) IsRevoked(_ context.Context, jti string) (bool, error) {
	t.mu.RLock()
	expiresAt, ok := t.revoked[jti]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}
	return !t.clock().After(expiresAt), nil
}
