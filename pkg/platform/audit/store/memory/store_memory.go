package memory

import (
	"context"
	"sync"

	id "redhope/pkg/domain"
	audit "redhope/pkg/platform/audit"
)

// InMemoryStore keeps events in arrival order. Used when no database or
// broker is configured, and in tests.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// ListByBank returns the events that concern bankID, oldest first.
func (s *InMemoryStore) ListByBank(_ context.Context, bankID id.BankID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.BankID == bankID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAll returns every stored event, oldest first.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event(nil), s.events...), nil
}
