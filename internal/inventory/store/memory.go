// Package store holds the per-bank stock counts.
package store

import (
	"context"
	"sync"

	"redhope/internal/inventory/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
)

// InMemory guards every bank's counts with one mutex; Adjust holds it across
// the check and the write.
type InMemory struct {
	mu    sync.RWMutex
	stock map[id.BankID]models.Stock
}

func NewInMemory() *InMemory {
	return &InMemory{stock: make(map[id.BankID]models.Stock)}
}

// Provision adds missing blood groups at 0 and leaves existing counts alone.
func (s *InMemory) Provision(_ context.Context, bankID id.BankID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.stock[bankID]
	if !ok {
		s.stock[bankID] = models.ZeroStock()
		return nil
	}
	for _, g := range id.BloodGroups() {
		if _, has := current[g]; !has {
			current[g] = 0
		}
	}
	return nil
}

// Adjust adds delta to one group. A result below zero leaves the count
// unchanged and returns sentinel.ErrInsufficient; a result above
// id.MaxUnits returns sentinel.ErrOutOfRange. Callers bound |delta| by
// id.MaxUnits, so the sum cannot wrap.
func (s *InMemory) Adjust(_ context.Context, bankID id.BankID, group id.BloodGroup, delta int) (models.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.stock[bankID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	next := current[group] + delta
	if next < 0 {
		return nil, sentinel.ErrInsufficient
	}
	if next > id.MaxUnits {
		return nil, sentinel.ErrOutOfRange
	}
	current[group] = next
	return current.Clone(), nil
}

func (s *InMemory) Read(_ context.Context, bankID id.BankID) (models.Stock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	current, ok := s.stock[bankID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return current.Clone(), nil
}
