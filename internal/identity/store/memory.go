// Package store persists user and bank accounts.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"redhope/internal/identity/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
)

// InMemory keeps accounts in maps keyed by id with secondary email indexes.
type InMemory struct {
	mu          sync.RWMutex
	users       map[id.UserID]*models.User
	banks       map[id.BankID]*models.Bank
	userByEmail map[string]id.UserID
	bankByEmail map[string]id.BankID
}

func NewInMemory() *InMemory {
	return &InMemory{
		users:       make(map[id.UserID]*models.User),
		banks:       make(map[id.BankID]*models.Bank),
		userByEmail: make(map[string]id.UserID),
		bankByEmail: make(map[string]id.BankID),
	}
}

func (s *InMemory) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.userByEmail[user.Email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.users[user.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *user
	s.users[user.ID] = &cp
	s.userByEmail[user.Email] = user.ID
	return nil
}

func (s *InMemory) CreateBank(_ context.Context, bank *models.Bank) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.bankByEmail[bank.Email]; taken {
		return sentinel.ErrAlreadyUsed
	}
	if _, exists := s.banks[bank.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *bank
	s.banks[bank.ID] = &cp
	s.bankByEmail[bank.Email] = bank.ID
	return nil
}

func (s *InMemory) FindUserByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.userByEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.users[userID]
	return &cp, nil
}

func (s *InMemory) FindBankByID(_ context.Context, bankID id.BankID) (*models.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.banks[bankID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *InMemory) FindBankByEmail(_ context.Context, email string) (*models.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bankID, ok := s.bankByEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.banks[bankID]
	return &cp, nil
}

// UpdateUser applies update under the write lock and returns the result.
func (s *InMemory) UpdateUser(_ context.Context, userID id.UserID, update models.UserUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	update.Apply(u)
	cp := *u
	return &cp, nil
}

func (s *InMemory) UpdateBank(_ context.Context, bankID id.BankID, update models.BankUpdate) (*models.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.banks[bankID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	update.Apply(b)
	cp := *b
	return &cp, nil
}

// FindBanks returns banks in state/district ordered by name. Matching is
// case-insensitive.
func (s *InMemory) FindBanks(_ context.Context, state, district string) ([]models.BankProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.BankProfile, 0)
	for _, b := range s.banks {
		if strings.EqualFold(b.Location.State, state) && strings.EqualFold(b.Location.District, district) {
			out = append(out, b.Profile())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// UserProfiles resolves the given ids. Unknown ids are absent from the result.
func (s *InMemory) UserProfiles(_ context.Context, userIDs []id.UserID) (map[id.UserID]models.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.UserID]models.UserProfile, len(userIDs))
	for _, userID := range userIDs {
		if u, ok := s.users[userID]; ok {
			out[userID] = u.Profile()
		}
	}
	return out, nil
}

func (s *InMemory) BankProfiles(_ context.Context, bankIDs []id.BankID) (map[id.BankID]models.BankProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.BankID]models.BankProfile, len(bankIDs))
	for _, bankID := range bankIDs {
		if b, ok := s.banks[bankID]; ok {
			out[bankID] = b.Profile()
		}
	}
	return out, nil
}
