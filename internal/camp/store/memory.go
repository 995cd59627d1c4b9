// Package store persists camps and their donor rosters.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"redhope/internal/camp/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
)

// InMemory keeps every camp behind one mutex, held across the roster match
// and its mutation.
type InMemory struct {
	mu    sync.RWMutex
	camps map[id.CampID]*models.Camp
}

func NewInMemory() *InMemory {
	return &InMemory{camps: make(map[id.CampID]*models.Camp)}
}

func (s *InMemory) Create(_ context.Context, camp *models.Camp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.camps[camp.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.camps[camp.ID] = camp.Clone()
	return nil
}

// Enroll appends an enrolled entry unless the user is already on the roster.
// It reports whether an entry was added.
func (s *InMemory) Enroll(_ context.Context, campID id.CampID, userID id.UserID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	camp, ok := s.camps[campID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if camp.HasDonor(userID) {
		return false, nil
	}
	camp.Donors = append(camp.Donors, models.Donor{UserID: userID, Status: models.DonorEnrolled})
	return true, nil
}

// Fulfill marks an enrolled donor as fulfilled with the given units. It
// reports whether an entry changed; absent or already fulfilled donors are
// left alone.
func (s *InMemory) Fulfill(_ context.Context, bankID id.BankID, campID id.CampID, userID id.UserID, units int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	camp, ok := s.camps[campID]
	if !ok {
		return false, sentinel.ErrNotFound
	}
	if camp.BankID != bankID {
		return false, sentinel.ErrForbidden
	}
	for i := range camp.Donors {
		d := &camp.Donors[i]
		if d.UserID == userID && d.Status == models.DonorEnrolled {
			d.Status = models.DonorFulfilled
			d.Units = units
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) ListByLocation(_ context.Context, state, district string) ([]models.Camp, error) {
	return s.filter(func(c *models.Camp) bool {
		return sameLocation(c, state, district)
	}), nil
}

// ListByLocationBetween returns camps whose date falls in [from, to).
func (s *InMemory) ListByLocationBetween(_ context.Context, state, district string, from, to time.Time) ([]models.Camp, error) {
	return s.filter(func(c *models.Camp) bool {
		return sameLocation(c, state, district) && !c.Date.Before(from) && c.Date.Before(to)
	}), nil
}

func (s *InMemory) ListByBank(_ context.Context, bankID id.BankID) ([]models.Camp, error) {
	return s.filter(func(c *models.Camp) bool { return c.BankID == bankID }), nil
}

func (s *InMemory) filter(match func(*models.Camp) bool) []models.Camp {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Camp, 0)
	for _, c := range s.camps {
		if match(c) {
			out = append(out, *c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func sameLocation(c *models.Camp, state, district string) bool {
	return strings.EqualFold(c.Location.State, state) && strings.EqualFold(c.Location.District, district)
}
