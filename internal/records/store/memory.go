// Package store persists donations and requests together with the owning
// bank's ordered back-references.
package store

import (
	"context"
	"sort"
	"sync"

	"redhope/internal/records/models"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
)

type bankLinks struct {
	donations []id.RecordID
	requests  []id.RecordID
}

func (l *bankLinks) list(kind models.Kind) *[]id.RecordID {
	if kind == models.KindRequest {
		return &l.requests
	}
	return &l.donations
}

// InMemory holds records and back-references under one mutex so a create is
// visible either with its link or not at all.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.RecordID]*models.Record
	links   map[id.BankID]*bankLinks
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[id.RecordID]*models.Record),
		links:   make(map[id.BankID]*bankLinks),
	}
}

func (s *InMemory) Create(_ context.Context, rec *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *rec
	s.records[rec.ID] = &cp
	links, ok := s.links[rec.BankID]
	if !ok {
		links = &bankLinks{}
		s.links[rec.BankID] = links
	}
	ids := links.list(rec.Kind)
	*ids = append(*ids, rec.ID)
	return nil
}

// UpdateStatus swaps the status and returns the previous one. A record of
// another kind or another bank is reported as not found.
func (s *InMemory) UpdateStatus(_ context.Context, kind models.Kind, bankID id.BankID, recordID id.RecordID, status int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[recordID]
	if !ok || rec.Kind != kind || rec.BankID != bankID {
		return 0, sentinel.ErrNotFound
	}
	prior := rec.Status
	rec.Status = status
	return prior, nil
}

// ListByBank follows the bank's back-references in insertion order.
func (s *InMemory) ListByBank(_ context.Context, kind models.Kind, bankID id.BankID) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Record, 0)
	links, ok := s.links[bankID]
	if !ok {
		return out, nil
	}
	for _, recordID := range *links.list(kind) {
		if rec, ok := s.records[recordID]; ok {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *InMemory) ListByUser(_ context.Context, kind models.Kind, userID id.UserID) ([]models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Record, 0)
	for _, rec := range s.records {
		if rec.Kind == kind && rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
