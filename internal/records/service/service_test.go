package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	identity "redhope/internal/identity/models"
	"redhope/internal/records/metrics"
	"redhope/internal/records/models"
	"redhope/internal/records/store"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/audit"
	"redhope/pkg/platform/audit/publisher"
	auditmemory "redhope/pkg/platform/audit/store/memory"
	"redhope/pkg/requestcontext"
)

type fakeDirectory struct {
	users map[id.UserID]identity.UserProfile
	banks map[id.BankID]identity.BankProfile
}

func (d *fakeDirectory) UserProfiles(_ context.Context, ids []id.UserID) (map[id.UserID]identity.UserProfile, error) {
	out := make(map[id.UserID]identity.UserProfile)
	for _, u := range ids {
		if p, ok := d.users[u]; ok {
			out[u] = p
		}
	}
	return out, nil
}

func (d *fakeDirectory) BankProfiles(_ context.Context, ids []id.BankID) (map[id.BankID]identity.BankProfile, error) {
	out := make(map[id.BankID]identity.BankProfile)
	for _, b := range ids {
		if p, ok := d.banks[b]; ok {
			out[b] = p
		}
	}
	return out, nil
}

// danglingUserStore rejects every create the way the database does when the
// user row is gone.
type danglingUserStore struct {
	*store.InMemory
}

func (danglingUserStore) Create(context.Context, *models.Record) error {
	return models.ErrUnknownUser
}

type RecordsSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	store      *store.InMemory
	auditStore *auditmemory.InMemoryStore
	service    *Service
	userID     id.UserID
	bankID     id.BankID
}

func TestRecordsSuite(t *testing.T) {
	suite.Run(t, new(RecordsSuite))
}

func (s *RecordsSuite) SetupTest() {
	s.now = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.userID = id.NewUserID()
	s.bankID = id.NewBankID()
	dir := &fakeDirectory{
		users: map[id.UserID]identity.UserProfile{s.userID: {ID: s.userID, Name: "Donor"}},
		banks: map[id.BankID]identity.BankProfile{s.bankID: {ID: s.bankID, Name: "Lifeline"}},
	}
	s.store = store.NewInMemory()
	s.auditStore = auditmemory.NewInMemoryStore()
	s.service = New(s.store, dir,
		WithAuditor(publisher.NewPublisher(s.auditStore)),
		WithMetrics(metrics.NewWithRegisterer(prometheus.NewRegistry())),
	)
}

func (s *RecordsSuite) TestCreateDonation() {
	rec, err := s.service.CreateDonation(s.ctx, s.userID, s.bankID, id.BloodGroupAPos, 2)
	s.Require().NoError(err)

	s.Equal(models.StatusPending, rec.Status)
	s.Equal(s.now, rec.CreatedAt)
	s.Equal(models.KindDonation, rec.Kind)
	s.False(rec.Urgent)

	s.Run("bank holds exactly one back-reference", func() {
		list, err := s.service.ListByBank(s.ctx, models.KindDonation, s.bankID)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Equal(rec.ID, list[0].ID)
		s.Require().NotNil(list[0].User)
		s.Equal("Donor", list[0].User.Name)

		requests, err := s.service.ListByBank(s.ctx, models.KindRequest, s.bankID)
		s.Require().NoError(err)
		s.Empty(requests)
	})

	s.Run("user sees it with the bank profile", func() {
		list, err := s.service.ListByUser(s.ctx, models.KindDonation, s.userID)
		s.Require().NoError(err)
		s.Require().Len(list, 1)
		s.Require().NotNil(list[0].Bank)
		s.Equal("Lifeline", list[0].Bank.Name)
	})

	s.Run("creation is audited", func() {
		events, err := s.auditStore.ListByBank(s.ctx, s.bankID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventRecordCreated), events[0].Action)
		s.Equal(rec.ID.String(), events[0].Subject)
	})
}

func (s *RecordsSuite) TestCreateRequestKeepsUrgency() {
	rec, err := s.service.CreateRequest(s.ctx, s.userID, s.bankID, id.BloodGroupONeg, 1, true)
	s.Require().NoError(err)
	s.True(rec.Urgent)
	s.Equal(models.KindRequest, rec.Kind)
}

func (s *RecordsSuite) TestCreateForUnknownBankIsNotFound() {
	_, err := s.service.CreateDonation(s.ctx, s.userID, id.NewBankID(), id.BloodGroupAPos, 1)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *RecordsSuite) TestCreateForUnknownUserIsNotFound() {
	svc := New(danglingUserStore{store.NewInMemory()}, &fakeDirectory{
		banks: map[id.BankID]identity.BankProfile{s.bankID: {ID: s.bankID, Name: "Lifeline"}},
	})
	_, err := svc.CreateDonation(s.ctx, id.NewUserID(), s.bankID, id.BloodGroupAPos, 1)
	s.Require().ErrorIs(err, dErrors.New(dErrors.CodeNotFound, "user not found"))
}

func (s *RecordsSuite) TestCreateValidatesInput() {
	_, err := s.service.CreateDonation(s.ctx, s.userID, s.bankID, id.BloodGroupAPos, 0)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.CreateDonation(s.ctx, s.userID, s.bankID, "K", 1)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.CreateRequest(s.ctx, s.userID, s.bankID, id.BloodGroupAPos, id.MaxUnits+1, false)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *RecordsSuite) TestUpdateStatus() {
	rec, err := s.service.CreateDonation(s.ctx, s.userID, s.bankID, id.BloodGroupBPos, 1)
	s.Require().NoError(err)

	s.Run("returns the prior status", func() {
		prior, err := s.service.UpdateStatus(s.ctx, models.KindDonation, s.bankID, rec.ID, models.StatusCompleted)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, prior)
	})

	s.Run("any integer is stored as given", func() {
		prior, err := s.service.UpdateStatus(s.ctx, models.KindDonation, s.bankID, rec.ID, 7)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, prior)

		prior, err = s.service.UpdateStatus(s.ctx, models.KindDonation, s.bankID, rec.ID, -3)
		s.Require().NoError(err)
		s.Equal(7, prior)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.UpdateStatus(s.ctx, models.KindDonation, s.bankID, id.NewRecordID(), 1)
		s.Require().ErrorIs(err, dErrors.New(dErrors.CodeNotFound, "donation not found"))
	})

	s.Run("another bank's record is not found", func() {
		_, err := s.service.UpdateStatus(s.ctx, models.KindDonation, id.NewBankID(), rec.ID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("wrong kind is not found", func() {
		_, err := s.service.UpdateStatus(s.ctx, models.KindRequest, s.bankID, rec.ID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// TestConcurrentStatusUpdatesSeeEachPriorOnce checks every writer observes a
// distinct predecessor, so no update is lost.
func (s *RecordsSuite) TestConcurrentStatusUpdatesSeeEachPriorOnce() {
	rec, err := s.service.CreateRequest(s.ctx, s.userID, s.bankID, id.BloodGroupAPos, 1, false)
	s.Require().NoError(err)

	const writers = 50
	priors := make(chan int, writers)
	var wg sync.WaitGroup
	for i := 1; i <= writers; i++ {
		wg.Add(1)
		go func(status int) {
			defer wg.Done()
			prior, err := s.service.UpdateStatus(s.ctx, models.KindRequest, s.bankID, rec.ID, status)
			if err == nil {
				priors <- prior
			}
		}(i)
	}
	wg.Wait()
	close(priors)

	seen := make(map[int]bool)
	for p := range priors {
		s.False(seen[p], "prior %d observed twice", p)
		seen[p] = true
	}
	s.Len(seen, writers)
	s.True(seen[models.StatusPending])
}

func (s *RecordsSuite) TestConcurrentCreatesLinkEachRecordOnce() {
	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.service.CreateDonation(s.ctx, s.userID, s.bankID, id.BloodGroupOPos, 1)
		}()
	}
	wg.Wait()

	list, err := s.service.ListByBank(s.ctx, models.KindDonation, s.bankID)
	s.Require().NoError(err)
	s.Len(list, n)
	ids := make(map[id.RecordID]bool)
	for _, r := range list {
		s.False(ids[r.ID])
		ids[r.ID] = true
	}
}
