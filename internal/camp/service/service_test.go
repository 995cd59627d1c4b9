package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"redhope/internal/camp/metrics"
	"redhope/internal/camp/models"
	"redhope/internal/camp/store"
	identity "redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/audit"
	"redhope/pkg/platform/audit/publisher"
	auditmemory "redhope/pkg/platform/audit/store/memory"
	"redhope/pkg/requestcontext"
)

type fakeDirectory struct {
	mu        sync.Mutex
	users     map[id.UserID]identity.UserProfile
	banks     map[id.BankID]identity.BankProfile
	userCalls int
	err       error
}

func (d *fakeDirectory) UserProfiles(_ context.Context, ids []id.UserID) (map[id.UserID]identity.UserProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userCalls++
	if d.err != nil {
		return nil, d.err
	}
	out := make(map[id.UserID]identity.UserProfile)
	for _, u := range ids {
		if p, ok := d.users[u]; ok {
			out[u] = p
		}
	}
	return out, nil
}

func (d *fakeDirectory) BankProfiles(_ context.Context, ids []id.BankID) (map[id.BankID]identity.BankProfile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[id.BankID]identity.BankProfile)
	for _, b := range ids {
		if p, ok := d.banks[b]; ok {
			out[b] = p
		}
	}
	return out, nil
}

type CampSuite struct {
	suite.Suite
	ctx        context.Context
	now        time.Time
	directory  *fakeDirectory
	auditStore *auditmemory.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
	bankID     id.BankID
	userID     id.UserID
}

func TestCampSuite(t *testing.T) {
	suite.Run(t, new(CampSuite))
}

func (s *CampSuite) SetupTest() {
	s.now = time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.bankID = id.NewBankID()
	s.userID = id.NewUserID()
	s.directory = &fakeDirectory{
		users: map[id.UserID]identity.UserProfile{s.userID: {ID: s.userID, Name: "Asha", BloodGroup: id.BloodGroupOPos}},
		banks: map[id.BankID]identity.BankProfile{s.bankID: {ID: s.bankID, Name: "Lifeline", Phone: "555"}},
	}
	s.auditStore = auditmemory.NewInMemoryStore()
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = New(store.NewInMemory(), s.directory,
		WithAuditor(publisher.NewPublisher(s.auditStore)),
		WithMetrics(s.metrics),
	)
}

func (s *CampSuite) input(date time.Time) models.CampInput {
	return models.CampInput{
		Name:     "Spring drive",
		Location: identity.Location{State: "Kerala", District: "Ernakulam", Address: "Town hall"},
		Date:     date,
	}
}

func (s *CampSuite) createCamp() *models.Camp {
	camp, err := s.service.CreateCamp(s.ctx, s.bankID, s.input(time.Date(2026, 5, 14, 9, 0, 0, 0, time.UTC)))
	s.Require().NoError(err)
	return camp
}

func (s *CampSuite) roster(campID id.CampID) []models.RosterEntry {
	camps, err := s.service.ListByBank(s.ctx, s.bankID)
	s.Require().NoError(err)
	for _, c := range camps {
		if c.ID == campID {
			return c.Donors
		}
	}
	s.FailNow("camp not listed")
	return nil
}

func (s *CampSuite) actions() []string {
	events, err := s.auditStore.ListAll(s.ctx)
	s.Require().NoError(err)
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Action)
	}
	return out
}

func (s *CampSuite) TestCreateCamp() {
	camp := s.createCamp()
	s.Equal(s.bankID, camp.BankID)
	s.Equal(s.now, camp.CreatedAt)
	s.Empty(camp.Donors)
	s.Contains(s.actions(), string(audit.EventCampCreated))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.CampsCreated))
}

func (s *CampSuite) TestCreateCampValidation() {
	s.Run("unknown bank", func() {
		_, err := s.service.CreateCamp(s.ctx, id.NewBankID(), s.input(s.now))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("missing date", func() {
		_, err := s.service.CreateCamp(s.ctx, s.bankID, s.input(time.Time{}))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func (s *CampSuite) TestDoubleEnrollKeepsOneEntry() {
	camp := s.createCamp()
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))

	donors := s.roster(camp.ID)
	s.Require().Len(donors, 1)
	s.Equal(models.DonorEnrolled, donors[0].Status)
	s.Require().NotNil(donors[0].User)
	s.Equal("Asha", donors[0].User.Name)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Enrollments.WithLabelValues("added")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Enrollments.WithLabelValues("duplicate")))
}

func (s *CampSuite) TestConcurrentEnrollKeepsOneEntry() {
	camp := s.createCamp()
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))
		}()
	}
	wg.Wait()

	s.Len(s.roster(camp.ID), 1)
	enrolled := 0
	for _, a := range s.actions() {
		if a == string(audit.EventCampDonorEnrolled) {
			enrolled++
		}
	}
	s.Equal(1, enrolled)
}

func (s *CampSuite) TestEnrollUnknownCamp() {
	err := s.service.Enroll(s.ctx, id.NewCampID(), s.userID)
	s.ErrorIs(err, dErrors.New(dErrors.CodeNotFound, "camp not found"))
}

func (s *CampSuite) TestDoubleFulfillIsNoop() {
	camp := s.createCamp()
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))

	s.Require().NoError(s.service.Fulfill(s.ctx, s.bankID, camp.ID, s.userID, 2))
	s.Require().NoError(s.service.Fulfill(s.ctx, s.bankID, camp.ID, s.userID, 9))

	donors := s.roster(camp.ID)
	s.Require().Len(donors, 1)
	s.Equal(models.DonorFulfilled, donors[0].Status)
	s.Equal(2, donors[0].Units)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.UnitsCollected))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Fulfillments.WithLabelValues("noop")))
}

func (s *CampSuite) TestReenrollAfterFulfillIsNoop() {
	camp := s.createCamp()
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))
	s.Require().NoError(s.service.Fulfill(s.ctx, s.bankID, camp.ID, s.userID, 1))
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))

	donors := s.roster(camp.ID)
	s.Require().Len(donors, 1)
	s.Equal(models.DonorFulfilled, donors[0].Status)
	s.Equal(1, donors[0].Units)
}

func (s *CampSuite) TestFulfillAbsentDonorIsNoop() {
	camp := s.createCamp()
	s.NoError(s.service.Fulfill(s.ctx, s.bankID, camp.ID, s.userID, 1))
	s.Empty(s.roster(camp.ID))
	s.NotContains(s.actions(), string(audit.EventCampDonorFulfilled))
}

func (s *CampSuite) TestFulfillErrors() {
	camp := s.createCamp()
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))

	s.Run("zero units", func() {
		err := s.service.Fulfill(s.ctx, s.bankID, camp.ID, s.userID, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("units past cap", func() {
		err := s.service.Fulfill(s.ctx, s.bankID, camp.ID, s.userID, id.MaxUnits+1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
	s.Run("unknown camp", func() {
		err := s.service.Fulfill(s.ctx, s.bankID, id.NewCampID(), s.userID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
	s.Run("another bank", func() {
		err := s.service.Fulfill(s.ctx, id.NewBankID(), camp.ID, s.userID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Equal(models.DonorEnrolled, s.roster(camp.ID)[0].Status)
}

func (s *CampSuite) TestPublicListingRedactsRoster() {
	camp := s.createCamp()
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))

	list, err := s.service.ListByLocation(s.ctx, "kerala", "ernakulam")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(camp.ID, list[0].ID)
	s.Require().NotNil(list[0].Bank)
	s.Equal("Lifeline", list[0].Bank.Name)

	_, err = s.service.ListByLocation(s.ctx, "Kerala", "")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *CampSuite) TestDateListing() {
	camp := s.createCamp()
	_, err := s.service.CreateCamp(s.ctx, s.bankID, s.input(time.Date(2026, 5, 15, 9, 0, 0, 0, time.UTC)))
	s.Require().NoError(err)

	list, err := s.service.ListByLocationAndDate(s.ctx, "Kerala", "Ernakulam", "2026-05-14")
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(camp.ID, list[0].ID)
	s.Equal("Lifeline", list[0].BankName)

	list, err = s.service.ListByLocationAndDate(s.ctx, "Kerala", "Ernakulam", "not-a-date")
	s.Require().NoError(err)
	s.NotNil(list)
	s.Empty(list)
}

func (s *CampSuite) TestBankListingBatchesProfiles() {
	camp := s.createCamp()
	for i := 0; i < 2*profileBatchSize+5; i++ {
		s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, id.NewUserID()))
	}
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))
	s.directory.userCalls = 0

	donors := s.roster(camp.ID)
	s.Len(donors, 2*profileBatchSize+6)
	s.Equal(3, s.directory.userCalls)
	s.NotNil(donors[len(donors)-1].User)
	s.Nil(donors[0].User)
}

func (s *CampSuite) TestBankListingSurfacesDirectoryFailure() {
	camp := s.createCamp()
	s.Require().NoError(s.service.Enroll(s.ctx, camp.ID, s.userID))
	s.directory.err = errors.New("directory down")

	_, err := s.service.ListByBank(s.ctx, s.bankID)
	s.Error(err)
}

type failingEmitter struct{}

func (failingEmitter) Emit(context.Context, audit.Event) error {
	return errors.New("sink unavailable")
}

func (s *CampSuite) TestAuditFailureDoesNotFailEnroll() {
	svc := New(store.NewInMemory(), s.directory, WithAuditor(failingEmitter{}))
	camp, err := svc.CreateCamp(s.ctx, s.bankID, s.input(s.now))
	s.Require().NoError(err)
	s.NoError(svc.Enroll(s.ctx, camp.ID, s.userID))
}
