//go:build integration

package store_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	identitymodels "redhope/internal/identity/models"
	identitystore "redhope/internal/identity/store"
	"redhope/internal/records/models"
	"redhope/internal/records/store"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/sentinel"
	"redhope/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	accounts *identitystore.PostgresStore
	userID   id.UserID
	bankID   id.BankID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.Pool)
	s.accounts = identitystore.NewPostgres(s.postgres.Pool)
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "camps", "donations", "requests", "users", "blood_banks"))

	user := &identitymodels.User{
		ID: id.NewUserID(), Name: "Donor", Email: "donor@example.com", PasswordHash: "hash",
		BloodGroup: id.BloodGroupAPos, CreatedAt: time.Now().UTC(),
	}
	bank := &identitymodels.Bank{
		ID: id.NewBankID(), Name: "Lifeline", Email: "bank@example.com", PasswordHash: "hash",
		CreatedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.accounts.CreateUser(ctx, user))
	s.Require().NoError(s.accounts.CreateBank(ctx, bank))
	s.userID, s.bankID = user.ID, bank.ID
}

func (s *PostgresStoreSuite) newRecord(kind models.Kind, bankID id.BankID) *models.Record {
	return &models.Record{
		ID:         id.NewRecordID(),
		Kind:       kind,
		UserID:     s.userID,
		BankID:     bankID,
		BloodGroup: id.BloodGroupAPos,
		Units:      1,
		Urgent:     kind == models.KindRequest,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresStoreSuite) linkCount(column string) int {
	var n int
	err := s.postgres.Pool.QueryRow(context.Background(),
		`SELECT cardinality(`+column+`) FROM blood_banks WHERE id = $1`, s.bankID.String()).Scan(&n)
	s.Require().NoError(err)
	return n
}

func (s *PostgresStoreSuite) TestCreateLinksExactlyOnce() {
	ctx := context.Background()
	rec := s.newRecord(models.KindRequest, s.bankID)
	s.Require().NoError(s.store.Create(ctx, rec))

	s.Equal(1, s.linkCount("request_ids"))
	s.Equal(0, s.linkCount("donation_ids"))

	list, err := s.store.ListByBank(ctx, models.KindRequest, s.bankID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(rec.ID, list[0].ID)
	s.True(list[0].Urgent)
	s.True(rec.CreatedAt.Equal(list[0].CreatedAt))
}

func (s *PostgresStoreSuite) TestCreateForUnknownBankWritesNothing() {
	ctx := context.Background()
	err := s.store.Create(ctx, s.newRecord(models.KindDonation, id.NewBankID()))
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(err, models.ErrUnknownBank)

	list, err := s.store.ListByUser(ctx, models.KindDonation, s.userID)
	s.Require().NoError(err)
	s.Empty(list)
}

func (s *PostgresStoreSuite) TestCreateForUnknownUserNamesTheUser() {
	ctx := context.Background()
	rec := s.newRecord(models.KindRequest, s.bankID)
	rec.UserID = id.NewUserID()

	err := s.store.Create(ctx, rec)
	s.ErrorIs(err, models.ErrUnknownUser)
	s.Equal(0, s.linkCount("request_ids"))
}

func (s *PostgresStoreSuite) TestUpdateStatusAcceptsWideIntegers() {
	ctx := context.Background()
	rec := s.newRecord(models.KindDonation, s.bankID)
	s.Require().NoError(s.store.Create(ctx, rec))

	const wide = 1 << 40
	_, err := s.store.UpdateStatus(ctx, models.KindDonation, s.bankID, rec.ID, wide)
	s.Require().NoError(err)

	prior, err := s.store.UpdateStatus(ctx, models.KindDonation, s.bankID, rec.ID, math.MinInt64)
	s.Require().NoError(err)
	s.Equal(wide, prior)

	list, err := s.store.ListByBank(ctx, models.KindDonation, s.bankID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(math.MinInt64, list[0].Status)
}

func (s *PostgresStoreSuite) TestUpdateStatusReturnsPrior() {
	ctx := context.Background()
	rec := s.newRecord(models.KindDonation, s.bankID)
	s.Require().NoError(s.store.Create(ctx, rec))

	prior, err := s.store.UpdateStatus(ctx, models.KindDonation, s.bankID, rec.ID, 1)
	s.Require().NoError(err)
	s.Equal(0, prior)

	prior, err = s.store.UpdateStatus(ctx, models.KindDonation, s.bankID, rec.ID, 42)
	s.Require().NoError(err)
	s.Equal(1, prior)

	_, err = s.store.UpdateStatus(ctx, models.KindDonation, s.bankID, id.NewRecordID(), 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.UpdateStatus(ctx, models.KindDonation, id.NewBankID(), rec.ID, 1)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentCreatesKeepEveryLink() {
	ctx := context.Background()
	const n = 30
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.NoError(s.store.Create(ctx, s.newRecord(models.KindDonation, s.bankID)))
		}()
	}
	wg.Wait()

	s.Equal(n, s.linkCount("donation_ids"))
	list, err := s.store.ListByBank(ctx, models.KindDonation, s.bankID)
	s.Require().NoError(err)
	s.Len(list, n)
}
