// Package service runs camp scheduling and the per-camp donor roster:
// enroll once, fulfill once.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"redhope/internal/camp/metrics"
	"redhope/internal/camp/models"
	identity "redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/audit"
	"redhope/pkg/platform/collections"
	"redhope/pkg/platform/sentinel"
	"redhope/pkg/requestcontext"
)

var tracer = otel.Tracer("redhope/internal/camp")

const (
	profileBatchSize   = 100
	profileConcurrency = 4
)

type Store interface {
	Create(ctx context.Context, camp *models.Camp) error
	Enroll(ctx context.Context, campID id.CampID, userID id.UserID) (bool, error)
	Fulfill(ctx context.Context, bankID id.BankID, campID id.CampID, userID id.UserID, units int) (bool, error)
	ListByLocation(ctx context.Context, state, district string) ([]models.Camp, error)
	ListByLocationBetween(ctx context.Context, state, district string, from, to time.Time) ([]models.Camp, error)
	ListByBank(ctx context.Context, bankID id.BankID) ([]models.Camp, error)
}

// Directory resolves public profiles for banks and donors.
type Directory interface {
	UserProfiles(ctx context.Context, userIDs []id.UserID) (map[id.UserID]identity.UserProfile, error)
	BankProfiles(ctx context.Context, bankIDs []id.BankID) (map[id.BankID]identity.BankProfile, error)
}

type Service struct {
	store     Store
	directory Directory
	logger    *slog.Logger
	auditor   audit.Emitter
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditor(emitter audit.Emitter) Option {
	return func(s *Service) {
		s.auditor = emitter
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(store Store, directory Directory, opts ...Option) *Service {
	s := &Service{store: store, directory: directory, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCamp schedules a camp for bankID with an empty roster.
func (s *Service) CreateCamp(ctx context.Context, bankID id.BankID, in models.CampInput) (*models.Camp, error) {
	ctx, span := tracer.Start(ctx, "camp.CreateCamp", trace.WithAttributes(
		attribute.String("bank_id", bankID.String()),
	))
	defer span.End()

	if bankID.IsNil() {
		return nil, recordErr(span, dErrors.New(dErrors.CodeInvalidInput, "bank id is required"))
	}
	if err := in.Validate(); err != nil {
		return nil, recordErr(span, err)
	}
	banks, err := s.directory.BankProfiles(ctx, []id.BankID{bankID})
	if err != nil {
		return nil, recordErr(span, err)
	}
	if _, ok := banks[bankID]; !ok {
		return nil, recordErr(span, dErrors.New(dErrors.CodeNotFound, "bank not found"))
	}

	camp := &models.Camp{
		ID:        id.NewCampID(),
		BankID:    bankID,
		Name:      strings.TrimSpace(in.Name),
		Location:  in.Location,
		Date:      in.Date.UTC(),
		Donors:    []models.Donor{},
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, camp); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, recordErr(span, dErrors.New(dErrors.CodeNotFound, "bank not found"))
		}
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to create camp"))
	}

	s.metrics.IncCampCreated()
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventCampCreated),
		BankID:  bankID,
		Subject: camp.ID.String(),
		Detail: map[string]string{
			"date":     camp.Date.Format(models.DayLayout),
			"district": camp.Location.District,
		},
	})
	return camp, nil
}

// Enroll puts userID on the roster. Enrolling twice, in any state, is a
// silent no-op.
func (s *Service) Enroll(ctx context.Context, campID id.CampID, userID id.UserID) error {
	ctx, span := tracer.Start(ctx, "camp.Enroll", trace.WithAttributes(
		attribute.String("camp_id", campID.String()),
		attribute.String("user_id", userID.String()),
	))
	defer span.End()

	if campID.IsNil() || userID.IsNil() {
		return recordErr(span, dErrors.New(dErrors.CodeInvalidInput, "camp id and user id are required"))
	}
	added, err := s.store.Enroll(ctx, campID, userID)
	if err != nil {
		s.metrics.IncEnrollment("error")
		return recordErr(span, translate(err, "failed to enroll donor"))
	}
	span.SetAttributes(attribute.Bool("added", added))
	if !added {
		s.metrics.IncEnrollment("duplicate")
		return nil
	}

	s.metrics.IncEnrollment("added")
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventCampDonorEnrolled),
		UserID:  userID,
		Subject: campID.String(),
	})
	return nil
}

// Fulfill records units against an enrolled donor of the bank's camp. A
// donor who is absent or already fulfilled is left unchanged.
func (s *Service) Fulfill(ctx context.Context, bankID id.BankID, campID id.CampID, userID id.UserID, units int) error {
	ctx, span := tracer.Start(ctx, "camp.Fulfill", trace.WithAttributes(
		attribute.String("bank_id", bankID.String()),
		attribute.String("camp_id", campID.String()),
		attribute.String("user_id", userID.String()),
		attribute.Int("units", units),
	))
	defer span.End()

	if campID.IsNil() || userID.IsNil() {
		return recordErr(span, dErrors.New(dErrors.CodeInvalidInput, "camp id and user id are required"))
	}
	if err := id.ValidateUnits(units); err != nil {
		return recordErr(span, err)
	}
	changed, err := s.store.Fulfill(ctx, bankID, campID, userID, units)
	if err != nil {
		s.metrics.IncFulfillment("error", units)
		return recordErr(span, translate(err, "failed to fulfill donor"))
	}
	span.SetAttributes(attribute.Bool("changed", changed))
	if !changed {
		s.metrics.IncFulfillment("noop", units)
		return nil
	}

	s.metrics.IncFulfillment("fulfilled", units)
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventCampDonorFulfilled),
		BankID:  bankID,
		UserID:  userID,
		Subject: campID.String(),
		Detail:  map[string]string{"units": strconv.Itoa(units)},
	})
	return nil
}

// ListByLocation is the public listing: rosters withheld, owning bank
// expanded to its public profile.
func (s *Service) ListByLocation(ctx context.Context, state, district string) ([]models.WithBank, error) {
	ctx, span := tracer.Start(ctx, "camp.ListByLocation")
	defer span.End()

	if strings.TrimSpace(state) == "" || strings.TrimSpace(district) == "" {
		return nil, recordErr(span, dErrors.New(dErrors.CodeInvalidInput, "state and district are required"))
	}
	camps, err := s.store.ListByLocation(ctx, state, district)
	if err != nil {
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to list camps"))
	}
	banks, err := s.bankProfiles(ctx, camps)
	if err != nil {
		return nil, recordErr(span, err)
	}

	out := make([]models.WithBank, 0, len(camps))
	for i := range camps {
		view := models.WithBank{Summary: camps[i].Summary()}
		if p, ok := banks[camps[i].BankID]; ok {
			view.Bank = &p
		}
		out = append(out, view)
	}
	return out, nil
}

// ListByLocationAndDate returns the camps held on one calendar day. An
// unparseable day yields an empty list rather than an error.
func (s *Service) ListByLocationAndDate(ctx context.Context, state, district, day string) ([]models.WithBankName, error) {
	ctx, span := tracer.Start(ctx, "camp.ListByLocationAndDate", trace.WithAttributes(
		attribute.String("day", day),
	))
	defer span.End()

	out := make([]models.WithBankName, 0)
	from, to, ok := models.ParseDay(day)
	if !ok {
		return out, nil
	}
	camps, err := s.store.ListByLocationBetween(ctx, state, district, from, to)
	if err != nil {
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to list camps"))
	}
	banks, err := s.bankProfiles(ctx, camps)
	if err != nil {
		return nil, recordErr(span, err)
	}
	for i := range camps {
		out = append(out, models.WithBankName{
			Summary:  camps[i].Summary(),
			BankName: banks[camps[i].BankID].Name,
		})
	}
	return out, nil
}

// ListByBank returns the bank's camps with every donor expanded to the
// user's public profile.
func (s *Service) ListByBank(ctx context.Context, bankID id.BankID) ([]models.WithRoster, error) {
	ctx, span := tracer.Start(ctx, "camp.ListByBank", trace.WithAttributes(
		attribute.String("bank_id", bankID.String()),
	))
	defer span.End()

	camps, err := s.store.ListByBank(ctx, bankID)
	if err != nil {
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to list camps"))
	}
	var donors []models.Donor
	for _, c := range camps {
		donors = append(donors, c.Donors...)
	}
	userIDs := collections.UniqueBy(donors, func(d models.Donor) id.UserID { return d.UserID })
	users, err := s.userProfiles(ctx, userIDs)
	if err != nil {
		return nil, recordErr(span, err)
	}

	out := make([]models.WithRoster, 0, len(camps))
	for i := range camps {
		view := models.WithRoster{
			Summary: camps[i].Summary(),
			Donors:  make([]models.RosterEntry, 0, len(camps[i].Donors)),
		}
		for _, d := range camps[i].Donors {
			entry := models.RosterEntry{Donor: d}
			if p, ok := users[d.UserID]; ok {
				entry.User = &p
			}
			view.Donors = append(view.Donors, entry)
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) bankProfiles(ctx context.Context, camps []models.Camp) (map[id.BankID]identity.BankProfile, error) {
	bankIDs := collections.UniqueBy(camps, func(c models.Camp) id.BankID { return c.BankID })
	return fetchBatched(ctx, bankIDs, s.directory.BankProfiles)
}

func (s *Service) userProfiles(ctx context.Context, userIDs []id.UserID) (map[id.UserID]identity.UserProfile, error) {
	return fetchBatched(ctx, userIDs, s.directory.UserProfiles)
}

// fetchBatched splits ids into fixed-size batches and resolves them with
// bounded concurrency. The first failing batch cancels the rest.
func fetchBatched[K comparable, V any](ctx context.Context, ids []K, fetch func(context.Context, []K) (map[K]V, error)) (map[K]V, error) {
	out := make(map[K]V, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(profileConcurrency)
	for start := 0; start < len(ids); start += profileBatchSize {
		batch := ids[start:min(start+profileBatchSize, len(ids))]
		g.Go(func() error {
			found, err := fetch(gctx, batch)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for k, v := range found {
				out[k] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func translate(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "camp not found")
	case errors.Is(err, sentinel.ErrForbidden):
		return dErrors.New(dErrors.CodeForbidden, "camp belongs to another bank")
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageFailure, msg)
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
