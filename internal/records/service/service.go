// Package service manages donation and request records and their links to
// the owning bank.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	identity "redhope/internal/identity/models"
	"redhope/internal/records/metrics"
	"redhope/internal/records/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/audit"
	"redhope/pkg/platform/collections"
	"redhope/pkg/platform/sentinel"
	"redhope/pkg/requestcontext"
)

var tracer = otel.Tracer("redhope/internal/records")

// Store persists a record and its bank back-reference as one unit.
type Store interface {
	Create(ctx context.Context, rec *models.Record) error
	UpdateStatus(ctx context.Context, kind models.Kind, bankID id.BankID, recordID id.RecordID, status int) (int, error)
	ListByBank(ctx context.Context, kind models.Kind, bankID id.BankID) ([]models.Record, error)
	ListByUser(ctx context.Context, kind models.Kind, userID id.UserID) ([]models.Record, error)
}

// Directory resolves public profiles of the counterpart accounts.
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

func (s *Service) CreateDonation(ctx context.Context, userID id.UserID, bankID id.BankID, group id.BloodGroup, units int) (*models.Record, error) {
	return s.create(ctx, models.KindDonation, models.NewRecordInput{
		UserID: userID, BankID: bankID, BloodGroup: group, Units: units,
	})
}

func (s *Service) CreateRequest(ctx context.Context, userID id.UserID, bankID id.BankID, group id.BloodGroup, units int, urgent bool) (*models.Record, error) {
	return s.create(ctx, models.KindRequest, models.NewRecordInput{
		UserID: userID, BankID: bankID, BloodGroup: group, Units: units, Urgent: urgent,
	})
}

// create stamps the record as pending at request time and stores it together
// with the bank's back-reference.
func (s *Service) create(ctx context.Context, kind models.Kind, in models.NewRecordInput) (*models.Record, error) {
	ctx, span := tracer.Start(ctx, "records.Create", trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("bank_id", in.BankID.String()),
		attribute.String("user_id", in.UserID.String()),
	))
	defer span.End()

	if err := validateInput(in); err != nil {
		return nil, recordErr(span, err)
	}
	if err := s.requireBank(ctx, in.BankID); err != nil {
		return nil, recordErr(span, err)
	}

	rec := &models.Record{
		ID:         id.NewRecordID(),
		Kind:       kind,
		UserID:     in.UserID,
		BankID:     in.BankID,
		BloodGroup: in.BloodGroup,
		Units:      in.Units,
		Urgent:     kind == models.KindRequest && in.Urgent,
		Status:     models.StatusPending,
		CreatedAt:  requestcontext.Now(ctx),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		switch {
		case errors.Is(err, models.ErrUnknownUser):
			return nil, recordErr(span, dErrors.New(dErrors.CodeNotFound, "user not found"))
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, recordErr(span, dErrors.New(dErrors.CodeNotFound, "bank not found"))
		}
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to create "+string(kind)))
	}

	s.metrics.IncCreated(string(kind))
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventRecordCreated),
		BankID:  rec.BankID,
		UserID:  rec.UserID,
		Subject: rec.ID.String(),
		Detail: map[string]string{
			"kind":        string(kind),
			"blood_group": string(rec.BloodGroup),
			"units":       strconv.Itoa(rec.Units),
		},
	})
	return rec, nil
}

// UpdateStatus sets status unconditionally and returns the value it replaced.
func (s *Service) UpdateStatus(ctx context.Context, kind models.Kind, bankID id.BankID, recordID id.RecordID, status int) (int, error) {
	ctx, span := tracer.Start(ctx, "records.UpdateStatus", trace.WithAttributes(
		attribute.String("kind", string(kind)),
		attribute.String("bank_id", bankID.String()),
		attribute.String("record_id", recordID.String()),
		attribute.Int("status", status),
	))
	defer span.End()

	if _, err := models.ParseKind(string(kind)); err != nil {
		return 0, recordErr(span, err)
	}
	if recordID.IsNil() {
		return 0, recordErr(span, dErrors.New(dErrors.CodeInvalidInput, "record id is required"))
	}
	prior, err := s.store.UpdateStatus(ctx, kind, bankID, recordID, status)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncStatusUpdate(string(kind), "not_found")
			return 0, recordErr(span, dErrors.New(dErrors.CodeNotFound, string(kind)+" not found"))
		}
		s.metrics.IncStatusUpdate(string(kind), "error")
		return 0, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to update status"))
	}

	s.metrics.IncStatusUpdate(string(kind), "ok")
	s.emit(ctx, audit.Event{
		Action:  string(audit.EventRecordStatusUpdated),
		BankID:  bankID,
		Subject: recordID.String(),
		Detail: map[string]string{
			"kind":   string(kind),
			"prior":  strconv.Itoa(prior),
			"status": strconv.Itoa(status),
		},
	})
	return prior, nil
}

// ListByBank returns the bank's records in back-reference order, each with
// the submitting user's public profile.
func (s *Service) ListByBank(ctx context.Context, kind models.Kind, bankID id.BankID) ([]models.WithUser, error) {
	ctx, span := tracer.Start(ctx, "records.ListByBank")
	defer span.End()

	recs, err := s.store.ListByBank(ctx, kind, bankID)
	if err != nil {
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to list records"))
	}
	userIDs := collections.UniqueBy(recs, func(r models.Record) id.UserID { return r.UserID })
	profiles, err := s.directory.UserProfiles(ctx, userIDs)
	if err != nil {
		return nil, recordErr(span, err)
	}

	out := make([]models.WithUser, 0, len(recs))
	for _, r := range recs {
		view := models.WithUser{Record: r}
		if p, ok := profiles[r.UserID]; ok {
			view.User = &p
		}
		out = append(out, view)
	}
	return out, nil
}

// ListByUser returns the user's records, each with the bank's public profile.
func (s *Service) ListByUser(ctx context.Context, kind models.Kind, userID id.UserID) ([]models.WithBank, error) {
	ctx, span := tracer.Start(ctx, "records.ListByUser")
	defer span.End()

	recs, err := s.store.ListByUser(ctx, kind, userID)
	if err != nil {
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to list records"))
	}
	bankIDs := collections.UniqueBy(recs, func(r models.Record) id.BankID { return r.BankID })
	profiles, err := s.directory.BankProfiles(ctx, bankIDs)
	if err != nil {
		return nil, recordErr(span, err)
	}

	out := make([]models.WithBank, 0, len(recs))
	for _, r := range recs {
		view := models.WithBank{Record: r}
		if p, ok := profiles[r.BankID]; ok {
			view.Bank = &p
		}
		out = append(out, view)
	}
	return out, nil
}

func (s *Service) requireBank(ctx context.Context, bankID id.BankID) error {
	profiles, err := s.directory.BankProfiles(ctx, []id.BankID{bankID})
	if err != nil {
		return err
	}
	if _, ok := profiles[bankID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "bank not found")
	}
	return nil
}

func validateInput(in models.NewRecordInput) error {
	if in.UserID.IsNil() || in.BankID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "user id and bank id are required")
	}
	if !in.BloodGroup.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid blood group")
	}
	return id.ValidateUnits(in.Units)
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
