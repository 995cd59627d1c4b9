// Package service is the stock ledger: per-bank blood group counts that never
// go negative.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redhope/internal/inventory/metrics"
	"redhope/internal/inventory/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/audit"
	"redhope/pkg/platform/sentinel"
	"redhope/pkg/requestcontext"
)

var tracer = otel.Tracer("redhope/internal/inventory")

// Store applies adjustments atomically. Adjust must reject a delta that would
// take the count below zero without mutating anything.
type Store interface {
	Provision(ctx context.Context, bankID id.BankID) error
	Adjust(ctx context.Context, bankID id.BankID, group id.BloodGroup, delta int) (models.Stock, error)
	Read(ctx context.Context, bankID id.BankID) (models.Stock, error)
}

type Service struct {
	store   Store
	logger  *slog.Logger
	auditor audit.Emitter
	metrics *metrics.Metrics
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

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Provision initializes all groups to 0 for a new bank. Calling it again is a no-op.
func (s *Service) Provision(ctx context.Context, bankID id.BankID) error {
	if bankID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "bank id is required")
	}
	if err := s.store.Provision(ctx, bankID); err != nil {
		return translate(err, "failed to provision stock")
	}
	return nil
}

func (s *Service) IncreaseStock(ctx context.Context, bankID id.BankID, group id.BloodGroup, units int) (models.Stock, error) {
	return s.adjust(ctx, models.DirectionIncrease, bankID, group, units)
}

// DecreaseStock fails with insufficient_stock when units exceed the current
// count; the count is left as it was.
func (s *Service) DecreaseStock(ctx context.Context, bankID id.BankID, group id.BloodGroup, units int) (models.Stock, error) {
	return s.adjust(ctx, models.DirectionDecrease, bankID, group, units)
}

func (s *Service) ReadStock(ctx context.Context, bankID id.BankID) (models.Stock, error) {
	ctx, span := tracer.Start(ctx, "inventory.ReadStock", trace.WithAttributes(
		attribute.String("bank_id", bankID.String()),
	))
	defer span.End()

	stock, err := s.store.Read(ctx, bankID)
	if err != nil {
		return nil, recordErr(span, translate(err, "failed to read stock"))
	}
	return stock, nil
}

func (s *Service) adjust(ctx context.Context, dir models.Direction, bankID id.BankID, group id.BloodGroup, units int) (models.Stock, error) {
	start := time.Now()
	spanName := "inventory.IncreaseStock"
	if dir == models.DirectionDecrease {
		spanName = "inventory.DecreaseStock"
	}
	ctx, span := tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("bank_id", bankID.String()),
		attribute.String("blood_group", string(group)),
		attribute.Int("units", units),
	))
	defer span.End()

	if err := validate(bankID, group, units); err != nil {
		return nil, recordErr(span, err)
	}

	delta := units
	if dir == models.DirectionDecrease {
		delta = -units
	}
	stock, err := s.store.Adjust(ctx, bankID, group, delta)
	if err != nil {
		s.metrics.ObserveAdjustment(string(dir), resultLabel(err), start)
		return nil, recordErr(span, translate(err, "failed to adjust stock"))
	}
	s.metrics.ObserveAdjustment(string(dir), "ok", start)
	s.metrics.AddUnits(string(dir), string(group), units)

	action := audit.EventStockIncreased
	if dir == models.DirectionDecrease {
		action = audit.EventStockDecreased
	}
	s.emit(ctx, audit.Event{
		Action: string(action),
		BankID: bankID,
		Detail: map[string]string{
			"blood_group": string(group),
			"units":       strconv.Itoa(units),
			"count":       strconv.Itoa(stock[group]),
		},
	})
	return stock, nil
}

func validate(bankID id.BankID, group id.BloodGroup, units int) error {
	if bankID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "bank id is required")
	}
	if !group.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid blood group")
	}
	return id.ValidateUnits(units)
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

func translate(err error, failureMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "bank not found")
	case errors.Is(err, sentinel.ErrInsufficient):
		return dErrors.New(dErrors.CodeInsufficientStock, "insufficient stock")
	case errors.Is(err, sentinel.ErrOutOfRange):
		return dErrors.New(dErrors.CodeInvalidInput, "stock count would exceed "+strconv.Itoa(id.MaxUnits))
	default:
		return dErrors.Wrap(err, dErrors.CodeStorageFailure, failureMsg)
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return "not_found"
	case errors.Is(err, sentinel.ErrInsufficient):
		return "insufficient"
	case errors.Is(err, sentinel.ErrOutOfRange):
		return "out_of_range"
	default:
		return "error"
	}
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
