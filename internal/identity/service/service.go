// Package service implements account registration, login and profile
// management for users and blood banks.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"redhope/internal/identity/metrics"
	"redhope/internal/identity/models"
	"redhope/internal/identity/secrets"
	"redhope/internal/identity/token"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/email"
	"redhope/pkg/platform/audit"
	"redhope/pkg/platform/sentinel"
	"redhope/pkg/requestcontext"
)

var tracer = otel.Tracer("redhope/internal/identity")

const defaultTokenTTL = 24 * time.Hour

type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	CreateBank(ctx context.Context, bank *models.Bank) error
	FindUserByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindBankByID(ctx context.Context, bankID id.BankID) (*models.Bank, error)
	FindBankByEmail(ctx context.Context, email string) (*models.Bank, error)
	UpdateUser(ctx context.Context, userID id.UserID, update models.UserUpdate) (*models.User, error)
	UpdateBank(ctx context.Context, bankID id.BankID, update models.BankUpdate) (*models.Bank, error)
	FindBanks(ctx context.Context, state, district string) ([]models.BankProfile, error)
	UserProfiles(ctx context.Context, userIDs []id.UserID) (map[id.UserID]models.UserProfile, error)
	BankProfiles(ctx context.Context, bankIDs []id.BankID) (map[id.BankID]models.BankProfile, error)
}

type TokenIssuer interface {
	GenerateAccessToken(role id.Role, subject string, expiresIn time.Duration) (*token.Issued, error)
}

type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
}

// StockProvisioner creates the zeroed stock map of a new bank.
type StockProvisioner interface {
	Provision(ctx context.Context, bankID id.BankID) error
}

// TxRunner runs fn in a transaction carried by its context.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Service orchestrates account flows.
type Service struct {
	store       Store
	tokens      TokenIssuer
	revocations RevocationList
	provisioner StockProvisioner
	runInTx     TxRunner
	tokenTTL    time.Duration
	logger      *slog.Logger
	auditor     audit.Emitter
	metrics     *metrics.Metrics
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

func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithStockProvisioner provisions stock for every registered bank in the same
// unit of work as the account insert.
func WithStockProvisioner(p StockProvisioner) Option {
	return func(s *Service) {
		s.provisioner = p
	}
}

func WithTxRunner(run TxRunner) Option {
	return func(s *Service) {
		if run != nil {
			s.runInTx = run
		}
	}
}

func New(store Store, tokens TokenIssuer, revocations RevocationList, opts ...Option) *Service {
	s := &Service{
		store:       store,
		tokens:      tokens,
		revocations: revocations,
		tokenTTL:    defaultTokenTTL,
		logger:      slog.Default(),
		runInTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) RegisterUser(ctx context.Context, in models.RegisterUserInput) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "identity.RegisterUser")
	defer span.End()

	addr, err := email.Normalize(in.Email)
	if err != nil {
		return nil, recordErr(span, err)
	}
	if !in.BloodGroup.IsValid() {
		return nil, recordErr(span, dErrors.New(dErrors.CodeInvalidInput, "invalid blood group"))
	}
	hash, err := secrets.Hash(in.Password)
	if err != nil {
		return nil, recordErr(span, err)
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Name:         strings.TrimSpace(in.Name),
		Email:        addr,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		BloodGroup:   in.BloodGroup,
		Location:     in.Location,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, recordErr(span, dErrors.New(dErrors.CodeConflict, "email is already registered"))
		}
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to create user"))
	}
	span.SetAttributes(attribute.String("user_id", user.ID.String()))

	s.metrics.IncRegistration(string(id.RoleUser))
	s.emit(ctx, audit.Event{Action: string(audit.EventUserRegistered), UserID: user.ID})
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return user, nil
}

// RegisterBank creates the account and its zeroed stock. Either both are
// persisted or neither is.
func (s *Service) RegisterBank(ctx context.Context, in models.RegisterBankInput) (*models.Bank, error) {
	ctx, span := tracer.Start(ctx, "identity.RegisterBank")
	defer span.End()

	addr, err := email.Normalize(in.Email)
	if err != nil {
		return nil, recordErr(span, err)
	}
	hash, err := secrets.Hash(in.Password)
	if err != nil {
		return nil, recordErr(span, err)
	}

	bank := &models.Bank{
		ID:           id.NewBankID(),
		Name:         strings.TrimSpace(in.Name),
		Hospital:     strings.TrimSpace(in.Hospital),
		Email:        addr,
		PasswordHash: hash,
		Phone:        strings.TrimSpace(in.Phone),
		Location:     in.Location,
		CreatedAt:    requestcontext.Now(ctx),
	}
	err = s.runInTx(ctx, func(ctx context.Context) error {
		if err := s.store.CreateBank(ctx, bank); err != nil {
			return err
		}
		if s.provisioner != nil {
			return s.provisioner.Provision(ctx, bank.ID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, recordErr(span, dErrors.New(dErrors.CodeConflict, "email is already registered"))
		}
		if _, ok := dErrors.As(err); ok {
			return nil, recordErr(span, err)
		}
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to create bank"))
	}
	span.SetAttributes(attribute.String("bank_id", bank.ID.String()))

	s.metrics.IncRegistration(string(id.RoleBank))
	s.emit(ctx, audit.Event{Action: string(audit.EventBankRegistered), BankID: bank.ID})
	s.logger.InfoContext(ctx, "bank registered",
		"bank_id", bank.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return bank, nil
}

// Login verifies credentials for the account table selected by role and
// issues an access token. Unknown email and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, role id.Role, rawEmail, password string) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "identity.Login", trace.WithAttributes(attribute.String("role", string(role))))
	defer span.End()

	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	addr, err := email.Normalize(rawEmail)
	if err != nil {
		s.metrics.IncLogin(string(role), "failure")
		return nil, recordErr(span, invalid)
	}

	var subject, hash string
	switch role {
	case id.RoleUser:
		u, findErr := s.store.FindUserByEmail(ctx, addr)
		if findErr == nil {
			subject, hash = u.ID.String(), u.PasswordHash
		}
		err = findErr
	case id.RoleBank:
		b, findErr := s.store.FindBankByEmail(ctx, addr)
		if findErr == nil {
			subject, hash = b.ID.String(), b.PasswordHash
		}
		err = findErr
	default:
		return nil, recordErr(span, dErrors.New(dErrors.CodeInvalidInput, "role must be user or bank"))
	}
	if err != nil {
		s.metrics.IncLogin(string(role), "failure")
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, recordErr(span, invalid)
		}
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to load account"))
	}
	if err := secrets.Verify(password, hash); err != nil {
		s.metrics.IncLogin(string(role), "failure")
		s.logger.WarnContext(ctx, "login rejected",
			"role", string(role),
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, recordErr(span, err)
	}

	issued, err := s.tokens.GenerateAccessToken(role, subject, s.tokenTTL)
	if err != nil {
		return nil, recordErr(span, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"))
	}
	s.metrics.IncLogin(string(role), "success")
	return &models.Session{
		AccessToken: issued.Token,
		TokenType:   "Bearer",
		ExpiresAt:   issued.ExpiresAt,
		Role:        role,
		SubjectID:   subject,
	}, nil
}

// Logout revokes jti for the full token lifetime, which bounds its remaining validity.
func (s *Service) Logout(ctx context.Context, principal requestcontext.AuthPrincipal, jti string) error {
	ctx, span := tracer.Start(ctx, "identity.Logout")
	defer span.End()

	if jti == "" {
		return recordErr(span, dErrors.New(dErrors.CodeUnauthorized, "token has no id"))
	}
	if err := s.revocations.RevokeToken(ctx, jti, s.tokenTTL); err != nil {
		return recordErr(span, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to revoke token"))
	}
	s.metrics.IncLogout()
	s.emit(ctx, audit.Event{
		Action: string(audit.EventLoggedOut),
		UserID: principal.UserID,
		BankID: principal.BankID,
	})
	return nil
}

func (s *Service) GetUser(ctx context.Context, userID id.UserID) (*models.UserProfile, error) {
	u, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, translate(err, "user not found", "failed to load user")
	}
	p := u.Profile()
	return &p, nil
}

func (s *Service) UpdateUser(ctx context.Context, userID id.UserID, update models.UserUpdate) (*models.UserProfile, error) {
	if update.BloodGroup != nil && !update.BloodGroup.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "invalid blood group")
	}
	u, err := s.store.UpdateUser(ctx, userID, update)
	if err != nil {
		return nil, translate(err, "user not found", "failed to update user")
	}
	p := u.Profile()
	return &p, nil
}

func (s *Service) GetBank(ctx context.Context, bankID id.BankID) (*models.BankProfile, error) {
	b, err := s.store.FindBankByID(ctx, bankID)
	if err != nil {
		return nil, translate(err, "bank not found", "failed to load bank")
	}
	p := b.Profile()
	return &p, nil
}

func (s *Service) UpdateBank(ctx context.Context, bankID id.BankID, update models.BankUpdate) (*models.BankProfile, error) {
	b, err := s.store.UpdateBank(ctx, bankID, update)
	if err != nil {
		return nil, translate(err, "bank not found", "failed to update bank")
	}
	p := b.Profile()
	return &p, nil
}

// FindBanks is the public bank directory.
func (s *Service) FindBanks(ctx context.Context, state, district string) ([]models.BankProfile, error) {
	state, district = strings.TrimSpace(state), strings.TrimSpace(district)
	if state == "" || district == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "state and district are required")
	}
	banks, err := s.store.FindBanks(ctx, state, district)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to list banks")
	}
	return banks, nil
}

// UserProfiles resolves public user profiles for the records and camp contexts.
func (s *Service) UserProfiles(ctx context.Context, userIDs []id.UserID) (map[id.UserID]models.UserProfile, error) {
	profiles, err := s.store.UserProfiles(ctx, userIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to load user profiles")
	}
	return profiles, nil
}

func (s *Service) BankProfiles(ctx context.Context, bankIDs []id.BankID) (map[id.BankID]models.BankProfile, error) {
	profiles, err := s.store.BankProfiles(ctx, bankIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeStorageFailure, "failed to load bank profiles")
	}
	return profiles, nil
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

func translate(err error, notFoundMsg, failureMsg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	}
	return dErrors.Wrap(err, dErrors.CodeStorageFailure, failureMsg)
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
