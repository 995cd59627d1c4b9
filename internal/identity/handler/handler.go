package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"redhope/internal/identity/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/httputil"
	authmw "redhope/pkg/platform/middleware/auth"
	"redhope/pkg/requestcontext"
)

// Service defines the account operations exposed over HTTP.
type Service interface {
	RegisterUser(ctx context.Context, in models.RegisterUserInput) (*models.User, error)
	RegisterBank(ctx context.Context, in models.RegisterBankInput) (*models.Bank, error)
	Login(ctx context.Context, role id.Role, email, password string) (*models.Session, error)
	Logout(ctx context.Context, principal requestcontext.AuthPrincipal, jti string) error
	GetUser(ctx context.Context, userID id.UserID) (*models.UserProfile, error)
	UpdateUser(ctx context.Context, userID id.UserID, update models.UserUpdate) (*models.UserProfile, error)
	GetBank(ctx context.Context, bankID id.BankID) (*models.BankProfile, error)
	UpdateBank(ctx context.Context, bankID id.BankID, update models.BankUpdate) (*models.BankProfile, error)
	FindBanks(ctx context.Context, state, district string) ([]models.BankProfile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register/user", h.HandleRegisterUser)
	r.Post("/auth/register/bank", h.HandleRegisterBank)
	r.Post("/auth/login", h.HandleLogin)
	r.Get("/bank/all/{state}/{district}", h.HandleFindBanks)
}

// Register mounts endpoints that expect RequireAuth upstream.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.With(authmw.RequireRole(id.RoleUser)).Get("/user", h.HandleGetUser)
	r.With(authmw.RequireRole(id.RoleUser)).Put("/user", h.HandleUpdateUser)
	r.With(authmw.RequireRole(id.RoleBank)).Get("/bank", h.HandleGetBank)
	r.With(authmw.RequireRole(id.RoleBank)).Put("/bank", h.HandleUpdateBank)
}

type registeredResponse struct {
	ID string `json:"id"`
}

func (h *Handler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	user, err := h.service.RegisterUser(ctx, req.ToInput())
	if err != nil {
		h.logFailure(ctx, "user registration failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registeredResponse{ID: user.ID.String()})
}

func (h *Handler) HandleRegisterBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterBankRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	bank, err := h.service.RegisterBank(ctx, req.ToInput())
	if err != nil {
		h.logFailure(ctx, "bank registration failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, registeredResponse{ID: bank.ID.String()})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	session, err := h.service.Login(ctx, req.parsedRole, req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, session)
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	principal, ok := requestcontext.Principal(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	if err := h.service.Logout(ctx, principal, requestcontext.TokenID(ctx)); err != nil {
		h.logFailure(ctx, "logout failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.service.GetUser(ctx, requestcontext.UserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	profile, err := h.service.UpdateUser(ctx, requestcontext.UserID(ctx), req.update)
	if err != nil {
		h.logFailure(ctx, "user update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleGetBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	profile, err := h.service.GetBank(ctx, requestcontext.BankID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleUpdateBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateBankRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	profile, err := h.service.UpdateBank(ctx, requestcontext.BankID(ctx), req.update)
	if err != nil {
		h.logFailure(ctx, "bank update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) HandleFindBanks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	banks, err := h.service.FindBanks(ctx, chi.URLParam(r, "state"), chi.URLParam(r, "district"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, banks)
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	if dErrors.IsServerSide(dErrors.CodeOf(err)) {
		h.logger.ErrorContext(ctx, msg,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
}
