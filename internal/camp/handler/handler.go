package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"redhope/internal/camp/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/httputil"
	authmw "redhope/pkg/platform/middleware/auth"
	"redhope/pkg/requestcontext"
)

type Service interface {
	CreateCamp(ctx context.Context, bankID id.BankID, in models.CampInput) (*models.Camp, error)
	Enroll(ctx context.Context, campID id.CampID, userID id.UserID) error
	Fulfill(ctx context.Context, bankID id.BankID, campID id.CampID, userID id.UserID, units int) error
	ListByLocation(ctx context.Context, state, district string) ([]models.WithBank, error)
	ListByLocationAndDate(ctx context.Context, state, district, day string) ([]models.WithBankName, error)
	ListByBank(ctx context.Context, bankID id.BankID) ([]models.WithRoster, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the dated camp lookup.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/camps/all/{state}/{district}/{date}", h.HandleListByDate)
}

// Register mounts endpoints that expect RequireAuth upstream.
func (h *Handler) Register(r chi.Router) {
	r.Get("/camps/{state}/{district}", h.HandleListByLocation)
	r.With(authmw.RequireRole(id.RoleUser)).Put("/camps/{campID}", h.HandleEnroll)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(id.RoleBank))
		r.Post("/camps", h.HandleCreate)
		r.Get("/camps", h.HandleListByBank)
		r.Put("/camps/{campID}/{userID}", h.HandleFulfill)
	})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateCampRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	camp, err := h.service.CreateCamp(ctx, requestcontext.BankID(ctx), req.ToInput())
	if err != nil {
		h.logFailure(ctx, "camp creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "camp created",
		"request_id", requestID,
		"camp_id", camp.ID.String(),
		"bank_id", camp.BankID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, camp.Summary())
}

func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	campID, err := id.ParseCampID(chi.URLParam(r, "campID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Enroll(ctx, campID, requestcontext.UserID(ctx)); err != nil {
		h.logFailure(ctx, "camp enrollment failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	campID, err := id.ParseCampID(chi.URLParam(r, "campID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "userID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[FulfillRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.Fulfill(ctx, requestcontext.BankID(ctx), campID, userID, req.Units); err != nil {
		h.logFailure(ctx, "camp fulfillment failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleListByLocation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	camps, err := h.service.ListByLocation(ctx, chi.URLParam(r, "state"), chi.URLParam(r, "district"))
	if err != nil {
		h.logFailure(ctx, "camp listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, camps)
}

func (h *Handler) HandleListByDate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	camps, err := h.service.ListByLocationAndDate(ctx,
		chi.URLParam(r, "state"), chi.URLParam(r, "district"), chi.URLParam(r, "date"))
	if err != nil {
		h.logFailure(ctx, "camp listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, camps)
}

func (h *Handler) HandleListByBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	camps, err := h.service.ListByBank(ctx, requestcontext.BankID(ctx))
	if err != nil {
		h.logFailure(ctx, "camp listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, camps)
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
