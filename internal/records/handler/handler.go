package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"redhope/internal/records/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/httputil"
	authmw "redhope/pkg/platform/middleware/auth"
	"redhope/pkg/requestcontext"
)

type Service interface {
	CreateDonation(ctx context.Context, userID id.UserID, bankID id.BankID, group id.BloodGroup, units int) (*models.Record, error)
	CreateRequest(ctx context.Context, userID id.UserID, bankID id.BankID, group id.BloodGroup, units int, urgent bool) (*models.Record, error)
	UpdateStatus(ctx context.Context, kind models.Kind, bankID id.BankID, recordID id.RecordID, status int) (int, error)
	ListByBank(ctx context.Context, kind models.Kind, bankID id.BankID) ([]models.WithUser, error)
	ListByUser(ctx context.Context, kind models.Kind, userID id.UserID) ([]models.WithBank, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts endpoints that expect RequireAuth upstream.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(id.RoleUser))
		r.Post("/user/donate", h.HandleCreate(models.KindDonation))
		r.Post("/user/request", h.HandleCreate(models.KindRequest))
		r.Get("/user/donations", h.HandleListByUser(models.KindDonation))
		r.Get("/user/requests", h.HandleListByUser(models.KindRequest))
	})
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireRole(id.RoleBank))
		r.Put("/bank/donations", h.HandleUpdateStatus(models.KindDonation))
		r.Put("/bank/requests", h.HandleUpdateStatus(models.KindRequest))
		r.Get("/bank/donations", h.HandleListByBank(models.KindDonation))
		r.Get("/bank/requests", h.HandleListByBank(models.KindRequest))
	})
}

func (h *Handler) HandleCreate(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)
		userID := requestcontext.UserID(ctx)

		req, ok := httputil.DecodeAndPrepare[CreateRecordRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}

		var (
			rec *models.Record
			err error
		)
		if kind == models.KindRequest {
			rec, err = h.service.CreateRequest(ctx, userID, req.parsedBankID, req.parsedBloodGroup, req.Units, req.Urgent)
		} else {
			rec, err = h.service.CreateDonation(ctx, userID, req.parsedBankID, req.parsedBloodGroup, req.Units)
		}
		if err != nil {
			h.logFailure(ctx, "record creation failed", err)
			httputil.WriteError(w, err)
			return
		}
		h.logger.InfoContext(ctx, "record created",
			"request_id", requestID,
			"kind", string(kind),
			"record_id", rec.ID.String(),
			"bank_id", rec.BankID.String(),
		)
		httputil.WriteJSON(w, http.StatusCreated, rec)
	}
}

type statusResponse struct {
	ID          string `json:"id"`
	Status      int    `json:"status"`
	PriorStatus int    `json:"prior_status"`
}

func (h *Handler) HandleUpdateStatus(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		req, ok := httputil.DecodeAndPrepare[UpdateStatusRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		prior, err := h.service.UpdateStatus(ctx, kind, requestcontext.BankID(ctx), req.parsedID, *req.Status)
		if err != nil {
			h.logFailure(ctx, "status update failed", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, statusResponse{
			ID:          req.parsedID.String(),
			Status:      *req.Status,
			PriorStatus: prior,
		})
	}
}

func (h *Handler) HandleListByBank(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := h.service.ListByBank(ctx, kind, requestcontext.BankID(ctx))
		if err != nil {
			h.logFailure(ctx, "record listing failed", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, list)
	}
}

func (h *Handler) HandleListByUser(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		list, err := h.service.ListByUser(ctx, kind, requestcontext.UserID(ctx))
		if err != nil {
			h.logFailure(ctx, "record listing failed", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, list)
	}
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
