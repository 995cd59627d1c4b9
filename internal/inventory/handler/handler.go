package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"redhope/internal/inventory/models"
	id "redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/httputil"
	authmw "redhope/pkg/platform/middleware/auth"
	"redhope/pkg/requestcontext"
)

type Service interface {
	IncreaseStock(ctx context.Context, bankID id.BankID, group id.BloodGroup, units int) (models.Stock, error)
	DecreaseStock(ctx context.Context, bankID id.BankID, group id.BloodGroup, units int) (models.Stock, error)
	ReadStock(ctx context.Context, bankID id.BankID) (models.Stock, error)
}

// Handler exposes the calling bank's stock. The bank id always comes from the
// authenticated principal, never from the body.
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
		r.Use(authmw.RequireRole(id.RoleBank))
		r.Get("/bank/stock", h.HandleReadStock)
		r.Put("/bank/stock/increase", h.HandleIncrease)
		r.Put("/bank/stock/decrease", h.HandleDecrease)
	})
}

type stockResponse struct {
	Stock models.Stock `json:"stock"`
}

func (h *Handler) HandleReadStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stock, err := h.service.ReadStock(ctx, requestcontext.BankID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stockResponse{Stock: stock})
}

func (h *Handler) HandleIncrease(w http.ResponseWriter, r *http.Request) {
	h.handleAdjust(w, r, h.service.IncreaseStock)
}

func (h *Handler) HandleDecrease(w http.ResponseWriter, r *http.Request) {
	h.handleAdjust(w, r, h.service.DecreaseStock)
}

type adjustFunc func(ctx context.Context, bankID id.BankID, group id.BloodGroup, units int) (models.Stock, error)

func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request, adjust adjustFunc) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	bankID := requestcontext.BankID(ctx)

	req, ok := httputil.DecodeAndPrepare[AdjustStockRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	stock, err := adjust(ctx, bankID, req.parsedBloodGroup, req.Units)
	if err != nil {
		if dErrors.IsServerSide(dErrors.CodeOf(err)) {
			h.logger.ErrorContext(ctx, "stock adjustment failed",
				"request_id", requestID,
				"bank_id", bankID.String(),
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stockResponse{Stock: stock})
}
