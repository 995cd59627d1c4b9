// Package httpapi assembles the chi router: shared middleware, the public
// and authenticated route groups, and the operational endpoints.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"redhope/internal/platform/metrics"
	"redhope/pkg/platform/httputil"
	authmw "redhope/pkg/platform/middleware/auth"
	request "redhope/pkg/platform/middleware/request"
	"redhope/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

// Module mounts routes that sit behind RequireAuth.
type Module interface {
	Register(r chi.Router)
}

// PublicModule is implemented by modules that also serve anonymous routes.
type PublicModule interface {
	RegisterPublic(r chi.Router)
}

// HealthCheck reports whether one backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	Logger      *slog.Logger
	Tokens      authmw.JWTValidator
	Revocations authmw.TokenRevocationChecker
	Metrics     *metrics.Metrics
	// MetricsHandler serves /metrics; promhttp.Handler() when nil.
	MetricsHandler http.Handler
	HealthChecks   map[string]HealthCheck
}

func NewRouter(cfg Config, modules ...Module) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(logger))
	r.Use(request.Logger(logger))
	r.Use(requesttime.Middleware)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}

	r.Method(http.MethodGet, "/metrics", metricsHandler)
	r.Get("/health", healthHandler(cfg.HealthChecks))

	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		for _, m := range modules {
			if pm, ok := m.(PublicModule); ok {
				pm.RegisterPublic(r)
			}
		}
	})
	r.Group(func(r chi.Router) {
		r.Use(request.ContentTypeJSON)
		r.Use(authmw.RequireAuth(cfg.Tokens, cfg.Revocations, logger))
		for _, m := range modules {
			m.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
