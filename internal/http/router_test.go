package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/suite"

	"redhope/internal/identity/revocation"
	"redhope/internal/identity/token"
	"redhope/internal/platform/metrics"
	id "redhope/pkg/domain"
	"redhope/pkg/platform/httputil"
	authmw "redhope/pkg/platform/middleware/auth"
	request "redhope/pkg/platform/middleware/request"
	"redhope/pkg/requestcontext"
	"redhope/pkg/testutil"
)

// probeModule exposes one anonymous and a few authenticated routes.
type probeModule struct{}

func (probeModule) RegisterPublic(r chi.Router) {
	r.Get("/probe/public", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
	})
}

func (probeModule) Register(r chi.Router) {
	r.Get("/probe/whoami", func(w http.ResponseWriter, r *http.Request) {
		p, _ := requestcontext.Principal(r.Context())
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"role": string(p.Role),
			"jti":  requestcontext.TokenID(r.Context()),
		})
	})
	r.With(authmw.RequireRole(id.RoleBank)).Post("/probe/bank", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get("/probe/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

type RouterSuite struct {
	suite.Suite
	jwt      *token.JWTService
	trl      *revocation.InMemoryTRL
	registry *prometheus.Registry
	health   error
	router   http.Handler
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	s.jwt = token.NewJWTService("router-test-key", "redhope")
	s.trl = revocation.NewInMemoryTRL()
	s.registry = prometheus.NewRegistry()
	s.health = nil
	s.router = NewRouter(Config{
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens:         token.NewMiddlewareAdapter(s.jwt),
		Revocations:    s.trl,
		Metrics:        metrics.NewWithRegisterer(s.registry),
		MetricsHandler: promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}),
		HealthChecks: map[string]HealthCheck{
			"store": func(context.Context) error { return s.health },
		},
	}, probeModule{})
}

func (s *RouterSuite) bearer(role id.Role) (*http.Request, string) {
	issued, err := s.jwt.GenerateAccessToken(role, id.NewBankID().String(), time.Hour)
	s.Require().NoError(err)
	req := testutil.NewRequest(s.T(), http.MethodGet, "/probe/whoami")
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	return req, issued.JTI
}

func (s *RouterSuite) TestPublicRouteNeedsNoToken() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/probe/public"))
	testutil.AssertStatusOK(s.T(), rr)
	s.NotEmpty(rr.Header().Get(request.HeaderRequestID))
}

func (s *RouterSuite) TestRequestIDIsEchoed() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/probe/public")
	req.Header.Set(request.HeaderRequestID, "req-123")
	rr := testutil.DoRequest(s.router, req)
	s.Equal("req-123", rr.Header().Get(request.HeaderRequestID))
}

func (s *RouterSuite) TestAuthenticatedRoute() {
	s.Run("missing token", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/probe/whoami"))
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})

	s.Run("valid token", func() {
		req, jti := s.bearer(id.RoleBank)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		testutil.AssertJSONContains(s.T(), rr, "role", "bank")
		testutil.AssertJSONContains(s.T(), rr, "jti", jti)
	})

	s.Run("revoked token", func() {
		req, jti := s.bearer(id.RoleUser)
		s.Require().NoError(s.trl.RevokeToken(context.Background(), jti, time.Hour))
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
	})
}

func (s *RouterSuite) TestWriteRequiresJSONContentType() {
	issued, err := s.jwt.GenerateAccessToken(id.RoleBank, id.NewBankID().String(), time.Hour)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/probe/bank", strings.NewReader("units=3"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+issued.Token)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *RouterSuite) TestPanicBecomes500() {
	req, _ := s.bearer(id.RoleUser)
	req.URL.Path = "/probe/panic"
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
}

func (s *RouterSuite) TestHealth() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "ok")

	s.health = errors.New("connection refused")
	rr = testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/health"))
	testutil.AssertStatus(s.T(), rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(s.T(), rr, "status", "degraded")
}

func (s *RouterSuite) TestMetricsUseRoutePattern() {
	testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/probe/public"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(s.T(), rr)
	s.Contains(rr.Body.String(), `redhope_http_requests_total{method="GET",route="/probe/public",status="200"} 1`)
}
