package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "redhope/pkg/domain"
	"redhope/pkg/requestcontext"
)

// AsUser marks the request as authenticated by the given user, the way the
// auth middleware would.
func AsUser(req *http.Request, userID id.UserID) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.AuthPrincipal{
		Role:   id.RoleUser,
		UserID: userID,
	})
	return req.WithContext(ctx)
}

// AsBank marks the request as authenticated by the given bank.
func AsBank(req *http.Request, bankID id.BankID) *http.Request {
	ctx := requestcontext.WithPrincipal(req.Context(), requestcontext.AuthPrincipal{
		Role:   id.RoleBank,
		BankID: bankID,
	})
	return req.WithContext(ctx)
}

// WithURLParams attaches chi route parameters so handlers can be called
// directly without a router.
func WithURLParams(req *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
