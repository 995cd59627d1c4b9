// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; services read them. Keeping this package free of
// net/http lets services depend on it without pulling in transport code.
//
// Usage in services:
//
//	p, ok := requestcontext.Principal(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithPrincipal(ctx, requestcontext.AuthPrincipal{...})
package requestcontext

import (
	"context"
	"time"

	"redhope/pkg/domain"
)

type (
	principalKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	tokenIDKey     struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyPrincipal   = principalKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyTokenID     = tokenIDKey{}
)

// AuthPrincipal is the authenticated caller. Exactly one of UserID or BankID
// is set, matching Role.
type AuthPrincipal struct {
	Role   domain.Role
	UserID domain.UserID
	BankID domain.BankID
}

// -----------------------------------------------------------------------------
// Auth context
// -----------------------------------------------------------------------------

// Principal retrieves the authenticated caller. ok is false for anonymous requests.
func Principal(ctx context.Context) (AuthPrincipal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(AuthPrincipal)
	return p, ok
}

// WithPrincipal injects the authenticated caller into the context.
func WithPrincipal(ctx context.Context, p AuthPrincipal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// UserID returns the caller's user id, or the zero value for bank or anonymous callers.
func UserID(ctx context.Context) domain.UserID {
	if p, ok := Principal(ctx); ok && p.Role == domain.RoleUser {
		return p.UserID
	}
	return domain.UserID{}
}

// BankID returns the caller's bank id, or the zero value for user or anonymous callers.
func BankID(ctx context.Context) domain.BankID {
	if p, ok := Principal(ctx); ok && p.Role == domain.RoleBank {
		return p.BankID
	}
	return domain.BankID{}
}

// TokenID retrieves the jti of the bearer token used for this request.
func TokenID(ctx context.Context) string {
	if jti, ok := ctx.Value(ContextKeyTokenID).(string); ok {
		return jti
	}
	return ""
}

// WithTokenID injects the bearer token's jti.
func WithTokenID(ctx context.Context, jti string) context.Context {
	return context.WithValue(ctx, ContextKeyTokenID, jti)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() outside HTTP requests.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
