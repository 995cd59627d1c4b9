package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"redhope/pkg/domain"
	dErrors "redhope/pkg/domain-errors"
	"redhope/pkg/platform/httputil"
	request "redhope/pkg/platform/middleware/request"
	"redhope/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// TokenRevocationChecker defines the interface for checking if tokens are revoked
type TokenRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	Subject string
	Role    string
	JTI     string // JWT ID for revocation tracking
}

func unauthorized(w http.ResponseWriter, desc string) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, desc))
}

// principalFromClaims maps verified claims onto the request principal.
func principalFromClaims(claims *JWTClaims) (requestcontext.AuthPrincipal, error) {
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return requestcontext.AuthPrincipal{}, err
	}
	p := requestcontext.AuthPrincipal{Role: role}
	switch role {
	case domain.RoleUser:
		p.UserID, err = domain.ParseUserID(claims.Subject)
	case domain.RoleBank:
		p.BankID, err = domain.ParseBankID(claims.Subject)
	}
	return p, err
}

// RequireAuth authenticates the bearer token and injects the principal.
func RequireAuth(validator JWTValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := request.GetRequestID(ctx)

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				unauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			if revocationChecker != nil {
				if claims.JTI == "" {
					logger.WarnContext(ctx, "unauthorized access - missing token jti",
						"request_id", requestID,
					)
					unauthorized(w, "Invalid or expired token")
					return
				}
				revoked, err := revocationChecker.IsRevoked(ctx, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", requestID,
					)
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate token"))
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", requestID,
					)
					unauthorized(w, "Token has been revoked")
					return
				}
			}

			principal, err := principalFromClaims(claims)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed claims",
					"error", err,
					"request_id", requestID,
				)
				unauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithPrincipal(ctx, principal)
			ctx = requestcontext.WithTokenID(ctx, claims.JTI)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects authenticated callers whose role differs from role.
// It must run after RequireAuth.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := requestcontext.Principal(r.Context())
			if !ok {
				unauthorized(w, "authentication required")
				return
			}
			if p.Role != role {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "endpoint requires role "+string(role)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
