package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	dErrors "coverscope/pkg/domain-errors"
	"coverscope/pkg/platform/httputil"
	"coverscope/pkg/requestcontext"
)

// TokenValidator validates bearer tokens presented by service callers.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims is the subset of claims the middleware cares about.
type TokenClaims struct {
	ClientName string
}

// RequireAuth authenticates requests by either a service JWT
// (Authorization: Bearer ...) or a static API key (X-API-Key) checked
// against a bcrypt hash. A nil validator and empty hash disable
// authentication entirely (dev mode).
func RequireAuth(validator TokenValidator, apiKeyHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	enabled := validator != nil || apiKeyHash != ""
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && validator != nil {
				claims, err := validator.ValidateToken(token)
				if err != nil {
					logger.WarnContext(ctx, "unauthorized: invalid token",
						"request_id", requestcontext.RequestID(ctx),
						"error", err,
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
					return
				}
				next.ServeHTTP(w, r.WithContext(requestcontext.WithClientMetadata(
					ctx,
					requestcontext.ClientIP(ctx),
					requestcontext.UserAgent(ctx),
					claims.ClientName,
				)))
				return
			}

			if key := r.Header.Get("X-API-Key"); key != "" && apiKeyHash != "" {
				if bcrypt.CompareHashAndPassword([]byte(apiKeyHash), []byte(key)) == nil {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.WarnContext(ctx, "unauthorized: missing credentials",
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		})
	}
}
