package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/taskplane/taskplane/internal/models"
)

type contextKey int

const principalContextKey contextKey = iota

// PrincipalFromContext extracts the authenticated principal from the
// request context. Returns nil if no principal is present.
func PrincipalFromContext(ctx context.Context) *models.Principal {
	principal, _ := ctx.Value(principalContextKey).(*models.Principal)
	return principal
}

// ContextWithPrincipal returns a context carrying the given principal.
// Exposed for tests that exercise guarded services directly.
func ContextWithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// Middleware returns an HTTP middleware that verifies the bearer token and
// stores the resulting principal in the request context. Requests without
// a valid token are rejected with 401 before any guarded layer runs, so
// unauthenticated attempts are never role-gated or audited.
func (v *Verifier) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractBearerToken(r)
			if tokenString == "" {
				zerolog.Ctx(r.Context()).Warn().Msg("missing Authorization header")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			principal, err := v.VerifyToken(tokenString)
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("invalid bearer token")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token out of the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}
