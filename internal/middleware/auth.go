package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/arthamatics/arthamatics-be/internal/auth"
	"github.com/arthamatics/arthamatics-be/internal/http/respond"
)

type contextKey string

const claimsKey contextKey = "session-claims"

// RequireSession verifies the bearer token and stores the session claims in
// the request context. Requests without a valid token get a 401.
func RequireSession(tokens *auth.TokenManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		bearer, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(bearer) == "" {
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := tokens.Parse(strings.TrimSpace(bearer))
		if err != nil {
			respond.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionClaims extracts the verified claims placed by RequireSession.
func SessionClaims(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}
