package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/rezervalabs/rezerva/libs/auth"
)

const (
	ctxKeyClaims ctxKey = iota + 1
)

// ClaimsFromContext returns the verified token claims stored by WithBearerAuth,
// or nil when the request carried no valid token.
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	v, _ := ctx.Value(ctxKeyClaims).(*auth.Claims)
	return v
}

// WithBearerAuth verifies the Authorization header and stores the claims in the
// request context. Requests without a token pass through unauthenticated;
// handlers that need an identity reject those via ClaimsFromContext == nil.
func WithBearerAuth(secret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimPrefix(raw, "Bearer ")
			if token == raw {
				http.Error(w, "malformed authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseAndVerifyHS256(strings.TrimSpace(token), secret)
			if err != nil {
				http.Error(w, "invalid or expired token", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
