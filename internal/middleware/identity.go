package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"planner/internal/auth"
	"planner/internal/httputil"
)

// Identity verifies an optional bearer token and, when valid, stores the
// identity in the request context. Requests without a token, or with an
// invalid one, pass through anonymously: sessions work without accounts.
func Identity(provider auth.IdentityProvider, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if token, ok := strings.CutPrefix(header, "Bearer "); ok && provider != nil {
				identity, err := provider.Verify(token)
				if err != nil {
					logger.Debug("bearer token rejected", "path", r.URL.Path, "error", err)
				} else {
					r = httputil.WithIdentity(r, identity)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
