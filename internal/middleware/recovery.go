package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"planner/internal/httputil"
)

// Recovery converts handler panics into a 500 problem response instead
// of tearing down the connection. The session id, when present, ties
// the stack trace to the tenant that triggered it.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"panic", err,
						"method", r.Method,
						"path", r.URL.Path,
						"session_id", r.Header.Get(SessionHeader),
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
