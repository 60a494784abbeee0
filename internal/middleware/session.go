package middleware

import (
	"net/http"

	"planner/internal/httputil"
)

// SessionHeader carries the client's session id on every session-aware
// request.
const SessionHeader = "X-Session-ID"

// Session copies the session header into the request context. It never
// rejects: which operations require a session is decided per handler.
func Session() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sessionID := r.Header.Get(SessionHeader); sessionID != "" {
				r = httputil.WithSessionID(r, sessionID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
