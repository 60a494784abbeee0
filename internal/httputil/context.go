package httputil

import (
	"context"
	"net/http"

	"planner/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	sessionIDKey contextKey = "sessionID"
	identityKey  contextKey = "identity"
)

// WithSessionID adds the session id to the request context
func WithSessionID(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionIDKey, sessionID)
	return r.WithContext(ctx)
}

// GetSessionID retrieves the session id from context, returns empty string if not found
func GetSessionID(r *http.Request) string {
	sessionID, _ := r.Context().Value(sessionIDKey).(string)
	return sessionID
}

// WithIdentity adds a verified identity to the request context
func WithIdentity(r *http.Request, identity *models.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, identity)
	return r.WithContext(ctx)
}

// GetIdentity retrieves the verified identity from context, nil if the
// request carried no valid bearer token
func GetIdentity(r *http.Request) *models.Identity {
	identity, _ := r.Context().Value(identityKey).(*models.Identity)
	return identity
}
