package services

import (
	"context"

	"planner/internal/domain/models"
)

// JoinRequest represents a request to join a project.
type JoinRequest struct {
	SessionID string `json:"sessionId"`
	ProjectID string `json:"projectId"`
	UserName  string `json:"userName"`
}

// SessionService defines business logic operations for sessions.
type SessionService interface {
	// Join binds the session to the project, lazily creating the project.
	// An existing session id is rebound rather than rejected. Returns the
	// resulting session record.
	Join(ctx context.Context, req *JoinRequest) (*models.Session, error)

	// Leave deactivates the session. Reports whether an active session
	// existed; absence is not an error.
	Leave(ctx context.Context, sessionID string) (bool, error)

	// Touch refreshes the session's last-activity timestamp. No-op for
	// absent or inactive sessions.
	Touch(ctx context.Context, sessionID string) error

	// ActiveUsers lists a project's active sessions ordered by joined_at.
	// When fresh is true, only sessions seen within the configured
	// freshness window are included.
	ActiveUsers(ctx context.Context, projectID string, fresh bool) ([]models.Session, error)

	// ReconcileDuplicateSessions deactivates all but the most recently
	// joined active session per display name, and any active session with
	// an empty name. Idempotent; returns the number deactivated.
	ReconcileDuplicateSessions(ctx context.Context, projectID string) (int, error)
}
