package repositories

import (
	"context"
	"time"

	"planner/internal/domain/models"
)

// SessionRepository owns session records and their project bindings.
type SessionRepository interface {
	// Upsert creates the session or, when the id already exists, rebinds
	// it to the given project, reactivates it, and refreshes activity.
	// A non-nil userName overwrites the stored display name.
	Upsert(ctx context.Context, session *models.Session) error

	// Get retrieves a session by id. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, sessionID string) (*models.Session, error)

	// TouchActivity updates last_activity for an active session. Reports
	// whether a row was updated; absent or inactive sessions are not an
	// error (clients retry).
	TouchActivity(ctx context.Context, sessionID string) (bool, error)

	// Deactivate marks the session inactive. Reports whether a record
	// existed and was active. Idempotent.
	Deactivate(ctx context.Context, sessionID string) (bool, error)

	// ActiveByProject lists active sessions for a project ordered by
	// joined_at. A zero freshness returns every active session; a positive
	// freshness additionally requires last_activity within that window.
	ActiveByProject(ctx context.Context, projectID string, freshness time.Duration) ([]models.Session, error)

	// CountActiveByProject counts active sessions within the freshness
	// window (zero means no window).
	CountActiveByProject(ctx context.Context, projectID string, freshness time.Duration) (int, error)

	// DeactivateDuplicates keeps the most recently joined active session
	// per display name and deactivates the rest, plus any active session
	// with an empty name. Returns the number of sessions deactivated.
	DeactivateDuplicates(ctx context.Context, projectID string) (int, error)

	// DeleteByProject removes all sessions bound to a project.
	DeleteByProject(ctx context.Context, projectID string) error
}
