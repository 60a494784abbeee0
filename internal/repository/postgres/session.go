package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
)

// PostgresSessionRepository implements the SessionRepository interface
type PostgresSessionRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(config *RepositoryConfig) repositories.SessionRepository {
	return &PostgresSessionRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Upsert creates the session or rebinds an existing id to the given
// project. Rejoin is not an error: the binding moves, the session is
// reactivated, and activity refreshes. COALESCE keeps the stored display
// name when the rejoin does not carry one.
func (r *PostgresSessionRepository) Upsert(ctx context.Context, session *models.Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (session_id, project_id, user_name, joined_at, last_activity, is_active)
		VALUES ($1, $2, $3, now(), now(), true)
		ON CONFLICT (session_id)
		DO UPDATE SET
			project_id = EXCLUDED.project_id,
			user_name = COALESCE(EXCLUDED.user_name, %s.user_name),
			last_activity = now(),
			is_active = true
		RETURNING session_id, project_id, user_name, joined_at, last_activity, is_active
	`, r.tables.Sessions, r.tables.Sessions)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, session.ID, session.ProjectID, session.UserName).Scan(
		&session.ID,
		&session.ProjectID,
		&session.UserName,
		&session.JoinedAt,
		&session.LastActivity,
		&session.IsActive,
	)
	if err != nil {
		return storageErr("upsert session", err)
	}

	return nil
}

// Get retrieves a session by id
func (r *PostgresSessionRepository) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	query := fmt.Sprintf(`
		SELECT session_id, project_id, user_name, joined_at, last_activity, is_active
		FROM %s
		WHERE session_id = $1
	`, r.tables.Sessions)

	var session models.Session
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.ProjectID,
		&session.UserName,
		&session.JoinedAt,
		&session.LastActivity,
		&session.IsActive,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
		}
		return nil, storageErr("get session", err)
	}

	return &session, nil
}

// TouchActivity updates last_activity for an active session. Zero rows
// affected means the session is absent or inactive - tolerated so client
// retries never fail here.
func (r *PostgresSessionRepository) TouchActivity(ctx context.Context, sessionID string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET last_activity = now()
		WHERE session_id = $1 AND is_active = true
	`, r.tables.Sessions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, sessionID)
	if err != nil {
		return false, storageErr("touch session", err)
	}

	return result.RowsAffected() > 0, nil
}

// Deactivate marks the session inactive. Idempotent.
func (r *PostgresSessionRepository) Deactivate(ctx context.Context, sessionID string) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET is_active = false
		WHERE session_id = $1 AND is_active = true
	`, r.tables.Sessions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, sessionID)
	if err != nil {
		return false, storageErr("deactivate session", err)
	}

	return result.RowsAffected() > 0, nil
}

// ActiveByProject lists active sessions for a project ordered by
// joined_at. A positive freshness additionally requires last_activity
// within that window.
func (r *PostgresSessionRepository) ActiveByProject(ctx context.Context, projectID string, freshness time.Duration) ([]models.Session, error) {
	query := fmt.Sprintf(`
		SELECT session_id, project_id, user_name, joined_at, last_activity, is_active
		FROM %s
		WHERE project_id = $1 AND is_active = true
	`, r.tables.Sessions)

	args := []interface{}{projectID}
	if freshness > 0 {
		query += ` AND last_activity > $2`
		args = append(args, time.Now().Add(-freshness))
	}
	query += ` ORDER BY joined_at`

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list active sessions", err)
	}
	defer rows.Close()

	sessions := make([]models.Session, 0)
	for rows.Next() {
		var session models.Session
		err := rows.Scan(
			&session.ID,
			&session.ProjectID,
			&session.UserName,
			&session.JoinedAt,
			&session.LastActivity,
			&session.IsActive,
		)
		if err != nil {
			return nil, storageErr("scan session", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate sessions", err)
	}

	return sessions, nil
}

// CountActiveByProject counts active sessions within the freshness window
func (r *PostgresSessionRepository) CountActiveByProject(ctx context.Context, projectID string, freshness time.Duration) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM %s
		WHERE project_id = $1 AND is_active = true
	`, r.tables.Sessions)

	args := []interface{}{projectID}
	if freshness > 0 {
		query += ` AND last_activity > $2`
		args = append(args, time.Now().Add(-freshness))
	}

	var count int
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, storageErr("count active sessions", err)
	}

	return count, nil
}

// DeactivateDuplicates keeps the most recently joined active session per
// display name and deactivates the rest, plus any active session with an
// empty or missing name. Best-effort maintenance, invoked explicitly.
func (r *PostgresSessionRepository) DeactivateDuplicates(ctx context.Context, projectID string) (int, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET is_active = false
		WHERE project_id = $1 AND is_active = true
		AND (
			user_name IS NULL OR user_name = ''
			OR session_id NOT IN (
				SELECT DISTINCT ON (user_name) session_id
				FROM %s
				WHERE project_id = $1 AND is_active = true
					AND user_name IS NOT NULL AND user_name <> ''
				ORDER BY user_name, joined_at DESC
			)
		)
	`, r.tables.Sessions, r.tables.Sessions)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID)
	if err != nil {
		return 0, storageErr("deactivate duplicate sessions", err)
	}

	return int(result.RowsAffected()), nil
}

// DeleteByProject removes all sessions bound to a project
func (r *PostgresSessionRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE project_id = $1
	`, r.tables.Sessions)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return storageErr("delete sessions", err)
	}

	return nil
}
