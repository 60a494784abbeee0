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

// PostgresInvitationRepository implements the InvitationRepository
// interface. Only the pending -> used transition is stored; expiry and
// project-deletion are computed by the service at read time.
type PostgresInvitationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(config *RepositoryConfig) repositories.InvitationRepository {
	return &PostgresInvitationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create stores a new invitation record
func (r *PostgresInvitationRepository) Create(ctx context.Context, invitation *models.Invitation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (invitation_id, token, project_id, email, invited_by, created_at, expires_at, is_used)
		VALUES ($1, $2, $3, $4, $5, now(), $6, false)
		RETURNING created_at
	`, r.tables.Invitations)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		invitation.ID,
		invitation.Token,
		invitation.ProjectID,
		invitation.Email,
		invitation.InvitedBy,
		invitation.ExpiresAt,
	).Scan(&invitation.CreatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("invitation %s: %w", invitation.ID, domain.ErrConflict)
		}
		return storageErr("create invitation", err)
	}

	return nil
}

// GetByToken retrieves an invitation by its token
func (r *PostgresInvitationRepository) GetByToken(ctx context.Context, token string) (*models.Invitation, error) {
	query := fmt.Sprintf(`
		SELECT invitation_id, token, project_id, email, invited_by, created_at, expires_at, is_used, used_at
		FROM %s
		WHERE token = $1
	`, r.tables.Invitations)

	var invitation models.Invitation
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, token).Scan(
		&invitation.ID,
		&invitation.Token,
		&invitation.ProjectID,
		&invitation.Email,
		&invitation.InvitedBy,
		&invitation.CreatedAt,
		&invitation.ExpiresAt,
		&invitation.IsUsed,
		&invitation.UsedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("invitation: %w", domain.ErrNotFound)
		}
		return nil, storageErr("get invitation", err)
	}

	return &invitation, nil
}

// MarkUsed performs the one-way pending -> used transition. The
// `is_used = false` guard means two concurrent accepts race on the row
// update and exactly one wins.
func (r *PostgresInvitationRepository) MarkUsed(ctx context.Context, invitationID string, usedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_used = true, used_at = $2
		WHERE invitation_id = $1 AND is_used = false
	`, r.tables.Invitations)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, invitationID, usedAt)
	if err != nil {
		return storageErr("mark invitation used", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("invitation %s: %w", invitationID, domain.ErrNotFound)
	}

	return nil
}

// DeleteByProject removes all invitations for a project
func (r *PostgresInvitationRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE project_id = $1
	`, r.tables.Invitations)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return storageErr("delete invitations", err)
	}

	return nil
}
