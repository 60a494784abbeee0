package repositories

import (
	"context"
	"time"

	"planner/internal/domain/models"
)

// InvitationRepository owns time-limited, single-use invitation tokens.
type InvitationRepository interface {
	// Create stores a new invitation record.
	Create(ctx context.Context, invitation *models.Invitation) error

	// GetByToken retrieves an invitation by its token. Returns
	// domain.ErrNotFound if absent.
	GetByToken(ctx context.Context, token string) (*models.Invitation, error)

	// MarkUsed performs the one-way pending -> used transition. Returns
	// domain.ErrNotFound if the invitation does not exist or was already
	// used, so concurrent accepts cannot both succeed.
	MarkUsed(ctx context.Context, invitationID string, usedAt time.Time) error

	// DeleteByProject removes all invitations for a project.
	DeleteByProject(ctx context.Context, projectID string) error
}
