package repositories

import (
	"context"

	"planner/internal/domain/models"
)

// UploadRepository owns uploaded-file metadata plus extracted text,
// scoped to a project.
type UploadRepository interface {
	// Create stores a new upload record.
	Create(ctx context.Context, upload *models.Upload) error

	// Get retrieves an upload with its full extracted content. Returns
	// domain.ErrNotFound if absent.
	Get(ctx context.Context, uploadID string) (*models.Upload, error)

	// ByProject lists a project's uploads newest first, each with a
	// content preview of at most previewChars characters.
	ByProject(ctx context.Context, projectID string, previewChars int) ([]models.UploadSummary, error)

	// Delete removes an upload. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, uploadID string) error

	// DeleteByProject removes all uploads for a project.
	DeleteByProject(ctx context.Context, projectID string) error
}
