package services

import (
	"context"

	"planner/internal/domain/models"
)

// CreateUploadRequest represents an incoming file upload.
type CreateUploadRequest struct {
	SessionID   string
	ProjectID   string
	Filename    string
	ContentType string
	Data        []byte
}

// UploadService validates, extracts, and stores uploaded files.
type UploadService interface {
	// CreateUpload validates size and content type, extracts text, and
	// stores the upload. The session must be active and bound to the
	// project (domain.ErrForbidden otherwise).
	CreateUpload(ctx context.Context, req *CreateUploadRequest) (*models.Upload, error)

	// GetUpload retrieves an upload with full content, gated by
	// session-to-project ownership.
	GetUpload(ctx context.Context, sessionID, uploadID string) (*models.Upload, error)

	// ListUploads lists a project's uploads with bounded previews.
	ListUploads(ctx context.Context, sessionID, projectID string) ([]models.UploadSummary, error)

	// DeleteUpload removes an upload, gated by ownership.
	DeleteUpload(ctx context.Context, sessionID, uploadID string) error
}
