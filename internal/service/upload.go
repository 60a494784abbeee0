package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
	"planner/internal/domain/services"
)

// uploadService implements the UploadService interface
type uploadService struct {
	uploadRepo  repositories.UploadRepository
	sessionRepo repositories.SessionRepository
	projectRepo repositories.ProjectRepository
	extractor   services.TextExtractor
	logger      *slog.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(
	uploadRepo repositories.UploadRepository,
	sessionRepo repositories.SessionRepository,
	projectRepo repositories.ProjectRepository,
	extractor services.TextExtractor,
	logger *slog.Logger,
) services.UploadService {
	return &uploadService{
		uploadRepo:  uploadRepo,
		sessionRepo: sessionRepo,
		projectRepo: projectRepo,
		extractor:   extractor,
		logger:      logger,
	}
}

// CreateUpload validates size and content type, extracts text, and
// stores the upload.
func (s *uploadService) CreateUpload(ctx context.Context, req *services.CreateUploadRequest) (*models.Upload, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if len(req.Data) > config.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d byte limit: %w", config.MaxUploadBytes, domain.ErrValidation)
	}

	session, err := s.ownedSession(ctx, req.SessionID, req.ProjectID)
	if err != nil {
		return nil, err
	}

	content, err := s.extractor.Extract(ctx, req.Filename, req.ContentType, req.Data)
	if err != nil {
		return nil, err
	}

	upload := &models.Upload{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Filename:    req.Filename,
		Content:     content,
		ByteSize:    int64(len(req.Data)),
		ContentType: req.ContentType,
		UploadedBy:  session.UserName,
	}

	if err := s.uploadRepo.Create(ctx, upload); err != nil {
		return nil, err
	}

	s.logger.Info("upload stored",
		"upload_id", upload.ID,
		"project_id", upload.ProjectID,
		"filename", upload.Filename,
		"byte_size", upload.ByteSize,
	)

	return upload, nil
}

// GetUpload retrieves an upload with full content, gated by ownership
func (s *uploadService) GetUpload(ctx context.Context, sessionID, uploadID string) (*models.Upload, error) {
	upload, err := s.uploadRepo.Get(ctx, uploadID)
	if err != nil {
		return nil, err
	}

	if _, err := s.ownedSession(ctx, sessionID, upload.ProjectID); err != nil {
		return nil, err
	}

	return upload, nil
}

// ListUploads lists a project's uploads with bounded previews
func (s *uploadService) ListUploads(ctx context.Context, sessionID, projectID string) ([]models.UploadSummary, error) {
	if _, err := s.ownedSession(ctx, sessionID, projectID); err != nil {
		return nil, err
	}

	return s.uploadRepo.ByProject(ctx, projectID, config.UploadPreviewChars)
}

// DeleteUpload removes an upload, gated by ownership
func (s *uploadService) DeleteUpload(ctx context.Context, sessionID, uploadID string) error {
	upload, err := s.uploadRepo.Get(ctx, uploadID)
	if err != nil {
		return err
	}

	if _, err := s.ownedSession(ctx, sessionID, upload.ProjectID); err != nil {
		return err
	}

	if err := s.uploadRepo.Delete(ctx, uploadID); err != nil {
		return err
	}

	s.logger.Info("upload deleted", "upload_id", uploadID, "project_id", upload.ProjectID)
	return nil
}

// ownedSession loads the session and checks it is active and bound to
// the project. 401 when the session is missing/inactive, 403 when it is
// bound elsewhere.
func (s *uploadService) ownedSession(ctx context.Context, sessionID, projectID string) (*models.Session, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session required: %w", domain.ErrUnauthorized)
	}

	session, err := s.sessionRepo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no session, join a project first: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !session.IsActive {
		return nil, fmt.Errorf("session is inactive: %w", domain.ErrUnauthorized)
	}
	if session.ProjectID != projectID {
		return nil, fmt.Errorf("session does not belong to project %s: %w", projectID, domain.ErrForbidden)
	}

	return session, nil
}

func (s *uploadService) validateCreate(req *services.CreateUploadRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Filename, validation.Required, validation.Length(1, 500)),
	)
}
