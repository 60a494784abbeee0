package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
	"planner/internal/domain/services"
)

// projectService implements the ProjectService interface
type projectService struct {
	projectRepo      repositories.ProjectRepository
	documentRepo     repositories.DocumentRepository
	sessionRepo      repositories.SessionRepository
	conversationRepo repositories.ConversationRepository
	uploadRepo       repositories.UploadRepository
	invitationRepo   repositories.InvitationRepository
	txManager        repositories.TransactionManager
	freshness        time.Duration
	logger           *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(
	projectRepo repositories.ProjectRepository,
	documentRepo repositories.DocumentRepository,
	sessionRepo repositories.SessionRepository,
	conversationRepo repositories.ConversationRepository,
	uploadRepo repositories.UploadRepository,
	invitationRepo repositories.InvitationRepository,
	txManager repositories.TransactionManager,
	freshness time.Duration,
	logger *slog.Logger,
) services.ProjectService {
	return &projectService{
		projectRepo:      projectRepo,
		documentRepo:     documentRepo,
		sessionRepo:      sessionRepo,
		conversationRepo: conversationRepo,
		uploadRepo:       uploadRepo,
		invitationRepo:   invitationRepo,
		txManager:        txManager,
		freshness:        freshness,
		logger:           logger,
	}
}

// EnsureProject creates the project if absent
func (s *projectService) EnsureProject(ctx context.Context, projectID string) error {
	if err := validation.Validate(projectID,
		validation.Required,
		validation.Length(1, config.MaxProjectIDLength),
	); err != nil {
		return fmt.Errorf("%w: project id: %v", domain.ErrValidation, err)
	}
	return s.projectRepo.Ensure(ctx, projectID)
}

// GetProject retrieves a project by ID
func (s *projectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	return s.projectRepo.Get(ctx, projectID)
}

// ListProjects retrieves all projects with active-user counts
func (s *projectService) ListProjects(ctx context.Context) ([]models.ProjectSummary, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		count, err := s.sessionRepo.CountActiveByProject(ctx, project.ID, s.freshness)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.ProjectSummary{
			Project:     project,
			ActiveUsers: count,
		})
	}

	return summaries, nil
}

// Status returns active users, last activity, and document length
func (s *projectService) Status(ctx context.Context, projectID string) (*services.ProjectStatus, error) {
	project, err := s.projectRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	activeUsers, err := s.sessionRepo.ActiveByProject(ctx, projectID, s.freshness)
	if err != nil {
		return nil, err
	}

	document, err := s.documentRepo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	lastActivity := project.UpdatedAt
	return &services.ProjectStatus{
		ProjectID:      projectID,
		ActiveUsers:    activeUsers,
		LastActivity:   &lastActivity,
		DocumentLength: len(document),
	}, nil
}

// GetDocument returns the project's current document content
func (s *projectService) GetDocument(ctx context.Context, projectID string) (string, error) {
	return s.documentRepo.Get(ctx, projectID)
}

// DeleteProject removes the project and everything scoped to it in one
// transaction. Any failing step rolls the whole cascade back; a project
// is never left with orphaned sessions or conversations.
func (s *projectService) DeleteProject(ctx context.Context, projectID string) error {
	// Existence check first for a clean NotFound instead of a half-run
	// transaction.
	exists, err := s.projectRepo.Exists(ctx, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.conversationRepo.DeleteByProject(txCtx, projectID); err != nil {
			return err
		}
		if err := s.sessionRepo.DeleteByProject(txCtx, projectID); err != nil {
			return err
		}
		if err := s.uploadRepo.DeleteByProject(txCtx, projectID); err != nil {
			return err
		}
		if err := s.invitationRepo.DeleteByProject(txCtx, projectID); err != nil {
			return err
		}
		if err := s.documentRepo.DeleteByProject(txCtx, projectID); err != nil {
			return err
		}
		return s.projectRepo.Delete(txCtx, projectID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("project deleted", "project_id", projectID)
	return nil
}
