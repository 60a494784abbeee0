package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
	"planner/internal/domain/services"
)

// sessionService implements the SessionService interface
type sessionService struct {
	sessionRepo repositories.SessionRepository
	projectRepo repositories.ProjectRepository
	freshness   time.Duration
	logger      *slog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo repositories.SessionRepository,
	projectRepo repositories.ProjectRepository,
	freshness time.Duration,
	logger *slog.Logger,
) services.SessionService {
	return &sessionService{
		sessionRepo: sessionRepo,
		projectRepo: projectRepo,
		freshness:   freshness,
		logger:      logger,
	}
}

// Join binds the session to the project. The project is created lazily
// if absent; an existing session id is rebound rather than rejected.
func (s *sessionService) Join(ctx context.Context, req *services.JoinRequest) (*models.Session, error) {
	if err := s.validateJoin(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	if err := s.projectRepo.Ensure(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        req.SessionID,
		ProjectID: req.ProjectID,
	}
	if name := strings.TrimSpace(req.UserName); name != "" {
		session.UserName = &name
	}

	if err := s.sessionRepo.Upsert(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("session joined project",
		"session_id", session.ID,
		"project_id", session.ProjectID,
		"user_name", session.DisplayName(),
	)

	return session, nil
}

// Leave deactivates the session. Absence is tolerated.
func (s *sessionService) Leave(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}

	wasActive, err := s.sessionRepo.Deactivate(ctx, sessionID)
	if err != nil {
		return false, err
	}

	if wasActive {
		s.logger.Info("session left project", "session_id", sessionID)
	}

	return wasActive, nil
}

// Touch refreshes last-activity. No-op for absent or inactive sessions.
func (s *sessionService) Touch(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	_, err := s.sessionRepo.TouchActivity(ctx, sessionID)
	return err
}

// ActiveUsers lists the project's active sessions; fresh applies the
// configured last-activity window on top.
func (s *sessionService) ActiveUsers(ctx context.Context, projectID string, fresh bool) ([]models.Session, error) {
	freshness := time.Duration(0)
	if fresh {
		freshness = s.freshness
	}
	return s.sessionRepo.ActiveByProject(ctx, projectID, freshness)
}

// ReconcileDuplicateSessions deactivates duplicate and nameless active
// sessions. Explicit maintenance, idempotent.
func (s *sessionService) ReconcileDuplicateSessions(ctx context.Context, projectID string) (int, error) {
	deactivated, err := s.sessionRepo.DeactivateDuplicates(ctx, projectID)
	if err != nil {
		return 0, err
	}

	if deactivated > 0 {
		s.logger.Info("reconciled duplicate sessions",
			"project_id", projectID,
			"deactivated", deactivated,
		)
	}

	return deactivated, nil
}

func (s *sessionService) validateJoin(req *services.JoinRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID,
			validation.Required,
			validation.Length(1, config.MaxProjectIDLength),
		),
		validation.Field(&req.UserName,
			validation.Length(0, config.MaxUserNameLength),
		),
	)
}
