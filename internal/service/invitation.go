package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"planner/internal/config"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
	"planner/internal/domain/services"
)

// invitationService implements the InvitationService interface
type invitationService struct {
	invitationRepo repositories.InvitationRepository
	projectRepo    repositories.ProjectRepository
	sessionRepo    repositories.SessionRepository
	txManager      repositories.TransactionManager
	notifier       services.Notifier
	ttl            time.Duration
	baseURL        string
	logger         *slog.Logger
}

// NewInvitationService creates a new invitation service
func NewInvitationService(
	invitationRepo repositories.InvitationRepository,
	projectRepo repositories.ProjectRepository,
	sessionRepo repositories.SessionRepository,
	txManager repositories.TransactionManager,
	notifier services.Notifier,
	ttl time.Duration,
	baseURL string,
	logger *slog.Logger,
) services.InvitationService {
	return &invitationService{
		invitationRepo: invitationRepo,
		projectRepo:    projectRepo,
		sessionRepo:    sessionRepo,
		txManager:      txManager,
		notifier:       notifier,
		ttl:            ttl,
		baseURL:        baseURL,
		logger:         logger,
	}
}

// Invite creates an invitation and attempts to notify the recipient.
// Delivery failure is not an error: the result carries a manual-share
// message instead.
func (s *invitationService) Invite(ctx context.Context, req *services.InviteRequest) (*services.InviteResult, error) {
	if err := s.validateInvite(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if _, err := s.projectRepo.Get(ctx, req.ProjectID); err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	invitation := &models.Invitation{
		ID:        uuid.NewString(),
		Token:     token,
		ProjectID: req.ProjectID,
		Email:     req.Email,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
	if inviter := strings.TrimSpace(req.InviterName); inviter != "" {
		invitation.InvitedBy = &inviter
	}

	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	result := &services.InviteResult{
		Invitation: invitation,
		Token:      token,
		EmailSent:  true,
		Message:    fmt.Sprintf("Invitation sent to %s", req.Email),
	}

	subject, htmlBody, textBody := s.composeEmail(req.ProjectID, token, invitation.InvitedBy)
	if err := s.notifier.Send(ctx, req.Email, subject, htmlBody, textBody); err != nil {
		s.logger.Warn("invitation email not delivered",
			"project_id", req.ProjectID,
			"email", req.Email,
			"error", err,
		)
		result.EmailSent = false
		result.Message = "Invitation created but email delivery failed; share the invitation link manually"
	}

	s.logger.Info("invitation created",
		"invitation_id", invitation.ID,
		"project_id", req.ProjectID,
	)

	return result, nil
}

// Validate recomputes token validity from stored facts. Nothing is ever
// written back: an expired or orphaned invitation keeps its stored state.
func (s *invitationService) Validate(ctx context.Context, token string) (*services.Validity, error) {
	invitation, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &services.Validity{Valid: false, Message: "Invitation not found"}, nil
		}
		return nil, err
	}

	validity := s.checkValidity(ctx, invitation)
	return validity, nil
}

func (s *invitationService) checkValidity(ctx context.Context, invitation *models.Invitation) *services.Validity {
	if invitation.IsUsed {
		return &services.Validity{Valid: false, Message: "Invitation has already been used"}
	}
	if invitation.Expired(time.Now().UTC()) {
		return &services.Validity{Valid: false, Message: "Invitation has expired"}
	}

	exists, err := s.projectRepo.Exists(ctx, invitation.ProjectID)
	if err != nil || !exists {
		return &services.Validity{Valid: false, Message: "Project no longer exists"}
	}

	return &services.Validity{
		Valid:     true,
		ProjectID: invitation.ProjectID,
		Message:   fmt.Sprintf("Invitation to project %s is valid", invitation.ProjectID),
	}
}

// Accept validates, marks used, and binds the session to the project in
// one transaction. The repo-level is_used guard makes concurrent accepts
// of the same token resolve to exactly one winner.
func (s *invitationService) Accept(ctx context.Context, token, sessionID, userName string) (string, string, error) {
	invitation, err := s.invitationRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", fmt.Errorf("invitation: %w", domain.ErrInvalidInvitation)
		}
		return "", "", err
	}

	validity := s.checkValidity(ctx, invitation)
	if !validity.Valid {
		exists, err := s.projectRepo.Exists(ctx, invitation.ProjectID)
		if err == nil && !exists {
			return "", "", fmt.Errorf("project %s: %w", invitation.ProjectID, domain.ErrNotFound)
		}
		return "", "", fmt.Errorf("%s: %w", validity.Message, domain.ErrInvalidInvitation)
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.invitationRepo.MarkUsed(txCtx, invitation.ID, time.Now().UTC()); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Lost the race against a concurrent accept
				return fmt.Errorf("invitation already used: %w", domain.ErrInvalidInvitation)
			}
			return err
		}

		session := &models.Session{
			ID:        sessionID,
			ProjectID: invitation.ProjectID,
		}
		if name := strings.TrimSpace(userName); name != "" {
			session.UserName = &name
		}
		return s.sessionRepo.Upsert(txCtx, session)
	})
	if err != nil {
		return "", "", err
	}

	s.logger.Info("invitation accepted",
		"invitation_id", invitation.ID,
		"project_id", invitation.ProjectID,
		"session_id", sessionID,
	)

	return invitation.ProjectID, sessionID, nil
}

// generateToken returns a URL-safe token with 256 bits of entropy,
// independent of the invitation id.
func generateToken() (string, error) {
	buf := make([]byte, config.InvitationTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (s *invitationService) composeEmail(projectID, token string, inviter *string) (subject, htmlBody, textBody string) {
	inviterText := ""
	if inviter != nil {
		inviterText = fmt.Sprintf(" by %s", *inviter)
	}
	link := fmt.Sprintf("%s/invitations/%s", strings.TrimRight(s.baseURL, "/"), token)

	subject = fmt.Sprintf("Invitation to collaborate on %q", projectID)
	textBody = fmt.Sprintf(
		"You've been invited%s to collaborate on the project %q.\n\nJoin here: %s\n\nIf you didn't expect this invitation, you can ignore this email.\n",
		inviterText, projectID, link,
	)
	htmlBody = fmt.Sprintf(`<html><body>
<h2>Project Collaboration Invitation</h2>
<p>You've been invited%s to collaborate on the project "<strong>%s</strong>".</p>
<p><a href="%s">Join the project</a></p>
<p>If you didn't expect this invitation, you can safely ignore this email.</p>
</body></html>`,
		html.EscapeString(inviterText), html.EscapeString(projectID), link,
	)
	return subject, htmlBody, textBody
}

func (s *invitationService) validateInvite(req *services.InviteRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.InviterName, validation.Length(0, config.MaxUserNameLength)),
	)
}
