package services

import (
	"context"

	"planner/internal/domain/models"
)

// InviteRequest represents a request to invite someone to a project.
type InviteRequest struct {
	ProjectID   string `json:"projectId"`
	Email       string `json:"email"`
	InviterName string `json:"inviterName"`
}

// InviteResult reports the created invitation and whether the
// notification was delivered. The invite flow never fails outward on
// delivery problems; Message carries the manual-share fallback instead.
type InviteResult struct {
	Invitation *models.Invitation `json:"invitation"`
	Token      string             `json:"token"`
	EmailSent  bool               `json:"emailSent"`
	Message    string             `json:"message"`
}

// Validity is the recomputed state of an invitation token.
type Validity struct {
	Valid     bool   `json:"valid"`
	ProjectID string `json:"projectId,omitempty"`
	Message   string `json:"message"`
}

// InvitationService owns invitation lifecycle and acceptance.
type InvitationService interface {
	// Invite creates an invitation for the project and attempts to
	// notify the recipient.
	Invite(ctx context.Context, req *InviteRequest) (*InviteResult, error)

	// Validate recomputes token validity: not used, not expired, and the
	// project still exists.
	Validate(ctx context.Context, token string) (*Validity, error)

	// Accept validates the token, marks it used, and binds the session
	// to the invitation's project - all in one transaction. A missing
	// session id is generated server-side. Returns the bound project id
	// and the session id.
	Accept(ctx context.Context, token, sessionID, userName string) (projectID, boundSessionID string, err error)
}
