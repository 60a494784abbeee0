package handler

import (
	"log/slog"
	"net/http"

	"planner/internal/domain/services"
	"planner/internal/httputil"
)

// InvitationHandler handles invitation HTTP requests
type InvitationHandler struct {
	invitationService services.InvitationService
	logger            *slog.Logger
}

// NewInvitationHandler creates a new invitation handler
func NewInvitationHandler(invitationService services.InvitationService, logger *slog.Logger) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		logger:            logger,
	}
}

// Invite creates an invitation and attempts email delivery. Delivery
// failure still answers 200; the body carries emailSent=false and a
// manual-share message.
// POST /projects/{id}/invite
func (h *InvitationHandler) Invite(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	var req inviteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.invitationService.Invite(r.Context(), &services.InviteRequest{
		ProjectID:   projectID,
		Email:       req.Email,
		InviterName: req.InviterName,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// Validate recomputes a token's validity without consuming it
// GET /invitations/{token}/validate
func (h *InvitationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		httputil.RespondError(w, http.StatusBadRequest, "invitation token is required")
		return
	}

	validity, err := h.invitationService.Validate(r.Context(), token)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, validity)
}

// Accept consumes a valid token and binds the caller's session to the
// invited project
// POST /invitations/{token}/accept
func (h *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")
	if token == "" {
		httputil.RespondError(w, http.StatusBadRequest, "invitation token is required")
		return
	}

	var req acceptRequest
	if r.ContentLength != 0 {
		if err := httputil.ParseJSON(w, r, &req); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	userName := req.UserName
	if userName == "" {
		if identity := httputil.GetIdentity(r); identity != nil {
			userName = identity.DisplayName
		}
	}

	projectID, sessionID, err := h.invitationService.Accept(r.Context(), token, httputil.GetSessionID(r), userName)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, acceptResponse{SessionID: sessionID, ProjectID: projectID})
}
