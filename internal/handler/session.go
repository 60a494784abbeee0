package handler

import (
	"log/slog"
	"net/http"

	"planner/internal/domain/services"
	"planner/internal/httputil"
)

// SessionHandler handles join/leave HTTP requests
type SessionHandler struct {
	sessionService services.SessionService
	logger         *slog.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionService services.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		logger:         logger,
	}
}

// Join binds the caller's session to a project, creating the project on
// first use. A session id in the X-Session-ID header is reused; otherwise
// one is generated.
// POST /join
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	userName := req.UserName
	if userName == "" {
		// Verified identities seed the display name when the client
		// supplies none
		if identity := httputil.GetIdentity(r); identity != nil {
			userName = identity.DisplayName
		}
	}

	session, err := h.sessionService.Join(r.Context(), &services.JoinRequest{
		SessionID: httputil.GetSessionID(r),
		ProjectID: req.ProjectID,
		UserName:  userName,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, joinResponse{
		SessionID: session.ID,
		ProjectID: session.ProjectID,
		UserName:  session.DisplayName(),
	})
}

// Leave deactivates the caller's session. Absent sessions are a no-op.
// POST /leave
func (h *SessionHandler) Leave(w http.ResponseWriter, r *http.Request) {
	left, err := h.sessionService.Leave(r.Context(), httputil.GetSessionID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, leaveResponse{Left: left})
}
