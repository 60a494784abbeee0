package handler

import (
	"log/slog"
	"net/http"

	"planner/internal/domain/services"
	"planner/internal/httputil"
)

// ChatHandler handles conversation-turn and history HTTP requests
type ChatHandler struct {
	chatService services.ChatService
	logger      *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService services.ChatService, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// Chat runs one conversation turn for the caller's session.
// POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.chatService.Chat(r.Context(), &services.ChatRequest{
		SessionID: httputil.GetSessionID(r),
		ProjectID: req.ProjectID,
		Message:   req.Message,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// History returns the project's flattened conversation history plus its
// current document and active users.
// GET /history/{projectId}
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	history, err := h.chatService.History(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, history)
}

// ClearHistory empties all of a project's conversations.
// DELETE /history/{projectId}
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	if err := h.chatService.ClearHistory(r.Context(), projectID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, clearedResponse{ProjectID: projectID, Cleared: true})
}
