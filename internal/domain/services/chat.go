package services

import (
	"context"

	"planner/internal/domain/models"
)

// ChatRequest represents one conversation turn from a user.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	ProjectID string `json:"projectId"`
	Message   string `json:"message"`
}

// ChatResult is the outcome of a conversation turn. Document is non-nil
// only when the engine changed the project document during the turn.
type ChatResult struct {
	Response    string           `json:"response"`
	Document    *string          `json:"document,omitempty"`
	ActiveUsers []models.Session `json:"activeUsers"`
}

// History is a project's flattened conversation history plus its current
// document and active users.
type History struct {
	Entries     []models.HistoryEntry `json:"history"`
	Document    string                `json:"document"`
	ActiveUsers []models.Session      `json:"activeUsers"`
}

// ChatService runs conversation turns and serves history views.
type ChatService interface {
	// Chat appends the user message, invokes the conversation engine
	// scoped to the project's document, and appends the reply. Requires
	// an active session bound to the project.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// History returns the flattened, chronologically sorted message
	// history across all of the project's conversations.
	History(ctx context.Context, projectID string) (*History, error)

	// ClearHistory empties every conversation of the project without
	// deleting the conversation records.
	ClearHistory(ctx context.Context, projectID string) error
}
