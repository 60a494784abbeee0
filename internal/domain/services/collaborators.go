package services

import (
	"context"

	"planner/internal/domain/models"
)

// EngineRequest carries one user turn into the conversation engine. The
// engine reads and writes the project document exclusively through the
// tenant binding on the context, never by project id.
type EngineRequest struct {
	Message string
	History []models.Message
}

// EngineReply is the engine's answer to one turn.
type EngineReply struct {
	Response string
}

// ConversationEngine is the opaque collaborator that produces assistant
// replies and may mutate the project document through the tenant context
// bridge. Implementations must honor ctx cancellation; the caller bounds
// each turn with a timeout.
type ConversationEngine interface {
	Respond(ctx context.Context, req *EngineRequest) (*EngineReply, error)
}

// Notifier delivers invitation notifications. Implementations must not
// panic on delivery failure; the caller treats failure as a fallback to
// manual sharing.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// TextExtractor turns uploaded file bytes into text. Returns
// domain.ErrValidation-wrapped errors for content it cannot handle.
type TextExtractor interface {
	Extract(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
