package repositories

import (
	"context"

	"planner/internal/domain/models"
)

// ConversationRepository owns ordered message history per conversation.
type ConversationRepository interface {
	// Ensure creates the conversation if absent. Idempotent.
	Ensure(ctx context.Context, conversationID, projectID string, sessionID *string) error

	// Get retrieves a conversation with its messages. Returns
	// domain.ErrNotFound if absent.
	Get(ctx context.Context, conversationID string) (*models.Conversation, error)

	// AppendMessage appends one message with a server-assigned timestamp.
	// The append is a single atomic update on the conversation row, which
	// serializes concurrent appends to the same conversation. Returns
	// domain.ErrNotFound if the conversation does not exist.
	AppendMessage(ctx context.Context, conversationID string, role models.Role, content string) error

	// ByProject retrieves all conversations for a project ordered by
	// created_at then id, messages included.
	ByProject(ctx context.Context, projectID string) ([]models.Conversation, error)

	// ClearMessages empties a conversation's message list without
	// deleting the conversation record.
	ClearMessages(ctx context.Context, conversationID string) error

	// DeleteByProject removes all conversations for a project.
	DeleteByProject(ctx context.Context, projectID string) error
}
