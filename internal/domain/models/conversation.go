package models

import "time"

// Role identifies the author of a conversation message. Only two values
// exist; anything else is rejected at append time.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is a recognized role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is a single immutable entry in a conversation. The timestamp is
// assigned server-side at append time and carried with the message so
// cross-conversation history views can sort by it.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is an append-only message thread scoped to a project and
// optionally the session that started it. Messages are stored as an
// ordered array on the conversation record itself.
type Conversation struct {
	ID        string    `json:"conversationId"`
	ProjectID string    `json:"projectId"`
	SessionID *string   `json:"sessionId,omitempty"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
	IsActive  bool      `json:"isActive"`
}

// HistoryEntry is one message in a project's flattened history view,
// annotated with its conversation and, for user messages, the display name
// resolved from the originating session.
type HistoryEntry struct {
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Timestamp      time.Time `json:"timestamp"`
	ConversationID string    `json:"conversationId"`
	UserName       *string   `json:"userName,omitempty"`
}
