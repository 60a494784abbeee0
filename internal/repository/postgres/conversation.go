package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
)

// PostgresConversationRepository implements the ConversationRepository
// interface. Messages live as an ordered JSONB array on the conversation
// row; appending is one atomic UPDATE, which serializes concurrent
// appends to the same conversation at the row level.
type PostgresConversationRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(config *RepositoryConfig) repositories.ConversationRepository {
	return &PostgresConversationRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Ensure creates the conversation if absent. Idempotent.
func (r *PostgresConversationRepository) Ensure(ctx context.Context, conversationID, projectID string, sessionID *string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (conversation_id, project_id, session_id, messages, created_at, is_active)
		VALUES ($1, $2, $3, '[]'::jsonb, now(), true)
		ON CONFLICT (conversation_id) DO NOTHING
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, conversationID, projectID, sessionID); err != nil {
		return storageErr("ensure conversation", err)
	}

	return nil
}

// Get retrieves a conversation with its messages
func (r *PostgresConversationRepository) Get(ctx context.Context, conversationID string) (*models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT conversation_id, project_id, session_id, messages, created_at, is_active
		FROM %s
		WHERE conversation_id = $1
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	row := executor.QueryRow(ctx, query, conversationID)

	conversation, err := scanConversation(row)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
		}
		return nil, storageErr("get conversation", err)
	}

	return conversation, nil
}

// AppendMessage appends one message with a server-assigned timestamp.
// `messages || $2` is evaluated inside a single UPDATE, so two concurrent
// appends both land; neither can overwrite the other's element.
func (r *PostgresConversationRepository) AppendMessage(ctx context.Context, conversationID string, role models.Role, content string) error {
	if !role.Valid() {
		return fmt.Errorf("role %q: %w", role, domain.ErrValidation)
	}

	message := models.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET messages = messages || $2::jsonb
		WHERE conversation_id = $1
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, conversationID, payload)
	if err != nil {
		return storageErr("append message", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, domain.ErrNotFound)
	}

	return nil
}

// ByProject retrieves all conversations for a project, messages included,
// ordered by created_at then id for deterministic flattening.
func (r *PostgresConversationRepository) ByProject(ctx context.Context, projectID string) ([]models.Conversation, error) {
	query := fmt.Sprintf(`
		SELECT conversation_id, project_id, session_id, messages, created_at, is_active
		FROM %s
		WHERE project_id = $1
		ORDER BY created_at, conversation_id
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, storageErr("list conversations", err)
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		conversation, err := scanConversation(rows)
		if err != nil {
			return nil, storageErr("scan conversation", err)
		}
		conversations = append(conversations, *conversation)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate conversations", err)
	}

	return conversations, nil
}

// ClearMessages empties the message list without deleting the record
func (r *PostgresConversationRepository) ClearMessages(ctx context.Context, conversationID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET messages = '[]'::jsonb WHERE conversation_id = $1
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, conversationID); err != nil {
		return storageErr("clear messages", err)
	}

	return nil
}

// DeleteByProject removes all conversations for a project
func (r *PostgresConversationRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE project_id = $1
	`, r.tables.Conversations)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return storageErr("delete conversations", err)
	}

	return nil
}

// rowScanner covers pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var conversation models.Conversation
	var messages []byte

	err := row.Scan(
		&conversation.ID,
		&conversation.ProjectID,
		&conversation.SessionID,
		&messages,
		&conversation.CreatedAt,
		&conversation.IsActive,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(messages, &conversation.Messages); err != nil {
		return nil, storageErr("unmarshal messages", err)
	}
	if conversation.Messages == nil {
		conversation.Messages = []models.Message{}
	}

	return &conversation, nil
}
