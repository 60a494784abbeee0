package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables for the configured prefix if they do
// not exist yet. Run once at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				project_id VARCHAR(255) PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Projects),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				document_id VARCHAR(300) PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL UNIQUE,
				content TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Documents),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				session_id VARCHAR(255) PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				user_name VARCHAR(255),
				joined_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				last_activity TIMESTAMPTZ NOT NULL DEFAULT now(),
				is_active BOOLEAN NOT NULL DEFAULT true
			)
		`, tables.Sessions),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_project_active_idx
			ON %s (project_id, is_active)
		`, tables.Sessions, tables.Sessions),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				conversation_id VARCHAR(255) PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				session_id VARCHAR(255),
				messages JSONB NOT NULL DEFAULT '[]'::jsonb,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				is_active BOOLEAN NOT NULL DEFAULT true
			)
		`, tables.Conversations),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s_project_idx
			ON %s (project_id)
		`, tables.Conversations, tables.Conversations),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				upload_id VARCHAR(255) PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				filename VARCHAR(500) NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				byte_size BIGINT NOT NULL,
				content_type VARCHAR(255) NOT NULL,
				uploaded_by VARCHAR(255),
				uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Uploads),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				invitation_id VARCHAR(255) PRIMARY KEY,
				token VARCHAR(255) NOT NULL UNIQUE,
				project_id VARCHAR(255) NOT NULL,
				email VARCHAR(500) NOT NULL,
				invited_by VARCHAR(255),
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				expires_at TIMESTAMPTZ NOT NULL,
				is_used BOOLEAN NOT NULL DEFAULT false,
				used_at TIMESTAMPTZ
			)
		`, tables.Invitations),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}
