package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
)

// PostgresDocumentRepository implements the DocumentRepository interface.
// Documents are keyed by project id with a derived document id, so at
// most one live document exists per project.
type PostgresDocumentRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(config *RepositoryConfig) repositories.DocumentRepository {
	return &PostgresDocumentRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Get returns the project's document content, or "" when none exists.
// Absence is not an error here - a fresh project simply has no plan yet.
func (r *PostgresDocumentRepository) Get(ctx context.Context, projectID string) (string, error) {
	query := fmt.Sprintf(`
		SELECT content FROM %s WHERE project_id = $1
	`, r.tables.Documents)

	var content string
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID).Scan(&content)
	if err != nil {
		if IsPgNoRowsError(err) {
			return "", nil
		}
		return "", storageErr("get document", err)
	}

	return content, nil
}

// Replace upserts the project's document, fully overwriting previous
// content. There is no partial-patch path; last writer wins.
func (r *PostgresDocumentRepository) Replace(ctx context.Context, projectID, content string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (document_id, project_id, content, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (project_id)
		DO UPDATE SET content = EXCLUDED.content, updated_at = now()
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, models.DocumentID(projectID), projectID, content); err != nil {
		return storageErr("replace document", err)
	}

	return nil
}

// DeleteByProject removes the project's document if present
func (r *PostgresDocumentRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE project_id = $1
	`, r.tables.Documents)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return storageErr("delete document", err)
	}

	return nil
}
