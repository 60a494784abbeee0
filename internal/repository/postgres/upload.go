package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
)

// PostgresUploadRepository implements the UploadRepository interface
type PostgresUploadRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUploadRepository creates a new upload repository
func NewUploadRepository(config *RepositoryConfig) repositories.UploadRepository {
	return &PostgresUploadRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create stores a new upload record
func (r *PostgresUploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (upload_id, project_id, filename, content, byte_size, content_type, uploaded_by, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		RETURNING uploaded_at
	`, r.tables.Uploads)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		upload.ID,
		upload.ProjectID,
		upload.Filename,
		upload.Content,
		upload.ByteSize,
		upload.ContentType,
		upload.UploadedBy,
	).Scan(&upload.UploadedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("upload %s: %w", upload.ID, domain.ErrConflict)
		}
		return storageErr("create upload", err)
	}

	return nil
}

// Get retrieves an upload with its full extracted content
func (r *PostgresUploadRepository) Get(ctx context.Context, uploadID string) (*models.Upload, error) {
	query := fmt.Sprintf(`
		SELECT upload_id, project_id, filename, content, byte_size, content_type, uploaded_by, uploaded_at
		FROM %s
		WHERE upload_id = $1
	`, r.tables.Uploads)

	var upload models.Upload
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, uploadID).Scan(
		&upload.ID,
		&upload.ProjectID,
		&upload.Filename,
		&upload.Content,
		&upload.ByteSize,
		&upload.ContentType,
		&upload.UploadedBy,
		&upload.UploadedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("upload %s: %w", uploadID, domain.ErrNotFound)
		}
		return nil, storageErr("get upload", err)
	}

	return &upload, nil
}

// ByProject lists a project's uploads newest first with bounded previews.
// The preview is cut in SQL so full file content never crosses the wire
// for listings.
func (r *PostgresUploadRepository) ByProject(ctx context.Context, projectID string, previewChars int) ([]models.UploadSummary, error) {
	query := fmt.Sprintf(`
		SELECT upload_id, project_id, filename, LEFT(content, $2), byte_size, content_type, uploaded_by, uploaded_at
		FROM %s
		WHERE project_id = $1
		ORDER BY uploaded_at DESC
	`, r.tables.Uploads)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID, previewChars)
	if err != nil {
		return nil, storageErr("list uploads", err)
	}
	defer rows.Close()

	uploads := make([]models.UploadSummary, 0)
	for rows.Next() {
		var upload models.UploadSummary
		err := rows.Scan(
			&upload.ID,
			&upload.ProjectID,
			&upload.Filename,
			&upload.Preview,
			&upload.ByteSize,
			&upload.ContentType,
			&upload.UploadedBy,
			&upload.UploadedAt,
		)
		if err != nil {
			return nil, storageErr("scan upload", err)
		}
		uploads = append(uploads, upload)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate uploads", err)
	}

	return uploads, nil
}

// Delete removes an upload
func (r *PostgresUploadRepository) Delete(ctx context.Context, uploadID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE upload_id = $1
	`, r.tables.Uploads)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, uploadID)
	if err != nil {
		return storageErr("delete upload", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("upload %s: %w", uploadID, domain.ErrNotFound)
	}

	return nil
}

// DeleteByProject removes all uploads for a project
func (r *PostgresUploadRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE project_id = $1
	`, r.tables.Uploads)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return storageErr("delete uploads", err)
	}

	return nil
}
