package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"planner/internal/domain"
	"planner/internal/domain/models"
	"planner/internal/domain/repositories"
)

// PostgresProjectRepository implements the ProjectRepository interface
type PostgresProjectRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(config *RepositoryConfig) repositories.ProjectRepository {
	return &PostgresProjectRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Ensure creates the project if absent. ON CONFLICT DO NOTHING makes
// repeat calls no-ops that leave created_at untouched.
func (r *PostgresProjectRepository) Ensure(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, created_at, updated_at)
		VALUES ($1, now(), now())
		ON CONFLICT (project_id) DO NOTHING
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return storageErr("ensure project", err)
	}

	return nil
}

// Get retrieves a project by ID
func (r *PostgresProjectRepository) Get(ctx context.Context, projectID string) (*models.Project, error) {
	query := fmt.Sprintf(`
		SELECT project_id, created_at, updated_at
		FROM %s
		WHERE project_id = $1
	`, r.tables.Projects)

	var project models.Project
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, projectID).Scan(
		&project.ID,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, storageErr("get project", err)
	}

	return &project, nil
}

// Touch bumps the project's updated_at timestamp
func (r *PostgresProjectRepository) Touch(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET updated_at = now() WHERE project_id = $1
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return storageErr("touch project", err)
	}

	return nil
}

// Exists reports whether the project exists
func (r *PostgresProjectRepository) Exists(ctx context.Context, projectID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE project_id = $1)
	`, r.tables.Projects)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, projectID).Scan(&exists); err != nil {
		return false, storageErr("check project exists", err)
	}

	return exists, nil
}

// Delete removes the project record
func (r *PostgresProjectRepository) Delete(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s WHERE project_id = $1
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, projectID)
	if err != nil {
		return storageErr("delete project", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	return nil
}

// List retrieves all projects ordered by updated_at DESC
func (r *PostgresProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := fmt.Sprintf(`
		SELECT project_id, created_at, updated_at
		FROM %s
		ORDER BY updated_at DESC
	`, r.tables.Projects)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, storageErr("list projects", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var project models.Project
		if err := rows.Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt); err != nil {
			return nil, storageErr("scan project", err)
		}
		projects = append(projects, project)
	}

	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate projects", err)
	}

	// Return empty slice instead of nil if no projects
	if projects == nil {
		projects = []models.Project{}
	}

	return projects, nil
}
