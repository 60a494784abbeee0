package repositories

import (
	"context"

	"planner/internal/domain/models"
)

// ProjectRepository owns project identity and lifecycle.
type ProjectRepository interface {
	// Ensure creates the project if absent. Idempotent: re-ensuring an
	// existing id leaves created_at untouched and never errors.
	Ensure(ctx context.Context, projectID string) error

	// Get retrieves a project by id. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, projectID string) (*models.Project, error)

	// Touch bumps the project's updated_at. No-op if the project is absent.
	Touch(ctx context.Context, projectID string) error

	// Delete removes the project record only. Cascading to dependent
	// stores is orchestrated by the service inside one transaction.
	// Returns domain.ErrNotFound if the project did not exist.
	Delete(ctx context.Context, projectID string) error

	// Exists reports whether the project exists.
	Exists(ctx context.Context, projectID string) (bool, error)

	// List retrieves all projects ordered by updated_at descending.
	List(ctx context.Context) ([]models.Project, error)
}

// DocumentRepository owns the one current-document blob per project.
type DocumentRepository interface {
	// Get returns the project's document content, or "" if none exists.
	Get(ctx context.Context, projectID string) (string, error)

	// Replace upserts the project's document, fully overwriting any
	// previous content.
	Replace(ctx context.Context, projectID, content string) error

	// DeleteByProject removes the project's document if present.
	DeleteByProject(ctx context.Context, projectID string) error
}
