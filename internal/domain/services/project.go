package services

import (
	"context"
	"time"

	"planner/internal/domain/models"
)

// ProjectStatus is the aggregate status view of a project.
type ProjectStatus struct {
	ProjectID      string           `json:"projectId"`
	ActiveUsers    []models.Session `json:"activeUsers"`
	LastActivity   *time.Time       `json:"lastActivity,omitempty"`
	DocumentLength int              `json:"documentLength"`
}

// ProjectService defines business logic operations for projects.
type ProjectService interface {
	// EnsureProject creates the project if absent. Idempotent.
	EnsureProject(ctx context.Context, projectID string) error

	// GetProject retrieves a project by ID
	GetProject(ctx context.Context, projectID string) (*models.Project, error)

	// ListProjects retrieves all projects with active-user counts
	ListProjects(ctx context.Context) ([]models.ProjectSummary, error)

	// Status returns active users, last activity, and document length
	Status(ctx context.Context, projectID string) (*ProjectStatus, error)

	// GetDocument returns the project's current document content
	// ("" when none exists yet).
	GetDocument(ctx context.Context, projectID string) (string, error)

	// DeleteProject removes the project and everything scoped to it -
	// document, sessions, conversations, uploads, invitations - in one
	// transaction. Returns domain.ErrNotFound if the project is absent.
	DeleteProject(ctx context.Context, projectID string) error
}
