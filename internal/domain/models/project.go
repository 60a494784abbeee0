package models

import "time"

// Project is a tenant/workspace scoping one document, its sessions,
// conversations, uploads, and invitations. The identifier is caller-chosen.
type Project struct {
	ID        string    `json:"projectId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProjectSummary is a project row annotated with its active-user count,
// as returned by project listings.
type ProjectSummary struct {
	Project
	ActiveUsers int `json:"activeUsers"`
}

// Document is the single mutable planning artifact per project, replaced
// wholesale on update. Its id is derived from the project id so that at
// most one live document exists per project.
type Document struct {
	ID        string    `json:"documentId"`
	ProjectID string    `json:"projectId"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DocumentIDPrefix namespaces derived document ids.
const DocumentIDPrefix = "doc-"

// DocumentID derives the document id for a project.
func DocumentID(projectID string) string {
	return DocumentIDPrefix + projectID
}
