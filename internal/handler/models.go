package handler

import "planner/internal/domain/models"

// Request and response bodies for the HTTP surface. Service-layer types
// are reused where they already fit; the types here exist only where the
// wire shape differs from the service shape.

type joinRequest struct {
	ProjectID string `json:"projectId"`
	UserName  string `json:"userName"`
}

type joinResponse struct {
	SessionID string `json:"sessionId"`
	ProjectID string `json:"projectId"`
	UserName  string `json:"userName,omitempty"`
}

type leaveResponse struct {
	Left bool `json:"left"`
}

type chatRequest struct {
	ProjectID string `json:"projectId"`
	Message   string `json:"message"`
}

type documentResponse struct {
	ProjectID string `json:"projectId"`
	Document  string `json:"document"`
}

type projectListResponse struct {
	Projects []models.ProjectSummary `json:"projects"`
}

type usersResponse struct {
	ProjectID   string           `json:"projectId"`
	ActiveUsers []models.Session `json:"activeUsers"`
}

type deletedResponse struct {
	ProjectID string `json:"projectId"`
	Deleted   bool   `json:"deleted"`
}

type clearedResponse struct {
	ProjectID string `json:"projectId"`
	Cleared   bool   `json:"cleared"`
}

type reconcileResponse struct {
	ProjectID   string `json:"projectId"`
	Deactivated int    `json:"deactivated"`
}

type uploadListResponse struct {
	ProjectID string                 `json:"projectId"`
	Uploads   []models.UploadSummary `json:"uploads"`
}

type inviteRequest struct {
	Email       string `json:"email"`
	InviterName string `json:"inviterName"`
}

type acceptRequest struct {
	UserName string `json:"userName"`
}

type acceptResponse struct {
	SessionID string `json:"sessionId"`
	ProjectID string `json:"projectId"`
}

type healthResponse struct {
	Status string `json:"status"`
}
