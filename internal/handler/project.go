package handler

import (
	"log/slog"
	"net/http"

	"planner/internal/domain/services"
	"planner/internal/httputil"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	projectService services.ProjectService
	sessionService services.SessionService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService services.ProjectService, sessionService services.SessionService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// ListProjects retrieves all projects with active-user counts
// GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.ListProjects(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projectListResponse{Projects: projects})
}

// Status returns a project's active users, last activity, and document length
// GET /projects/{id}/status
func (h *ProjectHandler) Status(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	status, err := h.projectService.Status(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, status)
}

// Users lists a project's active sessions. ?fresh=true narrows to the
// freshness window.
// GET /projects/{id}/users
func (h *ProjectHandler) Users(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	fresh := r.URL.Query().Get("fresh") == "true"
	users, err := h.sessionService.ActiveUsers(r.Context(), projectID, fresh)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, usersResponse{ProjectID: projectID, ActiveUsers: users})
}

// ReconcileSessions deactivates duplicate and nameless active sessions
// for a project. Maintenance endpoint, idempotent.
// POST /projects/{id}/users/reconcile
func (h *ProjectHandler) ReconcileSessions(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	deactivated, err := h.sessionService.ReconcileDuplicateSessions(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, reconcileResponse{ProjectID: projectID, Deactivated: deactivated})
}

// DeleteProject removes the project and all records scoped to it
// DELETE /projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), projectID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, deletedResponse{ProjectID: projectID, Deleted: true})
}

// GetDocument returns the project's current planning document
// GET /document/{projectId}
func (h *ProjectHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("projectId")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	document, err := h.projectService.GetDocument(r.Context(), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, documentResponse{ProjectID: projectID, Document: document})
}

// HealthCheck is the liveness probe
// GET /health
func (h *ProjectHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
