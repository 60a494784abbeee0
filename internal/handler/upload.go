package handler

import (
	"io"
	"log/slog"
	"net/http"

	"planner/internal/config"
	"planner/internal/domain/services"
	"planner/internal/httputil"
)

// UploadHandler handles file upload HTTP requests
type UploadHandler struct {
	uploadService services.UploadService
	logger        *slog.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService services.UploadService, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		logger:        logger,
	}
}

// CreateUpload stores a multipart file upload for a project. The file
// field is named "file". Size over the limit answers 413 before the
// service is reached.
// POST /projects/{id}/upload
func (h *UploadHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	// One extra byte so an at-limit file parses and an over-limit one
	// fails here with 413 instead of a truncated read
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "uploaded file exceeds the size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	if len(data) > config.MaxUploadBytes {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, "uploaded file exceeds the size limit")
		return
	}

	upload, err := h.uploadService.CreateUpload(r.Context(), &services.CreateUploadRequest{
		SessionID:   httputil.GetSessionID(r),
		ProjectID:   projectID,
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, upload)
}

// ListUploads lists a project's uploads with bounded previews
// GET /projects/{id}/uploads
func (h *UploadHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	projectID := r.PathValue("id")
	if projectID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "project ID is required")
		return
	}

	uploads, err := h.uploadService.ListUploads(r.Context(), httputil.GetSessionID(r), projectID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, uploadListResponse{ProjectID: projectID, Uploads: uploads})
}

// GetUpload retrieves an upload with full extracted content
// GET /uploads/{id}
func (h *UploadHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	if uploadID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "upload ID is required")
		return
	}

	upload, err := h.uploadService.GetUpload(r.Context(), httputil.GetSessionID(r), uploadID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, upload)
}

// DeleteUpload removes an upload
// DELETE /uploads/{id}
func (h *UploadHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	uploadID := r.PathValue("id")
	if uploadID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "upload ID is required")
		return
	}

	if err := h.uploadService.DeleteUpload(r.Context(), httputil.GetSessionID(r), uploadID); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
