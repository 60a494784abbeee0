package handler

import (
	"errors"
	"net/http"

	"planner/internal/domain"
	"planner/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidInvitation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, "active session required")
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, "session does not own this project")
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrEngineFailure):
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrStorage):
		// Connection strings and table names stay out of responses
		httputil.RespondError(w, http.StatusInternalServerError, "storage failure, please retry")
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}
