package handler

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"

	"planner/internal/domain"
)

func TestHandleErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("bad input: %w", domain.ErrValidation), want: 400},
		{name: "invalid invitation", err: fmt.Errorf("used: %w", domain.ErrInvalidInvitation), want: 400},
		{name: "not found", err: fmt.Errorf("project x: %w", domain.ErrNotFound), want: 404},
		{name: "unauthorized", err: domain.ErrUnauthorized, want: 401},
		{name: "forbidden", err: domain.ErrForbidden, want: 403},
		{name: "conflict", err: domain.ErrConflict, want: 409},
		{name: "engine failure", err: fmt.Errorf("please try again: %w", domain.ErrEngineFailure), want: 502},
		{name: "storage", err: fmt.Errorf("get project: %w: broken pipe", domain.ErrStorage), want: 500},
		{name: "unknown", err: fmt.Errorf("surprise"), want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handleError(rec, tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleErrorHidesStorageDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	handleError(rec, fmt.Errorf("get session: %w: host=db.internal port=5432", domain.ErrStorage))

	body := rec.Body.String()
	if strings.Contains(body, "db.internal") {
		t.Errorf("response leaked storage detail: %s", body)
	}
}
