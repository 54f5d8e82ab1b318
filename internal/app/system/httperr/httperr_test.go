package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestTaxonomy(t *testing.T) {
	tests := []struct {
		err    *Error
		status int
		code   string
	}{
		{Validation("bad"), http.StatusBadRequest, "validation_error"},
		{Unauthorized("who"), http.StatusUnauthorized, "unauthorized"},
		{Forbidden("no"), http.StatusForbidden, "forbidden"},
		{NotFound("gone"), http.StatusNotFound, "not_found"},
		{Conflict("dup"), http.StatusBadRequest, "conflict"},
		{Internal("boom", errors.New("cause")), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if tt.err.Status != tt.status {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.status)
			}
			if tt.err.Code != tt.code {
				t.Errorf("code = %q, want %q", tt.err.Code, tt.code)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("cause")
	e := Internal("wrapper", cause)
	if !errors.Is(e, cause) {
		t.Error("Internal does not unwrap to its cause")
	}
	if !strings.Contains(e.Error(), "cause") {
		t.Errorf("Error() = %q, want cause included", e.Error())
	}
}

func TestWriteKnownError(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, zap.NewNop(), NotFound("Project not found"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if body["error"] != "not_found" || body["message"] != "Project not found" {
		t.Errorf("body = %v", body)
	}
}

func TestWriteOpaque500(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, zap.NewNop(), fmt.Errorf("secret driver detail"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret driver detail") {
		t.Error("internal cause leaked to the response body")
	}
}

func TestWriteWrappedError(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := fmt.Errorf("context: %w", Forbidden("nope"))
	Write(rec, zap.NewNop(), wrapped)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403 from the wrapped error", rec.Code)
	}
}
