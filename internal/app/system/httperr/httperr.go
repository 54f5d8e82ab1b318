// internal/app/system/httperr/httperr.go
//
// Package httperr defines the API error taxonomy and writes uniform JSON
// error bodies. Controllers translate store and validation errors into
// these before responding.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Error is an API-visible error with an HTTP status and a stable code.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// Validation is a 400 for missing or malformed input.
func Validation(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "validation_error", Message: msg}
}

// Unauthorized is a 401 for missing or invalid credentials.
func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Code: "unauthorized", Message: msg}
}

// Forbidden is a 403 for a failed capability check.
func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Code: "forbidden", Message: msg}
}

// NotFound is a 404 for an absent document or one the caller cannot see.
func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Code: "not_found", Message: msg}
}

// Conflict covers duplicate names and exhausted generation budgets.
// It maps to 400, matching the observed API behavior.
func Conflict(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "conflict", Message: msg}
}

// Internal is a 500 wrapping an unexpected storage or system error.
func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Message: msg, err: err}
}

// Write sends err as a JSON response. Non-*Error values become opaque 500s;
// the underlying cause is logged, never echoed to the caller.
func Write(w http.ResponseWriter, logger *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = Internal("Internal server error", err)
	}
	if e.Status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", zap.String("code", e.Code), zap.Error(err))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}
