// Package apperr defines the error kinds returned by the asset workflow
// and scheduling core. Callers classify errors with errors.Is against the
// Err* sentinels or with KindOf; the HTTP layer maps kinds to status codes.
package apperr

import (
	"errors"
	"net/http"

	"github.com/dalemusser/assetflow/internal/domain/models"
)

// Kind is a machine-readable error class.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindNotFound      Kind = "not_found"
	KindConflict      Kind = "conflict"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrValidation    = &Error{Kind: KindValidation, Message: "validation failed"}
	ErrAuthorization = &Error{Kind: KindAuthorization, Message: "not authorized"}
	ErrNotFound      = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict      = &Error{Kind: KindConflict, Message: "conflict"}
)

// Error is the domain error type with structured metadata.
type Error struct {
	Kind      Kind              // error class
	Message   string            // human-readable message
	Metadata  map[string]string // diagnostic context (required roles, statuses, ...)
	Conflicts []models.Conflict // populated for scheduling overlaps
	Cause     error             // wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Authorization creates an authorization error carrying diagnostics.
func Authorization(message string, metadata map[string]string) *Error {
	return &Error{Kind: KindAuthorization, Message: message, Metadata: metadata}
}

// NotFound creates a not-found error.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflicted creates a conflict error. Use Overlap for scheduling overlaps.
func Conflicted(message string, metadata map[string]string) *Error {
	return &Error{Kind: KindConflict, Message: message, Metadata: metadata}
}

// Overlap creates a conflict error carrying the overlapping slots.
func Overlap(conflicts []models.Conflict) *Error {
	return &Error{
		Kind:      KindConflict,
		Message:   "requested interval overlaps an existing reservation",
		Conflicts: conflicts,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HTTPStatus maps an error kind to an HTTP status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
