// Package apperr defines the typed failure taxonomy shared by all services and
// the canonical error envelope returned to clients. Handlers branch on Kind to
// pick the HTTP status; internal details (SQL errors, stack traces) never reach
// the response body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure. Callers branch on Kind, never on message text.
type Kind int

const (
	Validation Kind = iota
	NotFound
	Conflict
	InsufficientResource
	InvalidStateTransition
	Forbidden
	Internal
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation_error"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case InsufficientResource:
		return "insufficient_resource"
	case InvalidStateTransition:
		return "invalid_state_transition"
	case Forbidden:
		return "forbidden"
	default:
		return "internal_error"
	}
}

// HTTPStatus maps the kind to its response status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case Validation:
		return http.StatusUnprocessableEntity
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	case InsufficientResource:
		return http.StatusUnprocessableEntity
	case InvalidStateTransition:
		return http.StatusConflict
	case Forbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Error is a typed domain failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a typed error with a human-readable message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a typed error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a typed error.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind of err, or Internal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is a typed error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// ── API envelope ──────────────────────────────────────────────────────────────

// APIError is the canonical error body for all 4xx/5xx responses.
type APIError struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Envelope builds the response body for err. Untyped errors are reported as
// internal without leaking their message.
func Envelope(err error) (int, *APIError) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind.HTTPStatus(), &APIError{Kind: e.Kind.String(), Detail: e.Msg}
	}
	return http.StatusInternalServerError, &APIError{Kind: Internal.String(), Detail: "internal server error"}
}

// ValidationFields wraps multiple field errors.
type ValidationFields struct {
	Kind   string            `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

// NewValidationFields builds the envelope for request binding failures.
func NewValidationFields(fields map[string]string) *ValidationFields {
	return &ValidationFields{Kind: Validation.String(), Detail: "validation failed", Fields: fields}
}
