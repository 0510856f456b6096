package apperr

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalid is returned when the input fails domain validation.
var ErrInvalid = errors.New("invalid input")

// ErrConflict indicates a uniqueness or state conflict (HTTP 409).
var ErrConflict = errors.New("conflict")

// ErrNotFound indicates that the requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized indicates missing or bad credentials (HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller lacks the required role (HTTP 403).
var ErrForbidden = errors.New("forbidden")

// ValidationError collects per-field validation messages.
// It unwraps to ErrInvalid so callers can keep using errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field unless one is already present.
func (e *ValidationError) Add(field, msg string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// OrNil returns e when it carries at least one field, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

// Reject turns the collected messages into an InputError, nil when there are none.
func (e *ValidationError) Reject() error {
	if e == nil || e.Empty() {
		return nil
	}
	return &InputError{Fields: e.Fields}
}

func (e *ValidationError) Error() string { return "validation failed: " + joinFields(e.Fields) }

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// InputError rejects the whole request (HTTP 400) because of the listed fields.
// ValidationError is used for the same shape when the answer is 422.
type InputError struct {
	Fields map[string]string
}

func (e *InputError) Error() string { return "invalid input: " + joinFields(e.Fields) }

func (e *InputError) Unwrap() error { return ErrInvalid }

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, "; ")
}
