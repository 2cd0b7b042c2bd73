// Package errors provides the error taxonomy of the advisor: sentinel errors
// for errors.Is checks and typed errors for the four failure kinds the API
// surfaces (validation, not found, schema violation, upstream).
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested record does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates the caller provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSchemaViolation indicates the model's answer broke the output contract.
	ErrSchemaViolation = errors.New("schema violation")

	// ErrUpstream indicates the generative model call itself failed.
	ErrUpstream = errors.New("upstream failure")

	// ErrRateLimitExceeded indicates rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// ValidationError represents input validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NotFoundError identifies the record that was looked up.
type NotFoundError struct {
	University string
	MajorCode  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("major %s/%s: %v", e.University, e.MajorCode, ErrNotFound)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a not-found error for a composite key.
func NewNotFoundError(university, majorCode string) *NotFoundError {
	return &NotFoundError{University: university, MajorCode: majorCode}
}

// SchemaViolationError describes how a model answer broke the contract.
type SchemaViolationError struct {
	Reason string
	Err    error
}

func (e *SchemaViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("schema violation: %s: %v", e.Reason, e.Err)
	}
	return "schema violation: " + e.Reason
}

// Is reports ErrSchemaViolation so callers need not know the concrete type.
func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}

func (e *SchemaViolationError) Unwrap() error {
	return e.Err
}

// NewSchemaViolation creates a schema violation error.
func NewSchemaViolation(reason string, err error) *SchemaViolationError {
	return &SchemaViolationError{Reason: reason, Err: err}
}

// UpstreamError represents a failed call to a model provider.
type UpstreamError struct {
	Provider string
	Model    string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error (provider=%s, model=%s): %v", e.Provider, e.Model, e.Err)
}

func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new upstream error.
func NewUpstreamError(provider, model string, err error) *UpstreamError {
	return &UpstreamError{
		Provider: provider,
		Model:    model,
		Err:      err,
	}
}

// Kind names the taxonomy bucket of err for API bodies and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidInput):
		return "validation_error"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, ErrUpstream):
		return "upstream_error"
	case errors.Is(err, ErrRateLimitExceeded):
		return "rate_limited"
	default:
		return "internal_error"
	}
}
