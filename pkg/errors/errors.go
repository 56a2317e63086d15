// Package errors provides custom error types for the shelfsync system.
// These errors enable programmatic error checking and carry enough context
// to name the offending feed, column, or SKU in diagnostics.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the shelfsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrIncomplete indicates that a retrieval finished with fewer bytes
	// than the source declared
	ErrIncomplete = errors.New("incomplete retrieval")

	// ErrSubmissionFailed indicates that the remote catalog API rejected
	// an item submission
	ErrSubmissionFailed = errors.New("submission failed")

	// ErrMissingColumn indicates that an expected column is absent from
	// a feed schema
	ErrMissingColumn = errors.New("missing column")
)

// SchemaError represents a missing join key or expected column in a feed
// table. Schema errors are fatal: no partial catalog can be trusted once
// the feed shape is wrong.
type SchemaError struct {
	Table  string
	Column string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("table %s has no column %q", e.Table, e.Column)
	}
	return fmt.Sprintf("no column %q", e.Column)
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrMissingColumn
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(table, column string) *SchemaError {
	return &SchemaError{Table: table, Column: column}
}

// ValidationError represents a catalog item that failed an invariant check
// before dispatch. The item is rejected; the run continues.
type ValidationError struct {
	SKU     string
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.SKU != "" {
		return fmt.Sprintf("item %s: validation failed for field %s: %s", e.SKU, e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(sku, field, message string) *ValidationError {
	return &ValidationError{SKU: sku, Field: field, Message: message}
}

// SubmissionError represents a non-200 response to a single item submission.
// The failure is logged with the item named by SKU and the run continues.
type SubmissionError struct {
	SKU        string
	StatusCode int
}

// Error implements the error interface
func (e *SubmissionError) Error() string {
	return fmt.Sprintf("item %s rejected by catalog API (status %d)", e.SKU, e.StatusCode)
}

// Is implements errors.Is support
func (e *SubmissionError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// NewSubmissionError creates a new SubmissionError
func NewSubmissionError(sku string, statusCode int) *SubmissionError {
	return &SubmissionError{SKU: sku, StatusCode: statusCode}
}

// RetrievalError represents a feed file that could not be completely
// downloaded. Fatal for that feed: the pipeline cannot run on a partial
// feed.
type RetrievalError struct {
	URL      string
	Path     string
	Expected int64
	Got      int64
	Err      error
}

// Error implements the error interface
func (e *RetrievalError) Error() string {
	if e.Expected > 0 {
		return fmt.Sprintf("retrieval of %s incomplete: got %d of %d bytes", e.URL, e.Got, e.Expected)
	}
	return fmt.Sprintf("retrieval of %s failed: %v", e.URL, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *RetrievalError) Is(target error) bool {
	return target == ErrIncomplete
}

// NewRetrievalError creates a new RetrievalError
func NewRetrievalError(url, path string, expected, got int64, err error) *RetrievalError {
	return &RetrievalError{
		URL:      url,
		Path:     path,
		Expected: expected,
		Got:      got,
		Err:      err,
	}
}

// APIError represents an error from the remote catalog API
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("catalog API error on %s (status %d): %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalog API error on %s: %s", e.Endpoint, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewAPIError creates a new APIError
func NewAPIError(endpoint string, statusCode int, message string) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSchema checks if an error reports a missing column or join key
func IsSchema(err error) bool {
	return errors.Is(err, ErrMissingColumn)
}

// IsIncomplete checks if an error reports an incomplete retrieval
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncomplete)
}

// IsSubmission checks if an error reports a rejected item submission
func IsSubmission(err error) bool {
	return errors.Is(err, ErrSubmissionFailed)
}

// Fatal reports whether an error must halt the pipeline. Schema, retrieval
// and configuration failures are fatal; per-item validation and submission
// failures are not.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	if IsValidation(err) || IsSubmission(err) {
		return false
	}
	return true
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(sku, field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{SKU: sku, Field: field, Message: err.Error()}
}

// WrapAPI wraps an error as an APIError
func WrapAPI(endpoint string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    err.Error(),
		Err:        err,
	}
}

// WrapRetrieval wraps an error as a RetrievalError
func WrapRetrieval(url, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewRetrievalError(url, path, 0, 0, err)
}
