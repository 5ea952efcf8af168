package errors

import (
	"fmt"
)

// DriftError is the structured error type for driftwatch.
// It provides rich context for error handling, logging, and user presentation.
type DriftError struct {
	// Code is the unique error code (e.g., "ERR_201_STATE_OPEN").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Storage, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *DriftError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *DriftError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with DriftError.
func (e *DriftError) Is(target error) bool {
	if t, ok := target.(*DriftError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *DriftError) WithDetail(key, value string) *DriftError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *DriftError) WithSuggestion(suggestion string) *DriftError {
	e.Suggestion = suggestion
	return e
}

// New creates a new DriftError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *DriftError {
	return &DriftError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a DriftError from an existing error.
// The error's message becomes the DriftError message.
func Wrap(code string, err error) *DriftError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *DriftError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// StorageError creates a state-database error.
func StorageError(message string, cause error) *DriftError {
	return New(ErrCodeStateWrite, message, cause)
}

// RemoteError creates a remote-listing network error.
// Remote errors are typically retryable.
func RemoteError(message string, cause error) *DriftError {
	return New(ErrCodeRemoteUnavailable, message, cause)
}

// WebhookError creates a webhook delivery error.
func WebhookError(message string, cause error) *DriftError {
	return New(ErrCodeWebhookFailed, message, cause)
}

// ValidationError creates a validation-related error.
func ValidationError(message string, cause error) *DriftError {
	return New(ErrCodeInvalidInput, message, cause)
}

// InternalError creates an internal error.
func InternalError(message string, cause error) *DriftError {
	return New(ErrCodeInternal, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a DriftError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(*DriftError); ok {
		return de.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if de, ok := err.(*DriftError); ok {
		return de.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a DriftError.
// Returns empty string if not a DriftError.
func GetCode(err error) string {
	if de, ok := err.(*DriftError); ok {
		return de.Code
	}
	return ""
}

// GetCategory extracts the category from a DriftError.
// Returns empty string if not a DriftError.
func GetCategory(err error) Category {
	if de, ok := err.(*DriftError); ok {
		return de.Category
	}
	return ""
}
