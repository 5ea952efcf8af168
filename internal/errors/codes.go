// Package errors provides structured error handling for driftwatch.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: State storage errors
//   - 3XX: Network errors (remote listing, webhook delivery)
//   - 4XX: Validation errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStorage indicates state database and file-lock errors.
	CategoryStorage Category = "STORAGE"
	// CategoryNetwork indicates network-related errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
	// SeverityInfo indicates informational only.
	SeverityInfo Severity = "INFO"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound   = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    = "ERR_102_CONFIG_INVALID"
	ErrCodeConfigPermission = "ERR_103_CONFIG_PERMISSION"

	// State storage errors (200-299)
	ErrCodeStateOpen    = "ERR_201_STATE_OPEN"
	ErrCodeStateRead    = "ERR_202_STATE_READ"
	ErrCodeStateWrite   = "ERR_203_STATE_WRITE"
	ErrCodeStateCorrupt = "ERR_204_STATE_CORRUPT"
	ErrCodeStateLocked  = "ERR_205_STATE_LOCKED"

	// Network errors (300-399)
	ErrCodeRemoteUnavailable = "ERR_301_REMOTE_UNAVAILABLE"
	ErrCodeRemoteTimeout     = "ERR_302_REMOTE_TIMEOUT"
	ErrCodeAuthFailed        = "ERR_303_AUTH_FAILED"
	ErrCodeListingFailed     = "ERR_304_LISTING_FAILED"
	ErrCodeWebhookFailed     = "ERR_305_WEBHOOK_FAILED"

	// Validation errors (400-499)
	ErrCodeInvalidInput = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidPath  = "ERR_402_INVALID_PATH"

	// Internal errors (500-599)
	ErrCodeInternal    = "ERR_501_INTERNAL"
	ErrCodeCycleFailed = "ERR_502_CYCLE_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Extract numeric portion (e.g., "101" from "ERR_101_CONFIG_NOT_FOUND")
	numStr := code[4:7]
	if len(numStr) < 1 {
		return CategoryInternal
	}

	switch numStr[0] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStorage
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	// Fatal errors: corrupted state or a second instance on the same DB
	// cannot be recovered without operator action.
	switch code {
	case ErrCodeStateCorrupt, ErrCodeStateLocked:
		return SeverityFatal
	}

	// Retryable network errors get warning severity
	if isRetryableCode(code) {
		return SeverityWarning
	}

	// Default to error severity
	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
// Webhook delivery is deliberately absent: failed batches are logged and
// skipped, never retried within a cycle.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeRemoteUnavailable, ErrCodeRemoteTimeout:
		return true
	default:
		return false
	}
}
