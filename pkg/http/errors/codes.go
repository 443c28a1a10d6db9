package errors

// Error codes for standardized error responses
const (
	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound             = "not_found"
	ErrCodeConfirmationRequired = "confirmation_required"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodePersistFailed      = "persist_failed"
	ErrCodeServiceUnavailable = "service_unavailable"
)
