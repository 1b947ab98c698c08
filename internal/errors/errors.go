package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a category of application error.
type ErrorCode string

const (
	// ErrCodeNotFound indicates a resource was not found.
	ErrCodeNotFound ErrorCode = "not_found"
	// ErrCodeUnauthenticated indicates a request without a usable identity,
	// or one targeting a job the caller does not own.
	ErrCodeUnauthenticated ErrorCode = "unauthenticated"
	// ErrCodeConflict indicates a conflict with existing data (e.g., unique constraint violation).
	ErrCodeConflict ErrorCode = "conflict"
	// ErrCodeValidation indicates invalid input data.
	ErrCodeValidation ErrorCode = "validation"
	// ErrCodeForeignKey indicates a foreign key constraint violation.
	ErrCodeForeignKey ErrorCode = "foreign_key"
	// ErrCodeGenerationFormat indicates unparseable provider text; the error
	// carries a bounded snippet of the offending response.
	ErrCodeGenerationFormat ErrorCode = "generation_format"
	// ErrCodeProviderSubmission indicates the provider rejected a submission.
	ErrCodeProviderSubmission ErrorCode = "provider_submission"
	// ErrCodeProviderTransient indicates a poll request itself failed; these
	// are swallowed and retried next tick, never a terminal job state.
	ErrCodeProviderTransient ErrorCode = "provider_transient"
	// ErrCodeEditQuotaExceeded indicates the job's edit quota is exhausted.
	ErrCodeEditQuotaExceeded ErrorCode = "edit_quota_exceeded"
	// ErrCodeInconsistentVersionState indicates a defensive invariant
	// violation in report versioning, e.g. two current rows for one kind.
	ErrCodeInconsistentVersionState ErrorCode = "inconsistent_version_state"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "internal"
	// ErrCodeTimeout indicates a timeout occurred.
	ErrCodeTimeout ErrorCode = "timeout"
	// ErrCodeCanceled indicates the operation was canceled.
	ErrCodeCanceled ErrorCode = "canceled"
)

// AppError represents a structured application error with a code, message, and
// optional cause. It supports error wrapping and unwrapping for use with
// errors.Is and errors.As.
type AppError struct {
	// Code categorizes the error type
	Code ErrorCode
	// Message is a human-readable error message
	Message string
	// Cause is the underlying error that caused this error (optional)
	Cause error
	// Field is the specific field that caused the error (optional, for validation errors)
	Field string
	// Snippet is a bounded excerpt of offending provider text (generation_format only)
	Snippet string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, enabling errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NotFound creates a new NotFound error.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// NotFoundf creates a new NotFound error with formatted message.
func NotFoundf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated creates a new Unauthenticated error.
func Unauthenticated(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthenticated, Message: message}
}

// Conflict creates a new Conflict error.
func Conflict(message string) *AppError {
	return &AppError{Code: ErrCodeConflict, Message: message}
}

// Validation creates a new Validation error.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

// Validationf creates a new Validation error with formatted message.
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationField creates a new Validation error for a specific field.
func ValidationField(field, message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message, Field: field}
}

// GenerationFormat creates a format error for unparseable provider text.
// The snippet is already bounded by the caller.
func GenerationFormat(message, snippet string) *AppError {
	return &AppError{Code: ErrCodeGenerationFormat, Message: message, Snippet: snippet}
}

// GenerationFormatWrap wraps a normalization failure as a format error.
func GenerationFormatWrap(err error, message, snippet string) *AppError {
	return &AppError{Code: ErrCodeGenerationFormat, Message: message, Snippet: snippet, Cause: err}
}

// ProviderSubmission creates an error for a rejected provider submission.
func ProviderSubmission(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeProviderSubmission, Message: message, Cause: cause}
}

// ProviderTransient creates an error for a failed poll request.
func ProviderTransient(message string, cause error) *AppError {
	return &AppError{Code: ErrCodeProviderTransient, Message: message, Cause: cause}
}

// EditQuotaExceeded creates an error for an exhausted edit quota.
func EditQuotaExceeded(message string) *AppError {
	return &AppError{Code: ErrCodeEditQuotaExceeded, Message: message}
}

// InconsistentVersionState creates a defensive invariant-violation error.
func InconsistentVersionState(message string) *AppError {
	return &AppError{Code: ErrCodeInconsistentVersionState, Message: message}
}

// Internal creates a new Internal error.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// Internalf creates a new Internal error with formatted message.
func Internalf(format string, args ...any) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error with an AppError, preserving the cause.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an existing error with an AppError and formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...), Cause: err}
}

// isCode checks if an error has a specific error code.
func isCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// IsNotFound checks if an error is a NotFound error.
func IsNotFound(err error) bool { return isCode(err, ErrCodeNotFound) }

// IsUnauthenticated checks if an error is an Unauthenticated error.
func IsUnauthenticated(err error) bool { return isCode(err, ErrCodeUnauthenticated) }

// IsConflict checks if an error is a Conflict error.
func IsConflict(err error) bool { return isCode(err, ErrCodeConflict) }

// IsValidation checks if an error is a Validation error.
func IsValidation(err error) bool { return isCode(err, ErrCodeValidation) }

// IsForeignKey checks if an error is a ForeignKey error.
func IsForeignKey(err error) bool { return isCode(err, ErrCodeForeignKey) }

// IsGenerationFormat checks if an error is a GenerationFormat error.
func IsGenerationFormat(err error) bool { return isCode(err, ErrCodeGenerationFormat) }

// IsProviderSubmission checks if an error is a ProviderSubmission error.
func IsProviderSubmission(err error) bool { return isCode(err, ErrCodeProviderSubmission) }

// IsProviderTransient checks if an error is a ProviderTransient error.
func IsProviderTransient(err error) bool { return isCode(err, ErrCodeProviderTransient) }

// IsEditQuotaExceeded checks if an error is an EditQuotaExceeded error.
func IsEditQuotaExceeded(err error) bool { return isCode(err, ErrCodeEditQuotaExceeded) }

// IsInconsistentVersionState checks if an error is an InconsistentVersionState error.
func IsInconsistentVersionState(err error) bool { return isCode(err, ErrCodeInconsistentVersionState) }

// IsInternal checks if an error is an Internal error.
func IsInternal(err error) bool { return isCode(err, ErrCodeInternal) }

// IsTimeout checks if an error is a Timeout error.
func IsTimeout(err error) bool { return isCode(err, ErrCodeTimeout) }

// IsCanceled checks if an error is a Canceled error.
func IsCanceled(err error) bool { return isCode(err, ErrCodeCanceled) }

// GetCode returns the ErrorCode from an error, or empty string if not an AppError.
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// GetField returns the Field from an error, or empty string if not an AppError or no field set.
func GetField(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// GetSnippet returns the Snippet from an error, or empty string when absent.
func GetSnippet(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Snippet
	}
	return ""
}
