package errors

import (
	"fmt"
	"time"
)

// ErrorCode classifies an application error for the HTTP boundary.
type ErrorCode string

const (
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"

	// Identity and access.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Duplicate email/phone/ID number against confirmed users.
	ErrCodeConflict ErrorCode = "CONFLICT"

	// OTP email could not be sent; the registration cannot complete.
	ErrCodeDelivery ErrorCode = "DELIVERY_ERROR"

	// Persistence layer unreachable or misbehaving.
	ErrCodeStore ErrorCode = "STORE_ERROR"
)

// AppError is the typed error carried from services to the request boundary.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail attaches structured detail to the error.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsInternal reports whether the error must not leak detail to clients.
func (e *AppError) IsInternal() bool {
	return e.Code == ErrCodeInternal || e.Code == ErrCodeStore
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// Wrap wraps an existing error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

// NewValidationError reports a malformed or missing field.
func NewValidationError(field, reason string) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf("Validation failed for field '%s': %s", field, reason)).
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// NewConflictError reports a duplicate value for a uniqueness-constrained field.
func NewConflictError(field string) *AppError {
	return New(ErrCodeConflict, fmt.Sprintf("A user with this %s already exists", field)).
		WithDetail("field", field)
}

// NewNotFoundError reports an absent (or expired) resource.
func NewNotFoundError(resource string, id interface{}) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithDetail("resource", resource).
		WithDetail("id", id)
}

// NewUnauthorizedError reports failed authentication. The message is
// intentionally generic; never name which credential was wrong.
func NewUnauthorizedError(reason string) *AppError {
	return New(ErrCodeUnauthorized, reason)
}

// NewForbiddenError reports a valid identity with insufficient role.
func NewForbiddenError(reason string) *AppError {
	return New(ErrCodeForbidden, reason)
}

// NewDeliveryError reports failed outbound email delivery.
func NewDeliveryError(err error) *AppError {
	return Wrap(err, ErrCodeDelivery, "Could not deliver verification email")
}

// NewStoreError reports a persistence failure.
func NewStoreError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeStore, fmt.Sprintf("Storage operation failed: %s", operation)).
		WithDetail("operation", operation)
}

// AsAppError casts err to *AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if err != nil {
		appErr, _ = err.(*AppError)
	}
	return appErr, appErr != nil
}
