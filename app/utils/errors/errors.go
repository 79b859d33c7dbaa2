package errors

import (
	"errors"
	"fmt"
	"net/http"

	"planora/app/domain"
)

// ErrorCode represents specific error types returned over HTTP
type ErrorCode string

const (
	// Request errors
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeConflict         ErrorCode = "CONFLICT"

	// Upstream errors
	ErrCodeProviderError      ErrorCode = "PROVIDER_ERROR"
	ErrCodePersistenceError   ErrorCode = "PERSISTENCE_ERROR"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"

	// System errors
	ErrCodeInternalError   ErrorCode = "INTERNAL_ERROR"
	ErrCodeUnexpectedError ErrorCode = "UNEXPECTED_ERROR"

	// Rate limiting
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
		Cause:      cause,
	}
}

// AsAppError converts an error to AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// FromKind maps a domain failure kind onto its transport code
func FromKind(kind domain.ErrorKind) ErrorCode {
	switch kind {
	case domain.KindValidation:
		return ErrCodeValidationFailed
	case domain.KindConflict:
		return ErrCodeConflict
	case domain.KindUnauthorized:
		return ErrCodeUnauthorized
	case domain.KindForbidden:
		return ErrCodeForbidden
	case domain.KindProvider:
		return ErrCodeProviderError
	case domain.KindPersistence:
		return ErrCodePersistenceError
	case domain.KindTimeout:
		return ErrCodeTimeout
	case domain.KindUnexpected:
		return ErrCodeUnexpectedError
	default:
		return ErrCodeInternalError
	}
}

// StatusForKind returns the HTTP status for a failed result
func StatusForKind(kind domain.ErrorKind) int {
	return getHTTPStatusCode(FromKind(kind))
}

// getHTTPStatusCode maps error codes to HTTP status codes
func getHTTPStatusCode(code ErrorCode) int {
	switch code {
	case ErrCodeValidationFailed, ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeProviderError:
		return http.StatusBadGateway
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// NewBadRequest creates a bad request error with details
func NewBadRequest(details string, cause error) *AppError {
	return Wrap(ErrCodeBadRequest, "bad request", cause).WithDetails(details)
}

// NewRateLimitExceeded creates a rate limit error carrying the seconds until
// the next request is allowed
func NewRateLimitExceeded(retryAfter int) *AppError {
	return New(ErrCodeRateLimitExceeded, "rate limit exceeded").WithContext("retry_after", retryAfter)
}
