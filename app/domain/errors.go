package domain

import "errors"

var (
	// Company errors
	ErrCompanyNotFound   = errors.New("company not found")
	ErrCompanyNameExists = errors.New("company name already exists")

	// User profile errors
	ErrUserProfileNotFound = errors.New("user profile not found")
	ErrUserProfileExists   = errors.New("user profile already exists")

	// Identity errors
	ErrEmailNotConfirmed = errors.New("email address has not been confirmed")

	// Idempotency errors
	ErrProvisioningRequestNotFound = errors.New("provisioning request not found")
	ErrProvisioningInProgress      = errors.New("registration request is already being processed")
	ErrProvisioningClaimLost       = errors.New("registration request was claimed by another attempt")
	ErrRequestIDReused             = errors.New("request id was already used for a different registration")
)

// AuthError is an identity provider error. Message is safe to show to end
// users and is passed through verbatim.
type AuthError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NewAuthError creates a new authentication error
func NewAuthError(code, message string, cause error) *AuthError {
	return &AuthError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Identity provider error codes
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeFlowExpired        = "FLOW_EXPIRED"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeUnknown            = "UNKNOWN_ERROR"
)

// ErrorKind classifies why account provisioning or sign-in failed.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION_FAILED"
	KindConflict     ErrorKind = "CONFLICT"
	KindProvider     ErrorKind = "PROVIDER_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindForbidden    ErrorKind = "FORBIDDEN"
	KindPersistence  ErrorKind = "PERSISTENCE_ERROR"
	KindTimeout      ErrorKind = "TIMEOUT"
	KindCompensation ErrorKind = "COMPENSATION_FAILED"
	KindUnexpected   ErrorKind = "UNEXPECTED_ERROR"
)

// ProvisioningError carries the kind and the caller-facing message of a
// failed step. Cause is for logs only.
type ProvisioningError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ProvisioningError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ProvisioningError) Unwrap() error {
	return e.Cause
}

// NewProvisioningError creates a new provisioning error
func NewProvisioningError(kind ErrorKind, message string, cause error) *ProvisioningError {
	return &ProvisioningError{
		Kind:    kind,
		Message: message,
		Cause:   cause,
	}
}
