package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Form field paths accepted by account creation and sign-in.
const (
	FieldCompanyName    = "company.name"
	FieldCompanyCountry = "company.country"
	FieldCompanySector  = "company.sector"
	FieldUserEmail      = "user.email"
	FieldUserPassword   = "user.password"
	FieldUserConfirm    = "user.confirmPassword"
	FieldUserFirstName  = "user.firstName"
	FieldUserLastName   = "user.lastName"
	FieldUserRole       = "user.role"
	FieldRequestID      = "requestId"
	FieldSignInEmail    = "email"
	FieldSignInPassword = "password"
)

// Fields is a raw form submission keyed by dotted field path.
type Fields map[string]string

// Get returns the value at path, or "" when absent.
func (f Fields) Get(path string) string {
	if f == nil {
		return ""
	}
	return f[path]
}

// CompanyInput is the company half of a registration.
type CompanyInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Country string `json:"country" validate:"required,supported_country"`
	Sector  string `json:"sector" validate:"required,min=2,max=50"`
}

// UserInput is the user half of a registration.
type UserInput struct {
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=8,max=128,password_policy"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	FirstName       string `json:"firstName" validate:"required,min=2,max=50,person_name"`
	LastName        string `json:"lastName" validate:"required,min=2,max=50,person_name"`
	Role            string `json:"role" validate:"assignable_role"`
}

// AccountCreationInput is a parsed registration request.
type AccountCreationInput struct {
	Company   CompanyInput `json:"company"`
	User      UserInput    `json:"user"`
	RequestID string       `json:"requestId" validate:"omitempty,max=128"`
}

// AccountCreationInputFromFields maps a raw submission onto the input struct.
// A missing role becomes the lower-case DefaultRole, as a form would send it.
func AccountCreationInputFromFields(f Fields) AccountCreationInput {
	role := f.Get(FieldUserRole)
	if role == "" {
		role = DefaultRole.Lower()
	}

	return AccountCreationInput{
		Company: CompanyInput{
			Name:    f.Get(FieldCompanyName),
			Country: f.Get(FieldCompanyCountry),
			Sector:  f.Get(FieldCompanySector),
		},
		User: UserInput{
			Email:           f.Get(FieldUserEmail),
			Password:        f.Get(FieldUserPassword),
			ConfirmPassword: f.Get(FieldUserConfirm),
			FirstName:       f.Get(FieldUserFirstName),
			LastName:        f.Get(FieldUserLastName),
			Role:            role,
		},
		RequestID: f.Get(FieldRequestID),
	}
}

// Fingerprint identifies the submitted registration so a request id cannot
// be replayed for a different payload. Passwords are left out.
func (in AccountCreationInput) Fingerprint() string {
	h := sha256.New()
	for _, part := range []string{
		strings.TrimSpace(in.Company.Name),
		in.Company.Country,
		strings.TrimSpace(in.Company.Sector),
		strings.ToLower(strings.TrimSpace(in.User.Email)),
		strings.TrimSpace(in.User.FirstName),
		strings.TrimSpace(in.User.LastName),
		in.User.Role,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// SignInInput is a parsed sign-in request.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// SignInInputFromFields maps a raw submission onto the input struct.
func SignInInputFromFields(f Fields) SignInInput {
	return SignInInput{
		Email:    f.Get(FieldSignInEmail),
		Password: f.Get(FieldSignInPassword),
	}
}

// ActionResult is the result every account operation returns. Failures are
// reported here, never as an error value.
type ActionResult[T any] struct {
	Success     bool                `json:"success"`
	Data        *T                  `json:"data,omitempty"`
	Error       string              `json:"error,omitempty"`
	Code        ErrorKind           `json:"code,omitempty"`
	FieldErrors map[string][]string `json:"fieldErrors,omitempty"`
}

// Succeeded builds a successful result.
func Succeeded[T any](data T) ActionResult[T] {
	return ActionResult[T]{Success: true, Data: &data}
}

// Failed builds a failed result from a provisioning error.
func Failed[T any](err *ProvisioningError) ActionResult[T] {
	return ActionResult[T]{Success: false, Error: err.Message, Code: err.Kind}
}

// AccountData is returned when an account was provisioned.
type AccountData struct {
	SubjectID            uuid.UUID `json:"subjectId"`
	Email                string    `json:"email"`
	CompanyID            uuid.UUID `json:"companyId"`
	RequiresConfirmation bool      `json:"requiresConfirmation"`
}

// SignInData is returned on a successful sign-in.
type SignInData struct {
	SubjectID uuid.UUID    `json:"subjectId"`
	Session   *AuthSession `json:"session"`
}

// ProvisioningStatus is the lifecycle state of an idempotent registration.
type ProvisioningStatus string

const (
	ProvisioningPending   ProvisioningStatus = "pending"
	ProvisioningSucceeded ProvisioningStatus = "succeeded"
	ProvisioningFailed    ProvisioningStatus = "failed"
)

// ProvisioningClaim is one attempt's ownership of an idempotency key. Only
// the holder of Token may settle the record.
type ProvisioningClaim struct {
	RequestID   string
	Token       uuid.UUID
	Fingerprint string
}

// NewProvisioningClaim starts a claim with a fresh token.
func NewProvisioningClaim(requestID, fingerprint string) ProvisioningClaim {
	return ProvisioningClaim{RequestID: requestID, Token: uuid.New(), Fingerprint: fingerprint}
}

// ProvisioningRecord remembers the outcome of a registration submitted with
// a client-supplied request id.
type ProvisioningRecord struct {
	RequestID            string             `json:"request_id"`
	Status               ProvisioningStatus `json:"status"`
	Fingerprint          string             `json:"fingerprint,omitempty"`
	SubjectID            *uuid.UUID         `json:"subject_id,omitempty"`
	CompanyID            *uuid.UUID         `json:"company_id,omitempty"`
	Email                string             `json:"email,omitempty"`
	RequiresConfirmation bool               `json:"requires_confirmation"`
	Error                string             `json:"error,omitempty"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// AccountData rebuilds the success payload of a completed request.
func (r *ProvisioningRecord) AccountData() (AccountData, bool) {
	if r == nil || r.Status != ProvisioningSucceeded || r.SubjectID == nil || r.CompanyID == nil {
		return AccountData{}, false
	}
	return AccountData{
		SubjectID:            *r.SubjectID,
		Email:                r.Email,
		CompanyID:            *r.CompanyID,
		RequiresConfirmation: r.RequiresConfirmation,
	}, true
}
