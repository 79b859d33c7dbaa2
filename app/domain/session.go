package domain

import (
	"time"

	"github.com/google/uuid"
)

// IdentityMetadata is attached to an identity at creation time so the
// provider can hand it back on later reads.
type IdentityMetadata struct {
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      UserRole  `json:"role"`
	CompanyID uuid.UUID `json:"company_id"`
}

// Identity is a credentialed subject owned by the identity provider.
type Identity struct {
	SubjectID     uuid.UUID        `json:"subject_id"`
	Email         string           `json:"email"`
	EmailVerified bool             `json:"email_verified"`
	Metadata      IdentityMetadata `json:"metadata"`
}

// SignUpResult is returned by the identity provider after creating an identity.
type SignUpResult struct {
	SubjectID uuid.UUID `json:"subject_id"`
	Email     string    `json:"email"`
	// RequiresConfirmation is true while the email address still awaits
	// out-of-band verification.
	RequiresConfirmation bool `json:"requires_confirmation"`
}

// AuthSession is an authenticated provider session.
type AuthSession struct {
	ID         string     `json:"id"`
	Token      string     `json:"token,omitempty"`
	Active     bool       `json:"active"`
	IdentityID uuid.UUID  `json:"identity_id"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// IsValid returns true if the session is active and not expired
func (s *AuthSession) IsValid() bool {
	if s == nil || !s.Active {
		return false
	}
	return s.ExpiresAt == nil || time.Now().Before(*s.ExpiresAt)
}

// SignInResult is returned by the identity provider after a password login.
type SignInResult struct {
	Identity Identity     `json:"identity"`
	Session  *AuthSession `json:"session"`
}
