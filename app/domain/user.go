package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user. Values are stored in their
// canonical upper-case form.
type UserRole string

const (
	UserRoleSuperAdmin UserRole = "SUPER_ADMIN"
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleManager    UserRole = "MANAGER"
	UserRoleEmployee   UserRole = "EMPLOYEE"
	UserRoleViewer     UserRole = "VIEWER"
)

// DefaultRole is assigned when a registration does not name a role.
const DefaultRole = UserRoleEmployee

// rolePrivilege orders roles from least to most privileged.
var rolePrivilege = map[UserRole]int{
	UserRoleViewer:     0,
	UserRoleEmployee:   1,
	UserRoleManager:    2,
	UserRoleAdmin:      3,
	UserRoleSuperAdmin: 4,
}

// assignableRoles can be chosen through self-registration.
var assignableRoles = []UserRole{UserRoleAdmin, UserRoleManager, UserRoleEmployee}

// AssignableRoles returns the roles a registrant may pick, lowest privilege first.
func AssignableRoles() []UserRole {
	roles := make([]UserRole, len(assignableRoles))
	for i, r := range assignableRoles {
		roles[len(assignableRoles)-1-i] = r
	}
	return roles
}

// NormalizeRole converts a form value ("manager") into its canonical enum.
// Only the lower-case form spelling is accepted. An empty value yields
// DefaultRole. Roles that exist but are not assignable through registration
// are rejected like unknown ones.
func NormalizeRole(raw string) (UserRole, error) {
	if raw == "" {
		return DefaultRole, nil
	}

	for _, r := range assignableRoles {
		if raw == r.Lower() {
			return r, nil
		}
	}
	return "", fmt.Errorf("invalid role: %s", raw)
}

// IsValid reports whether the role is one of the known roles.
func (r UserRole) IsValid() bool {
	_, ok := rolePrivilege[r]
	return ok
}

// AtLeast reports whether r carries at least the privilege of other.
func (r UserRole) AtLeast(other UserRole) bool {
	return rolePrivilege[r] >= rolePrivilege[other]
}

// Lower returns the form-boundary spelling of the role.
func (r UserRole) Lower() string {
	return strings.ToLower(string(r))
}

// UserProfile is the local mirror of an identity. Its ID is the identity
// provider's subject id.
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      UserRole  `json:"role"`
	CompanyID uuid.UUID `json:"company_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUserProfile creates a profile keyed by the identity subject id.
func NewUserProfile(subjectID uuid.UUID, email, firstName, lastName string, role UserRole, companyID uuid.UUID) (*UserProfile, error) {
	if subjectID == uuid.Nil {
		return nil, fmt.Errorf("subject ID is required")
	}

	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("invalid email format: %w", err)
	}

	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}

	if companyID == uuid.Nil {
		return nil, fmt.Errorf("company ID is required")
	}

	now := time.Now()

	return &UserProfile{
		ID:        subjectID,
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		Role:      role,
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FullName returns "First Last".
func (u *UserProfile) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
