package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/app/domain"
)

func TestUserProfile_NewUserProfile(t *testing.T) {
	tests := []struct {
		name      string
		subjectID uuid.UUID
		email     string
		role      domain.UserRole
		companyID uuid.UUID
		wantErr   bool
	}{
		{
			name:      "valid profile",
			subjectID: uuid.New(),
			email:     "ada@acme.io",
			role:      domain.UserRoleAdmin,
			companyID: uuid.New(),
		},
		{
			name:      "invalid email",
			subjectID: uuid.New(),
			email:     "invalid-email",
			role:      domain.UserRoleAdmin,
			companyID: uuid.New(),
			wantErr:   true,
		},
		{
			name:      "empty email",
			subjectID: uuid.New(),
			role:      domain.UserRoleAdmin,
			companyID: uuid.New(),
			wantErr:   true,
		},
		{
			name:      "zero subject ID",
			subjectID: uuid.UUID{},
			email:     "ada@acme.io",
			role:      domain.UserRoleAdmin,
			companyID: uuid.New(),
			wantErr:   true,
		},
		{
			name:      "zero company ID",
			subjectID: uuid.New(),
			email:     "ada@acme.io",
			role:      domain.UserRoleAdmin,
			companyID: uuid.UUID{},
			wantErr:   true,
		},
		{
			name:      "unknown role",
			subjectID: uuid.New(),
			email:     "ada@acme.io",
			role:      domain.UserRole("OWNER"),
			companyID: uuid.New(),
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile, err := domain.NewUserProfile(tt.subjectID, tt.email, "Ada", "Lovelace", tt.role, tt.companyID)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, profile)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.subjectID, profile.ID)
			assert.Equal(t, tt.email, profile.Email)
			assert.Equal(t, tt.companyID, profile.CompanyID)
			assert.Equal(t, "Ada Lovelace", profile.FullName())
			assert.False(t, profile.CreatedAt.IsZero())
			assert.Equal(t, profile.CreatedAt, profile.UpdatedAt)
		})
	}
}

func TestNormalizeRole(t *testing.T) {
	tests := []struct {
		raw     string
		want    domain.UserRole
		wantErr bool
	}{
		{raw: "", want: domain.DefaultRole},
		{raw: "manager", want: domain.UserRoleManager},
		{raw: "admin", want: domain.UserRoleAdmin},
		{raw: "employee", want: domain.UserRoleEmployee},
		{raw: "   ", wantErr: true},
		{raw: " admin ", wantErr: true},
		{raw: "Manager", wantErr: true},
		{raw: "EMPLOYEE", wantErr: true},
		{raw: "super_admin", wantErr: true},
		{raw: "viewer", wantErr: true},
		{raw: "owner", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := domain.NormalizeRole(tt.raw)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUserRole_Privilege(t *testing.T) {
	assert.True(t, domain.UserRoleSuperAdmin.AtLeast(domain.UserRoleAdmin))
	assert.True(t, domain.UserRoleManager.AtLeast(domain.UserRoleManager))
	assert.False(t, domain.UserRoleViewer.AtLeast(domain.UserRoleEmployee))

	assert.True(t, domain.UserRoleViewer.IsValid())
	assert.False(t, domain.UserRole("admin").IsValid())
	assert.Equal(t, "manager", domain.UserRoleManager.Lower())

	assert.Equal(t, []domain.UserRole{
		domain.UserRoleEmployee,
		domain.UserRoleManager,
		domain.UserRoleAdmin,
	}, domain.AssignableRoles())
}
