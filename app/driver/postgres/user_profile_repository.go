package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"planora/app/domain"
	"planora/app/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserProfileRepository implements port.UserProfileRepository for PostgreSQL
type UserProfileRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewUserProfileRepository creates a new PostgreSQL user profile repository
func NewUserProfileRepository(db DatabaseIface, logger *slog.Logger) port.UserProfileRepository {
	return &UserProfileRepository{
		db:     db,
		logger: logger.With("component", "user_profile_repository"),
	}
}

// Create inserts a profile keyed by the identity subject id
func (r *UserProfileRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		INSERT INTO user_profiles (
			id, email, first_name, last_name, role, company_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.Exec(ctx, query,
		profile.ID,
		profile.Email,
		profile.FirstName,
		profile.LastName,
		string(profile.Role),
		profile.CompanyID,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return fmt.Errorf("%w: %s", domain.ErrUserProfileExists, profile.ID)
		case isForeignKeyViolation(err):
			return fmt.Errorf("%w: %s", domain.ErrCompanyNotFound, profile.CompanyID)
		}
		r.logger.Error("Failed to create user profile", "user_id", profile.ID, "error", err)
		return fmt.Errorf("failed to create user profile: %w", err)
	}

	r.logger.Info("User profile created", "user_id", profile.ID, "company_id", profile.CompanyID, "role", profile.Role)
	return nil
}

// GetByID retrieves a profile by subject id
func (r *UserProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	query := `
		SELECT id, email, first_name, last_name, role, company_id, created_at, updated_at
		FROM user_profiles
		WHERE id = $1`

	profile := &domain.UserProfile{}
	var role string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&profile.ID,
		&profile.Email,
		&profile.FirstName,
		&profile.LastName,
		&role,
		&profile.CompanyID,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserProfileNotFound
		}
		r.logger.Error("Failed to get user profile", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	profile.Role = domain.UserRole(role)

	return profile, nil
}
