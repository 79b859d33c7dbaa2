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

// CompanyRepository implements port.CompanyRepository for PostgreSQL
type CompanyRepository struct {
	db     DatabaseIface
	logger *slog.Logger
}

// NewCompanyRepository creates a new PostgreSQL company repository
func NewCompanyRepository(db DatabaseIface, logger *slog.Logger) port.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger.With("component", "company_repository"),
	}
}

// FindByName looks a company up by its exact name
func (r *CompanyRepository) FindByName(ctx context.Context, name string) (*domain.Company, error) {
	query := `
		SELECT id, name, country, sector, created_at, updated_at
		FROM companies
		WHERE name = $1`

	company := &domain.Company{}
	err := r.db.QueryRow(ctx, query, name).Scan(
		&company.ID,
		&company.Name,
		&company.Country,
		&company.Sector,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCompanyNotFound
		}
		r.logger.Error("Failed to find company", "name", name, "error", err)
		return nil, fmt.Errorf("failed to find company: %w", err)
	}

	return company, nil
}

// Create inserts a company. A duplicate name yields domain.ErrCompanyNameExists.
func (r *CompanyRepository) Create(ctx context.Context, company *domain.Company) error {
	query := `
		INSERT INTO companies (id, name, country, sector, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		company.ID,
		company.Name,
		company.Country,
		company.Sector,
		company.CreatedAt,
		company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Info("Company name already taken", "name", company.Name)
			return fmt.Errorf("%w: %s", domain.ErrCompanyNameExists, company.Name)
		}
		r.logger.Error("Failed to create company", "company_id", company.ID, "error", err)
		return fmt.Errorf("failed to create company: %w", err)
	}

	r.logger.Info("Company created", "company_id", company.ID, "name", company.Name)
	return nil
}

// Delete removes a company. Deleting a missing company is not an error, so
// compensation can be retried.
func (r *CompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM companies WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete company", "company_id", id, "error", err)
		return fmt.Errorf("failed to delete company: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn("Company already gone", "company_id", id)
		return nil
	}

	r.logger.Info("Company deleted", "company_id", id)
	return nil
}
