package port

//go:generate mockgen -source=company_port.go -destination=../mocks/mock_company_port.go

import (
	"context"

	"planora/app/domain"

	"github.com/google/uuid"
)

// CompanyRepository defines company data access interface
type CompanyRepository interface {
	// FindByName returns domain.ErrCompanyNotFound when no company matches.
	FindByName(ctx context.Context, name string) (*domain.Company, error)
	// Create returns domain.ErrCompanyNameExists when the name is taken.
	Create(ctx context.Context, company *domain.Company) error
	Delete(ctx context.Context, companyID uuid.UUID) error
}
