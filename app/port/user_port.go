package port

//go:generate mockgen -source=user_port.go -destination=../mocks/mock_user_port.go

import (
	"context"

	"planora/app/domain"

	"github.com/google/uuid"
)

// UserProfileRepository defines user profile data access interface
type UserProfileRepository interface {
	// Create returns domain.ErrUserProfileExists when the id is taken and
	// domain.ErrCompanyNotFound when the company is gone.
	Create(ctx context.Context, profile *domain.UserProfile) error
	GetByID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error)
}
