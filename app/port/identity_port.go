package port

//go:generate mockgen -source=identity_port.go -destination=../mocks/mock_identity_port.go

import (
	"context"

	"planora/app/domain"

	"github.com/google/uuid"
)

// IdentityProvider is the identity service as the usecases see it. Errors it
// returns for user-facing failures wrap a *domain.AuthError.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string, metadata domain.IdentityMetadata) (*domain.SignUpResult, error)
	// AdminDeleteUser succeeds when the identity no longer exists.
	AdminDeleteUser(ctx context.Context, subjectID uuid.UUID) error
	SignInWithPassword(ctx context.Context, email, password string) (*domain.SignInResult, error)
	SignOut(ctx context.Context, sessionToken string) error
	SendVerification(ctx context.Context, email string) error
	Ping(ctx context.Context) error
}

// IdentityClient is the raw identity provider driver behind the gateway.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password string, metadata domain.IdentityMetadata) (*domain.SignUpResult, error)
	AdminDeleteUser(ctx context.Context, subjectID uuid.UUID) error
	SignInWithPassword(ctx context.Context, email, password string) (*domain.SignInResult, error)
	SignOut(ctx context.Context, sessionToken string) error
	SendVerification(ctx context.Context, email string) error
	Ping(ctx context.Context) error
}
