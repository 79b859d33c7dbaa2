package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"planora/app/domain"
	"planora/app/port"

	"github.com/google/uuid"
)

// IdentityGateway implements port.IdentityProvider.
// It sits between the usecases and the identity driver: it maps registration
// fields onto what the driver expects and rejects driver answers that do not
// carry the identifiers the usecases rely on.
type IdentityGateway struct {
	client port.IdentityClient
	logger *slog.Logger
}

// NewIdentityGateway creates a new IdentityGateway instance
func NewIdentityGateway(client port.IdentityClient, logger *slog.Logger) *IdentityGateway {
	return &IdentityGateway{
		client: client,
		logger: logger.With("component", "identity_gateway"),
	}
}

var _ port.IdentityProvider = (*IdentityGateway)(nil)

// SignUp creates the identity and checks that a subject id came back
func (g *IdentityGateway) SignUp(ctx context.Context, email, password string, metadata domain.IdentityMetadata) (*domain.SignUpResult, error) {
	email = strings.TrimSpace(email)
	metadata = mapMetadata(metadata)

	g.logger.Debug("signing up identity", "email", email, "company_id", metadata.CompanyID, "role", metadata.Role)

	result, err := g.client.SignUp(ctx, email, password, metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to sign up identity: %w", err)
	}
	if result == nil || result.SubjectID == uuid.Nil {
		g.logger.Error("identity provider returned no subject id", "email", email)
		return nil, domain.NewAuthError(domain.ErrCodeInternal, "Identity provider returned no subject", nil)
	}
	if result.Email == "" {
		result.Email = email
	}

	return result, nil
}

// AdminDeleteUser removes an identity; a nil subject is a no-op
func (g *IdentityGateway) AdminDeleteUser(ctx context.Context, subjectID uuid.UUID) error {
	if subjectID == uuid.Nil {
		g.logger.Warn("skipping delete of identity without subject id")
		return nil
	}

	if err := g.client.AdminDeleteUser(ctx, subjectID); err != nil {
		return fmt.Errorf("failed to delete identity %s: %w", subjectID, err)
	}
	return nil
}

// SignInWithPassword signs in and ties the session to its identity
func (g *IdentityGateway) SignInWithPassword(ctx context.Context, email, password string) (*domain.SignInResult, error) {
	email = strings.TrimSpace(email)

	result, err := g.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("failed to sign in: %w", err)
	}
	if result == nil || result.Session == nil || result.Identity.SubjectID == uuid.Nil {
		g.logger.Error("identity provider returned an incomplete sign-in", "email", email)
		return nil, domain.NewAuthError(domain.ErrCodeInternal, "Identity provider returned an incomplete session", nil)
	}
	if result.Session.IdentityID == uuid.Nil {
		result.Session.IdentityID = result.Identity.SubjectID
	}

	return result, nil
}

func (g *IdentityGateway) SignOut(ctx context.Context, sessionToken string) error {
	if err := g.client.SignOut(ctx, strings.TrimSpace(sessionToken)); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (g *IdentityGateway) SendVerification(ctx context.Context, email string) error {
	if err := g.client.SendVerification(ctx, strings.TrimSpace(email)); err != nil {
		return fmt.Errorf("failed to send verification: %w", err)
	}
	return nil
}

// Ping checks the identity provider
func (g *IdentityGateway) Ping(ctx context.Context) error {
	return g.client.Ping(ctx)
}

// mapMetadata trims the names stored as identity traits
func mapMetadata(md domain.IdentityMetadata) domain.IdentityMetadata {
	md.FirstName = strings.TrimSpace(md.FirstName)
	md.LastName = strings.TrimSpace(md.LastName)
	return md
}
