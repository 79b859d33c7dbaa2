package kratos

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"planora/app/domain"
	"planora/app/port"

	"github.com/google/uuid"
	kratosclient "github.com/ory/kratos-client-go"
)

const (
	methodPassword = "password"
	methodCode     = "code"
)

// IdentityAdapter implements port.IdentityClient on top of Kratos.
// Identities are created through the admin API; sign-in and sign-out use the
// native (API) self-service flows.
type IdentityAdapter struct {
	client *Client
	logger *slog.Logger
}

// NewIdentityAdapter creates a new adapter
func NewIdentityAdapter(client *Client, logger *slog.Logger) port.IdentityClient {
	return &IdentityAdapter{
		client: client,
		logger: logger.With("component", "kratos_adapter"),
	}
}

// SignUp creates an identity with a password credential
func (a *IdentityAdapter) SignUp(ctx context.Context, email, password string, metadata domain.IdentityMetadata) (*domain.SignUpResult, error) {
	a.logger.Info("creating identity in Kratos", "email", email, "company_id", metadata.CompanyID)

	body := newCreateIdentityBody(a.client.SchemaID(), email, password, metadata)

	identity, httpResp, err := a.client.AdminAPI().IdentityAPI.
		CreateIdentity(ctx).
		CreateIdentityBody(*body).
		Execute()
	if err != nil {
		return nil, a.transformError(err, httpResp, "create_identity")
	}

	result, err := signUpResultFromIdentity(identity, email)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrCodeInternal, "Kratos returned an invalid identity", err)
	}

	a.logger.Info("identity created",
		"subject_id", result.SubjectID,
		"requires_confirmation", result.RequiresConfirmation)

	return result, nil
}

// AdminDeleteUser deletes an identity. A missing identity counts as deleted.
func (a *IdentityAdapter) AdminDeleteUser(ctx context.Context, subjectID uuid.UUID) error {
	httpResp, err := a.client.AdminAPI().IdentityAPI.
		DeleteIdentity(ctx, subjectID.String()).
		Execute()
	if err != nil {
		if getHTTPStatus(httpResp) == http.StatusNotFound {
			a.logger.Warn("identity already deleted", "subject_id", subjectID)
			return nil
		}
		return a.transformError(err, httpResp, "delete_identity")
	}

	a.logger.Info("identity deleted", "subject_id", subjectID)
	return nil
}

// SignInWithPassword runs a native login flow and returns the new session
func (a *IdentityAdapter) SignInWithPassword(ctx context.Context, email, password string) (*domain.SignInResult, error) {
	flow, httpResp, err := a.client.PublicAPI().FrontendAPI.
		CreateNativeLoginFlow(ctx).
		Execute()
	if err != nil {
		return nil, a.transformError(err, httpResp, "login_flow_create")
	}

	method := kratosclient.NewUpdateLoginFlowWithPasswordMethod(email, methodPassword, password)

	login, httpResp, err := a.client.PublicAPI().FrontendAPI.
		UpdateLoginFlow(ctx).
		Flow(flow.GetId()).
		UpdateLoginFlowBody(kratosclient.UpdateLoginFlowWithPasswordMethodAsUpdateLoginFlowBody(method)).
		Execute()
	if err != nil {
		return nil, a.transformError(err, httpResp, "login_flow_submit")
	}

	result, err := signInResultFromLogin(login)
	if err != nil {
		return nil, domain.NewAuthError(domain.ErrCodeInternal, "Kratos returned an invalid session", err)
	}

	a.logger.Info("login flow completed",
		"flow_id", flow.GetId(),
		"session_id", result.Session.ID,
		"subject_id", result.Identity.SubjectID)

	return result, nil
}

// SignOut revokes a session token
func (a *IdentityAdapter) SignOut(ctx context.Context, sessionToken string) error {
	httpResp, err := a.client.PublicAPI().FrontendAPI.
		PerformNativeLogout(ctx).
		PerformNativeLogoutBody(*kratosclient.NewPerformNativeLogoutBody(sessionToken)).
		Execute()
	if err != nil {
		return a.transformError(err, httpResp, "logout")
	}
	return nil
}

// SendVerification asks Kratos to send a verification code to email
func (a *IdentityAdapter) SendVerification(ctx context.Context, email string) error {
	flow, httpResp, err := a.client.PublicAPI().FrontendAPI.
		CreateNativeVerificationFlow(ctx).
		Execute()
	if err != nil {
		return a.transformError(err, httpResp, "verification_flow_create")
	}

	method := kratosclient.NewUpdateVerificationFlowWithCodeMethod(methodCode)
	method.SetEmail(email)

	_, httpResp, err = a.client.PublicAPI().FrontendAPI.
		UpdateVerificationFlow(ctx).
		Flow(flow.GetId()).
		UpdateVerificationFlowBody(kratosclient.UpdateVerificationFlowWithCodeMethodAsUpdateVerificationFlowBody(method)).
		Execute()
	if err != nil {
		return a.transformError(err, httpResp, "verification_flow_submit")
	}

	a.logger.Info("verification email requested", "flow_id", flow.GetId())
	return nil
}

// Ping checks that Kratos is reachable
func (a *IdentityAdapter) Ping(ctx context.Context) error {
	if err := a.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("kratos health check failed: %w", err)
	}
	return nil
}
