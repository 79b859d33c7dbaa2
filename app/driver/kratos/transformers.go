package kratos

import (
	"encoding/json"
	"fmt"
	"strings"

	"planora/app/domain"

	"github.com/google/uuid"
	kratosclient "github.com/ory/kratos-client-go"
)

// identityTraits is the shape of the identity schema traits
type identityTraits struct {
	Email string `json:"email"`
	Name  struct {
		First string `json:"first"`
		Last  string `json:"last"`
	} `json:"name"`
}

// publicMetadata is stored on the identity next to the traits
type publicMetadata struct {
	Role      domain.UserRole `json:"role"`
	CompanyID uuid.UUID       `json:"company_id"`
}

func newCreateIdentityBody(schemaID, email, password string, metadata domain.IdentityMetadata) *kratosclient.CreateIdentityBody {
	traits := map[string]interface{}{
		"email": email,
		"name": map[string]interface{}{
			"first": metadata.FirstName,
			"last":  metadata.LastName,
		},
	}

	body := kratosclient.NewCreateIdentityBody(schemaID, traits)
	body.SetMetadataPublic(publicMetadata{
		Role:      metadata.Role,
		CompanyID: metadata.CompanyID,
	})
	body.SetCredentials(kratosclient.IdentityWithCredentials{
		Password: &kratosclient.IdentityWithCredentialsPassword{
			Config: &kratosclient.IdentityWithCredentialsPasswordConfig{
				Password: &password,
			},
		},
	})
	return body
}

func signUpResultFromIdentity(identity *kratosclient.Identity, email string) (*domain.SignUpResult, error) {
	if identity == nil {
		return nil, fmt.Errorf("empty identity")
	}

	converted, err := identityToDomain(identity)
	if err != nil {
		return nil, err
	}
	if converted.Email == "" {
		converted.Email = email
	}

	return &domain.SignUpResult{
		SubjectID:            converted.SubjectID,
		Email:                converted.Email,
		RequiresConfirmation: !isVerified(identity, converted.Email),
	}, nil
}

func signInResultFromLogin(login *kratosclient.SuccessfulNativeLogin) (*domain.SignInResult, error) {
	if login == nil {
		return nil, fmt.Errorf("empty login response")
	}

	session := login.GetSession()
	if session.Identity == nil {
		return nil, fmt.Errorf("session %s has no identity", session.GetId())
	}

	identity, err := identityToDomain(session.Identity)
	if err != nil {
		return nil, err
	}

	return &domain.SignInResult{
		Identity: *identity,
		Session: &domain.AuthSession{
			ID:         session.GetId(),
			Token:      login.GetSessionToken(),
			Active:     session.GetActive(),
			IdentityID: identity.SubjectID,
			ExpiresAt:  session.ExpiresAt,
		},
	}, nil
}

func identityToDomain(identity *kratosclient.Identity) (*domain.Identity, error) {
	subjectID, err := uuid.Parse(identity.GetId())
	if err != nil {
		return nil, fmt.Errorf("invalid identity id %q: %w", identity.GetId(), err)
	}

	var traits identityTraits
	if err := remarshal(identity.GetTraits(), &traits); err != nil {
		return nil, fmt.Errorf("failed to read identity traits: %w", err)
	}

	var meta publicMetadata
	if identity.MetadataPublic != nil {
		if err := remarshal(identity.MetadataPublic, &meta); err != nil {
			return nil, fmt.Errorf("failed to read identity metadata: %w", err)
		}
	}

	return &domain.Identity{
		SubjectID:     subjectID,
		Email:         traits.Email,
		EmailVerified: isVerified(identity, traits.Email),
		Metadata: domain.IdentityMetadata{
			FirstName: traits.Name.First,
			LastName:  traits.Name.Last,
			Role:      meta.Role,
			CompanyID: meta.CompanyID,
		},
	}, nil
}

// isVerified reports whether the address matching email is verified. An
// address Kratos does not track for verification cannot be confirmed, so it
// counts as verified.
func isVerified(identity *kratosclient.Identity, email string) bool {
	for _, addr := range identity.GetVerifiableAddresses() {
		if strings.EqualFold(addr.GetValue(), email) {
			return addr.GetVerified()
		}
	}
	return true
}

// remarshal converts the loosely typed JSON values of the client models
func remarshal(in interface{}, out interface{}) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
