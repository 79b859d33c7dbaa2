package port

//go:generate mockgen -source=provisioning_port.go -destination=../mocks/mock_provisioning_port.go

import (
	"context"
	"time"

	"planora/app/domain"
)

// ProvisioningRequestRepository stores idempotency records for registrations.
type ProvisioningRequestRepository interface {
	// Claim marks claim.RequestID as pending under claim.Token. It returns
	// claimed=false together with the existing record when another attempt
	// owns it, has completed it, or registered a different payload under the
	// same id. Failed records and pending records older than staleAfter are
	// reclaimed when the fingerprint matches.
	Claim(ctx context.Context, claim domain.ProvisioningClaim, staleAfter time.Duration) (claimed bool, existing *domain.ProvisioningRecord, err error)
	// Complete and Fail settle the record only while claim.Token still owns
	// it, and return domain.ErrProvisioningClaimLost otherwise.
	Complete(ctx context.Context, claim domain.ProvisioningClaim, data domain.AccountData) error
	Fail(ctx context.Context, claim domain.ProvisioningClaim, message string) error
}
