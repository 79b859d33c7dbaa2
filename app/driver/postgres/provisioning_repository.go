package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"planora/app/domain"
	"planora/app/port"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProvisioningRequestRepository implements port.ProvisioningRequestRepository
// for PostgreSQL
type ProvisioningRequestRepository struct {
	db     DatabaseIface
	logger *slog.Logger
	now    func() time.Time
}

// NewProvisioningRequestRepository creates a new PostgreSQL provisioning request repository
func NewProvisioningRequestRepository(db DatabaseIface, logger *slog.Logger) port.ProvisioningRequestRepository {
	return &ProvisioningRequestRepository{
		db:     db,
		logger: logger.With("component", "provisioning_repository"),
		now:    time.Now,
	}
}

// Claim inserts a pending record owned by claim.Token, or takes over one with
// the same fingerprint that failed or has been pending for longer than
// staleAfter. When the claim is refused the current record is returned.
func (r *ProvisioningRequestRepository) Claim(ctx context.Context, claim domain.ProvisioningClaim, staleAfter time.Duration) (bool, *domain.ProvisioningRecord, error) {
	query := `
		INSERT INTO provisioning_requests (request_id, status, claim_token, fingerprint, created_at, updated_at)
		VALUES ($1, 'pending', $2, $3, $4, $4)
		ON CONFLICT (request_id) DO UPDATE
		SET status = 'pending', claim_token = EXCLUDED.claim_token, error = NULL, updated_at = EXCLUDED.updated_at
		WHERE provisioning_requests.fingerprint = EXCLUDED.fingerprint
		  AND (provisioning_requests.status = 'failed'
		   OR (provisioning_requests.status = 'pending' AND provisioning_requests.updated_at < $5))`

	now := r.now().UTC()
	tag, err := r.db.Exec(ctx, query, claim.RequestID, claim.Token, claim.Fingerprint, now, now.Add(-staleAfter))
	if err != nil {
		r.logger.Error("Failed to claim provisioning request", "request_id", claim.RequestID, "error", err)
		return false, nil, fmt.Errorf("failed to claim provisioning request: %w", err)
	}

	if tag.RowsAffected() == 1 {
		return true, nil, nil
	}

	existing, err := r.get(ctx, claim.RequestID)
	if err != nil {
		return false, nil, err
	}
	return false, existing, nil
}

// Complete stores the result of a successful provisioning
func (r *ProvisioningRequestRepository) Complete(ctx context.Context, claim domain.ProvisioningClaim, data domain.AccountData) error {
	query := `
		UPDATE provisioning_requests
		SET status = 'succeeded', subject_id = $3, company_id = $4, email = $5,
		    requires_confirmation = $6, error = NULL, updated_at = $7
		WHERE request_id = $1 AND claim_token = $2 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query,
		claim.RequestID,
		claim.Token,
		data.SubjectID,
		data.CompanyID,
		data.Email,
		data.RequiresConfirmation,
		r.now().UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to complete provisioning request", "request_id", claim.RequestID, "error", err)
		return fmt.Errorf("failed to complete provisioning request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProvisioningClaimLost
	}
	return nil
}

// Fail marks a request as failed so a retry with the same id may claim it again
func (r *ProvisioningRequestRepository) Fail(ctx context.Context, claim domain.ProvisioningClaim, message string) error {
	query := `
		UPDATE provisioning_requests
		SET status = 'failed', error = $3, updated_at = $4
		WHERE request_id = $1 AND claim_token = $2 AND status = 'pending'`

	tag, err := r.db.Exec(ctx, query, claim.RequestID, claim.Token, message, r.now().UTC())
	if err != nil {
		r.logger.Error("Failed to mark provisioning request failed", "request_id", claim.RequestID, "error", err)
		return fmt.Errorf("failed to mark provisioning request failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProvisioningClaimLost
	}
	return nil
}

func (r *ProvisioningRequestRepository) get(ctx context.Context, requestID string) (*domain.ProvisioningRecord, error) {
	query := `
		SELECT request_id, status, COALESCE(fingerprint, ''), subject_id, company_id, COALESCE(email, ''),
		       requires_confirmation, COALESCE(error, ''), created_at, updated_at
		FROM provisioning_requests
		WHERE request_id = $1`

	record := &domain.ProvisioningRecord{}
	var (
		status    string
		subjectID *uuid.UUID
		companyID *uuid.UUID
	)
	err := r.db.QueryRow(ctx, query, requestID).Scan(
		&record.RequestID,
		&status,
		&record.Fingerprint,
		&subjectID,
		&companyID,
		&record.Email,
		&record.RequiresConfirmation,
		&record.Error,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProvisioningRequestNotFound
		}
		return nil, fmt.Errorf("failed to get provisioning request: %w", err)
	}

	record.Status = domain.ProvisioningStatus(status)
	record.SubjectID = subjectID
	record.CompanyID = companyID
	return record, nil
}
