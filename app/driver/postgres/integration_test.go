package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/app/config"
	"planora/app/domain"
	"planora/app/driver/postgres"
	"planora/app/utils/database"
	"planora/app/utils/migration"
)

// integrationDB migrates and connects to PLANORA_TEST_DATABASE_URL, skipping
// when it is unset.
func integrationDB(t *testing.T) *postgres.DB {
	t.Helper()

	dsn := os.Getenv("PLANORA_TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("PLANORA_TEST_DATABASE_URL not set")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{DatabaseURL: dsn, DatabaseMaxConns: 4}
	ctx := context.Background()

	conn, err := database.NewConnection(ctx, database.ConfigFrom(cfg), logger)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, migration.NewMigrator(conn.DB(), logger, migration.Schema).Up(ctx))

	db, err := postgres.NewConnection(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func TestIntegration_CompanyAndProfile(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	companies := postgres.NewCompanyRepository(db.Pool(), logger)
	profiles := postgres.NewUserProfileRepository(db.Pool(), logger)

	company, err := domain.NewCompany("Integration "+uuid.NewString(), "France", "Retail")
	require.NoError(t, err)
	require.NoError(t, companies.Create(ctx, company))
	t.Cleanup(func() { _ = companies.Delete(context.Background(), company.ID) })

	found, err := companies.FindByName(ctx, company.Name)
	require.NoError(t, err)
	assert.Equal(t, company.ID, found.ID)

	duplicate, err := domain.NewCompany(company.Name, "Luxembourg", "Finance")
	require.NoError(t, err)
	assert.ErrorIs(t, companies.Create(ctx, duplicate), domain.ErrCompanyNameExists)

	profile, err := domain.NewUserProfile(uuid.New(), uuid.NewString()+"@acme.io", "Ada", "Lovelace", domain.UserRoleAdmin, company.ID)
	require.NoError(t, err)
	require.NoError(t, profiles.Create(ctx, profile))

	stored, err := profiles.GetByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleAdmin, stored.Role)

	orphan, err := domain.NewUserProfile(uuid.New(), uuid.NewString()+"@acme.io", "Bob", "Smith", domain.UserRoleEmployee, uuid.New())
	require.NoError(t, err)
	assert.ErrorIs(t, profiles.Create(ctx, orphan), domain.ErrCompanyNotFound)

	// Deleting the company cascades to its profiles
	require.NoError(t, companies.Delete(ctx, company.ID))
	_, err = profiles.GetByID(ctx, profile.ID)
	assert.ErrorIs(t, err, domain.ErrUserProfileNotFound)
	require.NoError(t, companies.Delete(ctx, company.ID))
}

func TestIntegration_ProvisioningRequests(t *testing.T) {
	db := integrationDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	requests := postgres.NewProvisioningRequestRepository(db.Pool(), logger)
	requestID := "it-" + uuid.NewString()

	first := domain.NewProvisioningClaim(requestID, "fp-acme")

	claimed, existing, err := requests.Claim(ctx, first, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)
	assert.Nil(t, existing)

	claimed, existing, err = requests.Claim(ctx, domain.NewProvisioningClaim(requestID, "fp-acme"), time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)
	require.NotNil(t, existing)
	assert.Equal(t, domain.ProvisioningPending, existing.Status)
	assert.Equal(t, "fp-acme", existing.Fingerprint)

	require.NoError(t, requests.Fail(ctx, first, "Failed to create company"))

	claimed, existing, err = requests.Claim(ctx, domain.NewProvisioningClaim(requestID, "fp-other"), time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed, "a different payload cannot take over the request id")
	assert.Equal(t, "fp-acme", existing.Fingerprint)

	retry := domain.NewProvisioningClaim(requestID, "fp-acme")
	claimed, _, err = requests.Claim(ctx, retry, time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed, "a failed request can be retried")

	assert.ErrorIs(t, requests.Fail(ctx, first, "company name already exists"), domain.ErrProvisioningClaimLost)

	subjectID, companyID := uuid.New(), uuid.New()
	require.NoError(t, requests.Complete(ctx, retry, domain.AccountData{
		SubjectID: subjectID,
		CompanyID: companyID,
		Email:     "ada@acme.io",
	}))

	assert.ErrorIs(t, requests.Fail(ctx, retry, "late"), domain.ErrProvisioningClaimLost)

	claimed, existing, err = requests.Claim(ctx, domain.NewProvisioningClaim(requestID, "fp-acme"), time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)
	data, ok := existing.AccountData()
	require.True(t, ok)
	assert.Equal(t, subjectID, data.SubjectID)
}
