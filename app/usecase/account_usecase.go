package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"planora/app/domain"
	"planora/app/port"
	"planora/app/utils/logger"
	"planora/app/utils/metrics"
	"planora/app/utils/validator"

	"github.com/google/uuid"
)

// Messages returned to callers. Provider messages are passed through as is.
const (
	msgValidationFailed    = "Validation failed"
	msgInvalidSignIn       = "Invalid email or password"
	msgCompanyNameExists   = "company name already exists"
	msgCreateCompany       = "Failed to create company"
	msgCreateUserAccount   = "Failed to create user account"
	msgCreateUserProfile   = "Failed to create user profile"
	msgSignInFailed        = "Unable to sign in"
	msgSignOutFailed       = "Unable to sign out"
	msgNoSession           = "No active session"
	msgRecordRequest       = "Failed to record registration request"
	msgDatabaseTimeout     = "Database did not respond in time"
	msgProviderTimeout     = "Identity provider did not respond in time"
	msgUnexpected          = "An unexpected error occurred"
	msgEmailNotConfirmed   = "email address has not been confirmed"
	msgRequestInProgress   = "registration request is already being processed"
	msgRequestIDReused     = "request id was already used for a different registration"
	operationCreateAccount = "create_account"
	operationSignIn        = "sign_in"
	operationSignOut       = "sign_out"
)

// Provisioning step names, used in logs and metrics.
const (
	stepCheckCompany   = "check_company_name"
	stepCreateCompany  = "create_company"
	stepCreateIdentity = "create_identity"
	stepCreateProfile  = "create_user_profile"
)

// AccountConfig holds the policy knobs of the account usecase.
type AccountConfig struct {
	ProviderTimeout       time.Duration
	DatabaseTimeout       time.Duration
	CompensationTimeout   time.Duration
	IdempotencyStaleAfter time.Duration
	RequireConfirmedEmail bool
	SendVerificationEmail bool
}

// AccountUsecase provisions (company, identity, profile) triples and signs
// users in.
type AccountUsecase struct {
	companies port.CompanyRepository
	profiles  port.UserProfileRepository
	requests  port.ProvisioningRequestRepository
	identity  port.IdentityProvider
	validator *validator.Validator
	config    AccountConfig
	logger    *slog.Logger
}

// NewAccountUsecase creates a new account usecase
func NewAccountUsecase(
	companies port.CompanyRepository,
	profiles port.UserProfileRepository,
	requests port.ProvisioningRequestRepository,
	identity port.IdentityProvider,
	v *validator.Validator,
	config AccountConfig,
	logger *slog.Logger,
) *AccountUsecase {
	return &AccountUsecase{
		companies: companies,
		profiles:  profiles,
		requests:  requests,
		identity:  identity,
		validator: v,
		config:    config,
		logger:    logger.With("component", "account_usecase"),
	}
}

var _ port.AccountUsecase = (*AccountUsecase)(nil)

// CreateAccount validates a registration and provisions the company, the
// identity and the user profile, undoing earlier steps when a later one fails.
func (u *AccountUsecase) CreateAccount(ctx context.Context, fields domain.Fields) (result domain.ActionResult[domain.AccountData]) {
	defer finish(u.logger, operationCreateAccount, time.Now(), &result)

	input := domain.AccountCreationInputFromFields(fields)
	if fieldErrors, ok := u.validate(input); !ok {
		return domain.ActionResult[domain.AccountData]{
			Error:       msgValidationFailed,
			Code:        domain.KindValidation,
			FieldErrors: fieldErrors,
		}
	}

	role, err := domain.NormalizeRole(input.User.Role)
	if err != nil {
		return domain.ActionResult[domain.AccountData]{
			Error:       msgValidationFailed,
			Code:        domain.KindValidation,
			FieldErrors: map[string][]string{domain.FieldUserRole: {err.Error()}},
		}
	}

	log := u.logger.With("company_name", input.Company.Name, "email", input.User.Email)
	var claim domain.ProvisioningClaim
	if input.RequestID != "" {
		log = log.With("request_id", input.RequestID)
		claim = domain.NewProvisioningClaim(input.RequestID, input.Fingerprint())
		if replay, handled := u.claimRequest(ctx, log, claim); handled {
			return replay
		}
	}

	log.Info("Creating account", "role", role)

	data, perr := u.provisionSafely(ctx, log, input, role)

	if input.RequestID != "" {
		u.recordOutcome(ctx, log, claim, data, perr)
	}

	if perr != nil {
		log.Warn("Account creation failed", "code", perr.Kind, "error", perr)
		return domain.Failed[domain.AccountData](perr)
	}

	log = logger.WithCompany(log, data.CompanyID.String())
	log.Info("Account created successfully",
		"subject_id", data.SubjectID,
		"requires_confirmation", data.RequiresConfirmation)

	if data.RequiresConfirmation && u.config.SendVerificationEmail {
		u.sendVerification(ctx, log, data.Email)
	}

	return domain.Succeeded(data)
}

func (u *AccountUsecase) validate(input interface{}) (map[string][]string, bool) {
	err := u.validator.Validate(input)
	if err == nil {
		return nil, true
	}

	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		return verr.Errors, false
	}
	panic(err)
}

// claimRequest takes ownership of an idempotency key. It returns handled=true
// with the result to send back when this attempt must not provision.
func (u *AccountUsecase) claimRequest(ctx context.Context, log *slog.Logger, claim domain.ProvisioningClaim) (domain.ActionResult[domain.AccountData], bool) {
	var (
		claimed  bool
		existing *domain.ProvisioningRecord
	)
	err := withTimeout(ctx, u.config.DatabaseTimeout, func(ctx context.Context) error {
		var err error
		claimed, existing, err = u.requests.Claim(ctx, claim, u.config.IdempotencyStaleAfter)
		return err
	})
	if err != nil {
		log.Error("Failed to claim registration request", "error", err)
		return domain.Failed[domain.AccountData](persistenceError(err, msgRecordRequest)), true
	}

	if claimed {
		return domain.ActionResult[domain.AccountData]{}, false
	}

	if existing.Fingerprint != claim.Fingerprint {
		log.Warn("Request id reused for a different registration")
		return domain.Failed[domain.AccountData](
			domain.NewProvisioningError(domain.KindConflict, msgRequestIDReused, domain.ErrRequestIDReused)), true
	}

	if data, ok := existing.AccountData(); ok {
		log.Info("Replaying completed registration", "subject_id", data.SubjectID)
		metrics.RecordReplay()
		return domain.Succeeded(data), true
	}

	log.Info("Registration request already in progress")
	return domain.Failed[domain.AccountData](
		domain.NewProvisioningError(domain.KindConflict, msgRequestInProgress, domain.ErrProvisioningInProgress)), true
}

// provisionSafely turns a panic inside the steps into an unexpected error so
// the idempotency record is still settled.
func (u *AccountUsecase) provisionSafely(ctx context.Context, log *slog.Logger, input domain.AccountCreationInput, role domain.UserRole) (data domain.AccountData, perr *domain.ProvisioningError) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Unexpected error during provisioning", "panic", r)
			perr = domain.NewProvisioningError(domain.KindUnexpected, msgUnexpected, nil)
		}
	}()
	return u.provision(ctx, log, input, role)
}

func (u *AccountUsecase) provision(ctx context.Context, log *slog.Logger, input domain.AccountCreationInput, role domain.UserRole) (domain.AccountData, *domain.ProvisioningError) {
	var (
		company *domain.Company
		signUp  *domain.SignUpResult
	)

	s := newSaga(log, u.config.CompensationTimeout).
		add(sagaStep{
			name: stepCheckCompany,
			action: func(ctx context.Context) error {
				return u.checkCompanyName(ctx, input.Company.Name)
			},
		}).
		add(sagaStep{
			name: stepCreateCompany,
			action: func(ctx context.Context) error {
				var err error
				company, err = u.createCompany(ctx, input.Company)
				return err
			},
			compensate: func(ctx context.Context) error {
				return u.companies.Delete(ctx, company.ID)
			},
		}).
		add(sagaStep{
			name: stepCreateIdentity,
			action: func(ctx context.Context) error {
				var err error
				signUp, err = u.createIdentity(ctx, input.User, role, company.ID)
				return err
			},
			compensate: func(ctx context.Context) error {
				return u.identity.AdminDeleteUser(ctx, signUp.SubjectID)
			},
		}).
		add(sagaStep{
			name: stepCreateProfile,
			action: func(ctx context.Context) error {
				return u.createProfile(ctx, signUp, input.User, role, company.ID)
			},
		})

	if err := s.run(ctx); err != nil {
		var perr *domain.ProvisioningError
		if errors.As(err, &perr) {
			return domain.AccountData{}, perr
		}
		return domain.AccountData{}, domain.NewProvisioningError(domain.KindUnexpected, msgUnexpected, err)
	}

	email := signUp.Email
	if email == "" {
		email = input.User.Email
	}

	return domain.AccountData{
		SubjectID:            signUp.SubjectID,
		Email:                email,
		CompanyID:            company.ID,
		RequiresConfirmation: signUp.RequiresConfirmation,
	}, nil
}

func (u *AccountUsecase) checkCompanyName(ctx context.Context, name string) error {
	var existing *domain.Company
	err := withTimeout(ctx, u.config.DatabaseTimeout, func(ctx context.Context) error {
		var err error
		existing, err = u.companies.FindByName(ctx, name)
		return err
	})

	switch {
	case errors.Is(err, domain.ErrCompanyNotFound):
		return nil
	case err != nil:
		return persistenceError(err, msgCreateCompany)
	case existing != nil:
		return domain.NewProvisioningError(domain.KindConflict, msgCompanyNameExists, domain.ErrCompanyNameExists)
	default:
		return nil
	}
}

func (u *AccountUsecase) createCompany(ctx context.Context, in domain.CompanyInput) (*domain.Company, error) {
	company, err := domain.NewCompany(in.Name, in.Country, in.Sector)
	if err != nil {
		return nil, domain.NewProvisioningError(domain.KindPersistence, msgCreateCompany, err)
	}

	err = withTimeout(ctx, u.config.DatabaseTimeout, func(ctx context.Context) error {
		return u.companies.Create(ctx, company)
	})
	if errors.Is(err, domain.ErrCompanyNameExists) {
		// Lost the race against a concurrent registration
		return nil, domain.NewProvisioningError(domain.KindConflict, msgCompanyNameExists, err)
	}
	if err != nil {
		return nil, persistenceError(err, msgCreateCompany)
	}
	return company, nil
}

func (u *AccountUsecase) createIdentity(ctx context.Context, in domain.UserInput, role domain.UserRole, companyID uuid.UUID) (*domain.SignUpResult, error) {
	metadata := domain.IdentityMetadata{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Role:      role,
		CompanyID: companyID,
	}

	var result *domain.SignUpResult
	err := withTimeout(ctx, u.config.ProviderTimeout, func(ctx context.Context) error {
		var err error
		result, err = u.identity.SignUp(ctx, in.Email, in.Password, metadata)
		return err
	})
	if err != nil {
		return nil, providerError(err, msgCreateUserAccount, msgCreateUserAccount)
	}
	if result == nil || result.SubjectID == uuid.Nil {
		return nil, domain.NewProvisioningError(domain.KindProvider, msgCreateUserAccount, nil)
	}
	return result, nil
}

func (u *AccountUsecase) createProfile(ctx context.Context, signUp *domain.SignUpResult, in domain.UserInput, role domain.UserRole, companyID uuid.UUID) error {
	profile, err := domain.NewUserProfile(signUp.SubjectID, in.Email, in.FirstName, in.LastName, role, companyID)
	if err != nil {
		return domain.NewProvisioningError(domain.KindPersistence, msgCreateUserProfile, err)
	}

	err = withTimeout(ctx, u.config.DatabaseTimeout, func(ctx context.Context) error {
		return u.profiles.Create(ctx, profile)
	})
	if err != nil {
		return persistenceError(err, msgCreateUserProfile)
	}
	return nil
}

// recordOutcome settles the idempotency record. Failures only delay replays,
// so they are logged. A lost claim means a later attempt owns the record.
func (u *AccountUsecase) recordOutcome(ctx context.Context, log *slog.Logger, claim domain.ProvisioningClaim, data domain.AccountData, perr *domain.ProvisioningError) {
	ctx = context.WithoutCancel(ctx)

	err := withTimeout(ctx, u.config.DatabaseTimeout, func(ctx context.Context) error {
		if perr != nil {
			return u.requests.Fail(ctx, claim, perr.Message)
		}
		return u.requests.Complete(ctx, claim, data)
	})
	switch {
	case errors.Is(err, domain.ErrProvisioningClaimLost):
		log.Warn("Registration request was claimed by another attempt, outcome not recorded")
	case err != nil:
		log.Error("Failed to record registration outcome", "error", err)
	}
}

func (u *AccountUsecase) sendVerification(ctx context.Context, log *slog.Logger, email string) {
	err := withTimeout(ctx, u.config.ProviderTimeout, func(ctx context.Context) error {
		return u.identity.SendVerification(ctx, email)
	})
	if err != nil {
		log.Warn("Failed to send verification email", "error", err)
	}
}

// SignIn verifies credentials with the identity provider. It never writes
// local state.
func (u *AccountUsecase) SignIn(ctx context.Context, fields domain.Fields) (result domain.ActionResult[domain.SignInData]) {
	defer finish(u.logger, operationSignIn, time.Now(), &result)

	input := domain.SignInInputFromFields(fields)
	if fieldErrors, ok := u.validate(input); !ok {
		return domain.ActionResult[domain.SignInData]{
			Error:       msgInvalidSignIn,
			Code:        domain.KindValidation,
			FieldErrors: fieldErrors,
		}
	}

	log := u.logger.With("email", input.Email)

	var signIn *domain.SignInResult
	err := withTimeout(ctx, u.config.ProviderTimeout, func(ctx context.Context) error {
		var err error
		signIn, err = u.identity.SignInWithPassword(ctx, input.Email, input.Password)
		return err
	})
	if err != nil {
		log.Info("Sign in rejected", "error", err)
		return domain.Failed[domain.SignInData](providerError(err, msgInvalidSignIn, msgSignInFailed))
	}
	if signIn == nil || !signIn.Session.IsValid() {
		return domain.Failed[domain.SignInData](domain.NewProvisioningError(domain.KindProvider, msgSignInFailed, nil))
	}

	if u.config.RequireConfirmedEmail && !signIn.Identity.EmailVerified {
		log.Info("Sign in refused for unconfirmed email", "subject_id", signIn.Identity.SubjectID)
		u.revokeSession(ctx, log, signIn.Session.Token)
		return domain.Failed[domain.SignInData](
			domain.NewProvisioningError(domain.KindForbidden, msgEmailNotConfirmed, domain.ErrEmailNotConfirmed))
	}

	log.Info("User signed in", "subject_id", signIn.Identity.SubjectID)
	return domain.Succeeded(domain.SignInData{
		SubjectID: signIn.Identity.SubjectID,
		Session:   signIn.Session,
	})
}

func (u *AccountUsecase) revokeSession(ctx context.Context, log *slog.Logger, token string) {
	if token == "" {
		return
	}
	err := withTimeout(context.WithoutCancel(ctx), u.config.ProviderTimeout, func(ctx context.Context) error {
		return u.identity.SignOut(ctx, token)
	})
	if err != nil {
		log.Warn("Failed to revoke session", "error", err)
	}
}

// SignOut revokes a session token. A session that is already gone counts as
// signed out.
func (u *AccountUsecase) SignOut(ctx context.Context, sessionToken string) (result domain.ActionResult[struct{}]) {
	defer finish(u.logger, operationSignOut, time.Now(), &result)

	if sessionToken == "" {
		return domain.Failed[struct{}](domain.NewProvisioningError(domain.KindUnauthorized, msgNoSession, nil))
	}

	err := withTimeout(ctx, u.config.ProviderTimeout, func(ctx context.Context) error {
		return u.identity.SignOut(ctx, sessionToken)
	})
	if err != nil {
		var authErr *domain.AuthError
		if errors.As(err, &authErr) {
			switch authErr.Code {
			case domain.ErrCodeNotFound, domain.ErrCodeUnauthorized, domain.ErrCodeSessionExpired:
				return domain.Succeeded(struct{}{})
			}
		}
		u.logger.Warn("Sign out failed", "error", err)
		return domain.Failed[struct{}](providerError(err, msgSignOutFailed, msgSignOutFailed))
	}

	return domain.Succeeded(struct{}{})
}

// finish recovers from a panic in an operation and records its outcome. It
// must be deferred directly.
func finish[T any](logger *slog.Logger, operation string, start time.Time, result *domain.ActionResult[T]) {
	if r := recover(); r != nil {
		logger.Error("Unexpected error", "operation", operation, "panic", r)
		*result = domain.Failed[T](domain.NewProvisioningError(domain.KindUnexpected, msgUnexpected, nil))
	}

	code := "SUCCESS"
	if !result.Success {
		code = string(result.Code)
	}
	metrics.RecordOperation(operation, code, time.Since(start).Seconds())
}

func withTimeout(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(ctx)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var authErr *domain.AuthError
	return errors.As(err, &authErr) && authErr.Code == domain.ErrCodeTimeout
}

func persistenceError(err error, message string) *domain.ProvisioningError {
	if isTimeout(err) {
		return domain.NewProvisioningError(domain.KindTimeout, msgDatabaseTimeout, err)
	}
	return domain.NewProvisioningError(domain.KindPersistence, message, err)
}

// providerError maps an identity provider failure. Provider messages are
// surfaced verbatim; credentialsMessage replaces a blank invalid-credentials
// message and fallback is used for errors that carry no message.
func providerError(err error, credentialsMessage, fallback string) *domain.ProvisioningError {
	if isTimeout(err) {
		return domain.NewProvisioningError(domain.KindTimeout, msgProviderTimeout, err)
	}

	var authErr *domain.AuthError
	if !errors.As(err, &authErr) {
		return domain.NewProvisioningError(domain.KindProvider, fallback, err)
	}

	message := authErr.Message
	switch authErr.Code {
	case domain.ErrCodeUserExists:
		if message == "" {
			message = fallback
		}
		return domain.NewProvisioningError(domain.KindConflict, message, err)
	case domain.ErrCodeInvalidCredentials:
		if message == "" {
			message = credentialsMessage
		}
		return domain.NewProvisioningError(domain.KindUnauthorized, message, err)
	case domain.ErrCodeValidation:
		if message == "" {
			message = fallback
		}
		return domain.NewProvisioningError(domain.KindValidation, message, err)
	}

	if message == "" {
		message = fallback
	}
	return domain.NewProvisioningError(domain.KindProvider, message, err)
}
