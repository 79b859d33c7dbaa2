package port

//go:generate mockgen -source=account_port.go -destination=../mocks/mock_account_port.go

import (
	"context"

	"planora/app/domain"
)

// AccountUsecase defines account provisioning and sign-in business logic.
// Failures are reported inside the result, never as an error.
type AccountUsecase interface {
	CreateAccount(ctx context.Context, fields domain.Fields) domain.ActionResult[domain.AccountData]
	SignIn(ctx context.Context, fields domain.Fields) domain.ActionResult[domain.SignInData]
	SignOut(ctx context.Context, sessionToken string) domain.ActionResult[struct{}]
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
