package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	"planora/app/config"
	"planora/app/driver/kratos"
	"planora/app/driver/postgres"
	"planora/app/gateway"
	"planora/app/port"
	"planora/app/rest"
	"planora/app/usecase"
	"planora/app/utils/validator"
)

// Container holds all dependencies for the application
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Version string

	// Drivers
	DB           *postgres.DB
	KratosClient *kratos.Client

	// Repositories
	Companies    port.CompanyRepository
	UserProfiles port.UserProfileRepository
	Requests     port.ProvisioningRequestRepository

	// Identity provider
	Identity port.IdentityProvider

	// Usecases
	AccountUsecase port.AccountUsecase
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(cfg *config.Config, logger *slog.Logger, version string) (*Container, error) {
	container := &Container{
		Config:  cfg,
		Logger:  logger,
		Version: version,
	}

	var err error

	// Initialize database connection
	container.DB, err = postgres.NewConnection(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Kratos client
	container.KratosClient, err = kratos.NewClient(cfg, logger)
	if err != nil {
		container.DB.Close()
		return nil, fmt.Errorf("failed to initialize Kratos client: %w", err)
	}

	// Initialize repositories
	pool := container.DB.Pool()
	container.Companies = postgres.NewCompanyRepository(pool, logger)
	container.UserProfiles = postgres.NewUserProfileRepository(pool, logger)
	container.Requests = postgres.NewProvisioningRequestRepository(pool, logger)

	container.Identity = gateway.NewIdentityGateway(kratos.NewIdentityAdapter(container.KratosClient, logger), logger)

	// Initialize usecases
	container.AccountUsecase = usecase.NewAccountUsecase(
		container.Companies,
		container.UserProfiles,
		container.Requests,
		container.Identity,
		validator.New(cfg.Countries()),
		accountConfig(cfg),
		logger,
	)

	logger.Info("Container initialized",
		"supported_countries", cfg.Countries().Names(),
		"require_confirmed_email", cfg.RequireConfirmedEmail)

	return container, nil
}

func accountConfig(cfg *config.Config) usecase.AccountConfig {
	return usecase.AccountConfig{
		ProviderTimeout:       cfg.ProviderTimeout,
		DatabaseTimeout:       cfg.DatabaseTimeout,
		CompensationTimeout:   cfg.CompensationTimeout,
		IdempotencyStaleAfter: cfg.IdempotencyStaleAfter,
		RequireConfirmedEmail: cfg.RequireConfirmedEmail,
		SendVerificationEmail: cfg.SendVerificationEmail,
	}
}

// CreateRouter creates and returns a fully configured Echo router. ctx bounds
// the router's background work.
func (c *Container) CreateRouter(ctx context.Context) *echo.Echo {
	routerConfig := rest.RouterConfig{
		Logger:         c.Logger,
		AccountUsecase: c.AccountUsecase,
		HealthChecks: map[string]port.HealthChecker{
			"database": c.DB,
			"kratos":   c.Identity,
		},
		Version:          c.Version,
		CORSAllowOrigins: c.Config.CORSAllowOrigins,
		EnableMetrics:    c.Config.EnableMetrics,
		EnableRateLimit:  c.Config.EnableRateLimit,
	}

	router := rest.NewRouter(ctx, routerConfig)

	c.Logger.Info("API router created",
		"metrics", routerConfig.EnableMetrics,
		"rate_limit", routerConfig.EnableRateLimit)
	return router
}

// Close closes all resources
func (c *Container) Close() error {
	if c.DB != nil {
		c.DB.Close()
	}

	c.Logger.Info("Container closed successfully")
	return nil
}
