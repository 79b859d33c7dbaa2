package rest

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"planora/app/port"
	"planora/app/rest/handlers"
	custommw "planora/app/rest/middleware"
)

// RouterConfig holds router configuration
type RouterConfig struct {
	Logger           *slog.Logger
	AccountUsecase   port.AccountUsecase
	HealthChecks     map[string]port.HealthChecker
	Version          string
	CORSAllowOrigins []string
	EnableMetrics    bool
	EnableRateLimit  bool
	RateLimitRules   []custommw.RateLimitRule
}

// NewRouter creates and configures the Echo router. ctx bounds the
// background work of the middleware.
func NewRouter(ctx context.Context, config RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler(config.Logger)

	accountHandler := handlers.NewAccountHandler(config.AccountUsecase, config.Logger)
	healthHandler := handlers.NewHealthHandler(config.HealthChecks, config.Version, config.Logger)

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(custommw.RequestLogger(config.Logger))
	e.Use(middleware.Recover())
	e.Use(custommw.NewCORSMiddleware(custommw.DefaultCORSConfig(config.CORSAllowOrigins)))
	e.Use(custommw.SecurityHeaders())
	e.Use(middleware.BodyLimit("64K"))

	if config.EnableRateLimit {
		rules := config.RateLimitRules
		if rules == nil {
			rules = custommw.DefaultRateLimitRules()
		}
		e.Use(custommw.NewRateLimiter(ctx, rules).RateLimit())
	}

	v1 := e.Group("/v1")

	// Health endpoints
	v1.GET("/health", healthHandler.HealthCheck)
	v1.GET("/ready", healthHandler.ReadinessCheck)
	v1.GET("/live", healthHandler.LivenessCheck)

	// Account endpoints
	v1.POST("/accounts", accountHandler.CreateAccount)

	auth := v1.Group("/auth")
	auth.POST("/sign-in", accountHandler.SignIn)
	auth.POST("/sign-out", accountHandler.SignOut)

	if config.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return e
}
