package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"planora/app/domain"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the account service
type Config struct {
	// Server
	Port     string `env:"PORT" default:"9500"`
	Host     string `env:"HOST" default:"0.0.0.0"`
	LogLevel string `env:"LOG_LEVEL" default:"info"`

	// Database. DATABASE_URL wins over the DB_* parts when set.
	DatabaseURL      string `env:"DATABASE_URL"`
	DatabaseHost     string `env:"DB_HOST" default:"planora-postgres"`
	DatabasePort     string `env:"DB_PORT" default:"5432"`
	DatabaseName     string `env:"DB_NAME" default:"planora"`
	DatabaseUser     string `env:"DB_USER" default:"planora"`
	DatabasePassword string `env:"DB_PASSWORD"`
	DatabaseSSLMode  string `env:"DB_SSL_MODE" default:"require"`
	DatabaseMaxConns int32  `env:"DB_MAX_CONNS" default:"25"`

	// Kratos
	KratosPublicURL        string `env:"KRATOS_PUBLIC_URL" required:"true"`
	KratosAdminURL         string `env:"KRATOS_ADMIN_URL" required:"true"`
	KratosIdentitySchemaID string `env:"KRATOS_IDENTITY_SCHEMA_ID" default:"default"`

	// Timeouts for external calls
	ProviderTimeout       time.Duration `env:"PROVIDER_TIMEOUT" default:"10s"`
	DatabaseTimeout       time.Duration `env:"DATABASE_TIMEOUT" default:"5s"`
	CompensationTimeout   time.Duration `env:"COMPENSATION_TIMEOUT" default:"15s"`
	IdempotencyStaleAfter time.Duration `env:"IDEMPOTENCY_STALE_AFTER" default:"2m"`

	// Registration policy
	RequireConfirmedEmail  bool     `env:"REQUIRE_CONFIRMED_EMAIL" default:"true"`
	SendVerificationEmail  bool     `env:"SEND_VERIFICATION_EMAIL" default:"true"`
	SupportedCountries     []string `env:"SUPPORTED_COUNTRIES" default:"France,Luxembourg"`
	SupportedCountriesFile string   `env:"SUPPORTED_COUNTRIES_FILE"`

	// HTTP
	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`

	// Features
	EnableMetrics   bool `env:"ENABLE_METRICS" default:"true"`
	EnableRateLimit bool `env:"ENABLE_RATE_LIMIT" default:"true"`
}

// countriesFile is the layout of SUPPORTED_COUNTRIES_FILE
type countriesFile struct {
	Countries []string `yaml:"countries"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{}
	var err error

	// Server configuration
	config.Port = getEnvOrDefault("PORT", "9500")
	config.Host = getEnvOrDefault("HOST", "0.0.0.0")
	config.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	// Database configuration
	config.DatabaseURL = os.Getenv("DATABASE_URL")
	config.DatabaseHost = getEnvOrDefault("DB_HOST", "planora-postgres")
	config.DatabasePort = getEnvOrDefault("DB_PORT", "5432")
	config.DatabaseName = getEnvOrDefault("DB_NAME", "planora")
	config.DatabaseUser = getEnvOrDefault("DB_USER", "planora")
	config.DatabasePassword = os.Getenv("DB_PASSWORD")
	if config.DatabaseURL == "" && config.DatabasePassword == "" {
		return nil, fmt.Errorf("DATABASE_URL or DB_PASSWORD is required")
	}
	config.DatabaseSSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

	maxConns, err := strconv.ParseInt(getEnvOrDefault("DB_MAX_CONNS", "25"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	config.DatabaseMaxConns = int32(maxConns)

	// Kratos configuration
	config.KratosPublicURL = os.Getenv("KRATOS_PUBLIC_URL")
	if config.KratosPublicURL == "" {
		return nil, fmt.Errorf("KRATOS_PUBLIC_URL is required")
	}

	config.KratosAdminURL = os.Getenv("KRATOS_ADMIN_URL")
	if config.KratosAdminURL == "" {
		return nil, fmt.Errorf("KRATOS_ADMIN_URL is required")
	}
	config.KratosIdentitySchemaID = getEnvOrDefault("KRATOS_IDENTITY_SCHEMA_ID", "default")

	// Timeouts
	if config.ProviderTimeout, err = getDurationEnv("PROVIDER_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if config.DatabaseTimeout, err = getDurationEnv("DATABASE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if config.CompensationTimeout, err = getDurationEnv("COMPENSATION_TIMEOUT", 15*time.Second); err != nil {
		return nil, err
	}
	if config.IdempotencyStaleAfter, err = getDurationEnv("IDEMPOTENCY_STALE_AFTER", 2*time.Minute); err != nil {
		return nil, err
	}

	// Registration policy
	config.RequireConfirmedEmail = getBoolEnv("REQUIRE_CONFIRMED_EMAIL", true)
	config.SendVerificationEmail = getBoolEnv("SEND_VERIFICATION_EMAIL", true)
	config.SupportedCountriesFile = os.Getenv("SUPPORTED_COUNTRIES_FILE")
	if config.SupportedCountriesFile != "" {
		config.SupportedCountries, err = loadCountriesFile(config.SupportedCountriesFile)
		if err != nil {
			return nil, err
		}
	} else {
		config.SupportedCountries = getListEnv("SUPPORTED_COUNTRIES", domain.DefaultCountries)
	}

	// HTTP
	config.CORSAllowOrigins = getListEnv("CORS_ALLOW_ORIGINS", []string{"http://localhost:3000"})

	// Feature flags
	config.EnableMetrics = getBoolEnv("ENABLE_METRICS", true)
	config.EnableRateLimit = getBoolEnv("ENABLE_RATE_LIMIT", true)

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate port
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("invalid port: %s", c.Port)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535: %s", c.Port)
	}

	// Validate log level
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	for name, raw := range map[string]string{
		"KRATOS_PUBLIC_URL": c.KratosPublicURL,
		"KRATOS_ADMIN_URL":  c.KratosAdminURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, raw)
		}
	}

	if c.DatabaseMaxConns < 1 {
		return fmt.Errorf("database max conns must be at least 1, got: %d", c.DatabaseMaxConns)
	}

	for name, d := range map[string]time.Duration{
		"provider timeout":        c.ProviderTimeout,
		"database timeout":        c.DatabaseTimeout,
		"compensation timeout":    c.CompensationTimeout,
		"idempotency stale after": c.IdempotencyStaleAfter,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got: %v", name, d)
		}
	}

	if attempt := c.MaxAttemptDuration(); c.IdempotencyStaleAfter < attempt {
		return fmt.Errorf("idempotency stale after (%v) must be at least the longest registration attempt (%v)", c.IdempotencyStaleAfter, attempt)
	}

	if len(c.SupportedCountries) == 0 {
		return fmt.Errorf("at least one supported country is required")
	}

	return nil
}

// MaxAttemptDuration bounds one registration attempt from claim to outcome:
// three database steps, the identity call, two compensations and the final
// record write.
func (c *Config) MaxAttemptDuration() time.Duration {
	return 4*c.DatabaseTimeout + c.ProviderTimeout + 2*c.CompensationTimeout
}

// DatabaseDSN returns the connection string used by both pgx and lib/pq
func (c *Config) DatabaseDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:     c.DatabaseHost + ":" + c.DatabasePort,
		Path:     "/" + c.DatabaseName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DatabaseSSLMode),
	}
	return u.String()
}

// Countries returns the configured country set
func (c *Config) Countries() *domain.CountrySet {
	return domain.NewCountrySet(c.SupportedCountries...)
}

func loadCountriesFile(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SUPPORTED_COUNTRIES_FILE: %w", err)
	}

	var file countriesFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse SUPPORTED_COUNTRIES_FILE: %w", err)
	}

	return trimList(file.Countries), nil
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	return trimList(strings.Split(value, ","))
}

func trimList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
