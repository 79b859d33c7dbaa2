package kratos

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	kratosclient "github.com/ory/kratos-client-go"

	"planora/app/config"
)

const (
	httpClientTimeout  = 30 * time.Second
	healthCheckTimeout = 5 * time.Second
)

// Client wraps the Kratos public and admin API clients
type Client struct {
	publicAPI *kratosclient.APIClient
	adminAPI  *kratosclient.APIClient
	publicURL string
	adminURL  string
	schemaID  string
	logger    *slog.Logger
}

// NewClient creates a new Kratos client
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if !isValidURL(cfg.KratosPublicURL) {
		return nil, fmt.Errorf("invalid Kratos public URL: %s", cfg.KratosPublicURL)
	}
	if !isValidURL(cfg.KratosAdminURL) {
		return nil, fmt.Errorf("invalid Kratos admin URL: %s", cfg.KratosAdminURL)
	}

	schemaID := cfg.KratosIdentitySchemaID
	if schemaID == "" {
		schemaID = "default"
	}

	logger.Info("Kratos client initialized",
		"public_url", cfg.KratosPublicURL,
		"admin_url", cfg.KratosAdminURL,
		"schema_id", schemaID)

	return &Client{
		publicAPI: newAPIClient(cfg.KratosPublicURL),
		adminAPI:  newAPIClient(cfg.KratosAdminURL),
		publicURL: cfg.KratosPublicURL,
		adminURL:  cfg.KratosAdminURL,
		schemaID:  schemaID,
		logger:    logger,
	}, nil
}

func newAPIClient(serverURL string) *kratosclient.APIClient {
	c := kratosclient.NewConfiguration()
	c.Servers = []kratosclient.ServerConfiguration{{URL: serverURL}}
	c.HTTPClient = &http.Client{Timeout: httpClientTimeout}
	if c.DefaultHeader == nil {
		c.DefaultHeader = make(map[string]string)
	}
	c.DefaultHeader["Accept"] = "application/json"
	return kratosclient.NewAPIClient(c)
}

// PublicAPI returns the public API client
func (c *Client) PublicAPI() *kratosclient.APIClient {
	return c.publicAPI
}

// AdminAPI returns the admin API client
func (c *Client) AdminAPI() *kratosclient.APIClient {
	return c.adminAPI
}

// SchemaID is the identity schema new identities are created with
func (c *Client) SchemaID() string {
	return c.schemaID
}

// HealthCheck checks that both Kratos APIs answer
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	_, response, err := c.publicAPI.MetadataAPI.GetVersion(ctx).Execute()
	if err != nil {
		return fmt.Errorf("failed to connect to Kratos public API: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("Kratos public API returned status %d", response.StatusCode)
	}

	_, response, err = c.adminAPI.MetadataAPI.GetVersion(ctx).Execute()
	if err != nil {
		return fmt.Errorf("failed to connect to Kratos admin API: %w", err)
	}
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("Kratos admin API returned status %d", response.StatusCode)
	}

	return nil
}

// GetPublicURL returns the public URL
func (c *Client) GetPublicURL() string {
	return c.publicURL
}

// GetAdminURL returns the admin URL
func (c *Client) GetAdminURL() string {
	return c.adminURL
}

// isValidURL validates if a URL is properly formatted
func isValidURL(urlStr string) bool {
	if urlStr == "" {
		return false
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return false
	}

	return parsedURL.Scheme != "" && parsedURL.Host != ""
}
