package kratos

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/app/config"
	"planora/app/utils/logger"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name       string
		config     *config.Config
		wantError  bool
		wantSchema string
	}{
		{
			name: "valid kratos configuration",
			config: &config.Config{
				KratosPublicURL:        "http://kratos-public:4433",
				KratosAdminURL:         "http://kratos-admin:4434",
				KratosIdentitySchemaID: "planora",
			},
			wantSchema: "planora",
		},
		{
			name: "schema defaults",
			config: &config.Config{
				KratosPublicURL: "http://kratos-public:4433",
				KratosAdminURL:  "http://kratos-admin:4434",
			},
			wantSchema: "default",
		},
		{
			name: "empty public URL",
			config: &config.Config{
				KratosAdminURL: "http://kratos-admin:4434",
			},
			wantError: true,
		},
		{
			name: "empty admin URL",
			config: &config.Config{
				KratosPublicURL: "http://kratos-public:4433",
			},
			wantError: true,
		},
		{
			name: "invalid public URL",
			config: &config.Config{
				KratosPublicURL: "invalid-url",
				KratosAdminURL:  "http://kratos-admin:4434",
			},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger, err := logger.NewWithWriter("info", &buf)
			require.NoError(t, err)

			client, err := NewClient(tt.config, logger)

			if tt.wantError {
				assert.Error(t, err)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client.PublicAPI())
			assert.NotNil(t, client.AdminAPI())
			assert.Equal(t, tt.wantSchema, client.SchemaID())
			assert.Equal(t, tt.config.KratosPublicURL, client.GetPublicURL())
			assert.Equal(t, tt.config.KratosAdminURL, client.GetAdminURL())
		})
	}
}

func TestURLValidation(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		isValid bool
	}{
		{"valid HTTP URL", "http://localhost:4433", true},
		{"valid HTTPS URL", "https://kratos.example.com", true},
		{"invalid URL", "invalid-url", false},
		{"empty URL", "", false},
		{"URL without protocol", "localhost:4433", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isValid, isValidURL(tt.url))
		})
	}
}

func TestClient_HealthCheck(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		wantError bool
	}{
		{name: "healthy", status: http.StatusOK},
		{name: "unhealthy", status: http.StatusServiceUnavailable, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/version", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"version":"v1.3.1"}`))
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)

			err := client.HealthCheck(context.Background())

			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
