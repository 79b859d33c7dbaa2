package kratos

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"planora/app/config"
	"planora/app/domain"
	"planora/app/utils/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	var buf bytes.Buffer
	l, err := logger.NewWithWriter("debug", &buf)
	require.NoError(t, err)

	client, err := NewClient(&config.Config{
		KratosPublicURL:        serverURL,
		KratosAdminURL:         serverURL,
		KratosIdentitySchemaID: "planora",
	}, l)
	require.NoError(t, err)
	return client
}

func newTestAdapter(t *testing.T, handler http.Handler) *IdentityAdapter {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	return NewIdentityAdapter(client, client.logger).(*IdentityAdapter)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func identityJSON(id uuid.UUID, verified bool) string {
	return `{
		"id": "` + id.String() + `",
		"schema_id": "planora",
		"schema_url": "http://kratos/schemas/planora",
		"state": "active",
		"traits": {"email": "a@acme.io", "name": {"first": "Ada", "last": "Lovelace"}},
		"metadata_public": {"role": "ADMIN", "company_id": "` + uuid.Nil.String() + `"},
		"verifiable_addresses": [{
			"id": "` + uuid.NewString() + `",
			"value": "a@acme.io",
			"verified": ` + map[bool]string{true: "true", false: "false"}[verified] + `,
			"via": "email",
			"status": "sent"
		}]
	}`
}

func untrackedIdentityJSON(id uuid.UUID) string {
	return `{
		"id": "` + id.String() + `",
		"schema_id": "planora",
		"schema_url": "http://kratos/schemas/planora",
		"state": "active",
		"traits": {"email": "a@acme.io", "name": {"first": "Ada", "last": "Lovelace"}},
		"metadata_public": {"role": "ADMIN", "company_id": "` + uuid.Nil.String() + `"},
		"verifiable_addresses": []
	}`
}

func flowJSON(flowType, id string) string {
	now := time.Now().UTC()
	return `{
		"id": "` + id + `",
		"type": "` + flowType + `",
		"state": "choose_method",
		"expires_at": "` + now.Add(time.Hour).Format(time.RFC3339) + `",
		"issued_at": "` + now.Format(time.RFC3339) + `",
		"request_url": "http://kratos/self-service",
		"ui": {"action": "http://kratos/self-service", "method": "POST", "nodes": []}
	}`
}

func TestIdentityAdapter_SignUp(t *testing.T) {
	subjectID := uuid.New()
	companyID := uuid.New()

	tests := []struct {
		name      string
		status    int
		body      string
		wantErr   string
		wantCode  string
		wantReqs  bool
		checkBody bool
	}{
		{
			name:      "identity created with unverified email",
			status:    http.StatusCreated,
			body:      identityJSON(subjectID, false),
			wantReqs:  true,
			checkBody: true,
		},
		{
			name:   "identity created with verified email",
			status: http.StatusCreated,
			body:   identityJSON(subjectID, true),
		},
		{
			name:   "identity created without a tracked address",
			status: http.StatusCreated,
			body:   untrackedIdentityJSON(subjectID),
		},
		{
			name:     "duplicate email",
			status:   http.StatusConflict,
			body:     `{"error":{"code":409,"status":"Conflict","reason":"This identity conflicts with another identity that already exists.","message":"The request could not be completed due to a conflict"}}`,
			wantCode: domain.ErrCodeUserExists,
			wantErr:  "User with this email already exists",
		},
		{
			name:     "password rejected by policy",
			status:   http.StatusBadRequest,
			body:     `{"error":{"code":400,"status":"Bad Request","reason":"the password has been found in data breaches and must no longer be used","message":"The request was malformed or contained invalid parameters"}}`,
			wantCode: domain.ErrCodeValidation,
			wantErr:  "the password has been found in data breaches and must no longer be used",
		},
		{
			name:     "kratos unavailable",
			status:   http.StatusServiceUnavailable,
			body:     `not json`,
			wantCode: domain.ErrCodeServiceUnavailable,
			wantErr:  "Authentication service is temporarily unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/admin/identities", r.URL.Path)

				if tt.checkBody {
					var got map[string]interface{}
					require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
					assert.Equal(t, "planora", got["schema_id"])
					traits := got["traits"].(map[string]interface{})
					assert.Equal(t, "a@acme.io", traits["email"])
					meta := got["metadata_public"].(map[string]interface{})
					assert.Equal(t, "ADMIN", meta["role"])
					assert.Equal(t, companyID.String(), meta["company_id"])
					creds := got["credentials"].(map[string]interface{})
					cfg := creds["password"].(map[string]interface{})["config"].(map[string]interface{})
					assert.Equal(t, "Abcd1234", cfg["password"])
				}
				writeJSON(w, tt.status, tt.body)
			}))

			result, err := adapter.SignUp(context.Background(), "a@acme.io", "Abcd1234", domain.IdentityMetadata{
				FirstName: "Ada",
				LastName:  "Lovelace",
				Role:      domain.UserRoleAdmin,
				CompanyID: companyID,
			})

			if tt.wantErr != "" {
				require.Error(t, err)
				var authErr *domain.AuthError
				require.ErrorAs(t, err, &authErr)
				assert.Equal(t, tt.wantCode, authErr.Code)
				assert.Equal(t, tt.wantErr, authErr.Message)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, subjectID, result.SubjectID)
			assert.Equal(t, "a@acme.io", result.Email)
			assert.Equal(t, tt.wantReqs, result.RequiresConfirmation)
		})
	}
}

func TestIdentityAdapter_SignUp_Timeout(t *testing.T) {
	adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := adapter.SignUp(ctx, "a@acme.io", "Abcd1234", domain.IdentityMetadata{})

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, domain.ErrCodeTimeout, authErr.Code)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIdentityAdapter_AdminDeleteUser(t *testing.T) {
	subjectID := uuid.New()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "deleted", status: http.StatusNoContent},
		{name: "already gone", status: http.StatusNotFound, body: `{"error":{"code":404,"status":"Not Found","message":"Unable to locate the resource"}}`},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"code":500,"status":"Internal Server Error","message":"boom"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/admin/identities/"+subjectID.String(), r.URL.Path)
				if tt.body == "" {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			}))

			err := adapter.AdminDeleteUser(context.Background(), subjectID)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIdentityAdapter_SignInWithPassword(t *testing.T) {
	subjectID := uuid.New()

	loginHandler := func(status int, body string) http.Handler {
		mux := http.NewServeMux()
		mux.HandleFunc("/self-service/login/api", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, flowJSON("api", "login-flow-1"))
		})
		mux.HandleFunc("/self-service/login", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "login-flow-1", r.URL.Query().Get("flow"))

			var got map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, "password", got["method"])
			assert.Equal(t, "a@acme.io", got["identifier"])

			writeJSON(w, status, body)
		})
		return mux
	}

	t.Run("valid credentials", func(t *testing.T) {
		expires := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
		adapter := newTestAdapter(t, loginHandler(http.StatusOK, `{
			"session_token": "ory_st_abc",
			"session": {
				"id": "`+uuid.NewString()+`",
				"active": true,
				"expires_at": "`+expires+`",
				"identity": `+identityJSON(subjectID, true)+`
			}
		}`))

		result, err := adapter.SignInWithPassword(context.Background(), "a@acme.io", "Abcd1234")

		require.NoError(t, err)
		assert.Equal(t, subjectID, result.Identity.SubjectID)
		assert.True(t, result.Identity.EmailVerified)
		assert.Equal(t, domain.UserRoleAdmin, result.Identity.Metadata.Role)
		assert.Equal(t, "Ada", result.Identity.Metadata.FirstName)
		assert.Equal(t, "ory_st_abc", result.Session.Token)
		assert.True(t, result.Session.IsValid())
	})

	t.Run("address not tracked for verification", func(t *testing.T) {
		expires := time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339)
		adapter := newTestAdapter(t, loginHandler(http.StatusOK, `{
			"session_token": "ory_st_abc",
			"session": {
				"id": "`+uuid.NewString()+`",
				"active": true,
				"expires_at": "`+expires+`",
				"identity": `+untrackedIdentityJSON(subjectID)+`
			}
		}`))

		result, err := adapter.SignInWithPassword(context.Background(), "a@acme.io", "Abcd1234")

		require.NoError(t, err)
		assert.True(t, result.Identity.EmailVerified)
	})

	t.Run("wrong password", func(t *testing.T) {
		adapter := newTestAdapter(t, loginHandler(http.StatusBadRequest, `{
			"id": "login-flow-1",
			"type": "api",
			"ui": {
				"action": "http://kratos/self-service/login?flow=login-flow-1",
				"method": "POST",
				"nodes": [],
				"messages": [{"id": 4000006, "text": "The provided credentials are invalid, check for spelling mistakes in your password or username, email address, or phone number.", "type": "error"}]
			}
		}`))

		_, err := adapter.SignInWithPassword(context.Background(), "a@acme.io", "Wrong1234")

		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domain.ErrCodeInvalidCredentials, authErr.Code)
		assert.Equal(t, "Invalid email or password", authErr.Message)
	})

	t.Run("address not verified", func(t *testing.T) {
		adapter := newTestAdapter(t, loginHandler(http.StatusBadRequest, `{
			"ui": {"messages": [{"id": 4000010, "text": "Account not active yet. Did you forget to verify your email address?", "type": "error"}]}
		}`))

		_, err := adapter.SignInWithPassword(context.Background(), "a@acme.io", "Abcd1234")

		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domain.ErrCodeForbidden, authErr.Code)
	})
}

func TestIdentityAdapter_SignOut(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
	}{
		{name: "session revoked", status: http.StatusNoContent},
		{name: "unknown token", status: http.StatusUnauthorized, body: `{"error":{"code":401,"status":"Unauthorized","message":"The request could not be authorized"}}`, wantCode: domain.ErrCodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/self-service/logout/api", r.URL.Path)

				var got map[string]interface{}
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, "ory_st_abc", got["session_token"])

				if tt.body == "" {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			}))

			err := adapter.SignOut(context.Background(), "ory_st_abc")

			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var authErr *domain.AuthError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.wantCode, authErr.Code)
		})
	}
}

func TestIdentityAdapter_SendVerification(t *testing.T) {
	var submitted map[string]interface{}

	mux := http.NewServeMux()
	mux.HandleFunc("/self-service/verification/api", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, flowJSON("api", "verify-flow-1"))
	})
	mux.HandleFunc("/self-service/verification", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "verify-flow-1", r.URL.Query().Get("flow"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submitted))
		writeJSON(w, http.StatusOK, flowJSON("api", "verify-flow-1"))
	})

	adapter := newTestAdapter(t, mux)

	err := adapter.SendVerification(context.Background(), "a@acme.io")

	require.NoError(t, err)
	assert.Equal(t, "code", submitted["method"])
	assert.Equal(t, "a@acme.io", submitted["email"])
}

func TestClassifyMessage(t *testing.T) {
	tests := []struct {
		message  string
		wantCode string
	}{
		{"An account with the same identifier (email, phone, username, ...) exists already.", domain.ErrCodeUserExists},
		{"This identity conflicts with another identity that already exists.", domain.ErrCodeUserExists},
		{"The provided credentials are invalid", domain.ErrCodeInvalidCredentials},
		{"session not found", domain.ErrCodeSessionExpired},
		{"password length must be at least 8 characters", domain.ErrCodeValidation},
		{"something else entirely", domain.ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := classifyMessage(tt.message, nil)
			assert.Equal(t, tt.wantCode, err.Code)
		})
	}
}
