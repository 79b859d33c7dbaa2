package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"

	apperrors "planora/app/utils/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ok(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRateLimiter_RateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, []RateLimitRule{
		{PathContains: "/accounts", Limit: rate.Every(time.Hour), Burst: 2},
	})

	e := echo.New()
	e.HTTPErrorHandler = CustomHTTPErrorHandler(discardLogger())
	e.Use(rl.RateLimit())
	e.POST("/v1/accounts", ok)
	e.GET("/v1/health", ok)

	do := func(method, path, ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/v1/accounts", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/v1/accounts", "10.0.0.1").Code)

	limited := do(http.MethodPost, "/v1/accounts", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.NotEmpty(t, limited.Header().Get("Retry-After"))

	var body ErrorBody
	require.NoError(t, json.Unmarshal(limited.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.ErrCodeRateLimitExceeded), body.Code)

	// Other clients and other rules keep their own buckets
	assert.Equal(t, http.StatusOK, do(http.MethodPost, "/v1/accounts", "10.0.0.2").Code)
	assert.Equal(t, http.StatusOK, do(http.MethodGet, "/v1/health", "10.0.0.1").Code)
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Now()
	rl := NewRateLimiter(ctx, nil)
	rl.now = func() time.Time { return now }

	rl.allow("a|default", rate.Every(time.Second), 1)
	now = now.Add(visitorTTL + time.Second)
	rl.allow("b|default", rate.Every(time.Second), 1)

	rl.evictIdle()

	assert.NotContains(t, rl.visitors, "a|default")
	assert.Contains(t, rl.visitors, "b|default")
}

func TestRateLimiter_SlowBucketOutlivesDefaultTTL(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	now := time.Now()
	rl := NewRateLimiter(ctx, nil)
	rl.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		allowed, _ := rl.allow("a|/accounts", rate.Every(time.Minute), 5)
		require.True(t, allowed)
	}

	now = now.Add(visitorTTL + time.Second)
	rl.evictIdle()
	require.Contains(t, rl.visitors, "a|/accounts")

	allowed := 0
	for i := 0; i < 5; i++ {
		if ok, _ := rl.allow("a|/accounts", rate.Every(time.Minute), 5); ok {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed, "only the tokens refilled while idle are available")

	now = now.Add(6 * time.Minute)
	rl.evictIdle()
	assert.NotContains(t, rl.visitors, "a|/accounts")
}

func TestIdleTTL(t *testing.T) {
	assert.Equal(t, visitorTTL, idleTTL(rate.Every(time.Second), 20))
	assert.Equal(t, 5*time.Minute, idleTTL(rate.Every(time.Minute), 5))
	assert.Equal(t, visitorTTL, idleTTL(rate.Inf, 5))
}

func TestRateLimiter_CleanupStopsWithContext(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx, cancel := context.WithCancel(context.Background())
	NewRateLimiter(ctx, DefaultRateLimitRules())
	cancel()
}

func TestCustomHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedError  string
	}{
		{
			name:           "application error",
			err:            apperrors.NewBadRequest("malformed JSON body", errors.New("unexpected EOF")),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   "BAD_REQUEST",
			expectedError:  "bad request",
		},
		{
			name:           "echo error",
			err:            echo.NewHTTPError(http.StatusNotFound, "Not Found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   "HTTP_ERROR",
			expectedError:  "Not Found",
		},
		{
			name:           "unknown error is hidden",
			err:            errors.New("pq: password authentication failed"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   "INTERNAL_ERROR",
			expectedError:  "An unexpected error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			CustomHTTPErrorHandler(discardLogger())(tt.err, c)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.expectedCode, body.Code)
			assert.Equal(t, tt.expectedError, body.Error)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	e.Use(SecurityHeaders())
	e.GET("/", ok)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCORS_AllowsIdempotencyKey(t *testing.T) {
	e := echo.New()
	e.Use(NewCORSMiddleware(DefaultCORSConfig([]string{"https://app.planora.io"})))
	e.POST("/v1/accounts", ok)

	req := httptest.NewRequest(http.MethodOptions, "/v1/accounts", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.planora.io")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	req.Header.Set(echo.HeaderAccessControlRequestHeaders, "Idempotency-Key")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.planora.io", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), "Idempotency-Key")
}
