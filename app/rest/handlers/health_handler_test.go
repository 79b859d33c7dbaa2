package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_port "planora/app/mocks"
	"planora/app/port"
)

func TestHealthHandler_ReadinessCheck(t *testing.T) {
	tests := []struct {
		name           string
		databaseErr    error
		kratosErr      error
		expectedStatus int
		expectedState  string
	}{
		{name: "all dependencies up", expectedStatus: http.StatusOK, expectedState: "ready"},
		{name: "database down", databaseErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedState: "not_ready"},
		{name: "kratos down", kratosErr: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable, expectedState: "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			database := mock_port.NewMockHealthChecker(ctrl)
			database.EXPECT().Ping(gomock.Any()).Return(tt.databaseErr)
			kratos := mock_port.NewMockHealthChecker(ctrl)
			kratos.EXPECT().Ping(gomock.Any()).Return(tt.kratosErr)

			handler := NewHealthHandler(map[string]port.HealthChecker{
				"database": database,
				"kratos":   kratos,
			}, "test", discardLogger())

			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/ready", nil), rec)

			require.NoError(t, handler.ReadinessCheck(c))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var resp ReadinessResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.expectedState, resp.Status)
			assert.Len(t, resp.Checks, 2)
			if tt.databaseErr != nil {
				assert.Equal(t, "unhealthy", resp.Checks["database"].Status)
			}
		})
	}
}

func TestHealthHandler_LivenessCheck(t *testing.T) {
	handler := NewHealthHandler(nil, "1.2.3", discardLogger())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/v1/live", nil), rec)

	require.NoError(t, handler.LivenessCheck(c))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alive", resp.Status)
	assert.Equal(t, "planora", resp.Service)
	assert.Equal(t, "1.2.3", resp.Version)
}
