package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/labstack/echo/v4"

	"planora/app/port"
)

const (
	serviceName  = "planora"
	readyTimeout = 3 * time.Second
)

// startTime is set when the service starts
var startTime = time.Now()

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	checks  map[string]port.HealthChecker
	version string
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler. checks are probed by the
// readiness endpoint.
func NewHealthHandler(checks map[string]port.HealthChecker, version string, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		version: version,
		logger:  logger,
	}
}

// HealthCheck performs a basic health check
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /v1/health [get]
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, h.healthResponse("healthy"))
}

// ReadinessCheck pings every dependency
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} ReadinessResponse
// @Failure 503 {object} ReadinessResponse
// @Router /v1/ready [get]
func (h *HealthHandler) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readyTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]HealthStatus, len(names))
	allHealthy := true
	for _, name := range names {
		start := time.Now()
		err := h.checks[name].Ping(ctx)
		status := HealthStatus{
			Status:  "healthy",
			Message: "connected",
			Latency: time.Since(start).Round(time.Millisecond).String(),
		}
		if err != nil {
			allHealthy = false
			status.Status = "unhealthy"
			status.Message = "unreachable"
			h.logger.Warn("Readiness check failed", "dependency", name, "error", err)
		}
		checks[name] = status
	}

	response := ReadinessResponse{
		Status:    getOverallStatus(allHealthy),
		Timestamp: time.Now(),
		Service:   serviceName,
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if !allHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, response)
}

// LivenessCheck performs a liveness check
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /v1/live [get]
func (h *HealthHandler) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, h.healthResponse("alive"))
}

func (h *HealthHandler) healthResponse(status string) HealthResponse {
	return HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Service:   serviceName,
		Version:   h.version,
		Uptime:    time.Since(startTime).String(),
	}
}

func getOverallStatus(allHealthy bool) string {
	if allHealthy {
		return "ready"
	}
	return "not_ready"
}

// Response types
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

type ReadinessResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Service   string                  `json:"service"`
	Checks    map[string]HealthStatus `json:"checks"`
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Latency string `json:"latency,omitempty"`
}
