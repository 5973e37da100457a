package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/deppfellow/newsletter/internal/middleware"
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/labstack/echo/v4"
)

// checkFunc probes one dependency.
type checkFunc func(ctx context.Context) error

// dependencyCheck pairs a check with whether its failure makes the service
// unhealthy. Redis is optional: subscriptions and inline delivery work
// without it.
type dependencyCheck struct {
	name     string
	check    checkFunc
	critical bool
}

// HealthHandler serves GET /health_check (liveness, empty 200) and
// GET /status (JSON report of dependency checks).
type HealthHandler struct {
	Handler
	checks []dependencyCheck
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	var enabled []string
	if s.Config.Observability.HealthChecks.Enabled {
		enabled = s.Config.Observability.HealthChecks.Checks
	}

	var checks []dependencyCheck
	if s.DB != nil && slices.Contains(enabled, "database") {
		checks = append(checks, dependencyCheck{
			name:     "database",
			check:    s.DB.Pool.Ping,
			critical: true,
		})
	}
	if s.Redis != nil && slices.Contains(enabled, "redis") {
		checks = append(checks, dependencyCheck{
			name: "redis",
			check: func(ctx context.Context) error {
				return s.Redis.Ping(ctx).Err()
			},
		})
	}

	return &HealthHandler{
		Handler: NewHandler(s),
		checks:  checks,
	}
}

// HealthCheck answers 200 with an empty body as long as the process serves
// requests.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

// CheckHealth returns system health status and dependency checks.
//
// It returns:
//   - 200 OK if every critical check passes
//   - 503 Service Unavailable otherwise
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := make(map[string]interface{}, len(h.checks))
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	isHealthy := true
	timeout := h.server.Config.Observability.HealthChecks.Timeout

	for _, dep := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		checkStart := time.Now()
		err := dep.check(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err == nil {
			checks[dep.name] = map[string]interface{}{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}
			logger.Debug().Str("check", dep.name).Dur("response_time", elapsed).Msg("health check passed")
			continue
		}

		checks[dep.name] = map[string]interface{}{
			"status":        "unhealthy",
			"response_time": elapsed.String(),
			"error":         err.Error(),
		}

		if dep.critical {
			isHealthy = false
		}

		logger.Error().
			Err(err).
			Str("check", dep.name).
			Dur("response_time", elapsed).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":       dep.name,
			"operation":        "health_check",
			"error_type":       dep.name + "_unhealthy",
			"response_time_ms": elapsed.Milliseconds(),
			"error_message":    err.Error(),
		})
	}

	if !isHealthy {
		response["status"] = "unhealthy"

		logger.Warn().
			Dur("total_duration", time.Since(start)).
			Msg("health check failed")

		h.recordHealthCheckError(map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	return c.JSON(http.StatusOK, response)
}

// recordHealthCheckError emits a New Relic custom event when an agent is running.
func (h *HealthHandler) recordHealthCheckError(attributes map[string]interface{}) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", attributes)
}
