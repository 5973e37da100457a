package router

import (
	"github.com/deppfellow/newsletter/internal/handler"
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the
// newsletter workflow: probes, metrics and API docs.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	// Liveness probe; never touches dependencies.
	r.GET("/health_check", h.Health.HealthCheck)

	r.GET("/status", h.Health.CheckHealth)

	if s.Metrics != nil {
		r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}

	// openapi.json and openapi.html.
	r.StaticFS("/static", static.FS)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
