package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/deppfellow/newsletter/internal/config"
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *server.Server {
	logger := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{
			Primary:       config.Primary{Env: config.EnvLocal},
			Observability: config.DefaultObservabilityConfig(),
		},
		Logger: &logger,
	}
}

func passing(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func runStatus(t *testing.T, h *HealthHandler) (int, map[string]any) {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/status", nil), rec)

	require.NoError(t, h.CheckHealth(c))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     []dependencyCheck
		wantStatus int
		wantHealth string
	}{
		{
			name: "all healthy",
			checks: []dependencyCheck{
				{name: "database", check: passing, critical: true},
				{name: "redis", check: passing},
			},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
		{
			name: "database down",
			checks: []dependencyCheck{
				{name: "database", check: failing, critical: true},
				{name: "redis", check: passing},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantHealth: "unhealthy",
		},
		{
			name: "redis down is reported but tolerated",
			checks: []dependencyCheck{
				{name: "database", check: passing, critical: true},
				{name: "redis", check: failing},
			},
			wantStatus: http.StatusOK,
			wantHealth: "healthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &HealthHandler{Handler: NewHandler(newTestServer()), checks: tt.checks}

			status, body := runStatus(t, h)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantHealth, body["status"])

			checks, ok := body["checks"].(map[string]any)
			require.True(t, ok)
			assert.Len(t, checks, len(tt.checks))
		})
	}
}

func TestCheckHealth_FailedCheckCarriesError(t *testing.T) {
	h := &HealthHandler{
		Handler: NewHandler(newTestServer()),
		checks:  []dependencyCheck{{name: "redis", check: failing}},
	}

	_, body := runStatus(t, h)

	redis := body["checks"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, "unhealthy", redis["status"])
	assert.Equal(t, "connection refused", redis["error"])
}

func TestNewHealthHandler_SkipsMissingDependencies(t *testing.T) {
	h := NewHealthHandler(newTestServer())

	assert.Empty(t, h.checks)
}

func TestHealthCheck_EmptyOK(t *testing.T) {
	h := NewHealthHandler(newTestServer())

	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health_check", nil), rec)

	require.NoError(t, h.HealthCheck(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestServeOpenAPIUI(t *testing.T) {
	assets := fstest.MapFS{
		"openapi.html": {Data: []byte("<html>docs</html>")},
	}

	e := echo.New()

	t.Run("serves page", func(t *testing.T) {
		h := NewOpenAPIHandler(newTestServer(), assets, "openapi.html")
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

		require.NoError(t, h.ServeOpenAPIUI(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "<html>docs</html>", rec.Body.String())
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	})

	t.Run("missing page", func(t *testing.T) {
		h := NewOpenAPIHandler(newTestServer(), assets, "missing.html")
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

		assert.Error(t, h.ServeOpenAPIUI(c))
	})
}

func TestRedirectPath(t *testing.T) {
	assert.Equal(t, "/login", redirectPath("/login?error=x&tag=y"))
	assert.Equal(t, "/", redirectPath("/"))
}
