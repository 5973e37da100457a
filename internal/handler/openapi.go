package handler

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/newsletter/internal/server"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the API reference UI at /docs. The UI loads
// /static/openapi.json from the same filesystem.
type OpenAPIHandler struct {
	Handler
	assets fs.FS
	page   string
}

func NewOpenAPIHandler(s *server.Server, assets fs.FS, page string) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		assets:  assets,
		page:    page,
	}
}

func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := fs.ReadFile(h.assets, h.page)

	// Docs change with every deploy.
	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	return c.HTMLBlob(http.StatusOK, page)
}
