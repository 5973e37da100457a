package handler

import (
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/internal/view"
	"github.com/labstack/echo/v4"
)

type HomeRequest struct{}

func (r *HomeRequest) Validate() error {
	return nil
}

type HomeHandler struct {
	Handler
}

func NewHomeHandler(s *server.Server) *HomeHandler {
	return &HomeHandler{Handler: NewHandler(s)}
}

func (h *HomeHandler) Home(c echo.Context, _ *HomeRequest) (string, error) {
	return view.Render(view.PageHome, view.HomePage{
		Environment: h.server.Config.Primary.Env,
	})
}
