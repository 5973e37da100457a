package handler

import (
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/internal/service"
	"github.com/deppfellow/newsletter/internal/validation"
	"github.com/labstack/echo/v4"
)

type PublishRequest struct {
	Title   string         `json:"title" validate:"required"`
	Content PublishContent `json:"content"`
}

type PublishContent struct {
	HTML string `json:"html" validate:"required"`
	Text string `json:"text" validate:"required"`
}

func (r *PublishRequest) Validate() error {
	return validation.Struct(r)
}

type NewsletterHandler struct {
	Handler
	newsletters *service.NewsletterService
}

func NewNewsletterHandler(s *server.Server, newsletters *service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{
		Handler:     NewHandler(s),
		newsletters: newsletters,
	}
}

// Publish sends an issue to every confirmed subscriber. The route sits
// behind Basic authentication.
func (h *NewsletterHandler) Publish(c echo.Context, req *PublishRequest) (*service.PublishResult, error) {
	return h.newsletters.Publish(c.Request().Context(), service.Issue{
		Title: req.Title,
		HTML:  req.Content.HTML,
		Text:  req.Content.Text,
	})
}
