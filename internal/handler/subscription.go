package handler

import (
	"errors"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/errs"
	"github.com/deppfellow/newsletter/internal/service"
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/internal/validation"
	"github.com/labstack/echo/v4"
)

// SubscribeRequest is the subscription form. JSON bodies are accepted too.
type SubscribeRequest struct {
	Email string `form:"email" json:"email" validate:"required"`
	Name  string `form:"name" json:"name" validate:"required"`

	parsed domain.NewSubscriber
}

func (r *SubscribeRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	parsed, err := domain.ParseNewSubscriber(r.Email, r.Name)
	if err != nil {
		field := "name"
		if errors.Is(err, domain.ErrInvalidEmail) {
			field = "email"
		}
		return validation.CustomValidationErrors{{Field: field, Message: err.Error()}}
	}

	r.parsed = parsed
	return nil
}

// ConfirmRequest carries the token from a confirmation link.
type ConfirmRequest struct {
	SubscriptionToken string `query:"subscription_token" validate:"required"`

	token domain.SubscriptionToken
}

func (r *ConfirmRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	token, err := domain.ParseSubscriptionToken(r.SubscriptionToken)
	if err != nil {
		return validation.CustomValidationErrors{{Field: "subscription_token", Message: err.Error()}}
	}

	r.token = token
	return nil
}

type SubscriptionHandler struct {
	Handler
	subscriptions *service.SubscriptionService
}

func NewSubscriptionHandler(s *server.Server, subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		Handler:       NewHandler(s),
		subscriptions: subscriptions,
	}
}

// Subscribe stores a pending subscriber and emails the confirmation link.
func (h *SubscriptionHandler) Subscribe(c echo.Context, req *SubscribeRequest) error {
	return h.subscriptions.Subscribe(c.Request().Context(), req.parsed)
}

// Confirm activates the subscriber owning the token.
func (h *SubscriptionHandler) Confirm(c echo.Context, req *ConfirmRequest) error {
	err := h.subscriptions.Confirm(c.Request().Context(), req.token)
	if errors.Is(err, service.ErrUnknownToken) {
		return errs.NewUnauthorizedError("Subscription token is not valid", false)
	}
	return err
}
