package handler

import (
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/internal/service"
	"github.com/deppfellow/newsletter/static"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health        *HealthHandler
	OpenAPI       *OpenAPIHandler
	Subscriptions *SubscriptionHandler
	Newsletters   *NewsletterHandler
	Login         *LoginHandler
	Home          *HomeHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:        NewHealthHandler(s),
		OpenAPI:       NewOpenAPIHandler(s, static.FS, static.OpenAPIUI),
		Subscriptions: NewSubscriptionHandler(s, services.Subscriptions),
		Newsletters:   NewNewsletterHandler(s, services.Newsletters),
		Login:         NewLoginHandler(s, services.Auth),
		Home:          NewHomeHandler(s),
	}
}
