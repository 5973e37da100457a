// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/deppfellow/newsletter/internal/handler"
	"github.com/deppfellow/newsletter/internal/middleware"
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/internal/service"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers, services *service.Services) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s, services.Auth)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: the request id and the transaction must exist before
	// tracing and the request logger read them.
	router.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
	)

	registerSystemRoutes(router, s, h)

	router.GET("/", handler.HandleHTML(h.Home.Home, http.StatusOK))

	router.GET("/login", handler.HandleHTML(h.Login.LoginForm, http.StatusOK))
	router.POST("/login", handler.HandleRedirect(h.Login.Login), middlewares.RateLimit.Limit())

	subscriptions := router.Group("/subscriptions")
	subscriptions.POST("", handler.HandleNoContent(h.Subscriptions.Subscribe, http.StatusOK), middlewares.RateLimit.Limit())
	subscriptions.GET("/confirm", handler.HandleNoContent(h.Subscriptions.Confirm, http.StatusOK))

	newsletters := router.Group("/newsletters", middlewares.Auth.RequireBasicAuth("publish"))
	newsletters.POST("", handler.Handle(h.Newsletters.Publish, http.StatusOK))

	return router
}
