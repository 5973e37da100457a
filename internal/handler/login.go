package handler

import (
	"errors"
	"net/url"

	"github.com/deppfellow/newsletter/internal/lib/utils"
	"github.com/deppfellow/newsletter/internal/middleware"
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/internal/service"
	"github.com/deppfellow/newsletter/internal/view"
	"github.com/labstack/echo/v4"
)

const (
	loginErrorAuthentication = "Authentication failed"
	loginErrorUnexpected     = "Something went wrong"
)

// LoginPageRequest carries the optional error passed back by a failed login.
// The message is shown only if tag is its HMAC under auth.secret_key.
type LoginPageRequest struct {
	Error string `query:"error"`
	Tag   string `query:"tag"`
}

func (r *LoginPageRequest) Validate() error {
	return nil
}

// LoginRequest is the login form. Missing fields are treated as bad
// credentials so the browser lands back on the form.
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (r *LoginRequest) Validate() error {
	return nil
}

type LoginHandler struct {
	Handler
	auth middleware.CredentialsValidator
}

func NewLoginHandler(s *server.Server, auth middleware.CredentialsValidator) *LoginHandler {
	return &LoginHandler{
		Handler: NewHandler(s),
		auth:    auth,
	}
}

func (h *LoginHandler) LoginForm(c echo.Context, req *LoginPageRequest) (string, error) {
	page := view.LoginPage{}

	if req.Error != "" && utils.VerifyMessage(h.server.Config.Auth.SecretKey, req.Error, req.Tag) {
		page.ErrorMessage = req.Error
	}

	return view.Render(view.PageLogin, page)
}

// Login answers 303 to "/" on success and back to the form otherwise.
func (h *LoginHandler) Login(c echo.Context, req *LoginRequest) (string, error) {
	logger := middleware.GetLogger(c)

	if req.Username == "" || req.Password == "" {
		return h.loginErrorLocation(loginErrorAuthentication), nil
	}

	userID, err := h.auth.ValidateCredentials(c.Request().Context(), service.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return h.loginErrorLocation(loginErrorAuthentication), nil
		}

		logger.Error().Err(err).Msg("login failed unexpectedly")
		return h.loginErrorLocation(loginErrorUnexpected), nil
	}

	c.Set(middleware.UserIDKey, userID.String())

	return "/", nil
}

func (h *LoginHandler) loginErrorLocation(message string) string {
	query := url.Values{
		"error": {message},
		"tag":   {utils.SignMessage(h.server.Config.Auth.SecretKey, message)},
	}
	return "/login?" + query.Encode()
}
