package middleware

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/newsletter/internal/errs"
	"github.com/deppfellow/newsletter/internal/server"
	"github.com/deppfellow/newsletter/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CredentialsValidator checks a username/password pair.
type CredentialsValidator interface {
	ValidateCredentials(ctx context.Context, creds service.Credentials) (uuid.UUID, error)
}

type AuthMiddleware struct {
	server      *server.Server
	credentials CredentialsValidator
}

func NewAuthMiddleware(s *server.Server, credentials CredentialsValidator) *AuthMiddleware {
	return &AuthMiddleware{
		server:      s,
		credentials: credentials,
	}
}

// RequireBasicAuth rejects requests without valid Basic credentials with a
// 401 and a WWW-Authenticate challenge for realm. Accepted requests carry
// the user id under UserIDKey.
func (auth *AuthMiddleware) RequireBasicAuth(realm string) echo.MiddlewareFunc {
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := GetLogger(c)

			reject := func(reason string) error {
				logger.Warn().Str("reason", reason).Msg("basic authentication rejected")
				c.Response().Header().Set(echo.HeaderWWWAuthenticate, challenge)
				return errs.NewUnauthorizedError("Unauthorized", false)
			}

			creds, err := service.BasicAuthCredentials(c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return reject("missing_or_malformed_header")
			}

			userID, err := auth.credentials.ValidateCredentials(c.Request().Context(), creds)
			if errors.Is(err, service.ErrInvalidCredentials) {
				return reject("invalid_credentials")
			}
			if err != nil {
				return err
			}

			c.Set(UserIDKey, userID.String())

			userLogger := logger.With().Str("user_id", userID.String()).Logger()
			SetLogger(c, &userLogger)

			return next(c)
		}
	}
}
