package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/newsletter/internal/domain"
	"github.com/deppfellow/newsletter/internal/lib/password"
	"github.com/deppfellow/newsletter/internal/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

var (
	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrMissingAuthorization is returned when no usable Basic credentials
	// were supplied.
	ErrMissingAuthorization = errors.New("missing or malformed basic authorization")
)

type Credentials struct {
	Username string
	Password string
}

// BasicAuthCredentials decodes an `Authorization: Basic base64(user:pass)`
// header value.
func BasicAuthCredentials(header string) (Credentials, error) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return Credentials{}, ErrMissingAuthorization
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: %v", ErrMissingAuthorization, err)
	}

	username, pass, ok := strings.Cut(string(decoded), ":")
	if !ok || username == "" {
		return Credentials{}, ErrMissingAuthorization
	}

	return Credentials{Username: username, Password: pass}, nil
}

type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
}

type AuthService struct {
	users   UserStore
	metrics *metrics.Metrics
}

func NewAuthService(users UserStore, m *metrics.Metrics) *AuthService {
	return &AuthService{
		users:   users,
		metrics: m,
	}
}

// ValidateCredentials returns the user id when creds match a stored user.
// Unknown users still pay for a hash verification.
func (s *AuthService) ValidateCredentials(ctx context.Context, creds Credentials) (uuid.UUID, error) {
	logger := zerolog.Ctx(ctx).With().Str("username", creds.Username).Logger()

	user, err := s.users.GetByUsername(ctx, creds.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = password.VerifyDummy(creds.Password)
		s.metrics.LoginAttempt(false)
		logger.Info().Msg("login attempt for unknown user")
		return uuid.Nil, ErrInvalidCredentials
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := password.Verify(user.PasswordHash, creds.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			s.metrics.LoginAttempt(false)
			logger.Info().Msg("login attempt with wrong password")
			return uuid.Nil, ErrInvalidCredentials
		}
		return uuid.Nil, fmt.Errorf("failed to verify password hash: %w", err)
	}

	s.metrics.LoginAttempt(true)

	return user.ID, nil
}

// CreateUser hashes password and stores a new publisher account.
func (s *AuthService) CreateUser(ctx context.Context, username, pass string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username must not be empty")
	}
	if pass == "" {
		return nil, errors.New("password must not be empty")
	}

	hash, err := password.Hash(pass)
	if err != nil {
		return nil, err
	}

	return s.users.Create(ctx, username, hash)
}
