// Package config loads the service configuration.
//
// Values are layered, later sources winning:
//   - config/base.yaml
//   - config/<env>.yaml, where <env> comes from NEWSLETTER_PRIMARY__ENV, else APP_ENV
//   - a `.env` file in the working directory (godotenv autoload)
//   - NEWSLETTER_ prefixed environment variables
//
// Nested keys are addressed with a double underscore in env vars, so
// NEWSLETTER_EMAIL__SENDER_EMAIL maps to email.sender_email.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "NEWSLETTER_"

	// AppEnvVariable selects which environment file is layered on top of base.yaml.
	AppEnvVariable = "APP_ENV"

	EnvLocal      = "local"
	EnvProduction = "production"
)

// Email providers.
const (
	EmailProviderHTTP   = "http"
	EmailProviderResend = "resend"
)

// Delivery modes for newsletter issues.
const (
	DeliveryInline = "inline"
	DeliveryQueue  = "queue"
)

// Config is the root configuration object.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Email         EmailConfig          `koanf:"email" validate:"required"`
	Newsletter    NewsletterConfig     `koanf:"newsletter"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required,oneof=local production"`
}

// ServerConfig holds the HTTP listener settings. Timeouts are in seconds.
type ServerConfig struct {
	Host               string    `koanf:"host"`
	Port               string    `koanf:"port" validate:"required"`
	BaseURL            string    `koanf:"base_url" validate:"required,url"`
	ReadTimeout        int       `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int       `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int       `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string  `koanf:"cors_allowed_origins"`
	RateLimit          RateLimit `koanf:"rate_limit"`
}

// RateLimit bounds requests per client IP on the write endpoints.
// A zero RequestsPerSecond disables limiting.
type RateLimit struct {
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int     `koanf:"burst" validate:"gte=0"`
}

// Address is the host:port the HTTP server binds to.
func (s ServerConfig) Address() string {
	return s.Host + ":" + s.Port
}

// DatabaseConfig accepts either a connection URL or discrete fields. When URL
// is set it wins and the discrete fields are ignored.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	Host            string `koanf:"host" validate:"required_without=URL"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_without=URL"`
	SSLMode         string `koanf:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MinConns        int    `koanf:"min_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
	AcquireTimeout  int    `koanf:"acquire_timeout"`
}

type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig holds the key used to sign login error messages.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required,min=16"`
}

// EmailConfig configures the outbound email API.
type EmailConfig struct {
	Provider            string `koanf:"provider" validate:"oneof=http resend"`
	BaseURL             string `koanf:"base_url" validate:"required_if=Provider http"`
	SenderEmail         string `koanf:"sender_email" validate:"required,email"`
	SenderName          string `koanf:"sender_name"`
	AuthorizationToken  string `koanf:"authorization_token" validate:"required"`
	TimeoutMilliseconds int    `koanf:"timeout_milliseconds" validate:"gte=0"`
}

// Timeout is the per-request deadline for the email API.
func (e EmailConfig) Timeout() time.Duration {
	return time.Duration(e.TimeoutMilliseconds) * time.Millisecond
}

type NewsletterConfig struct {
	Delivery string `koanf:"delivery" validate:"oneof=inline queue"`
}

// NormalizeEnv maps any APP_ENV value onto a known environment; unknown
// values fall back to local.
func NormalizeEnv(value string) string {
	if strings.EqualFold(strings.TrimSpace(value), EnvProduction) {
		return EnvProduction
	}
	return EnvLocal
}

// PrimaryEnvVariable sets primary.env directly and takes precedence over
// APP_ENV when choosing the environment file.
const PrimaryEnvVariable = EnvPrefix + "PRIMARY__ENV"

// resolveEnv picks the environment layer before any file is read, so the
// file merged always matches the primary.env the config ends up with.
func resolveEnv() string {
	if value := os.Getenv(PrimaryEnvVariable); strings.TrimSpace(value) != "" {
		return NormalizeEnv(value)
	}
	return NormalizeEnv(os.Getenv(AppEnvVariable))
}

// Load reads configuration from dir (may be empty to skip YAML files) and
// the process environment, applies defaults and validates the result.
func Load(dir string) (*Config, error) {
	k := koanf.New(".")
	appEnv := resolveEnv()

	if dir != "" {
		for _, name := range []string{"base.yaml", appEnv + ".yaml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if !k.Exists("primary.env") {
		if err := k.Set("primary.env", appEnv); err != nil {
			return nil, fmt.Errorf("set primary.env: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// The service name is not configurable; dashboards key on it.
	cfg.Observability.ServiceName = "newsletter"
	cfg.Observability.Environment = cfg.Primary.Env

	if err := cfg.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	c.Server.BaseURL = strings.TrimRight(c.Server.BaseURL, "/")

	if c.Database.AcquireTimeout == 0 {
		c.Database.AcquireTimeout = 2
	}

	if c.Email.Provider == "" {
		c.Email.Provider = EmailProviderHTTP
	}
	if c.Email.TimeoutMilliseconds == 0 {
		c.Email.TimeoutMilliseconds = 10000
	}
	if c.Email.SenderName == "" {
		c.Email.SenderName = "Newsletter"
	}

	if c.Newsletter.Delivery == "" {
		c.Newsletter.Delivery = DeliveryInline
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	if c.Observability.HealthChecks.Timeout == 0 {
		c.Observability.HealthChecks.Timeout = 5 * time.Second
	}
}
