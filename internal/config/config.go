// Package config resolves process-wide configuration once at startup. The
// resulting Config is treated as immutable for the process lifetime and passed
// explicitly to collaborators; nothing reads the environment after Load.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every tunable the service reads from the environment.
type Config struct {
	Env           string   `env:"TASKHUB_ENV" envDefault:"development"`
	Addr          string   `env:"TASKHUB_ADDR" envDefault:":8080"`
	PublicBaseURL string   `env:"TASKHUB_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	CORSOrigins   []string `env:"TASKHUB_CORS_ORIGINS" envSeparator:","`

	MongoURI      string `env:"TASKHUB_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"TASKHUB_MONGO_DB" envDefault:"taskhub"`

	AccessTokenSecret  string        `env:"TASKHUB_ACCESS_TOKEN_SECRET"`
	RefreshTokenSecret string        `env:"TASKHUB_REFRESH_TOKEN_SECRET"`
	AccessTokenTTL     time.Duration `env:"TASKHUB_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL    time.Duration `env:"TASKHUB_REFRESH_TOKEN_TTL" envDefault:"168h"`
	SingleUseTokenTTL  time.Duration `env:"TASKHUB_SINGLE_USE_TOKEN_TTL" envDefault:"20m"`

	SMTPHost string `env:"TASKHUB_SMTP_HOST"`
	SMTPPort int    `env:"TASKHUB_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"TASKHUB_SMTP_USER"`
	SMTPPass string `env:"TASKHUB_SMTP_PASS"`
	MailFrom string `env:"TASKHUB_MAIL_FROM" envDefault:"TaskHub <no-reply@taskhub.org>"`

	RateBurst  int `env:"TASKHUB_RATE_BURST" envDefault:"20"`
	RatePerSec int `env:"TASKHUB_RATE_PER_SEC" envDefault:"10"`
}

// Load parses the environment and validates the values the auth core cannot
// run without. Signing secrets have no defaults on purpose.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	var problems []string
	if strings.TrimSpace(cfg.AccessTokenSecret) == "" {
		problems = append(problems, "TASKHUB_ACCESS_TOKEN_SECRET is required")
	}
	if strings.TrimSpace(cfg.RefreshTokenSecret) == "" {
		problems = append(problems, "TASKHUB_REFRESH_TOKEN_SECRET is required")
	}
	if cfg.AccessTokenSecret != "" && cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		problems = append(problems, "access and refresh token secrets must differ")
	}
	if cfg.AccessTokenTTL <= 0 || cfg.RefreshTokenTTL <= 0 || cfg.SingleUseTokenTTL <= 0 {
		problems = append(problems, "token TTLs must be positive")
	}
	if len(problems) > 0 {
		return nil, errors.New("config: " + strings.Join(problems, "; "))
	}
	return &cfg, nil
}

// Production reports whether the service runs with production hardening
// (secure cookies, no stack traces in error responses).
func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}
