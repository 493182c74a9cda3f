package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/akeren/multiverse-waitlist/internal/log"
	"github.com/akeren/multiverse-waitlist/pkg/constants"
	"github.com/caarlos0/env/v11"
)

// AdminConfig controls the shared-secret admin login.
type AdminConfig struct {
	Password       string        `env:"ADMIN_PASSWORD"`
	PasswordHash   string        `env:"ADMIN_PASSWORD_HASH"`
	TokenSecret    string        `env:"ADMIN_TOKEN_SECRET"`
	TokenTTL       time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`
	LoginRateLimit int           `env:"ADMIN_LOGIN_RATE_LIMIT" envDefault:"10"`
}

// WaitlistConfig controls the public submission endpoint.
type WaitlistConfig struct {
	SubmitRateLimit  int    `env:"WAITLIST_SUBMIT_RATE_LIMIT" envDefault:"30"`
	GeoCountryHeader string `env:"WAITLIST_GEO_COUNTRY_HEADER" envDefault:"X-Vercel-IP-Country"`
	GeoCityHeader    string `env:"WAITLIST_GEO_CITY_HEADER" envDefault:"X-Vercel-IP-City"`
}

// IsConfigured reports whether any admin secret is set. Without one every login fails.
func (c *AdminConfig) IsConfigured() bool {
	return strings.TrimSpace(c.Password) != "" || strings.TrimSpace(c.PasswordHash) != ""
}

func LoadAdminConfig(logger *log.Logger) (*AdminConfig, error) {
	cfg := &AdminConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse admin config: %w", err)
	}

	cfg.Password = sanitizeEnv(cfg.Password)
	cfg.PasswordHash = sanitizeEnv(cfg.PasswordHash)
	cfg.TokenSecret = sanitizeEnv(cfg.TokenSecret)

	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("ADMIN_TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.LoginRateLimit <= 0 {
		cfg.LoginRateLimit = constants.DefaultAdminLoginRequestsPerMinute
	}

	if !cfg.IsConfigured() {
		logger.Warn("No admin password configured; admin login is disabled")
	}

	if cfg.TokenSecret == "" {
		if cfg.IsConfigured() && GetAppEnv() == "production" {
			return nil, fmt.Errorf("ADMIN_TOKEN_SECRET is required when APP_ENV=production")
		}
		logger.Warn("ADMIN_TOKEN_SECRET not set; generating an ephemeral signing key")
	}

	return cfg, nil
}

func LoadWaitlistConfig() (*WaitlistConfig, error) {
	cfg := &WaitlistConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse waitlist config: %w", err)
	}

	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = constants.DefaultSubmitRequestsPerMinute
	}

	return cfg, nil
}
