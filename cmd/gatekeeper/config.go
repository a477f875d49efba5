package main

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/dmitrymomot/gatekeeper/pkg/abuse"
	"github.com/dmitrymomot/gatekeeper/pkg/environment"
	"github.com/dmitrymomot/gatekeeper/pkg/httpserver"
	"github.com/dmitrymomot/gatekeeper/pkg/identity"
	"github.com/dmitrymomot/gatekeeper/pkg/logger"
	"github.com/dmitrymomot/gatekeeper/pkg/redis"
	"github.com/dmitrymomot/gatekeeper/pkg/throttle"
)

var errInvalidURL = errors.New("invalid url")

type appConfig struct {
	Name     string                  `env:"APP_NAME" envDefault:"gatekeeper"`
	Env      environment.Environment `env:"APP_ENV" envDefault:"development"`
	LogLevel string                  `env:"LOG_LEVEL"`

	// TiersFile is an optional YAML file merged over the built-in tiers.
	TiersFile        string          `env:"TIERS_FILE"`
	UnresolvedPolicy identity.Policy `env:"UNRESOLVED_POLICY" envDefault:"deny"`
	// UserIDHeader carries the user id set by the authenticating proxy in front of us.
	UserIDHeader string   `env:"USER_ID_HEADER" envDefault:"X-User-ID"`
	IPHeaders    []string `env:"IP_HEADERS" envSeparator:"," envDefault:"X-Forwarded-For,X-Real-IP"`

	// BackendURL receives admitted /api, /auth and public traffic.
	BackendURL string `env:"BACKEND_URL"`
	// UpstreamURL is the rate-limited third party reached via /upstream.
	UpstreamURL string `env:"UPSTREAM_URL"`

	// AdminToken enables the /admin routes. Empty disables them.
	AdminToken      string        `env:"ADMIN_TOKEN"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1m"`

	// RecordBuffer and RecordTimeout bound delivery of admission events to Redis.
	RecordBuffer  int           `env:"RECORD_BUFFER" envDefault:"1024"`
	RecordTimeout time.Duration `env:"RECORD_TIMEOUT" envDefault:"500ms"`

	HTTP     httpserver.Config
	Redis    redis.Config
	Throttle throttle.Config
	Abuse    abuse.Config
}

// Validate implements config.Validator.
func (c *appConfig) Validate() error {
	for name, raw := range map[string]string{"BACKEND_URL": c.BackendURL, "UPSTREAM_URL": c.UpstreamURL} {
		if raw == "" {
			continue
		}
		if _, err := parseTargetURL(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("LOG_LEVEL: %w", err)
		}
	}
	if c.RecordBuffer <= 0 {
		return fmt.Errorf("RECORD_BUFFER must be positive, got %d", c.RecordBuffer)
	}
	if c.RecordTimeout <= 0 {
		return fmt.Errorf("RECORD_TIMEOUT must be positive, got %v", c.RecordTimeout)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive, got %v", c.CleanupInterval)
	}
	return nil
}

func parseTargetURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Join(errInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q needs an http(s) scheme and host", errInvalidURL, raw)
	}
	return u, nil
}
