package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the Moodly client.
// Environment variables are parsed with the MOODLY_ prefix.
type Config struct {
	BaseURL     string        `envconfig:"BASE_URL" default:"http://localhost:8000"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// StateDir holds the sqlite state database; empty means ~/.moodly.
	StateDir string `envconfig:"STATE_DIR" default:""`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`
	Debug       bool        `envconfig:"DEBUG" default:"false"`
	Locale      string      `envconfig:"LOCALE" default:"en"`

	// Cache policy
	InsightsCurrentTTL  time.Duration `envconfig:"INSIGHTS_CURRENT_TTL" default:"48h"`
	InsightsPreviousTTL time.Duration `envconfig:"INSIGHTS_PREVIOUS_TTL" default:"30m"`
	SelectedStatsTTL    time.Duration `envconfig:"SELECTED_STATS_TTL" default:"5m"`
	GenerationTimeout   time.Duration `envconfig:"GENERATION_TIMEOUT" default:"90s"`

	// Logout retry queue
	LogoutRetryBase        time.Duration `envconfig:"LOGOUT_RETRY_BASE" default:"30s"`
	LogoutRetryMaxInterval time.Duration `envconfig:"LOGOUT_RETRY_MAX_INTERVAL" default:"10m"`
	LogoutRetryMaxAttempts int           `envconfig:"LOGOUT_RETRY_MAX_ATTEMPTS" default:"10"`
	LogoutRetryMaxAge      time.Duration `envconfig:"LOGOUT_RETRY_MAX_AGE" default:"24h"`
}

// Validate checks values envconfig cannot express on its own.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid BASE_URL: %q", c.BaseURL)
	}
	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0")
	}
	if c.LogoutRetryMaxAttempts <= 0 {
		return fmt.Errorf("LOGOUT_RETRY_MAX_ATTEMPTS must be > 0")
	}
	if c.LogoutRetryBase <= 0 || c.LogoutRetryMaxInterval < c.LogoutRetryBase {
		return fmt.Errorf("invalid logout retry interval bounds: base=%s max=%s", c.LogoutRetryBase, c.LogoutRetryMaxInterval)
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Example: MOODLY_BASE_URL, MOODLY_INSIGHTS_CURRENT_TTL
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MOODLY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Str("environment", string(cfg.Environment)).
		Dur("http_timeout", cfg.HTTPTimeout).
		Str("state_dir", cfg.StateDir).
		Str("locale", cfg.Locale).
		Dur("insights_current_ttl", cfg.InsightsCurrentTTL).
		Dur("insights_previous_ttl", cfg.InsightsPreviousTTL).
		Dur("selected_stats_ttl", cfg.SelectedStatsTTL).
		Int("logout_retry_max_attempts", cfg.LogoutRetryMaxAttempts).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		BaseURL:                "http://localhost:8000",
		HTTPTimeout:            5 * time.Second,
		Environment:            EnvTesting,
		LogLevel:               "debug",
		Locale:                 "en",
		InsightsCurrentTTL:     48 * time.Hour,
		InsightsPreviousTTL:    30 * time.Minute,
		SelectedStatsTTL:       5 * time.Minute,
		GenerationTimeout:      90 * time.Second,
		LogoutRetryBase:        30 * time.Second,
		LogoutRetryMaxInterval: 10 * time.Minute,
		LogoutRetryMaxAttempts: 10,
		LogoutRetryMaxAge:      24 * time.Hour,
	}
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}
