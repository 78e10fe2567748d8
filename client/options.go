package client

// This file defines functional options that configure the Client during
// construction. Keeping them in a standalone file avoids cluttering
// client.go and makes it easy to discover all available knobs at a glance.

import (
	"fmt"
	"net/http"
	"time"

	"github.com/moodly/moodly-client/client/internal/genlock"
	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
)

// Option configures a Client during construction in New.
//
// Options run before any component is built, in the order given.
type Option func(*Client) error

// Settings holds the cache and retry policy.
type Settings struct {
	InsightsCurrentTTL  time.Duration
	InsightsPreviousTTL time.Duration
	SelectedStatsTTL    time.Duration
	// GenerationTimeout is how long an unfinished insight generation blocks new ones.
	GenerationTimeout time.Duration

	LogoutRetryBase        time.Duration
	LogoutRetryMaxInterval time.Duration
	LogoutRetryMaxAttempts int
	LogoutRetryMaxAge      time.Duration
}

// DefaultSettings returns the product defaults.
func DefaultSettings() Settings {
	return Settings{
		InsightsCurrentTTL:     48 * time.Hour,
		InsightsPreviousTTL:    30 * time.Minute,
		SelectedStatsTTL:       5 * time.Minute,
		GenerationTimeout:      genlock.DefaultTimeout,
		LogoutRetryBase:        30 * time.Second,
		LogoutRetryMaxInterval: 10 * time.Minute,
		LogoutRetryMaxAttempts: 10,
		LogoutRetryMaxAge:      24 * time.Hour,
	}
}

// WithHTTPTimeout sets the underlying http.Client Timeout used by the SDK.
//
// Prefer per-request context deadlines where possible; this timeout is a
// coarse safety net that bounds the total time spent on a single HTTP request.
// The value must be greater than zero.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("http timeout must be > 0")
		}
		c.http.Timeout = d
		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client. The client is copied and
// its Jar replaced by the SDK's persistent session jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return fmt.Errorf("http client must not be nil")
		}
		cp := *hc
		c.http = &cp
		return nil
	}
}

// WithDebugLogging wraps the client's transport so each request/response is
// logged when enabled is true.
//
// Do not enable this option in production environments: dumps include the
// session cookies.
func WithDebugLogging(enabled bool) Option {
	return func(c *Client) error {
		if enabled {
			if _, already := c.http.Transport.(*debugTransport); !already {
				c.http.Transport = &debugTransport{base: c.http.Transport}
			}
		}
		return nil
	}
}

// WithStore persists client state (session cookies, caches, pending logout,
// generation lock) in s. Close closes s when it implements io.Closer.
func WithStore(s localstate.Store) Option {
	return func(c *Client) error {
		if s == nil {
			return fmt.Errorf("store must not be nil")
		}
		c.store = s
		return nil
	}
}

// WithClock overrides the time source used for cache and retry bookkeeping.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return fmt.Errorf("clock must not be nil")
		}
		c.now = now
		return nil
	}
}

// WithLogger sets the logger used by every component.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) error {
		c.log = l
		return nil
	}
}

// WithLocale selects the language of error messages ("en", "es", ...).
// Unsupported locales fall back to English.
func WithLocale(locale string) Option {
	return func(c *Client) error {
		c.locale = locale
		return nil
	}
}

// WithSettings overrides the cache and retry policy. Zero fields keep their defaults.
func WithSettings(s Settings) Option {
	return func(c *Client) error {
		d := DefaultSettings()
		pick := func(v, def time.Duration) time.Duration {
			if v <= 0 {
				return def
			}
			return v
		}
		c.settings = Settings{
			InsightsCurrentTTL:     pick(s.InsightsCurrentTTL, d.InsightsCurrentTTL),
			InsightsPreviousTTL:    pick(s.InsightsPreviousTTL, d.InsightsPreviousTTL),
			SelectedStatsTTL:       pick(s.SelectedStatsTTL, d.SelectedStatsTTL),
			GenerationTimeout:      pick(s.GenerationTimeout, d.GenerationTimeout),
			LogoutRetryBase:        pick(s.LogoutRetryBase, d.LogoutRetryBase),
			LogoutRetryMaxInterval: pick(s.LogoutRetryMaxInterval, d.LogoutRetryMaxInterval),
			LogoutRetryMaxAttempts: s.LogoutRetryMaxAttempts,
			LogoutRetryMaxAge:      pick(s.LogoutRetryMaxAge, d.LogoutRetryMaxAge),
		}
		if c.settings.LogoutRetryMaxAttempts <= 0 {
			c.settings.LogoutRetryMaxAttempts = d.LogoutRetryMaxAttempts
		}
		return nil
	}
}
