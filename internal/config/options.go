package config

import "github.com/moodly/moodly-client/client"

// ClientOptions maps the configuration onto SDK options.
func (c *Config) ClientOptions() []client.Option {
	opts := []client.Option{
		client.WithHTTPTimeout(c.HTTPTimeout),
		client.WithLocale(c.Locale),
		client.WithSettings(client.Settings{
			InsightsCurrentTTL:     c.InsightsCurrentTTL,
			InsightsPreviousTTL:    c.InsightsPreviousTTL,
			SelectedStatsTTL:       c.SelectedStatsTTL,
			GenerationTimeout:      c.GenerationTimeout,
			LogoutRetryBase:        c.LogoutRetryBase,
			LogoutRetryMaxInterval: c.LogoutRetryMaxInterval,
			LogoutRetryMaxAttempts: c.LogoutRetryMaxAttempts,
			LogoutRetryMaxAge:      c.LogoutRetryMaxAge,
		}),
	}
	if c.Debug {
		opts = append(opts, client.WithDebugLogging(true))
	}
	return opts
}
