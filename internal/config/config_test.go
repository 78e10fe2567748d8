package config

import (
	"os"
	"testing"
	"time"
)

func unsetMoodlyEnv() {
	for _, k := range []string{
		"MOODLY_BASE_URL",
		"MOODLY_ENVIRONMENT",
		"MOODLY_INSIGHTS_CURRENT_TTL",
		"MOODLY_LOGOUT_RETRY_MAX_ATTEMPTS",
		"MOODLY_LOGOUT_RETRY_BASE",
	} {
		_ = os.Unsetenv(k)
	}
}

func TestConfigLoad_Defaults(t *testing.T) {
	unsetMoodlyEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.InsightsCurrentTTL != 48*time.Hour || cfg.InsightsPreviousTTL != 30*time.Minute || cfg.SelectedStatsTTL != 5*time.Minute {
		t.Fatalf("unexpected cache defaults: %+v", cfg)
	}
	if cfg.GenerationTimeout != 90*time.Second {
		t.Fatalf("unexpected generation timeout: %s", cfg.GenerationTimeout)
	}
	if cfg.LogoutRetryBase != 30*time.Second || cfg.LogoutRetryMaxInterval != 10*time.Minute ||
		cfg.LogoutRetryMaxAttempts != 10 || cfg.LogoutRetryMaxAge != 24*time.Hour {
		t.Fatalf("unexpected logout retry defaults: %+v", cfg)
	}
	if cfg.Environment != EnvDevelopment {
		t.Fatalf("expected development env, got %s", cfg.Environment)
	}
}

func TestConfigLoad_EnvOverride(t *testing.T) {
	unsetMoodlyEnv()
	_ = os.Setenv("MOODLY_BASE_URL", "https://api.moodly.example")
	_ = os.Setenv("MOODLY_INSIGHTS_CURRENT_TTL", "1h")
	_ = os.Setenv("MOODLY_LOGOUT_RETRY_MAX_ATTEMPTS", "3")
	defer unsetMoodlyEnv()

	cfg, err := New()
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.BaseURL != "https://api.moodly.example" || cfg.InsightsCurrentTTL != time.Hour || cfg.LogoutRetryMaxAttempts != 3 {
		t.Fatalf("override failed: %+v", cfg)
	}
}

func TestConfigLoad_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"MOODLY_BASE_URL":                  "not a url",
		"MOODLY_ENVIRONMENT":               "staging",
		"MOODLY_LOGOUT_RETRY_MAX_ATTEMPTS": "0",
		"MOODLY_LOGOUT_RETRY_BASE":         "20m",
	}
	for k, v := range cases {
		unsetMoodlyEnv()
		_ = os.Setenv(k, v)
		if _, err := New(); err == nil {
			t.Fatalf("expected error for %s=%s", k, v)
		}
	}
	unsetMoodlyEnv()
}

func TestNewForTesting(t *testing.T) {
	cfg := NewForTesting()
	if !cfg.IsTesting() || cfg.IsProduction() {
		t.Fatalf("expected testing environment")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("testing config should validate: %v", err)
	}
}

func TestClientOptions(t *testing.T) {
	cfg := NewForTesting()
	cfg.Debug = true
	if got := len(cfg.ClientOptions()); got != 4 {
		t.Fatalf("expected 4 options, got %d", got)
	}
	cfg.Debug = false
	if got := len(cfg.ClientOptions()); got != 3 {
		t.Fatalf("expected 3 options, got %d", got)
	}
}
