package config

import "testing"

func TestLoadServerConfigDefaults(t *testing.T) {
	cfg := LoadServerConfig()

	if cfg.Environment != EnvDevelopment {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("expected default session max age 86400, got %d", cfg.SessionMaxAge)
	}
	if cfg.RateLimitPeriod != "1m" {
		t.Errorf("expected default rate limit period 1m, got %s", cfg.RateLimitPeriod)
	}
	if cfg.ThumbWorkers < 1 {
		t.Errorf("expected at least 1 thumb worker, got %d", cfg.ThumbWorkers)
	}
}

func TestLoadServerConfigEnvironment(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("THUMB_WORKERS", "4")

	cfg := LoadServerConfig()

	if cfg.Environment != EnvProduction {
		t.Errorf("expected production, got %s", cfg.Environment)
	}
	if cfg.ListenAddr != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.ListenAddr)
	}
	if cfg.SessionMaxAge != 3600 {
		t.Errorf("expected 3600, got %d", cfg.SessionMaxAge)
	}
	if cfg.ThumbWorkers != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.ThumbWorkers)
	}
}

func TestLoadServerConfigInvalidValues(t *testing.T) {
	t.Setenv("ENV", "bogus")
	t.Setenv("SESSION_MAX_AGE", "not-a-number")
	t.Setenv("THUMB_WORKERS", "-3")

	cfg := LoadServerConfig()

	if cfg.Environment != EnvDevelopment {
		t.Errorf("invalid ENV should fall back to development, got %s", cfg.Environment)
	}
	if cfg.SessionMaxAge != 86400 {
		t.Errorf("invalid SESSION_MAX_AGE should fall back to 86400, got %d", cfg.SessionMaxAge)
	}
	if cfg.ThumbWorkers != 1 {
		t.Errorf("negative THUMB_WORKERS should clamp to 1, got %d", cfg.ThumbWorkers)
	}
}
