package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/scholarships")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.LoginSessionTTL() != 30*24*time.Hour {
		t.Fatalf("expected 30 day login ttl, got %v", cfg.LoginSessionTTL())
	}
	if cfg.RefreshSessionTTL() != 7*24*time.Hour {
		t.Fatalf("expected 7 day refresh ttl, got %v", cfg.RefreshSessionTTL())
	}
	if !cfg.DemoLoginEnabled || cfg.DemoEmail != "demo@example.com" {
		t.Fatalf("expected demo login enabled by default, got %+v", cfg)
	}
	if len(cfg.AdminPrefixes) != 2 || cfg.AdminPrefixes[0] != "/api/admin" {
		t.Fatalf("unexpected admin prefixes: %v", cfg.AdminPrefixes)
	}
	if cfg.IsProduction() {
		t.Fatalf("expected development env by default")
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error when DATABASE_URL is empty")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/scholarships")
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_REFRESH_TTL_HOURS", "24")
	t.Setenv("LOGIN_RATE_WINDOW_MINUTES", "0")
	t.Setenv("GATE_PROTECTED_PREFIXES", "/api/applications,/me")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
	if cfg.RefreshSessionTTL() != 24*time.Hour {
		t.Fatalf("expected 24h refresh ttl, got %v", cfg.RefreshSessionTTL())
	}
	if cfg.LoginRateWindow() != 10*time.Minute {
		t.Fatalf("expected fallback window, got %v", cfg.LoginRateWindow())
	}
	if len(cfg.ProtectedPrefixes) != 2 || cfg.ProtectedPrefixes[1] != "/me" {
		t.Fatalf("unexpected protected prefixes: %v", cfg.ProtectedPrefixes)
	}
}
