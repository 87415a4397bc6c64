package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("SESSION_IDLE_TIMEOUT_SECONDS", "")
	t.Setenv("REPORT_UTC_OFFSET_HOURS", "")
	cfg := FromEnv()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr)
	}
	if cfg.SessionIdleTimeout != 10*time.Minute {
		t.Fatalf("unexpected idle timeout %s", cfg.SessionIdleTimeout)
	}
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, cfg.ReportLocation()).Zone()
	if offset != 8*3600 {
		t.Fatalf("expected +8h offset, got %d", offset)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("BASE_URL", "https://shop.example.com/")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("SESSION_IDLE_TIMEOUT_SECONDS", "60")
	cfg := FromEnv()
	if cfg.BaseURL != "https://shop.example.com" {
		t.Fatalf("expected trimmed base url, got %q", cfg.BaseURL)
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}
	if !cfg.CookieSecure || cfg.SessionIdleTimeout != time.Minute {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}
