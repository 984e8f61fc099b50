package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BOARD_REFRESH_INTERVAL", "")
	t.Setenv("UPCOMING_HORIZON", "")
	t.Setenv("CLINIC_COUNTRY_CODE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BoardRefreshInterval != 5*time.Minute {
		t.Fatalf("expected 5m refresh interval, got %s", cfg.BoardRefreshInterval)
	}
	if cfg.UpcomingHorizon != 24*time.Hour {
		t.Fatalf("expected 24h horizon, got %s", cfg.UpcomingHorizon)
	}
	if cfg.ClinicCountryCode != "55" {
		t.Fatalf("expected default country code 55, got %s", cfg.ClinicCountryCode)
	}
	if cfg.CORSAllowedOrigins != nil {
		t.Fatalf("expected no cors origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("BOARD_REFRESH_INTERVAL", "90s")
	t.Setenv("UPCOMING_HORIZON", "12h")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "4")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("FRONTDESK_API_URL", "https://desk.example/")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.BoardRefreshInterval != 90*time.Second {
		t.Fatalf("expected refresh override, got %s", cfg.BoardRefreshInterval)
	}
	if cfg.UpcomingHorizon != 12*time.Hour {
		t.Fatalf("expected horizon override, got %s", cfg.UpcomingHorizon)
	}
	if cfg.RateLimitRPS != 2.5 || cfg.RateLimitBurst != 4 {
		t.Fatalf("expected rate limit override, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if !cfg.RedisTLS {
		t.Fatalf("expected redis tls enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSAllowedOrigins)
	}
	if cfg.FrontdeskAPIURL != "https://desk.example" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.FrontdeskAPIURL)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("BOARD_REFRESH_INTERVAL", "soon")
	t.Setenv("UPCOMING_HORIZON", "-1h")
	cfg := Load()
	if cfg.BoardRefreshInterval != 5*time.Minute {
		t.Fatalf("expected fallback interval, got %s", cfg.BoardRefreshInterval)
	}
	if cfg.UpcomingHorizon != 24*time.Hour {
		t.Fatalf("expected fallback horizon, got %s", cfg.UpcomingHorizon)
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{ClinicTimezone: "Mars/Olympus"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback")
	}
	cfg.ClinicTimezone = "UTC"
	if cfg.Location().String() != "UTC" {
		t.Fatalf("expected UTC location, got %s", cfg.Location())
	}
}
