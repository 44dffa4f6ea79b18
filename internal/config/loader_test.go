package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var managedKeys = []string{
	"CONFIG_PATH",
	"BOOKING_ENV",
	"BOOKING_HTTP_PORT",
	"PORT",
	"BOOKING_SHUTDOWN_TIMEOUT",
	"BOOKING_CORS_ORIGINS",
	"BOOKING_COOKIE_SECURE",
	"BOOKING_DATABASE_URL",
	"BOOKING_JWT_SECRET",
	"BOOKING_JWT_TTL",
	"BOOKING_LOG_LEVEL",
	"BOOKING_CLEANUP_SCHEDULE",
	"ALLOWED_DOMAIN",
	"SMTP_HOST",
	"SMTP_PORT",
	"SMTP_USER",
	"SMTP_PASSWORD",
	"SMTP_FROM",
}

// clearEnvironment unsets every variable the loader reads and restores the
// previous values when the test ends.
func clearEnvironment(t *testing.T) {
	t.Helper()
	for _, key := range managedKeys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("failed to unset %s: %v", key, err)
		}
	}
}

func TestLoader_ParseEnvironment(t *testing.T) {
	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		clearEnvironment(t)
		const secret = "super-secret"
		t.Setenv("BOOKING_JWT_SECRET", secret)

		cfg, err := Load(nil)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.Env != "production" {
			t.Fatalf("expected production env, got %q", cfg.Env)
		}
		if cfg.HTTP.Port != 4000 {
			t.Fatalf("expected default HTTP port 4000, got %d", cfg.HTTP.Port)
		}
		if cfg.Database.URL != DefaultDatabaseURL {
			t.Fatalf("unexpected default database url: %q", cfg.Database.URL)
		}
		if cfg.Auth.JWTSecret != secret {
			t.Fatalf("expected secret %q, got %q", secret, cfg.Auth.JWTSecret)
		}
		if cfg.Auth.TokenTTL != 720*time.Hour {
			t.Fatalf("expected 30 day token ttl, got %s", cfg.Auth.TokenTTL)
		}
		if cfg.Maintenance.CleanupSchedule != "@every 15m" {
			t.Fatalf("unexpected cleanup schedule %q", cfg.Maintenance.CleanupSchedule)
		}
		if cfg.SMTP.Port != 465 || cfg.SMTP.From != "Booking Service <noreply@example.com>" {
			t.Fatalf("unexpected smtp defaults %+v", cfg.SMTP)
		}
		if len(cfg.HTTP.CORSOrigins) != 0 || cfg.HTTP.SecureCookies {
			t.Fatalf("unexpected http defaults %+v", cfg.HTTP)
		}
	})

	t.Run("errors when required values are missing", func(t *testing.T) {
		clearEnvironment(t)

		_, err := Load(nil)
		if err == nil {
			t.Fatalf("expected error when required values are missing")
		}
		expected := "missing required environment variables: BOOKING_JWT_SECRET"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("parses custom values", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("BOOKING_JWT_SECRET", "s")
		t.Setenv("BOOKING_ENV", "Local")
		t.Setenv("BOOKING_HTTP_PORT", "9090")
		t.Setenv("BOOKING_DATABASE_URL", "postgres://booking:pw@db:5432/booking")
		t.Setenv("BOOKING_JWT_TTL", "2h")
		t.Setenv("BOOKING_CORS_ORIGINS", "https://a.example, https://b.example")
		t.Setenv("BOOKING_COOKIE_SECURE", "true")
		t.Setenv("ALLOWED_DOMAIN", "example.com,corp.example")
		t.Setenv("SMTP_HOST", "smtp.example.com")
		t.Setenv("SMTP_PORT", "587")

		cfg, err := Load(nil)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.Env != "local" {
			t.Fatalf("expected lower cased env, got %q", cfg.Env)
		}
		if cfg.HTTP.Port != 9090 {
			t.Fatalf("expected port 9090, got %d", cfg.HTTP.Port)
		}
		if cfg.Database.URL != "postgres://booking:pw@db:5432/booking" {
			t.Fatalf("unexpected database url %q", cfg.Database.URL)
		}
		if cfg.Auth.TokenTTL != 2*time.Hour {
			t.Fatalf("expected 2h ttl, got %s", cfg.Auth.TokenTTL)
		}
		if len(cfg.HTTP.CORSOrigins) != 2 || cfg.HTTP.CORSOrigins[1] != "https://b.example" {
			t.Fatalf("unexpected origins %q", cfg.HTTP.CORSOrigins)
		}
		if !cfg.HTTP.SecureCookies {
			t.Fatal("expected secure cookies")
		}
		if cfg.Registration.AllowedDomain != "example.com,corp.example" {
			t.Fatalf("unexpected allowed domain %q", cfg.Registration.AllowedDomain)
		}
		if cfg.SMTP.Host != "smtp.example.com" || cfg.SMTP.Port != 587 {
			t.Fatalf("unexpected smtp config %+v", cfg.SMTP)
		}
	})

	t.Run("falls back to PORT", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("BOOKING_JWT_SECRET", "s")
		t.Setenv("PORT", "8081")

		cfg, err := Load(nil)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTP.Port != 8081 {
			t.Fatalf("expected port 8081, got %d", cfg.HTTP.Port)
		}
	})

	t.Run("reports invalid values", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("BOOKING_JWT_SECRET", "s")
		t.Setenv("BOOKING_ENV", "staging")
		t.Setenv("BOOKING_HTTP_PORT", "70000")
		t.Setenv("BOOKING_LOG_LEVEL", "verbose")

		_, err := Load(nil)
		if err == nil {
			t.Fatal("expected validation error")
		}
		expected := "invalid environment variable values: BOOKING_ENV, BOOKING_HTTP_PORT, BOOKING_LOG_LEVEL"
		if err.Error() != expected {
			t.Fatalf("unexpected error message: %q", err.Error())
		}
	})

	t.Run("rejects unparsable numbers", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("BOOKING_JWT_SECRET", "s")
		t.Setenv("BOOKING_HTTP_PORT", "abc")

		if _, err := Load(nil); err == nil {
			t.Fatal("expected parse error for BOOKING_HTTP_PORT")
		}
	})
}

func TestLoader_ConfigFile(t *testing.T) {
	writeConfig := func(t *testing.T) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "booking.yaml")
		content := strings.Join([]string{
			"env: dev",
			"http:",
			"  port: 5050",
			"auth:",
			"  jwt_secret: from-file",
			"log:",
			"  level: debug",
			"",
		}, "\n")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		return path
	}

	t.Run("reads the file named by -config", func(t *testing.T) {
		clearEnvironment(t)
		path := writeConfig(t)

		cfg, err := Load([]string{"-config", path})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Env != "dev" || cfg.HTTP.Port != 5050 || cfg.Auth.JWTSecret != "from-file" || cfg.Log.Level != "debug" {
			t.Fatalf("unexpected config %+v", cfg)
		}
		if cfg.Auth.TokenTTL != 720*time.Hour {
			t.Fatalf("expected defaults for fields absent from the file, got %s", cfg.Auth.TokenTTL)
		}
	})

	t.Run("environment overrides CONFIG_PATH file", func(t *testing.T) {
		clearEnvironment(t)
		t.Setenv("CONFIG_PATH", writeConfig(t))
		t.Setenv("BOOKING_HTTP_PORT", "6060")

		cfg, err := Load(nil)
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.HTTP.Port != 6060 {
			t.Fatalf("expected env to win, got %d", cfg.HTTP.Port)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		clearEnvironment(t)
		if _, err := Load([]string{"-config", filepath.Join(t.TempDir(), "absent.yaml")}); err == nil {
			t.Fatal("expected error for a missing config file")
		}
	})

	t.Run("unknown flag", func(t *testing.T) {
		clearEnvironment(t)
		if _, err := Load([]string{"-verbose"}); err == nil {
			t.Fatal("expected error for an unknown flag")
		}
	})
}
