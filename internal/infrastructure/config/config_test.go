package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/iho/cuentas/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.StoreDriver != config.StoreDriverPostgres {
		t.Fatalf("expected postgres store driver by default, got %s", cfg.StoreDriver)
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.DefaultHolderKey != "titular" || cfg.DefaultCurrency != "ARS" {
		t.Fatalf("unexpected ledger defaults: holder=%s currency=%s", cfg.DefaultHolderKey, cfg.DefaultCurrency)
	}

	if cfg.QuoteCacheTTL != 5*time.Minute {
		t.Fatalf("expected default quote cache TTL of 5m, got %s", cfg.QuoteCacheTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("DEFAULT_HOLDER_KEY", "casa")
	t.Setenv("DEFAULT_CURRENCY", "USD")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.StoreDriver != config.StoreDriverMemory {
		t.Fatalf("expected memory store driver, got %s", cfg.StoreDriver)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if cfg.DefaultHolderKey != "casa" || cfg.DefaultCurrency != "USD" {
		t.Fatalf("expected ledger overrides, got holder=%s currency=%s", cfg.DefaultHolderKey, cfg.DefaultCurrency)
	}

	if cfg.RateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit override, got %v", cfg.RateLimitRPS)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	original := os.Getenv("HTTP_READ_TIMEOUT")
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")
	t.Cleanup(func() {
		t.Setenv("HTTP_READ_TIMEOUT", original)
	})

	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown store driver", "STORE_DRIVER", "sqlite"},
		{"negative rate limit", "RATE_LIMIT_RPS", "-1"},
		{"malformed currency", "DEFAULT_CURRENCY", "PESOS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
