package config

import "testing"

func TestLoadDoesNotInjectWeakSecretDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CSRF_SECRET", "")

	cfg := Load()
	if cfg.JWTSecret != "" {
		t.Fatalf("expected empty JWT_SECRET when unset, got %q", cfg.JWTSecret)
	}
	if cfg.CSRFSecret != "" {
		t.Fatalf("expected empty CSRF_SECRET when unset, got %q", cfg.CSRFSecret)
	}
}

func TestLoadFallbacks(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("MIGRATIONS_DIR", "")
	t.Setenv("ACCESS_TOKEN_TTL_MINUTES", "not-a-number")

	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.Production() {
		t.Fatal("expected development by default")
	}
	if cfg.MigrationsDir != "migrations" {
		t.Fatalf("unexpected migrations dir %q", cfg.MigrationsDir)
	}
	if cfg.AccessTokenTTLMinutes != 480 {
		t.Fatalf("expected token TTL fallback 480, got %d", cfg.AccessTokenTTLMinutes)
	}
	if cfg.Address() != ":8080" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}
