package config

import (
	"errors"
	"testing"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("got %v, want ErrMissingJWTSecret", err)
	}
}

func TestLoadReadsSecretFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-signing-secret")
	t.Setenv("PORT", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.JWT.Secret != "test-signing-secret" {
		t.Errorf("secret: got %q", cfg.JWT.Secret)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("default port: got %q, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.ExpiresIn != 24*60*60 {
		t.Errorf("default expiry: got %d seconds", cfg.JWT.ExpiresIn)
	}
}
