package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TASKHUB_ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("TASKHUB_REFRESH_TOKEN_SECRET", "refresh-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("unexpected access ttl: %v", cfg.AccessTokenTTL)
	}
	if cfg.SingleUseTokenTTL != 20*time.Minute {
		t.Fatalf("unexpected single-use ttl: %v", cfg.SingleUseTokenTTL)
	}
	if cfg.Production() {
		t.Fatalf("default env should not be production")
	}
}

func TestLoadRequiresSecrets(t *testing.T) {
	t.Setenv("TASKHUB_ACCESS_TOKEN_SECRET", "")
	t.Setenv("TASKHUB_REFRESH_TOKEN_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error for missing secrets")
	}
}

func TestLoadRejectsSharedSecret(t *testing.T) {
	t.Setenv("TASKHUB_ACCESS_TOKEN_SECRET", "same")
	t.Setenv("TASKHUB_REFRESH_TOKEN_SECRET", "same")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "must differ") {
		t.Fatalf("expected shared-secret error, got %v", err)
	}
}
