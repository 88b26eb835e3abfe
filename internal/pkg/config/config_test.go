package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg := Load()
	if cfg.Port != "5000" {
		t.Fatalf("expected default port 5000, got %s", cfg.Port)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour || cfg.Auth.ResetTokenTTL != 10*time.Minute {
		t.Fatalf("unexpected auth defaults: %+v", cfg.Auth)
	}
	if cfg.Mongo.Database != "lms" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected storage defaults: %+v %+v", cfg.Mongo, cfg.Redis)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("kafka should be disabled by default")
	}
}

func TestLoad_PanicsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic without JWT_SECRET")
		}
	}()
	Load()
}

func TestLoadPortal_Overrides(t *testing.T) {
	t.Setenv("LMS_API_URL", "https://lms.example.com/api")
	t.Setenv("LMS_TOKEN_STORE", "redis")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := LoadPortal(context.Background())
	if err != nil {
		t.Fatalf("LoadPortal: %v", err)
	}
	if cfg.APIURL != "https://lms.example.com/api" || cfg.TokenStore != "redis" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.RequestTimeout)
	}
}
