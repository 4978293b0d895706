package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/avdeyev/taskboard/internal/config"
)

func TestEnvReaderDefaults(t *testing.T) {
	t.Setenv("ENV", "local")
	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USERNAME", "taskboard")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DATABASE", "taskboard")
	t.Setenv("JWT_SIGNING_KEY", "test-key")

	cfg, err := config.NewEnvReader().Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if cfg.Env != config.EnvLocal {
		t.Errorf("Env = %q, want %q", cfg.Env, config.EnvLocal)
	}
	if cfg.HTTP.Port != "8080" {
		t.Errorf("HTTP.Port = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want 5432", cfg.Postgres.Port)
	}
	if cfg.JWT.TokenTTL != 24*time.Hour {
		t.Errorf("JWT.TokenTTL = %v, want 24h", cfg.JWT.TokenTTL)
	}
	if cfg.SMTP.Host != "" {
		t.Errorf("SMTP.Host = %q, want empty (mail disabled)", cfg.SMTP.Host)
	}
}

func TestEnvReaderMissingRequired(t *testing.T) {
	// t.Setenv registers the restore; Unsetenv then guarantees the
	// variable is absent even if the test environment defines it.
	t.Setenv("JWT_SIGNING_KEY", "")
	os.Unsetenv("JWT_SIGNING_KEY")

	t.Setenv("POSTGRES_HOST", "localhost")
	t.Setenv("POSTGRES_USERNAME", "taskboard")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DATABASE", "taskboard")

	_, err := config.NewEnvReader().Read()
	if err == nil {
		t.Fatal("Read succeeded without JWT_SIGNING_KEY, want error")
	}
}
