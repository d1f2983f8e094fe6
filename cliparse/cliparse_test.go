package cliparse

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_EnvVars(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "test.db")
	t.Setenv("SECRET_KEY", "test-secret")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "5")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEED", "false")
	t.Setenv("LOADER_WAIT", "2ms")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "test.db" {
		t.Errorf("expected database url test.db, got %s", cfg.DatabaseURL)
	}
	if cfg.TokenTTL != 5*time.Minute {
		t.Errorf("expected token ttl 5m, got %s", cfg.TokenTTL)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.Seed {
		t.Error("expected seeding disabled")
	}
	if cfg.LoaderWait != 2*time.Millisecond {
		t.Errorf("expected loader wait 2ms, got %s", cfg.LoaderWait)
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 4000 {
		t.Errorf("expected default port 4000, got %d", cfg.Port)
	}
	if cfg.DatabaseURL != "starwars.db" {
		t.Errorf("expected default database starwars.db, got %s", cfg.DatabaseURL)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %s", cfg.DatabaseType)
	}
	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("expected default token ttl 30m, got %s", cfg.TokenTTL)
	}
	if !cfg.Seed {
		t.Error("expected seeding enabled by default")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SECRET_KEY", "env-secret")

	t.Setenv("SEED", "true")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:test.db", "-secret", "s1", "-seed=false", "-loader-wait", "1ms"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.SecretKey != "s1" {
		t.Errorf("CLI should override env: expected s1, got %s", cfg.SecretKey)
	}
	if cfg.Seed {
		t.Error("CLI should override env: expected seeding disabled")
	}
	if cfg.LoaderWait != time.Millisecond {
		t.Errorf("expected loader wait 1ms, got %s", cfg.LoaderWait)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		args []string
	}{
		{"missing secret", map[string]string{"SECRET_KEY": ""}, nil},
		{"bad port", map[string]string{"SECRET_KEY": "s", "PORT": "abc"}, nil},
		{"bad database type", map[string]string{"SECRET_KEY": "s"}, []string{"-t", "mysql"}},
		{"bad token ttl", map[string]string{"SECRET_KEY": "s", "ACCESS_TOKEN_EXPIRE_MINUTES": "-1"}, nil},
		{"bad log level", map[string]string{"SECRET_KEY": "s", "LOG_LEVEL": "loud"}, nil},
		{"bad loader wait", map[string]string{"SECRET_KEY": "s", "LOADER_WAIT": "soon"}, nil},
		{"bad seed", map[string]string{"SECRET_KEY": "s", "SEED": "maybe"}, nil},
		{"negative loader wait flag", map[string]string{"SECRET_KEY": "s"}, []string{"-loader-wait", "-1s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("STARWARS_TEST_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STARWARS_TEST_VALUE", "")
	os.Unsetenv("STARWARS_TEST_VALUE")

	if err := LoadEnv(path, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if got := os.Getenv("STARWARS_TEST_VALUE"); got != "from-file" {
		t.Errorf("expected value from .env file, got %q", got)
	}
}
