// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverBadger {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverBadger)
	}
	if cfg.Feed.SweepInterval != 5*time.Minute {
		t.Errorf("Feed.SweepInterval = %v, want 5m", cfg.Feed.SweepInterval)
	}
	if cfg.Security.SessionTimeout != 24*time.Hour {
		t.Errorf("Security.SessionTimeout = %v, want 24h", cfg.Security.SessionTimeout)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be false by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"JWT_SECRET", "security.jwt_secret"},
		{"HTTP_PORT", "server.port"},
		{"DB_DRIVER", "database.driver"},
		{"MONGO_URI", "database.mongo_uri"},
		{"VAPID_PUBLIC_KEY", "push.vapid_public_key"},
		{"SMTP_HOST", "email.host"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("BADGER_IN_MEMORY", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FEED_SWEEP_INTERVAL", "30s")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if !cfg.Database.InMemory {
		t.Error("Database.InMemory should be true")
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Feed.SweepInterval != 30*time.Second {
		t.Errorf("Feed.SweepInterval = %v, want 30s", cfg.Feed.SweepInterval)
	}
}

func TestLoadWithKoanf_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 7070
database:
  driver: mongo
  mongo_uri: mongodb://db:27017
security:
  jwt_secret: ` + testSecret + `
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverMongo {
		t.Errorf("Database.Driver = %q, want mongo", cfg.Database.Driver)
	}
	// Env beats file
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoadWithKoanf_MissingSecret(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("JWT_SECRET", "")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error without JWT_SECRET")
	}
}
