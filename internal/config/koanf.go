// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/flyfitness/config.yaml",
	"/etc/flyfitness/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Driver:            DriverBadger,
			Path:              "/data/flyfitness",
			InMemory:          false,
			MongoURI:          "mongodb://127.0.0.1:27017",
			MongoDatabase:     "flyfitness",
			ConnectTimeout:    10 * time.Second,
			SeedSampleContent: true,
		},
		Media: MediaConfig{
			MaxUploadBytes: 50 << 20, // 50MB
			GridFSBucket:   "media",
		},
		Feed: FeedConfig{
			SweepInterval: 5 * time.Minute,
			Enabled:       true,
		},
		Security: SecurityConfig{
			SessionTimeout:     24 * time.Hour,
			RateLimitReqs:      100,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			CORSOrigins:        []string{"*"},
			LoginRateLimitReqs: 10,
			OTPTTL:             10 * time.Minute,
			OTPMaxAttempts:     5,
		},
		Push: PushConfig{
			Enabled:            true,
			Subject:            "mailto:admin@flyfitness.local",
			TTL:                24 * time.Hour,
			RatePerSecond:      50,
			BreakerMaxFailures: 5,
			BreakerTimeout:     60 * time.Second,
		},
		Email: EmailConfig{
			Enabled:  false,
			Port:     587,
			From:     "no-reply@flyfitness.local",
			FromName: "Fly Fitness Zone",
		},
		NATS: NATSConfig{
			Enabled:        false, // In-process GoChannel by default
			URL:            "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			StoreDir:       "/data/nats/jetstream",
			MaxMemory:      256 << 20, // 256MB
			MaxStore:       1 << 30,   // 1GB
			DurableName:    "flyfitness-notifier",
			QueueGroup:     "notifiers",
			CloseTimeout:   30 * time.Second,
		},
		WAL: WALConfig{
			Enabled:       true,
			Path:          "/data/flyfitness-wal",
			SyncWrites:    true,
			RetryInterval: 30 * time.Second,
			RetryBackoff:  5 * time.Second,
			MaxRetries:    50,
			EntryTTL:      24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// JWT_SECRET -> security.jwt_secret
	// DB_DRIVER -> database.driver
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database
	"db_driver":           "database.driver",
	"badger_path":         "database.path",
	"badger_in_memory":    "database.in_memory",
	"mongo_uri":           "database.mongo_uri",
	"mongo_database":      "database.mongo_database",
	"db_connect_timeout":  "database.connect_timeout",
	"seed_sample_content": "database.seed_sample_content",

	// Media
	"media_max_upload_bytes": "media.max_upload_bytes",
	"media_gridfs_bucket":    "media.gridfs_bucket",
	"media_public_base_url":  "media.public_base_url",

	// Feed
	"feed_enabled":        "feed.enabled",
	"feed_sweep_interval": "feed.sweep_interval",

	// Security
	"jwt_secret":            "security.jwt_secret",
	"session_timeout":       "security.session_timeout",
	"admin_email":           "security.admin_email",
	"admin_password":        "security.admin_password",
	"rate_limit_requests":   "security.rate_limit_reqs",
	"rate_limit_window":     "security.rate_limit_window",
	"disable_rate_limit":    "security.rate_limit_disabled",
	"cors_origins":          "security.cors_origins",
	"login_rate_limit_reqs": "security.login_rate_limit_reqs",
	"otp_ttl":               "security.otp_ttl",
	"otp_max_attempts":      "security.otp_max_attempts",

	// Push
	"push_enabled":              "push.enabled",
	"vapid_public_key":          "push.vapid_public_key",
	"vapid_private_key":         "push.vapid_private_key",
	"vapid_subject":             "push.subject",
	"push_ttl":                  "push.ttl",
	"push_rate_per_second":      "push.rate_per_second",
	"push_breaker_max_failures": "push.breaker_max_failures",
	"push_breaker_timeout":      "push.breaker_timeout",

	// Email
	"smtp_enabled":   "email.enabled",
	"smtp_host":      "email.host",
	"smtp_port":      "email.port",
	"smtp_username":  "email.username",
	"smtp_password":  "email.password",
	"smtp_from":      "email.from",
	"smtp_from_name": "email.from_name",

	// NATS
	"nats_enabled":       "nats.enabled",
	"nats_url":           "nats.url",
	"nats_embedded":      "nats.embedded",
	"nats_store_dir":     "nats.store_dir",
	"nats_max_memory":    "nats.max_memory",
	"nats_max_store":     "nats.max_store",
	"nats_durable_name":  "nats.durable_name",
	"nats_queue_group":   "nats.queue_group",
	"nats_close_timeout": "nats.close_timeout",

	// Event outbox
	"wal_enabled":        "wal.enabled",
	"wal_path":           "wal.path",
	"wal_in_memory":      "wal.in_memory",
	"wal_sync_writes":    "wal.sync_writes",
	"wal_retry_interval": "wal.retry_interval",
	"wal_retry_backoff":  "wal.retry_backoff",
	"wal_max_retries":    "wal.max_retries",
	"wal_entry_ttl":      "wal.entry_ttl",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - JWT_SECRET -> security.jwt_secret
//   - MONGO_URI -> database.mongo_uri
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
