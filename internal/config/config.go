// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// Loaded by LoadWithKoanf with the precedence ENV > File > Defaults.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Media    MediaConfig    `koanf:"media"`
	Feed     FeedConfig     `koanf:"feed"`
	Security SecurityConfig `koanf:"security"`
	Push     PushConfig     `koanf:"push"`
	Email    EmailConfig    `koanf:"email"`
	NATS     NATSConfig     `koanf:"nats"`
	WAL      WALConfig      `koanf:"wal"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production" (default: "development")
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// Database drivers.
const (
	DriverBadger = "badger"
	DriverMongo  = "mongo"
)

// DatabaseConfig selects and configures the persistence backend.
type DatabaseConfig struct {
	// Driver is the storage backend: badger (embedded, default) or mongo.
	Driver string `koanf:"driver"`

	// Path is the BadgerDB data directory.
	// Default: /data/flyfitness
	Path string `koanf:"path"`

	// InMemory runs BadgerDB without touching disk. Data is lost on restart.
	// Useful for demos and tests.
	InMemory bool `koanf:"in_memory"`

	// MongoURI is the MongoDB connection string (driver=mongo only).
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase is the database name (driver=mongo only).
	// Default: flyfitness
	MongoDatabase string `koanf:"mongo_database"`

	// ConnectTimeout bounds the initial connection and ping.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`

	// SeedSampleContent loads sample trainers, classes and testimonials on first start.
	SeedSampleContent bool `koanf:"seed_sample_content"`
}

// MediaConfig holds upload limits for feed attachments.
type MediaConfig struct {
	// MaxUploadBytes caps a single multipart upload.
	// Default: 50MB
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// GridFSBucket is the GridFS bucket name used with the mongo driver.
	GridFSBucket string `koanf:"gridfs_bucket"`

	// PublicBaseURL prefixes media URLs returned to clients. Empty means relative URLs.
	PublicBaseURL string `koanf:"public_base_url"`
}

// FeedConfig holds ephemeral feed settings.
// Post lifetime is fixed at 24 hours and is intentionally not configurable.
type FeedConfig struct {
	// SweepInterval is how often expired posts are purged.
	// Default: 5m
	SweepInterval time.Duration `koanf:"sweep_interval"`

	// Enabled advertises the feed capability to clients.
	Enabled bool `koanf:"enabled"`
}

// SecurityConfig holds authentication and authorization settings
type SecurityConfig struct {
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminEmail        string        `koanf:"admin_email"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`

	// LoginRateLimitReqs caps login and OTP attempts per IP per window.
	LoginRateLimitReqs int `koanf:"login_rate_limit_reqs"`

	// OTPTTL is how long a registration code stays valid.
	// Default: 10m
	OTPTTL time.Duration `koanf:"otp_ttl"`

	// OTPMaxAttempts is the number of wrong codes allowed before the
	// pending registration is discarded.
	OTPMaxAttempts int `koanf:"otp_max_attempts"`
}

// PushConfig holds Web Push (VAPID) delivery settings.
type PushConfig struct {
	// Enabled advertises the push capability and starts the sender.
	Enabled bool `koanf:"enabled"`

	// VAPIDPublicKey and VAPIDPrivateKey are the base64url encoded P-256 key pair.
	// When both are empty a key pair is generated at startup (development only).
	VAPIDPublicKey  string `koanf:"vapid_public_key"`
	VAPIDPrivateKey string `koanf:"vapid_private_key"`

	// Subject is the contact URI sent to push services (mailto: or https:).
	Subject string `koanf:"subject"`

	// TTL is how long push services keep undelivered messages.
	TTL time.Duration `koanf:"ttl"`

	// RatePerSecond limits outbound deliveries. 0 disables the limit.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// BreakerMaxFailures consecutive failures open the circuit.
	BreakerMaxFailures uint32 `koanf:"breaker_max_failures"`

	// BreakerTimeout is how long the circuit stays open.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// EmailConfig holds SMTP settings used to deliver OTP codes.
type EmailConfig struct {
	// Enabled sends mail over SMTP. When false codes are written to the log.
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
	FromName string `koanf:"from_name"`
}

// NATSConfig holds event bus settings.
// When disabled the application uses an in-process Watermill GoChannel.
type NATSConfig struct {
	Enabled        bool          `koanf:"enabled"`
	URL            string        `koanf:"url"`
	EmbeddedServer bool          `koanf:"embedded"`
	StoreDir       string        `koanf:"store_dir"`
	MaxMemory      int64         `koanf:"max_memory"`
	MaxStore       int64         `koanf:"max_store"`
	DurableName    string        `koanf:"durable_name"`
	QueueGroup     string        `koanf:"queue_group"`
	CloseTimeout   time.Duration `koanf:"close_timeout"`
}

// WALConfig holds the event outbox settings. Events the bus refuses are
// stored here and republished in the background.
type WALConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Path          string        `koanf:"path"`
	InMemory      bool          `koanf:"in_memory"`
	SyncWrites    bool          `koanf:"sync_writes"`
	RetryInterval time.Duration `koanf:"retry_interval"`
	RetryBackoff  time.Duration `koanf:"retry_backoff"`
	MaxRetries    int           `koanf:"max_retries"`
	EntryTTL      time.Duration `koanf:"entry_ttl"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}
