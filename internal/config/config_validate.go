// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// minJWTSecretLength is the minimum accepted JWT signing secret length.
const minJWTSecretLength = 32

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateFeed(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validatePush(); err != nil {
		return err
	}

	if err := c.validateEmail(); err != nil {
		return err
	}

	if err := c.validateWAL(); err != nil {
		return err
	}
	if err := c.validateNATS(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging or production, got: %s", c.Server.Environment)
	}
	return nil
}

// validateDatabase validates the storage backend selection
func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverBadger:
		if !c.Database.InMemory && c.Database.Path == "" {
			return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY=true")
		}
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when DB_DRIVER=mongo")
		}
		u, err := url.Parse(c.Database.MongoURI)
		if err != nil || (u.Scheme != "mongodb" && u.Scheme != "mongodb+srv") {
			return fmt.Errorf("MONGO_URI must use mongodb:// or mongodb+srv:// scheme")
		}
		if c.Database.MongoDatabase == "" {
			return fmt.Errorf("MONGO_DATABASE is required when DB_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got: %q", DriverBadger, DriverMongo, c.Database.Driver)
	}
	if c.Media.MaxUploadBytes <= 0 {
		return fmt.Errorf("MEDIA_MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// validateFeed validates feed configuration
func (c *Config) validateFeed() error {
	if c.Feed.SweepInterval < time.Second {
		return fmt.Errorf("FEED_SWEEP_INTERVAL must be at least 1s, got: %v", c.Feed.SweepInterval)
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	if c.Security.OTPTTL < time.Minute {
		return fmt.Errorf("OTP_TTL must be at least 1m")
	}
	if c.Security.OTPMaxAttempts < 1 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be at least 1")
	}
	if c.Security.AdminEmail != "" && len(c.Security.AdminPassword) < 8 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}
	return nil
}

// validateCORS rejects a wildcard origin in production
func (c *Config) validateCORS() error {
	if !c.Server.IsProduction() {
		return nil
	}
	for _, origin := range c.Security.CORSOrigins {
		if strings.TrimSpace(origin) == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain '*' in production")
		}
	}
	return nil
}

// validateRateLimits validates rate limiting bounds
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 || c.Security.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
	}
	if c.Security.RateLimitWindow < time.Second {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be at least 1s")
	}
	if c.Security.LoginRateLimitReqs < 1 {
		return fmt.Errorf("LOGIN_RATE_LIMIT_REQS must be at least 1")
	}
	return nil
}

// validatePush validates push configuration (only if enabled)
func (c *Config) validatePush() error {
	if !c.Push.Enabled {
		return nil
	}
	if (c.Push.VAPIDPublicKey == "") != (c.Push.VAPIDPrivateKey == "") {
		return fmt.Errorf("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set together")
	}
	if c.Push.VAPIDPublicKey == "" && c.Server.IsProduction() {
		return fmt.Errorf("VAPID keys are required in production")
	}
	if !strings.HasPrefix(c.Push.Subject, "mailto:") && !strings.HasPrefix(c.Push.Subject, "https://") {
		return fmt.Errorf("VAPID_SUBJECT must start with mailto: or https://")
	}
	if c.Push.RatePerSecond < 0 {
		return fmt.Errorf("PUSH_RATE_PER_SECOND must not be negative")
	}
	if c.Push.BreakerMaxFailures == 0 {
		return fmt.Errorf("PUSH_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

// validateEmail validates SMTP configuration (only if enabled)
func (c *Config) validateEmail() error {
	if !c.Email.Enabled {
		return nil
	}
	if c.Email.Host == "" {
		return fmt.Errorf("SMTP_HOST is required when SMTP_ENABLED=true")
	}
	if c.Email.Port < 1 || c.Email.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if !strings.Contains(c.Email.From, "@") {
		return fmt.Errorf("SMTP_FROM must be an email address")
	}
	return nil
}

// validateNATS validates NATS configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_ENABLED=true")
	}
	if c.NATS.EmbeddedServer && c.NATS.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
	}
	return nil
}

// validateWAL validates the event outbox (only if enabled)
func (c *Config) validateWAL() error {
	if !c.WAL.Enabled {
		return nil
	}
	if !c.WAL.InMemory && c.WAL.Path == "" {
		return fmt.Errorf("WAL_PATH is required when WAL_ENABLED=true")
	}
	if c.WAL.MaxRetries < 1 {
		return fmt.Errorf("WAL_MAX_RETRIES must be at least 1, got: %d", c.WAL.MaxRetries)
	}
	if c.WAL.RetryInterval <= 0 {
		return fmt.Errorf("WAL_RETRY_INTERVAL must be positive")
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
	return nil
}
