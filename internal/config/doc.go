// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package config provides centralized configuration management for Fly Fitness Zone.

# Configuration Sources

Configuration is loaded by LoadWithKoanf in three layers, each overriding the previous:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file (CONFIG_PATH, ./config.yaml, /etc/flyfitness/config.yaml)
 3. Environment variables, translated through an explicit mapping table

Unknown environment variables are ignored so the process environment cannot
pollute the configuration tree.

# Configuration Structure

  - ServerConfig: HTTP listen address, timeouts and environment
  - DatabaseConfig: storage driver (badger or mongo) and connection settings
  - MediaConfig: upload limits and the GridFS bucket
  - FeedConfig: expired-post sweep interval
  - SecurityConfig: JWT, rate limits, CORS, OTP registration
  - PushConfig: VAPID keys and delivery limits
  - EmailConfig: SMTP settings for OTP mail
  - NATSConfig: optional NATS JetStream event bus
  - WALConfig: BadgerDB outbox for events the bus refuses
  - LoggingConfig: zerolog level and format

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, ENVIRONMENT

Database:
  - DB_DRIVER: badger (default) or mongo
  - BADGER_PATH, BADGER_IN_MEMORY
  - MONGO_URI, MONGO_DATABASE, DB_CONNECT_TIMEOUT

Event outbox:
  - WAL_ENABLED (default: true), WAL_PATH, WAL_IN_MEMORY, WAL_SYNC_WRITES
  - WAL_RETRY_INTERVAL, WAL_RETRY_BACKOFF, WAL_MAX_RETRIES, WAL_ENTRY_TTL

Security:
  - JWT_SECRET: signing secret (min 32 chars, required)
  - SESSION_TIMEOUT: token lifetime (default: 24h)
  - ADMIN_EMAIL, ADMIN_PASSWORD: bootstrap admin account
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: comma-separated list
  - OTP_TTL, OTP_MAX_ATTEMPTS

Push:
  - PUSH_ENABLED, VAPID_PUBLIC_KEY, VAPID_PRIVATE_KEY, VAPID_SUBJECT

Email:
  - SMTP_ENABLED, SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(cfg.Server.Addr())
*/
package config
