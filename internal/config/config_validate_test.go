// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = testSecret
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults with secret", func(c *Config) {}, false},
		{"short secret", func(c *Config) { c.Security.JWTSecret = "short" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, true},
		{"bad environment", func(c *Config) { c.Server.Environment = "qa" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, true},
		{"mongo bad scheme", func(c *Config) {
			c.Database.Driver = DriverMongo
			c.Database.MongoURI = "http://db"
		}, true},
		{"mongo ok", func(c *Config) {
			c.Database.Driver = DriverMongo
			c.Database.MongoURI = "mongodb+srv://cluster.example"
		}, false},
		{"badger no path", func(c *Config) { c.Database.Path = "" }, true},
		{"badger in memory no path", func(c *Config) {
			c.Database.Path = ""
			c.Database.InMemory = true
		}, false},
		{"sweep too fast", func(c *Config) { c.Feed.SweepInterval = time.Millisecond }, true},
		{"wildcard cors in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Push.Enabled = false
		}, true},
		{"half vapid pair", func(c *Config) { c.Push.VAPIDPublicKey = "abc" }, true},
		{"bad vapid subject", func(c *Config) { c.Push.Subject = "admin@example.com" }, true},
		{"push disabled skips checks", func(c *Config) {
			c.Push.Enabled = false
			c.Push.Subject = ""
		}, false},
		{"smtp without host", func(c *Config) { c.Email.Enabled = true }, true},
		{"nats without url", func(c *Config) {
			c.NATS.Enabled = true
			c.NATS.URL = ""
		}, true},
		{"wal without path", func(c *Config) { c.WAL.Path = "" }, true},
		{"wal in memory needs no path", func(c *Config) {
			c.WAL.Path = ""
			c.WAL.InMemory = true
		}, false},
		{"wal disabled skips checks", func(c *Config) {
			c.WAL.Enabled = false
			c.WAL.MaxRetries = 0
		}, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"admin with weak password", func(c *Config) {
			c.Security.AdminEmail = "admin@example.com"
			c.Security.AdminPassword = "123"
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfigAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8080}
	if got := s.Addr(); got != "127.0.0.1:8080" {
		t.Errorf("Addr() = %q", got)
	}
}
