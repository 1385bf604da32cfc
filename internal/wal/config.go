// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package wal

import (
	"fmt"
	"time"

	"github.com/tomtom215/flyfitness/internal/config"
)

// Config holds outbox settings.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool

	// RetryInterval is how often the RetryLoop scans for pending entries.
	RetryInterval time.Duration

	// RetryBackoff is the base delay between attempts on one entry. It
	// doubles per attempt up to maxBackoff.
	RetryBackoff time.Duration

	// MaxRetries drops an entry after this many failed attempts.
	MaxRetries int

	// EntryTTL drops entries older than this. Defaults to the post lifetime.
	EntryTTL time.Duration
}

const maxBackoff = 5 * time.Minute

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Path:          "/data/flyfitness-wal",
		SyncWrites:    true,
		RetryInterval: 30 * time.Second,
		RetryBackoff:  5 * time.Second,
		MaxRetries:    50,
		EntryTTL:      24 * time.Hour,
	}
}

// ConfigFromConfig maps the application's outbox section.
func ConfigFromConfig(cfg *config.WALConfig) Config {
	return Config{
		Path:          cfg.Path,
		InMemory:      cfg.InMemory,
		SyncWrites:    cfg.SyncWrites,
		RetryInterval: cfg.RetryInterval,
		RetryBackoff:  cfg.RetryBackoff,
		MaxRetries:    cfg.MaxRetries,
		EntryTTL:      cfg.EntryTTL,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.RetryInterval <= 0 {
		c.RetryInterval = d.RetryInterval
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = d.RetryBackoff
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.EntryTTL <= 0 {
		c.EntryTTL = d.EntryTTL
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("wal path is required unless running in memory")
	}
	return nil
}
