// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package wal is a durable outbox for domain events. Events the bus refuses
// are written to a dedicated BadgerDB and republished by a RetryLoop until
// they are delivered, expire, or exhaust their retries.
package wal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/logging"
)

const pendingPrefix = "pending:"

// ErrClosed is returned by operations on a closed WAL.
var ErrClosed = errors.New("wal closed")

// Entry is one event waiting to be published.
type Entry struct {
	ID        string          `json:"id"`
	Topic     string          `json:"topic"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`

	// LastAttemptAt is zero until the first retry.
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

// Event decodes the stored payload.
func (e *Entry) Event() (*events.Event, error) {
	return events.Unmarshal(e.Payload)
}

// Stats reports WAL counters since Open.
type Stats struct {
	Pending   int64
	Written   int64
	Confirmed int64
	Dropped   int64
}

// BadgerWAL stores pending entries under the "pending:" prefix.
type BadgerWAL struct {
	db     *badger.DB
	config Config
	now    func() time.Time

	mu     sync.RWMutex
	closed bool

	pending   atomic.Int64
	written   atomic.Int64
	confirmed atomic.Int64
	dropped   atomic.Int64
}

// Open opens the WAL database and counts entries left by a previous run.
func Open(cfg Config) (*BadgerWAL, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithSyncWrites(cfg.SyncWrites).
		WithCompression(options.Snappy).
		WithLogger(nil)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open wal: %w", err)
	}

	w := &BadgerWAL{db: db, config: cfg, now: time.Now}
	entries, err := w.Pending(context.Background())
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	w.pending.Store(int64(len(entries)))
	if len(entries) > 0 {
		logging.Info().Int("pending", len(entries)).Msg("WAL has events from a previous run")
	}
	return w, nil
}

// Config returns the effective configuration.
func (w *BadgerWAL) Config() Config {
	return w.config
}

// Write persists e and returns the entry ID.
func (w *BadgerWAL) Write(ctx context.Context, e *events.Event) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	payload, err := events.Marshal(e)
	if err != nil {
		return "", err
	}
	entry := &Entry{
		ID:        uuid.NewString(),
		Topic:     e.Topic,
		Payload:   payload,
		CreatedAt: w.now().UTC(),
	}
	if err := w.put(entry); err != nil {
		return "", err
	}
	w.written.Add(1)
	w.pending.Add(1)
	walWrites.Inc()
	walPending.Set(float64(w.pending.Load()))
	return entry.ID, nil
}

// Confirm removes a delivered entry.
func (w *BadgerWAL) Confirm(ctx context.Context, id string) error {
	removed, err := w.delete(ctx, id)
	if removed {
		w.confirmed.Add(1)
	}
	return err
}

// Drop removes an entry that will never be delivered.
func (w *BadgerWAL) Drop(ctx context.Context, id string) error {
	removed, err := w.delete(ctx, id)
	if removed {
		w.dropped.Add(1)
	}
	return err
}

// RecordAttempt stores a failed delivery attempt.
func (w *BadgerWAL) RecordAttempt(ctx context.Context, entry *Entry, cause error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entry.Attempts++
	entry.LastAttemptAt = w.now().UTC()
	if cause != nil {
		entry.LastError = cause.Error()
	}
	return w.put(entry)
}

// Pending returns all entries in key order.
func (w *BadgerWAL) Pending(ctx context.Context) ([]*Entry, error) {
	if err := w.checkOpen(); err != nil {
		return nil, err
	}
	var entries []*Entry
	err := w.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(pendingPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var entry Entry
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return fmt.Errorf("decode wal entry %s: %w", it.Item().Key(), err)
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Stats returns current counters.
func (w *BadgerWAL) Stats() Stats {
	return Stats{
		Pending:   w.pending.Load(),
		Written:   w.written.Load(),
		Confirmed: w.confirmed.Load(),
		Dropped:   w.dropped.Load(),
	}
}

// RunValueLogGC reclaims value log space left by confirmed entries.
func (w *BadgerWAL) RunValueLogGC(discardRatio float64) error {
	if w.config.InMemory {
		return nil
	}
	if err := w.checkOpen(); err != nil {
		return err
	}
	err := w.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// Close closes the database. Pending entries survive for the next Open.
func (w *BadgerWAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.db.Close()
}

func (w *BadgerWAL) checkOpen() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return ErrClosed
	}
	return nil
}

func (w *BadgerWAL) put(entry *Entry) error {
	if err := w.checkOpen(); err != nil {
		return err
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode wal entry: %w", err)
	}
	return w.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(pendingPrefix+entry.ID), data)
	})
}

func (w *BadgerWAL) delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := w.checkOpen(); err != nil {
		return false, err
	}
	key := []byte(pendingPrefix + id)
	removed := false
	err := w.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		removed = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, fmt.Errorf("delete wal entry %s: %w", id, err)
	}
	if removed {
		walPending.Set(float64(w.pending.Add(-1)))
	}
	return removed, nil
}
