// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package badgerstore implements store.Store on an embedded BadgerDB.
// Records are stored as JSON under prefixed keys; feed posts and their media
// carry a TTL slightly longer than the post lifetime so that anything the
// sweeper misses is still reclaimed.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// Key prefixes for BadgerDB storage
const (
	postKeyPrefix      = "post:"
	mediaKeyPrefix     = "media:"
	mediaMetaKeyPrefix = "media_meta:"
	userKeyPrefix      = "user:"
	userEmailKeyPrefix = "user_email:"
	pendingKeyPrefix   = "pending:"
	notifKeyPrefix     = "notif:"
	pushKeyPrefix      = "push:"
	contentKeyPrefix   = "content:"
)

// ttlGrace is added to expiring records so the sweeper normally runs first.
const ttlGrace = time.Hour

// maxTxnRetries bounds optimistic transaction retries on write conflicts.
const maxTxnRetries = 32

// InMemoryMaxMediaBytes is the largest attachment an in-memory database
// accepts. Without a value log every value must stay under badger's 1MB
// value threshold.
const InMemoryMaxMediaBytes int64 = 1<<20 - 1

// Options configures Open.
type Options struct {
	// Path is the data directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps all data in RAM.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool
}

// Store implements store.Store on BadgerDB.
type Store struct {
	db  *badger.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a BadgerDB database.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path)
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}
	bopts.Logger = nil // Suppress BadgerDB internal logs
	bopts.SyncWrites = opts.SyncWrites

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	return New(db), nil
}

// New wraps an already opened database.
func New(db *badger.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// MaxMediaBytes returns the largest attachment the database can hold, or
// zero when only the configured upload limit applies.
func (s *Store) MaxMediaBytes() int64 {
	if s.db.Opts().InMemory {
		return InMemoryMaxMediaBytes
	}
	return 0
}

// Ping verifies the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunValueLogGC reclaims value log space. badger.ErrNoRewrite means there was
// nothing to collect and is not reported.
func (s *Store) RunValueLogGC(discardRatio float64) error {
	if s.db.Opts().InMemory {
		return nil
	}
	err := s.db.RunValueLogGC(discardRatio)
	if errors.Is(err, badger.ErrNoRewrite) {
		return nil
	}
	return err
}

// update runs fn in a read-write transaction, retrying on write conflicts.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

// getJSON loads key into v. Missing keys map to store.ErrNotFound.
func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

// setJSON stores v under key. A positive ttl makes the entry expire.
func setJSON(txn *badger.Txn, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	entry := badger.NewEntry([]byte(key), data)
	if ttl > 0 {
		entry = entry.WithTTL(ttl)
	}
	return txn.SetEntry(entry)
}

// deleteKey removes key, mapping a missing key to store.ErrNotFound.
func deleteKey(txn *badger.Txn, key string) error {
	if _, err := txn.Get([]byte(key)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		return err
	}
	return txn.Delete([]byte(key))
}

// scanJSON decodes every value under prefix, calling fn with a fresh T each time.
func scanJSON[T any](txn *badger.Txn, prefix string, fn func(v T) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &v)
		}); err != nil {
			return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

// postTTL is the remaining lifetime of a post plus grace.
func (s *Store) postTTL(p *models.Post) time.Duration {
	remaining := p.ExpiresAt.Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return remaining + ttlGrace
}
