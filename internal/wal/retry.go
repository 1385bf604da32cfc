// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package wal

import (
	"context"
	"math"
	"time"

	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/logging"
)

// Publisher delivers events. *events.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, e *events.Event) error
}

// RetryLoop republishes pending entries. It implements suture.Service.
type RetryLoop struct {
	wal       *BadgerWAL
	publisher Publisher
	config    Config
	now       func() time.Time
}

// NewRetryLoop creates a loop draining w into publisher. The loop reads the
// WAL's clock so entry ages and backoff windows agree with CreatedAt.
func NewRetryLoop(w *BadgerWAL, publisher Publisher) *RetryLoop {
	return &RetryLoop{
		wal:       w,
		publisher: publisher,
		config:    w.Config(),
		now:       w.now,
	}
}

// Serve drains once at start, covering entries from a previous run, and
// then every RetryInterval.
func (r *RetryLoop) Serve(ctx context.Context) error {
	r.RetryPending(ctx)

	ticker := time.NewTicker(r.config.RetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.RetryPending(ctx)
		}
	}
}

func (r *RetryLoop) String() string {
	return "wal-retry"
}

type retryResult string

const (
	resultPublished  retryResult = "published"
	resultFailed     retryResult = "failed"
	resultExpired    retryResult = "expired"
	resultMaxRetried retryResult = "max_retried"
	resultInvalid    retryResult = "invalid"
	resultSkipped    retryResult = "skipped"
)

// RetryPending makes one pass over pending entries and returns the number
// published.
func (r *RetryLoop) RetryPending(ctx context.Context) int {
	entries, err := r.wal.Pending(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Error().Err(err).Msg("WAL retry: failed to list pending entries")
		}
		return 0
	}
	if len(entries) == 0 {
		return 0
	}

	counts := make(map[retryResult]int)
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		result := r.process(ctx, entry)
		counts[result]++
		if result != resultSkipped {
			walRetries.WithLabelValues(string(result)).Inc()
		}
	}

	if len(counts) > 1 || counts[resultSkipped] == 0 {
		logging.Info().
			Int("published", counts[resultPublished]).
			Int("failed", counts[resultFailed]).
			Int("expired", counts[resultExpired]).
			Int("max_retried", counts[resultMaxRetried]).
			Int("invalid", counts[resultInvalid]).
			Msg("WAL retry pass complete")
	}
	return counts[resultPublished]
}

func (r *RetryLoop) process(ctx context.Context, entry *Entry) retryResult {
	log := logging.Ctx(ctx).With().Str("entry_id", entry.ID).Str("topic", entry.Topic).Logger()
	now := r.now()

	if now.Sub(entry.CreatedAt) > r.config.EntryTTL {
		log.Info().Msg("WAL entry expired, dropping")
		r.drop(ctx, entry)
		return resultExpired
	}
	if entry.Attempts >= r.config.MaxRetries {
		log.Warn().Int("attempts", entry.Attempts).Str("last_error", entry.LastError).
			Msg("WAL entry exceeded max retries, dropping")
		r.drop(ctx, entry)
		return resultMaxRetried
	}
	if !entry.LastAttemptAt.IsZero() && now.Before(entry.LastAttemptAt.Add(r.backoff(entry.Attempts))) {
		return resultSkipped
	}

	e, err := entry.Event()
	if err != nil {
		log.Error().Err(err).Msg("WAL entry payload is invalid, dropping")
		r.drop(ctx, entry)
		return resultInvalid
	}

	if err := r.publisher.Publish(ctx, e); err != nil {
		if recErr := r.wal.RecordAttempt(ctx, entry, err); recErr != nil && ctx.Err() == nil {
			log.Error().Err(recErr).Msg("Failed to record WAL attempt")
		}
		log.Debug().Err(err).Int("attempts", entry.Attempts).Msg("WAL republish failed")
		return resultFailed
	}

	if err := r.wal.Confirm(ctx, entry.ID); err != nil {
		// The event will be published again on the next pass. Notification
		// handlers drop duplicates by event ID.
		log.Error().Err(err).Msg("Failed to confirm WAL entry")
	}
	return resultPublished
}

func (r *RetryLoop) drop(ctx context.Context, entry *Entry) {
	if err := r.wal.Drop(ctx, entry.ID); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Str("entry_id", entry.ID).Msg("Failed to drop WAL entry")
	}
}

// backoff returns RetryBackoff * 2^(attempts-1), capped at maxBackoff.
func (r *RetryLoop) backoff(attempts int) time.Duration {
	if attempts <= 1 {
		return r.config.RetryBackoff
	}
	d := float64(r.config.RetryBackoff) * math.Pow(2, float64(attempts-1))
	if d > float64(maxBackoff) {
		return maxBackoff
	}
	return time.Duration(d)
}
