// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package wal

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/logging"
)

// DurablePublisher publishes directly and falls back to the WAL when the
// bus refuses an event. A nil error means the event was delivered or is
// queued for retry.
type DurablePublisher struct {
	next Publisher
	wal  *BadgerWAL
}

// NewDurablePublisher wraps next.
func NewDurablePublisher(next Publisher, w *BadgerWAL) *DurablePublisher {
	return &DurablePublisher{next: next, wal: w}
}

// Publish implements feed.Publisher.
func (p *DurablePublisher) Publish(ctx context.Context, e *events.Event) error {
	pubErr := p.next.Publish(ctx, e)
	if pubErr == nil {
		return nil
	}
	// The request context may be canceled right after the response is written.
	id, err := p.wal.Write(context.WithoutCancel(ctx), e)
	if err != nil {
		return fmt.Errorf("publish %s and queue: %w", e.Topic, errors.Join(pubErr, err))
	}
	logging.Ctx(ctx).Warn().Err(pubErr).
		Str("topic", e.Topic).
		Str("event_id", e.ID).
		Str("entry_id", id).
		Msg("Event publish failed, queued for retry")
	return nil
}
