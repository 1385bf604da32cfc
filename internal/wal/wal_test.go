// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package wal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/flyfitness/internal/events"
)

var errBusDown = errors.New("bus down")

// flakyPublisher fails while down is set and records delivered events.
type flakyPublisher struct {
	mu        sync.Mutex
	down      bool
	delivered []*events.Event
	calls     int
}

func (p *flakyPublisher) Publish(_ context.Context, e *events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.down {
		return errBusDown
	}
	p.delivered = append(p.delivered, e)
	return nil
}

func (p *flakyPublisher) setDown(down bool) {
	p.mu.Lock()
	p.down = down
	p.mu.Unlock()
}

func (p *flakyPublisher) deliveredIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.delivered))
	for _, e := range p.delivered {
		ids = append(ids, e.ID)
	}
	return ids
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func openTestWAL(t *testing.T, cfg Config) (*BadgerWAL, *testClock) {
	t.Helper()
	cfg.InMemory = cfg.Path == ""
	w, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	clock := &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	w.now = clock.Now
	return w, clock
}

func likeEvent() *events.Event {
	e := events.New(events.TopicPostLiked, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	e.ActorID = "u-2"
	e.RecipientID = "u-1"
	e.PostID = "p-1"
	e.Liked = true
	return e
}

func TestWAL_WriteConfirm(t *testing.T) {
	w, _ := openTestWAL(t, Config{})
	ctx := context.Background()

	e := likeEvent()
	id, err := w.Write(ctx, e)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	pending, err := w.Pending(ctx)
	if err != nil {
		t.Fatalf("Pending() error = %v", err)
	}
	if len(pending) != 1 || pending[0].ID != id || pending[0].Topic != events.TopicPostLiked {
		t.Fatalf("Pending() = %+v", pending)
	}
	decoded, err := pending[0].Event()
	if err != nil {
		t.Fatalf("Event() error = %v", err)
	}
	if decoded.ID != e.ID || decoded.PostID != "p-1" || !decoded.Liked {
		t.Errorf("decoded event = %+v", decoded)
	}

	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	// Confirming twice is harmless.
	if err := w.Confirm(ctx, id); err != nil {
		t.Fatalf("second Confirm() error = %v", err)
	}

	stats := w.Stats()
	if stats.Pending != 0 || stats.Written != 1 || stats.Confirmed != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestWAL_RejectsInvalidEvent(t *testing.T) {
	w, _ := openTestWAL(t, Config{})
	if _, err := w.Write(context.Background(), &events.Event{Topic: events.TopicPostLiked}); err == nil {
		t.Error("Write() should reject an event without an ID")
	}
}

func TestWAL_ClosedOperations(t *testing.T) {
	w, _ := openTestWAL(t, Config{})
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := w.Write(context.Background(), likeEvent()); !errors.Is(err, ErrClosed) {
		t.Errorf("Write() after Close error = %v, want ErrClosed", err)
	}
	if _, err := w.Pending(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("Pending() after Close error = %v, want ErrClosed", err)
	}
}

func TestWAL_SurvivesRestart(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := w.Write(context.Background(), likeEvent()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	if got := reopened.Stats().Pending; got != 1 {
		t.Errorf("Pending after restart = %d, want 1", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("empty path on disk should fail validation")
	}
	if err := (Config{InMemory: true}).Validate(); err != nil {
		t.Errorf("in-memory config error = %v", err)
	}
}

func TestDurablePublisher(t *testing.T) {
	w, _ := openTestWAL(t, Config{})
	bus := &flakyPublisher{}
	p := NewDurablePublisher(bus, w)
	ctx := context.Background()

	if err := p.Publish(ctx, likeEvent()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if w.Stats().Written != 0 {
		t.Error("delivered event should not touch the WAL")
	}

	bus.setDown(true)
	if err := p.Publish(ctx, likeEvent()); err != nil {
		t.Fatalf("Publish() with bus down error = %v, want queued", err)
	}
	if w.Stats().Pending != 1 {
		t.Errorf("Pending = %d, want 1", w.Stats().Pending)
	}

	_ = w.Close()
	if err := p.Publish(ctx, likeEvent()); !errors.Is(err, errBusDown) || !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() with bus and WAL down error = %v", err)
	}
}

func TestRetryLoop_Redelivers(t *testing.T) {
	w, clock := openTestWAL(t, Config{RetryBackoff: 10 * time.Second})
	bus := &flakyPublisher{down: true}
	p := NewDurablePublisher(bus, w)
	loop := NewRetryLoop(w, bus)
	ctx := context.Background()

	e := likeEvent()
	if err := p.Publish(ctx, e); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if n := loop.RetryPending(ctx); n != 0 {
		t.Fatalf("RetryPending() with bus down = %d", n)
	}
	pending, _ := w.Pending(ctx)
	if len(pending) != 1 || pending[0].Attempts != 1 || pending[0].LastError == "" {
		t.Fatalf("attempt not recorded: %+v", pending)
	}

	bus.setDown(false)
	// Still inside the backoff window.
	if n := loop.RetryPending(ctx); n != 0 {
		t.Fatalf("RetryPending() during backoff = %d", n)
	}

	clock.Advance(11 * time.Second)
	if n := loop.RetryPending(ctx); n != 1 {
		t.Fatalf("RetryPending() after backoff = %d, want 1", n)
	}
	if ids := bus.deliveredIDs(); len(ids) != 1 || ids[0] != e.ID {
		t.Errorf("delivered = %v, want [%s]", ids, e.ID)
	}
	if w.Stats().Pending != 0 {
		t.Errorf("Pending = %d after delivery", w.Stats().Pending)
	}
}

func TestRetryLoop_DropsExpiredAndExhausted(t *testing.T) {
	w, clock := openTestWAL(t, Config{MaxRetries: 2, RetryBackoff: time.Second, EntryTTL: time.Hour})
	bus := &flakyPublisher{down: true}
	loop := NewRetryLoop(w, bus)
	ctx := context.Background()

	if _, err := w.Write(ctx, likeEvent()); err != nil {
		t.Fatal(err)
	}
	for range 2 {
		loop.RetryPending(ctx)
		clock.Advance(time.Minute)
	}
	loop.RetryPending(ctx)
	if w.Stats().Pending != 0 || w.Stats().Dropped != 1 {
		t.Fatalf("exhausted entry not dropped: %+v", w.Stats())
	}

	if _, err := w.Write(ctx, likeEvent()); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * time.Hour)
	loop.RetryPending(ctx)
	if w.Stats().Pending != 0 || w.Stats().Dropped != 2 {
		t.Fatalf("expired entry not dropped: %+v", w.Stats())
	}
	if bus.calls != 2 {
		t.Errorf("publisher calls = %d, want 2", bus.calls)
	}
}

func TestRetryLoop_Backoff(t *testing.T) {
	loop := &RetryLoop{config: Config{RetryBackoff: 5 * time.Second}}
	tests := []struct {
		attempts int
		want     time.Duration
	}{
		{0, 5 * time.Second},
		{1, 5 * time.Second},
		{2, 10 * time.Second},
		{4, 40 * time.Second},
		{20, maxBackoff},
	}
	for _, tt := range tests {
		if got := loop.backoff(tt.attempts); got != tt.want {
			t.Errorf("backoff(%d) = %v, want %v", tt.attempts, got, tt.want)
		}
	}
}

func TestRetryLoop_Serve(t *testing.T) {
	// The WAL clock sits far from wall time. An entry written under it must
	// not look expired to the loop.
	w, _ := openTestWAL(t, Config{RetryInterval: 10 * time.Millisecond})
	bus := &flakyPublisher{}
	if _, err := w.Write(context.Background(), likeEvent()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRetryLoop(w, bus).Serve(ctx) }()

	deadline := time.After(5 * time.Second)
	for w.Stats().Confirmed == 0 {
		select {
		case <-deadline:
			t.Fatalf("pending entry not delivered at start: %+v", w.Stats())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if stats := w.Stats(); stats.Confirmed != 1 || stats.Dropped != 0 {
		t.Errorf("Stats() = %+v, want one confirmed and none dropped", stats)
	}
	if ids := bus.deliveredIDs(); len(ids) != 1 {
		t.Errorf("delivered = %v, want one event", ids)
	}
}
