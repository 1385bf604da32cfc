// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package schedule runs a function on a fixed interval. The ticker is
// injectable so tests can drive virtual time with ManualTicker.
package schedule

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flyfitness/internal/logging"
)

// ErrAlreadyRunning is returned by Start on a running task.
var ErrAlreadyRunning = errors.New("task already running")

// Ticker delivers ticks. *time.Ticker is adapted by NewRealTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker for an interval.
type TickerFunc func(d time.Duration) Ticker

type realTicker struct {
	t *time.Ticker
}

// NewRealTicker wraps time.NewTicker.
func NewRealTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }
func (r *realTicker) Stop()               { r.t.Stop() }

// acker is implemented by tickers that wait for each tick to be processed.
type acker interface {
	ack()
}

// Task calls fn once per tick until stopped.
type Task struct {
	name      string
	interval  time.Duration
	fn        func(ctx context.Context)
	newTicker TickerFunc
	logger    zerolog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// Option configures a Task.
type Option func(*Task)

// WithTicker replaces the ticker factory.
func WithTicker(fn TickerFunc) Option {
	return func(t *Task) {
		if fn != nil {
			t.newTicker = fn
		}
	}
}

// NewTask creates a stopped task.
func NewTask(name string, interval time.Duration, fn func(ctx context.Context), opts ...Option) *Task {
	t := &Task{
		name:      name,
		interval:  interval,
		fn:        fn,
		newTicker: NewRealTicker,
		logger:    logging.WithComponent("schedule").With().Str("task", name).Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins the loop. The first call to fn happens on the first tick.
func (t *Task) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		return ErrAlreadyRunning
	}
	t.running = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})

	ticker := t.newTicker(t.interval)
	go t.run(ctx, ticker, t.stopCh, t.doneCh)

	t.logger.Debug().Dur("interval", t.interval).Msg("Task started")
	return nil
}

// Stop ends the loop and waits for an in-flight call to return. Stopping a
// stopped task is a no-op.
func (t *Task) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	stopCh, doneCh := t.stopCh, t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
	t.logger.Debug().Msg("Task stopped")
}

// Running reports whether the loop is active.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func (t *Task) run(ctx context.Context, ticker Ticker, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			t.fn(ctx)
			if a, ok := ticker.(acker); ok {
				a.ack()
			}
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}
