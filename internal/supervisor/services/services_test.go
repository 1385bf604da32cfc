// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeSweeper struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSweeper) SweepExpired(context.Context) (int, error) {
	f.calls.Add(1)
	return 2, f.err
}

func TestFeedSweeperService_SweepsOnStartAndTick(t *testing.T) {
	sweeper := &fakeSweeper{}
	svc := NewFeedSweeperService(sweeper, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() error = %v, want DeadlineExceeded", err)
	}
	if got := sweeper.calls.Load(); got < 3 {
		t.Errorf("SweepExpired calls = %d, want >= 3", got)
	}
}

func TestFeedSweeperService_FailureDoesNotStop(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("store unavailable")}
	svc := NewFeedSweeperService(sweeper, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if sweeper.calls.Load() < 2 {
		t.Errorf("sweeper stopped after failure, calls = %d", sweeper.calls.Load())
	}
}

func TestNewFeedSweeperService_DefaultInterval(t *testing.T) {
	svc := NewFeedSweeperService(&fakeSweeper{}, 0)
	if svc.interval != 5*time.Minute {
		t.Errorf("interval = %v, want 5m", svc.interval)
	}
	if svc.String() != "feed-sweeper" {
		t.Errorf("String() = %q", svc.String())
	}
}

type fakeCollector struct {
	calls atomic.Int32
	ratio atomic.Value
}

func (f *fakeCollector) RunValueLogGC(discardRatio float64) error {
	f.calls.Add(1)
	f.ratio.Store(discardRatio)
	return nil
}

func TestValueLogGCService_RunsPeriodically(t *testing.T) {
	c := &fakeCollector{}
	svc := NewValueLogGCService(c, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if c.calls.Load() < 2 {
		t.Errorf("RunValueLogGC calls = %d, want >= 2", c.calls.Load())
	}
	if r, _ := c.ratio.Load().(float64); r != 0.5 {
		t.Errorf("discard ratio = %v, want 0.5", r)
	}
}

type fakeRouter struct {
	runErr error
}

func (f *fakeRouter) Run(ctx context.Context) error {
	if f.runErr != nil {
		return f.runErr
	}
	<-ctx.Done()
	return nil
}

func (f *fakeRouter) Close() error { return nil }

func TestEventRouterService(t *testing.T) {
	t.Run("stops with context", func(t *testing.T) {
		svc := NewEventRouterService(&fakeRouter{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	})

	t.Run("propagates run failure", func(t *testing.T) {
		runErr := errors.New("subscribe failed")
		svc := NewEventRouterService(&fakeRouter{runErr: runErr})
		if err := svc.Serve(context.Background()); !errors.Is(err, runErr) {
			t.Errorf("Serve() error = %v, want %v", err, runErr)
		}
	})
}

type fakeNATSServer struct {
	running   bool
	shutdowns atomic.Int32
}

func (f *fakeNATSServer) Shutdown(context.Context) error {
	f.shutdowns.Add(1)
	return nil
}

func (f *fakeNATSServer) IsRunning() bool { return f.running }

func TestEmbeddedNATSService(t *testing.T) {
	t.Run("shuts down on cancel", func(t *testing.T) {
		srv := &fakeNATSServer{running: true}
		svc := NewEmbeddedNATSService(srv, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
		if srv.shutdowns.Load() != 1 {
			t.Errorf("Shutdown calls = %d, want 1", srv.shutdowns.Load())
		}
	})

	t.Run("fails when not running", func(t *testing.T) {
		svc := NewEmbeddedNATSService(&fakeNATSServer{}, time.Second)
		if err := svc.Serve(context.Background()); err == nil {
			t.Error("Serve() expected error for stopped server")
		}
	})
}
