// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package schedule

import (
	"sync"
	"time"
)

// ManualTicker is a Ticker advanced by hand. Tick blocks until the task has
// finished handling the tick, which makes virtual-time tests deterministic.
type ManualTicker struct {
	c     chan time.Time
	acked chan struct{}

	mu       sync.Mutex
	now      time.Time
	interval time.Duration
	stopped  bool
}

// NewManualTicker creates a ticker whose clock starts at start.
func NewManualTicker(start time.Time) *ManualTicker {
	return &ManualTicker{
		c:     make(chan time.Time),
		acked: make(chan struct{}),
		now:   start,
	}
}

// Factory returns a TickerFunc that hands out m and records the interval.
func (m *ManualTicker) Factory() TickerFunc {
	return func(d time.Duration) Ticker {
		m.mu.Lock()
		m.interval = d
		m.stopped = false
		m.mu.Unlock()
		return m
	}
}

func (m *ManualTicker) C() <-chan time.Time { return m.c }

func (m *ManualTicker) Stop() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *ManualTicker) ack() {
	m.acked <- struct{}{}
}

// Interval is the interval the ticker was created with.
func (m *ManualTicker) Interval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interval
}

// Advance moves the clock by one interval and delivers a tick. It reports
// false when the ticker has been stopped.
func (m *ManualTicker) Advance() bool {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return false
	}
	m.now = m.now.Add(m.interval)
	now := m.now
	m.mu.Unlock()

	m.c <- now
	<-m.acked
	return true
}
