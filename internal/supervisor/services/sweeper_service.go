// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package services

import (
	"context"
	"time"

	"github.com/tomtom215/flyfitness/internal/logging"
)

// ExpiredPostSweeper removes posts past their lifetime. *feed.Service implements it.
type ExpiredPostSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// FeedSweeperService runs the sweeper once at start and then every interval.
// A failed sweep is logged and retried on the next tick.
type FeedSweeperService struct {
	sweeper  ExpiredPostSweeper
	interval time.Duration
}

// NewFeedSweeperService creates the service. A non-positive interval defaults to 5m.
func NewFeedSweeperService(sweeper ExpiredPostSweeper, interval time.Duration) *FeedSweeperService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &FeedSweeperService{sweeper: sweeper, interval: interval}
}

// Serve implements suture.Service.
func (s *FeedSweeperService) Serve(ctx context.Context) error {
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *FeedSweeperService) sweep(ctx context.Context) {
	removed, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logging.Warn().Err(err).Msg("Expired post sweep failed")
		}
		return
	}
	if removed > 0 {
		logging.Info().Int("removed", removed).Msg("Removed expired feed posts")
	}
}

func (s *FeedSweeperService) String() string {
	return "feed-sweeper"
}
