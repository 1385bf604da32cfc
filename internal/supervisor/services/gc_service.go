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

// ValueLogCollector reclaims value log space. *badgerstore.Store implements it.
type ValueLogCollector interface {
	RunValueLogGC(discardRatio float64) error
}

// ValueLogGCService periodically runs badger value log GC. Expired posts and
// media leave garbage behind that is only reclaimed this way.
type ValueLogGCService struct {
	collector    ValueLogCollector
	interval     time.Duration
	discardRatio float64
}

// NewValueLogGCService creates the service with a 0.5 discard ratio.
func NewValueLogGCService(collector ValueLogCollector, interval time.Duration) *ValueLogGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ValueLogGCService{collector: collector, interval: interval, discardRatio: 0.5}
}

// Serve implements suture.Service.
func (s *ValueLogGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.collector.RunValueLogGC(s.discardRatio); err != nil {
				logging.Warn().Err(err).Msg("Badger value log GC failed")
			}
		}
	}
}

func (s *ValueLogGCService) String() string {
	return "badger-value-log-gc"
}
