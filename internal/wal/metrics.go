// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package wal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	walWrites = promauto.NewCounter(prometheus.CounterOpts{
		Name: "flyfitness_wal_writes_total",
		Help: "Events written to the outbox after a failed publish",
	})

	walPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "flyfitness_wal_pending_entries",
		Help: "Events waiting in the outbox",
	})

	walRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "flyfitness_wal_retries_total",
		Help: "Outbox retry outcomes",
	}, []string{"result"}) // published, failed, expired, max_retried, invalid
)
