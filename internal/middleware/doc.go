// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package middleware provides HTTP middleware components for the API server.

This package implements infrastructure middleware for compression, performance
monitoring, request ID tracking, and Prometheus metrics integration. These
components work alongside the authentication and authorization middleware in
internal/auth and internal/authz.

Key Components:

  - RequestID: UUID-based request tracking, propagated into the logging context
  - PrometheusMetrics: request totals and latency labelled by chi route pattern
  - Compression: gzip for clients that accept it, bypassed for range requests
  - PerformanceMonitor: sliding window of request latencies with percentiles

Middleware Stack:

All middleware use the standard func(http.Handler) http.Handler shape so they
compose with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(monitor.Middleware)
	r.Use(middleware.Compression)

RequestID must run first so later middleware and handlers can log with the
request ID attached.

Thread Safety:

All middleware are safe for concurrent use. PerformanceMonitor guards its
window with a sync.RWMutex.
*/
package middleware
