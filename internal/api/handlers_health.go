// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"context"
	"net/http"
	"time"
)

// readinessTimeout bounds the store ping of the readiness probe.
const readinessTimeout = 2 * time.Second

// HealthStatus is the body of GET /health.
type HealthStatus struct {
	Status            string          `json:"status"`
	Version           string          `json:"version"`
	DatabaseDriver    string          `json:"database_driver"`
	DatabaseConnected bool            `json:"database_connected"`
	Features          map[string]bool `json:"features"`
	Uptime            float64         `json:"uptime_seconds"`
}

func (h *Handler) storeReachable(ctx context.Context) bool {
	if h.Store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return h.Store.Ping(ctx) == nil
}

// Health handles health check requests
//
// @Summary Get system health status
// @Description Returns database connectivity, enabled features and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} Response{data=HealthStatus} "Health status retrieved successfully"
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	connected := h.storeReachable(r.Context())
	status := "healthy"
	if !connected {
		status = "degraded"
	}

	NewResponseWriter(w, r).Success(HealthStatus{
		Status:            status,
		Version:           Version,
		DatabaseDriver:    h.Config.Database.Driver,
		DatabaseConnected: connected,
		Features:          h.capabilities().Features,
		Uptime:            time.Since(h.startTime).Seconds(),
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Tags Core
// @Produce json
// @Success 200 {object} Response "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]any{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only if the store answers a ping
//
// @Summary Kubernetes readiness probe
// @Tags Core
// @Produce json
// @Success 200 {object} Response "Service is ready"
// @Failure 503 {object} Response "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.storeReachable(r.Context()) {
		rw.ServiceUnavailable("database is not reachable")
		return
	}
	rw.Success(map[string]any{"ready": true})
}

// Capabilities tells clients which optional features are available, so they
// can fall back to sample data instead of inferring from 404s.
//
// @Summary Server capabilities
// @Tags Core
// @Produce json
// @Success 200 {object} Response{data=models.Capabilities}
// @Router /capabilities [get]
func (h *Handler) Capabilities(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.capabilities())
}
