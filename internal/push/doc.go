// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package push implements Web Push delivery.
//
// Registry keeps the browser subscriptions of each member, keyed by push
// endpoint. Sender encrypts a payload for every subscription of a user (or of
// all users for broadcasts) and signs the request with the VAPID key pair.
//
// Deliveries pass through a token bucket rate limiter and a circuit breaker
// so an unhealthy push service does not stall notification handling.
// Subscriptions the push service reports as gone (404 or 410) are pruned.
package push
