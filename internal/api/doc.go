// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package api provides the HTTP REST API layer for Fly Fitness Zone.

Key Components:

  - Handler: request handlers for every /api/v1 endpoint
  - Routes: chi router with the global middleware stack
  - ResponseWriter: the standard JSON envelope and error codes
  - ChiMiddleware: CORS (go-chi/cors) and rate limiting (go-chi/httprate)

API Categories:

 1. Public (/api/v1/capabilities, /auth/*, /media/{id}, /push/vapid-public-key, /content/{kind})
 2. Member (/users/me, /feed/*, /notifications/*, /push/subscribe, /push/unsubscribe)
 3. Admin (/admin/*), gated by the casbin policy in internal/authz
 4. Operations (/health, /health/live, /health/ready, /metrics, /swagger/*)

Response Format:

Every JSON response uses the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "error": {"code": "NOT_FOUND", "message": "...", "details": {...}, "request_id": "..."},
	  "metadata": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Error codes are stable strings (BAD_REQUEST, UNAUTHORIZED, FORBIDDEN,
NOT_FOUND, GONE, CONFLICT, VALIDATION_FAILED, ...). Expired feed posts answer
410 GONE.

Usage Example:

	h := api.NewHandler(api.Dependencies{...})
	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: h.Routes()}
*/
package api
