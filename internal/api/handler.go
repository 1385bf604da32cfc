// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/flyfitness/internal/auth"
	"github.com/tomtom215/flyfitness/internal/authz"
	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/content"
	"github.com/tomtom215/flyfitness/internal/feed"
	"github.com/tomtom215/flyfitness/internal/middleware"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/notify"
	"github.com/tomtom215/flyfitness/internal/push"
	"github.com/tomtom215/flyfitness/internal/store"
)

// Version is reported by the capabilities and health endpoints.
var Version = "1.0.0"

// Dependencies are the services the handlers call.
type Dependencies struct {
	Config   *config.Config
	Store    store.Store
	Tokens   *auth.JWTManager
	Auth     *auth.Service
	Feed     *feed.Service
	Notify   *notify.Service
	Registry *push.Registry
	Content  *content.Service
	Enforcer *authz.Enforcer

	// VAPIDPublicKey is served to browsers. Empty disables the push capability.
	VAPIDPublicKey string

	// Publisher carries admin broadcasts to the notification pipeline.
	// When nil broadcasts are delivered synchronously.
	Publisher feed.Publisher

	// Monitor backs the admin performance endpoint. Optional.
	Monitor *middleware.PerformanceMonitor
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by area:
//   - handlers_health.go: health probes and capabilities
//   - handlers_auth.go: registration, OTP verification and login
//   - handlers_users.go: the caller's profile and weight log
//   - handlers_feed.go: posts, likes, comments and media
//   - handlers_notifications.go: the notification inbox
//   - handlers_push.go: VAPID key and push subscriptions
//   - handlers_content.go: public and admin gym content
//   - handlers_admin.go: user management, broadcast and performance
type Handler struct {
	Dependencies

	chi       *ChiMiddleware
	authn     *auth.Middleware
	authzMW   *authz.Middleware
	startTime time.Time

	// timeFunc allows injecting a custom time source for testing
	timeFunc func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(deps Dependencies) *Handler {
	if deps.Config == nil {
		deps.Config = &config.Config{}
	}
	if deps.Monitor == nil {
		deps.Monitor = middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowRequestThreshold)
	}
	h := &Handler{
		Dependencies: deps,
		chi:          NewChiMiddleware(ChiMiddlewareConfigFromSecurity(&deps.Config.Security)),
		authn:        auth.NewMiddleware(deps.Tokens, writeMiddlewareError),
		startTime:    time.Now(),
		timeFunc:     time.Now,
	}
	if deps.Enforcer != nil {
		h.authzMW = authz.NewMiddleware(deps.Enforcer, writeMiddlewareError)
	}
	return h
}

// SetTimeFunc replaces the clock used for presentation fields. Intended for tests.
func (h *Handler) SetTimeFunc(fn func() time.Time) {
	h.timeFunc = fn
}

// claims returns the authenticated caller. Routes using it sit behind
// Authenticate, so a missing value is a wiring error.
func (h *Handler) claims(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		NewResponseWriter(w, r).Unauthorized(auth.ErrMissingToken.Error())
		return nil, false
	}
	return claims, true
}

// capabilities reports which optional features this server runs.
func (h *Handler) capabilities() models.Capabilities {
	return models.Capabilities{
		Version: Version,
		Features: map[string]bool{
			models.FeatureFeed:          h.Config.Feed.Enabled && h.Feed != nil,
			models.FeatureNotifications: h.Notify != nil,
			models.FeaturePush:          h.Config.Push.Enabled && h.VAPIDPublicKey != "",
		},
	}
}
