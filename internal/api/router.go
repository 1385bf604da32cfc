// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/flyfitness/internal/auth"
	"github.com/tomtom215/flyfitness/internal/middleware"
)

// Routes builds the chi router with the full middleware stack.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(withStartTime)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.chi.CORS()) // must be global to answer OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)
	r.Use(h.Monitor.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).Error(http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	// ========================
	// Operations
	// ========================
	r.Get("/health", h.Health)
	r.Get("/health/live", h.HealthLive)
	r.Get("/health/ready", h.HealthReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(h.chi.RateLimit())
		r.Use(auth.SecurityHeaders)
		r.Use(middleware.Compression)

		// ========================
		// Public Endpoints
		// ========================
		r.Get("/capabilities", h.Capabilities)
		r.Get("/media/{id}", h.Media)
		r.Get("/push/vapid-public-key", h.PushPublicKey)
		r.Get("/content/{kind}", h.ListContent)

		r.Route("/auth", func(r chi.Router) {
			r.Use(h.chi.RateLimitLogin())
			r.Post("/register", h.Register)
			r.Post("/verify-otp", h.VerifyOTP)
			r.Post("/login", h.Login)
		})

		// ========================
		// Authenticated Endpoints
		// ========================
		r.Group(func(r chi.Router) {
			r.Use(h.authn.Authenticate)
			if h.authzMW != nil {
				r.Use(h.authzMW.AuthorizeRequest)
			}

			r.Route("/users/me", func(r chi.Router) {
				r.Get("/", h.GetProfile)
				r.Patch("/", h.UpdateProfile)
				r.Get("/weight", h.WeightLog)
				r.Post("/weight", h.AddWeight)
			})

			r.Route("/feed/posts", func(r chi.Router) {
				r.Get("/", h.ListPosts)
				r.Post("/", h.CreatePost)
				r.Delete("/{id}", h.DeletePost)
				r.Post("/{id}/like", h.ToggleLike)
				r.Post("/{id}/comments", h.AddComment)
				r.Delete("/{id}/comments/{commentID}", h.DeleteComment)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.ListNotifications)
				r.Get("/unread-count", h.UnreadCount)
				r.Put("/read-all", h.MarkAllNotificationsRead)
				r.Put("/{id}/read", h.MarkNotificationRead)
				r.Delete("/{id}", h.DeleteNotification)
			})

			r.Post("/push/subscribe", h.Subscribe)
			r.Post("/push/unsubscribe", h.Unsubscribe)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/content/{kind}", h.CreateContent)
				r.Put("/content/{kind}/{id}", h.UpdateContent)
				r.Delete("/content/{kind}/{id}", h.DeleteContent)
				r.Get("/users", h.ListUsers)
				r.Delete("/users/{id}", h.DeleteUser)
				r.Post("/notifications/broadcast", h.Broadcast)
				r.Get("/performance", h.Performance)
			})
		})
	})

	return r
}
