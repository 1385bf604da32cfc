// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package metrics defines the Prometheus collectors exposed on /metrics.
//
// Collectors are registered on the default registry through promauto, so
// importing the package is enough to make them visible. Record* helpers keep
// label values consistent across callers.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flyfitness_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flyfitness_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flyfitness_store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_store_operation_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"operation"},
	)

	// Feed Metrics
	FeedPostsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_feed_posts_created_total",
			Help: "Total number of feed posts created",
		},
		[]string{"media"}, // "none", "image", "video"
	)

	FeedPostsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flyfitness_feed_posts_expired_total",
			Help: "Total number of feed posts removed after expiry",
		},
	)

	FeedPostsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flyfitness_feed_posts_deleted_total",
			Help: "Total number of feed posts deleted by their author",
		},
	)

	FeedLikes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_feed_like_toggles_total",
			Help: "Total number of like toggles",
		},
		[]string{"action"}, // "like", "unlike"
	)

	FeedComments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_feed_comments_total",
			Help: "Total number of comment operations",
		},
		[]string{"action"}, // "add", "delete"
	)

	FeedSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "flyfitness_feed_sweep_duration_seconds",
			Help:    "Duration of expired-post sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Notification Metrics
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"type"},
	)

	NotificationsRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "flyfitness_notifications_read_total",
			Help: "Total number of notifications transitioned to read",
		},
	)

	// Push Metrics
	PushDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_push_deliveries_total",
			Help: "Total number of web push delivery attempts by result",
		},
		[]string{"result"}, // "sent", "gone", "failed", "circuit_open"
	)

	PushSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "flyfitness_push_subscriptions",
			Help: "Number of registered push subscriptions at last fan-out",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "flyfitness_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_events_consumed_total",
			Help: "Total number of domain events handled",
		},
		[]string{"topic", "result"}, // "ok", "error"
	)

	// Auth Metrics
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"method", "result"}, // method: "login", "register", "otp"
	)

	MailSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flyfitness_mail_sent_total",
			Help: "Total number of outgoing emails",
		},
		[]string{"result"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOperation records the duration and outcome of a store call.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordPostCreated counts a new post by attachment kind ("" for text-only).
func RecordPostCreated(mediaKind string) {
	if mediaKind == "" {
		mediaKind = "none"
	}
	FeedPostsCreated.WithLabelValues(mediaKind).Inc()
}

// RecordLikeToggle counts a like or unlike.
func RecordLikeToggle(liked bool) {
	if liked {
		FeedLikes.WithLabelValues("like").Inc()
	} else {
		FeedLikes.WithLabelValues("unlike").Inc()
	}
}

// RecordComment counts a comment add or delete.
func RecordComment(action string) {
	FeedComments.WithLabelValues(action).Inc()
}

// RecordSweep records one expired-post sweep.
func RecordSweep(duration time.Duration, removed int) {
	FeedSweepDuration.Observe(duration.Seconds())
	FeedPostsExpired.Add(float64(removed))
}

// RecordNotificationCreated counts a stored notification.
func RecordNotificationCreated(notificationType string) {
	NotificationsCreated.WithLabelValues(notificationType).Inc()
}

// RecordNotificationsRead counts read transitions.
func RecordNotificationsRead(n int) {
	if n > 0 {
		NotificationsRead.Add(float64(n))
	}
}

// RecordPushDelivery counts one push delivery attempt.
func RecordPushDelivery(result string) {
	PushDeliveries.WithLabelValues(result).Inc()
}

// RecordCircuitBreakerTransition records a breaker state change. States use
// gobreaker's String() names.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	switch to {
	case "closed":
		CircuitBreakerState.WithLabelValues(name).Set(0)
	case "half-open":
		CircuitBreakerState.WithLabelValues(name).Set(1)
	case "open":
		CircuitBreakerState.WithLabelValues(name).Set(2)
	}
}

// RecordEventPublished counts a published domain event.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordEventConsumed counts a handled domain event.
func RecordEventConsumed(topic string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsConsumed.WithLabelValues(topic, result).Inc()
}

// RecordAuthAttempt counts an authentication attempt.
func RecordAuthAttempt(method string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	AuthAttempts.WithLabelValues(method, result).Inc()
}

// RecordMailSent counts an outgoing email.
func RecordMailSent(err error) {
	if err != nil {
		MailSent.WithLabelValues("error").Inc()
		return
	}
	MailSent.WithLabelValues("sent").Inc()
}
