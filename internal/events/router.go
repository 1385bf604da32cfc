// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/flyfitness/internal/metrics"
)

// HandlerFunc processes one decoded event.
type HandlerFunc func(ctx context.Context, e *Event) error

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
	}
}

// Router wraps the Watermill Router with panic recovery and retries.
type Router struct {
	router *message.Router
	sub    message.Subscriber
}

// NewRouter creates a router consuming from sub.
func NewRouter(cfg RouterConfig, sub message.Subscriber, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return &Router{router: wmRouter, sub: sub}, nil
}

// Handle registers fn for topic. Payloads that fail to decode are acked and
// dropped since retrying cannot fix them.
func (r *Router) Handle(name, topic string, fn HandlerFunc) {
	r.router.AddConsumerHandler(name, topic, r.sub, func(msg *message.Message) error {
		e, err := Unmarshal(msg.Payload)
		if err != nil {
			metrics.RecordEventConsumed(topic, err)
			return nil
		}
		err = fn(msg.Context(), e)
		metrics.RecordEventConsumed(topic, err)
		return err
	})
}

// Run starts the router and blocks until ctx is cancelled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running returns a channel that closes once handlers are subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close stops the router, waiting up to CloseTimeout for in-flight handlers.
func (r *Router) Close() error {
	return r.router.Close()
}
