// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package services

import (
	"context"
	"fmt"
	"time"
)

// EventRouter is satisfied by *events.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// EventRouterService runs the event router that feeds the notification pipeline.
type EventRouterService struct {
	router EventRouter
}

// NewEventRouterService wraps router.
func NewEventRouterService(router EventRouter) *EventRouterService {
	return &EventRouterService{router: router}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	if err := s.router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

func (s *EventRouterService) String() string {
	return "event-router"
}

// NATSServer is satisfied by *events.EmbeddedServer.
type NATSServer interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
}

// EmbeddedNATSService owns the lifetime of an already started embedded NATS
// server and shuts it down when the tree stops.
type EmbeddedNATSService struct {
	server          NATSServer
	shutdownTimeout time.Duration
}

// NewEmbeddedNATSService wraps server.
func NewEmbeddedNATSService(server NATSServer, shutdownTimeout time.Duration) *EmbeddedNATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EmbeddedNATSService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. It fails at once if the server has stopped;
// an embedded server is not restarted in place.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	if !s.server.IsRunning() {
		return fmt.Errorf("embedded NATS server is not running")
	}

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("embedded NATS shutdown: %w", err)
	}
	return ctx.Err()
}

func (s *EmbeddedNATSService) String() string {
	return "embedded-nats"
}
