// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package push manages the device's Web Push subscription: permission,
// the background worker, and registration with the server. Device
// capabilities sit behind Platform so the logic runs anywhere.
package push

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/models"
)

// Permission is the notification permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// ErrUnsupported is returned when the platform has no push support.
var ErrUnsupported = errors.New("push notifications are not supported")

// Platform is the device side of Web Push.
type Platform interface {
	Supported() bool
	RegisterWorker(ctx context.Context) error
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	// Subscription returns the current subscription, or nil.
	Subscription(ctx context.Context) (*models.PushSubscription, error)
	Subscribe(ctx context.Context, applicationServerKey string) (*models.PushSubscription, error)
	Unsubscribe(ctx context.Context) error
}

// API is the subset of *client.Client the manager needs.
type API interface {
	VAPIDPublicKey(ctx context.Context) (string, error)
	SubscribePush(ctx context.Context, sub models.PushSubscription) error
	UnsubscribePush(ctx context.Context, endpoint string) error
}

// Manager coordinates a Platform with the server.
type Manager struct {
	platform Platform
	api      API
	logger   zerolog.Logger

	mu         sync.Mutex
	registered bool
}

// NewManager creates a Manager.
func NewManager(platform Platform, api API) *Manager {
	return &Manager{
		platform: platform,
		api:      api,
		logger:   logging.WithComponent("push-client"),
	}
}

// IsSupported reports whether the platform can receive push.
func (m *Manager) IsSupported() bool {
	return m.platform.Supported()
}

// RegisterWorker registers the background worker once. Later calls
// return nil without touching the platform.
func (m *Manager) RegisterWorker(ctx context.Context) error {
	if !m.IsSupported() {
		return ErrUnsupported
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.registered {
		return nil
	}
	if err := m.platform.RegisterWorker(ctx); err != nil {
		return fmt.Errorf("register worker: %w", err)
	}
	m.registered = true
	return nil
}

// RequestPermission asks for permission when it is undecided. A denied
// permission is returned as is, without prompting again.
func (m *Manager) RequestPermission(ctx context.Context) (Permission, error) {
	if !m.IsSupported() {
		return PermissionDenied, ErrUnsupported
	}
	switch p := m.platform.Permission(); p {
	case PermissionGranted, PermissionDenied:
		return p, nil
	}
	p, err := m.platform.RequestPermission(ctx)
	if err != nil {
		return PermissionDefault, fmt.Errorf("request permission: %w", err)
	}
	return p, nil
}

// Subscribe returns the device's subscription, creating and registering
// one when needed. Any failure is logged and yields nil.
func (m *Manager) Subscribe(ctx context.Context) *models.PushSubscription {
	sub, err := m.subscribe(ctx)
	if err != nil {
		m.logger.Debug().Err(err).Msg("Push subscription unavailable")
		return nil
	}
	return sub
}

func (m *Manager) subscribe(ctx context.Context) (*models.PushSubscription, error) {
	if !m.IsSupported() {
		return nil, ErrUnsupported
	}
	perm, err := m.RequestPermission(ctx)
	if err != nil {
		return nil, err
	}
	if perm != PermissionGranted {
		return nil, fmt.Errorf("permission %s", perm)
	}
	if err := m.RegisterWorker(ctx); err != nil {
		return nil, err
	}

	existing, err := m.platform.Subscription(ctx)
	if err != nil {
		return nil, fmt.Errorf("get subscription: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	key, err := m.api.VAPIDPublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch public key: %w", err)
	}
	sub, err := m.platform.Subscribe(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if err := m.api.SubscribePush(ctx, *sub); err != nil {
		// Drop the local subscription so the next attempt registers again.
		if uerr := m.platform.Unsubscribe(ctx); uerr != nil {
			m.logger.Debug().Err(uerr).Msg("Failed to drop unregistered subscription")
		}
		return nil, fmt.Errorf("register subscription: %w", err)
	}
	m.logger.Info().Msg("Push subscription registered")
	return sub, nil
}

// Unsubscribe removes the device subscription. The server is told on a
// best-effort basis; only a local failure is returned.
func (m *Manager) Unsubscribe(ctx context.Context) error {
	if !m.IsSupported() {
		return nil
	}
	sub, err := m.platform.Subscription(ctx)
	if err != nil {
		return fmt.Errorf("get subscription: %w", err)
	}
	if sub == nil {
		return nil
	}
	if err := m.platform.Unsubscribe(ctx); err != nil {
		return fmt.Errorf("unsubscribe: %w", err)
	}
	if err := m.api.UnsubscribePush(ctx, sub.Endpoint); err != nil {
		m.logger.Warn().Err(err).Msg("Server unsubscribe failed")
	}
	return nil
}

// AutoSubscribe is a session hook: it subscribes when permission is
// already granted and never prompts.
func (m *Manager) AutoSubscribe(ctx context.Context) {
	if !m.IsSupported() || m.platform.Permission() != PermissionGranted {
		return
	}
	m.Subscribe(ctx)
}
