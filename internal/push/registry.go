// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// ErrInvalidSubscription is returned for subscriptions missing an endpoint or keys.
var ErrInvalidSubscription = errors.New("invalid push subscription")

// Registry manages members' push subscriptions.
type Registry struct {
	store store.PushStore
	now   func() time.Time
}

// NewRegistry creates a subscription registry.
func NewRegistry(s store.PushStore) *Registry {
	return &Registry{store: s, now: time.Now}
}

// Subscribe registers sub for userID. Re-registering an endpoint replaces it,
// which also moves a shared browser to the user now signed in.
func (r *Registry) Subscribe(ctx context.Context, userID string, sub models.PushSubscription) error {
	if err := validateSubscription(&sub); err != nil {
		return err
	}
	sub.UserID = userID
	sub.CreatedAt = r.now().UTC()

	if err := r.store.SaveSubscription(ctx, &sub); err != nil {
		return fmt.Errorf("save subscription: %w", err)
	}
	logging.Ctx(ctx).Debug().Str("endpoint_host", endpointHost(sub.Endpoint)).Msg("Push subscription registered")
	return nil
}

// Unsubscribe removes the user's subscription for endpoint. Unknown
// endpoints and endpoints owned by other users are ignored.
func (r *Registry) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	subs, err := r.store.ListSubscriptions(ctx, userID)
	if err != nil {
		return fmt.Errorf("list subscriptions: %w", err)
	}
	for i := range subs {
		if subs[i].Endpoint != endpoint {
			continue
		}
		if err := r.store.DeleteSubscription(ctx, endpoint); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete subscription: %w", err)
		}
		return nil
	}
	return nil
}

// Subscriptions returns the user's subscriptions.
func (r *Registry) Subscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	return r.store.ListSubscriptions(ctx, userID)
}

func validateSubscription(sub *models.PushSubscription) error {
	sub.Endpoint = strings.TrimSpace(sub.Endpoint)
	u, err := url.Parse(sub.Endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return fmt.Errorf("%w: endpoint must be an absolute URL", ErrInvalidSubscription)
	}
	if sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		return fmt.Errorf("%w: keys are required", ErrInvalidSubscription)
	}
	return nil
}

// endpointHost is logged instead of the endpoint, which acts as a bearer capability.
func endpointHost(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil {
		return u.Host
	}
	return ""
}
