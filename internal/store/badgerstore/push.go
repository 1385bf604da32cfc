// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package badgerstore

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/flyfitness/internal/models"
)

// SaveSubscription inserts or replaces a push subscription by endpoint.
func (s *Store) SaveSubscription(ctx context.Context, sub *models.PushSubscription) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, pushKeyPrefix+sub.Endpoint, sub, 0)
	})
}

// DeleteSubscription removes a push subscription.
func (s *Store) DeleteSubscription(ctx context.Context, endpoint string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, pushKeyPrefix+endpoint)
	})
}

// ListSubscriptions returns the subscriptions registered by a user.
func (s *Store) ListSubscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	all, err := s.ListAllSubscriptions(ctx)
	if err != nil {
		return nil, err
	}
	subs := make([]models.PushSubscription, 0, len(all))
	for _, sub := range all {
		if sub.UserID == userID {
			subs = append(subs, sub)
		}
	}
	return subs, nil
}

// ListAllSubscriptions returns every registered subscription.
func (s *Store) ListAllSubscriptions(_ context.Context) ([]models.PushSubscription, error) {
	subs := make([]models.PushSubscription, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, pushKeyPrefix, func(sub models.PushSubscription) error {
			subs = append(subs, sub)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
