// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

func notifKey(userID, id string) string {
	return notifKeyPrefix + userID + ":" + id
}

// CreateNotification stores a notification in the user's inbox. An existing
// ID is reported as store.ErrConflict and left untouched.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		key := notifKey(n.UserID, n.ID)
		if _, err := txn.Get([]byte(key)); err == nil {
			return store.ErrConflict
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return setJSON(txn, key, n, 0)
	})
}

// ListNotifications returns the user's notifications, newest first.
func (s *Store) ListNotifications(_ context.Context, userID string) ([]models.Notification, error) {
	list := make([]models.Notification, 0)
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, notifKeyPrefix+userID+":", func(n models.Notification) error {
			list = append(list, n)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}

// CountUnread returns the number of unread notifications for the user.
func (s *Store) CountUnread(_ context.Context, userID string) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		return scanJSON(txn, notifKeyPrefix+userID+":", func(n models.Notification) error {
			if !n.Read {
				count++
			}
			return nil
		})
	})
	return count, err
}

// MarkRead marks one notification read.
func (s *Store) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	var changed bool
	err := s.update(ctx, func(txn *badger.Txn) error {
		changed = false
		var n models.Notification
		if err := getJSON(txn, notifKey(userID, id), &n); err != nil {
			return err
		}
		if n.Read {
			return nil
		}
		n.Read = true
		changed = true
		return setJSON(txn, notifKey(userID, id), &n, 0)
	})
	return changed, err
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	var changed int
	err := s.update(ctx, func(txn *badger.Txn) error {
		changed = 0
		var unread []models.Notification
		if err := scanJSON(txn, notifKeyPrefix+userID+":", func(n models.Notification) error {
			if !n.Read {
				unread = append(unread, n)
			}
			return nil
		}); err != nil {
			return err
		}
		for i := range unread {
			unread[i].Read = true
			if err := setJSON(txn, notifKey(userID, unread[i].ID), &unread[i], 0); err != nil {
				return err
			}
		}
		changed = len(unread)
		return nil
	})
	return changed, err
}

// DeleteNotification removes one notification from the user's inbox.
func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return deleteKey(txn, notifKey(userID, id))
	})
}
