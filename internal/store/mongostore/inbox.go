// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/store"
)

// CreateNotification inserts a notification.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	_, err := s.notifications.InsertOne(ctx, n)
	return mapErr(err)
}

// ListNotifications returns the user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]models.Notification, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.notifications.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find notifications: %w", err)
	}
	return decodeAll[models.Notification](ctx, cur)
}

// CountUnread counts the user's unread notifications.
func (s *Store) CountUnread(ctx context.Context, userID string) (int, error) {
	n, err := s.notifications.CountDocuments(ctx, bson.M{"userId": userID, "read": false})
	return int(n), err
}

// MarkRead sets read=true on one of the user's notifications.
func (s *Store) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res, err := s.notifications.UpdateOne(ctx,
		bson.M{"_id": id, "userId": userID},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, store.ErrNotFound
	}
	return res.ModifiedCount == 1, nil
}

// MarkAllRead marks every unread notification of the user as read.
func (s *Store) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := s.notifications.UpdateMany(ctx,
		bson.M{"userId": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return int(res.ModifiedCount), nil
}

// DeleteNotification removes one of the user's notifications.
func (s *Store) DeleteNotification(ctx context.Context, userID, id string) error {
	res, err := s.notifications.DeleteOne(ctx, bson.M{"_id": id, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// SaveSubscription upserts a push subscription by endpoint.
func (s *Store) SaveSubscription(ctx context.Context, sub *models.PushSubscription) error {
	_, err := s.push.ReplaceOne(ctx, bson.M{"_id": sub.Endpoint}, sub, options.Replace().SetUpsert(true))
	return mapErr(err)
}

// DeleteSubscription removes a push subscription.
func (s *Store) DeleteSubscription(ctx context.Context, endpoint string) error {
	res, err := s.push.DeleteOne(ctx, bson.M{"_id": endpoint})
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ListSubscriptions returns the user's push subscriptions.
func (s *Store) ListSubscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error) {
	cur, err := s.push.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("find subscriptions: %w", err)
	}
	return decodeAll[models.PushSubscription](ctx, cur)
}

// ListAllSubscriptions returns every push subscription.
func (s *Store) ListAllSubscriptions(ctx context.Context) ([]models.PushSubscription, error) {
	cur, err := s.push.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find subscriptions: %w", err)
	}
	return decodeAll[models.PushSubscription](ctx, cur)
}

// CreateContent inserts a content item.
func (s *Store) CreateContent(ctx context.Context, item *models.ContentItem) error {
	_, err := s.content.InsertOne(ctx, item)
	return mapErr(err)
}

// GetContent retrieves one content item of the given kind.
func (s *Store) GetContent(ctx context.Context, kind models.ContentKind, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.content.FindOne(ctx, bson.M{"_id": id, "kind": kind}).Decode(&item); err != nil {
		return nil, mapErr(err)
	}
	return &item, nil
}

// ListContent returns items of one kind, oldest first.
func (s *Store) ListContent(ctx context.Context, kind models.ContentKind) ([]models.ContentItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := s.content.Find(ctx, bson.M{"kind": kind}, opts)
	if err != nil {
		return nil, fmt.Errorf("find content: %w", err)
	}
	return decodeAll[models.ContentItem](ctx, cur)
}

// UpdateContent replaces an existing content item.
func (s *Store) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	res, err := s.content.ReplaceOne(ctx, bson.M{"_id": item.ID, "kind": item.Kind}, item)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteContent removes a content item.
func (s *Store) DeleteContent(ctx context.Context, kind models.ContentKind, id string) error {
	res, err := s.content.DeleteOne(ctx, bson.M{"_id": id, "kind": kind})
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
