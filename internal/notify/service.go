// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package notify stores per-member notifications and delivers them as Web
// Push messages. Notifications are created from feed events (likes and
// comments on a member's post) and from admin broadcasts.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/flyfitness/internal/cache"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/metrics"
	"github.com/tomtom215/flyfitness/internal/models"
	"github.com/tomtom215/flyfitness/internal/push"
	"github.com/tomtom215/flyfitness/internal/store"
)

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrEmptyContent         = errors.New("notification content cannot be empty")
	ErrInvalidType          = errors.New("invalid notification type")
)

const (
	// maxContentLen bounds notification text, in runes.
	maxContentLen = 280

	// Event ids handled recently are skipped without a store round trip.
	// The store's conflict check stays authoritative.
	seenEventCapacity = 4096
	seenEventTTL      = 15 * time.Minute
)

// Store is the persistence the service needs.
type Store interface {
	store.NotificationStore
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Pusher delivers push messages. *push.Sender implements it.
type Pusher interface {
	SendToUser(ctx context.Context, userID string, payload push.Payload) (push.Result, error)
	Broadcast(ctx context.Context, payload push.Payload) (push.Result, error)
}

// Service implements the notification operations.
type Service struct {
	store  Store
	pusher Pusher
	seen   *cache.Dedup

	// timeFunc allows injecting a custom time source for testing
	timeFunc func() time.Time
}

// NewService creates a notification service. pusher may be nil when push is disabled.
func NewService(s Store, pusher Pusher) *Service {
	return &Service{
		store:    s,
		pusher:   pusher,
		seen:     cache.NewDedup(seenEventCapacity, seenEventTTL),
		timeFunc: time.Now,
	}
}

// SetTimeFunc replaces the clock. Intended for tests.
func (s *Service) SetTimeFunc(fn func() time.Time) {
	s.timeFunc = fn
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]models.Notification, error) {
	list, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return list, nil
}

// UnreadCount returns the number of unread notifications.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	n, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkRead marks one notification read and reports whether it was unread.
func (s *Service) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	changed, err := s.store.MarkRead(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, ErrNotificationNotFound
	}
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	if changed {
		metrics.RecordNotificationsRead(1)
	}
	return changed, nil
}

// MarkAllRead marks every notification read and returns how many changed.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	metrics.RecordNotificationsRead(n)
	return n, nil
}

// Delete removes one notification.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	err := s.store.DeleteNotification(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotificationNotFound
	}
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

// Create stores a notification for userID and pushes it.
func (s *Service) Create(ctx context.Context, userID string, typ models.NotificationType, content, relatedPost string) (*models.Notification, error) {
	return s.create(ctx, uuid.NewString(), userID, typ, content, relatedPost)
}

// create is idempotent on id so that redelivered events do not duplicate.
func (s *Service) create(ctx context.Context, id, userID string, typ models.NotificationType, content, relatedPost string) (*models.Notification, error) {
	n, fresh, err := s.insert(ctx, id, userID, typ, content, relatedPost)
	if err != nil {
		return nil, err
	}
	if fresh {
		s.push(ctx, n)
	}
	return n, nil
}

// insert stores a notification. fresh is false when id already exists.
func (s *Service) insert(ctx context.Context, id, userID string, typ models.NotificationType, content, relatedPost string) (*models.Notification, bool, error) {
	if !typ.Valid() {
		return nil, false, ErrInvalidType
	}
	content = truncate(strings.TrimSpace(content), maxContentLen)
	if content == "" {
		return nil, false, ErrEmptyContent
	}

	n := &models.Notification{
		ID:          id,
		UserID:      userID,
		Type:        typ,
		Content:     content,
		RelatedPost: relatedPost,
		CreatedAt:   s.timeFunc().UTC(),
	}
	err := s.store.CreateNotification(ctx, n)
	if errors.Is(err, store.ErrConflict) {
		return n, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("create notification: %w", err)
	}
	metrics.RecordNotificationCreated(string(typ))
	return n, true, nil
}

// Broadcast stores content for every member and sends one push to every
// subscription. id makes the operation idempotent; pass "" to generate one.
// The push goes out only when this call stored at least one notification.
func (s *Service) Broadcast(ctx context.Context, id, content string) (int, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrEmptyContent
	}
	if id == "" {
		id = uuid.NewString()
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return 0, fmt.Errorf("list users: %w", err)
	}

	var stored *models.Notification
	created, fresh := 0, 0
	for i := range users {
		n, isNew, err := s.insert(ctx, id+":"+users[i].ID, users[i].ID, models.NotificationOther, content, "")
		if err != nil {
			return created, err
		}
		created++
		if isNew {
			fresh++
			stored = n
		}
	}
	logging.Ctx(ctx).Info().Int("recipients", created).Int("new", fresh).Msg("Broadcast notification stored")

	if fresh > 0 && s.pusher != nil {
		res, err := s.pusher.Broadcast(ctx, push.Payload{
			Title: titleFor(models.NotificationOther),
			Body:  stored.Content,
			Tag:   id,
		})
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("broadcast_id", id).Msg("Broadcast push failed")
		} else {
			logging.Ctx(ctx).Info().Int("sent", res.Sent).Int("pruned", res.Pruned).Int("failed", res.Failed).
				Msg("Broadcast push delivered")
		}
	}
	return created, nil
}

// push delivers n best-effort. Failures never fail notification creation.
func (s *Service) push(ctx context.Context, n *models.Notification) {
	if s.pusher == nil {
		return
	}
	payload := push.Payload{
		Title: titleFor(n.Type),
		Body:  n.Content,
		Tag:   n.ID,
	}
	if n.RelatedPost != "" {
		payload.URL = "/feed?post=" + n.RelatedPost
	}
	if _, err := s.pusher.SendToUser(ctx, n.UserID, payload); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("notification_id", n.ID).Msg("Push delivery failed")
	}
}

func titleFor(t models.NotificationType) string {
	switch t {
	case models.NotificationLike:
		return "New like"
	case models.NotificationComment:
		return "New comment"
	case models.NotificationAchievement:
		return "Achievement unlocked"
	default:
		return "Fly Fitness Zone"
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
