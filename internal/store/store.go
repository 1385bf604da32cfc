// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package store defines the persistence contracts implemented by the
// badgerstore (embedded) and mongostore (MongoDB + GridFS) backends.
package store

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/tomtom215/flyfitness/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist
	// (or is not visible to the caller).
	ErrNotFound = errors.New("store: not found")

	// ErrConflict is returned when a unique key is already taken.
	ErrConflict = errors.New("store: already exists")

	// ErrTooLarge is returned when a value exceeds what the backend can hold.
	ErrTooLarge = errors.New("store: value too large")
)

// PostStore persists feed posts. Implementations must make ToggleLike,
// AddComment and DeleteComment atomic per post.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)

	// ListPosts returns posts with ExpiresAt after now, newest first.
	ListPosts(ctx context.Context, now time.Time) ([]models.Post, error)

	// ToggleLike flips userID in the post's like set and returns the new
	// membership and like count.
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, count int, err error)

	AddComment(ctx context.Context, postID string, comment models.Comment) error
	DeleteComment(ctx context.Context, postID, commentID string) error
	DeletePost(ctx context.Context, id string) error

	// DeleteExpiredPosts removes every post whose ExpiresAt is not after now
	// and returns the removed posts so their media can be released.
	DeleteExpiredPosts(ctx context.Context, now time.Time) ([]models.Post, error)
}

// MediaStore holds post attachments.
type MediaStore interface {
	SaveMedia(ctx context.Context, id, contentType string, r io.Reader) (int64, error)
	OpenMedia(ctx context.Context, id string) (io.ReadCloser, string, error)
	DeleteMedia(ctx context.Context, id string) error
}

// UserStore persists accounts and pending OTP registrations.
type UserStore interface {
	// CreateUser returns ErrConflict when the email is already registered.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id string) error

	SavePendingRegistration(ctx context.Context, reg *models.PendingRegistration) error
	GetPendingRegistration(ctx context.Context, email string) (*models.PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, email string) error
}

// NotificationStore persists per-user notifications. Every method is scoped
// to userID; another user's notification is reported as ErrNotFound.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListNotifications returns the user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string) ([]models.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead reports whether the notification transitioned from unread to read.
	MarkRead(ctx context.Context, userID, id string) (bool, error)

	// MarkAllRead returns the number of notifications that transitioned.
	MarkAllRead(ctx context.Context, userID string) (int, error)
	DeleteNotification(ctx context.Context, userID, id string) error
}

// PushStore is the registry of push subscriptions keyed by endpoint.
type PushStore interface {
	// SaveSubscription inserts or replaces the subscription with the same endpoint.
	SaveSubscription(ctx context.Context, sub *models.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	ListSubscriptions(ctx context.Context, userID string) ([]models.PushSubscription, error)
	ListAllSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
}

// ContentStore persists admin-managed gym content.
type ContentStore interface {
	CreateContent(ctx context.Context, item *models.ContentItem) error
	GetContent(ctx context.Context, kind models.ContentKind, id string) (*models.ContentItem, error)
	ListContent(ctx context.Context, kind models.ContentKind) ([]models.ContentItem, error)
	UpdateContent(ctx context.Context, item *models.ContentItem) error
	DeleteContent(ctx context.Context, kind models.ContentKind, id string) error
}

// Store is the full persistence surface of the application.
type Store interface {
	PostStore
	MediaStore
	UserStore
	NotificationStore
	PushStore
	ContentStore

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}
