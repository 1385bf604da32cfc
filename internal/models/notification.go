// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package models

import "time"

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationLike        NotificationType = "like"
	NotificationComment     NotificationType = "comment"
	NotificationFollow      NotificationType = "follow"
	NotificationAchievement NotificationType = "achievement"
	NotificationOther       NotificationType = "other"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationComment, NotificationFollow, NotificationAchievement, NotificationOther:
		return true
	}
	return false
}

// Notification is a per-user inbox entry. Read only ever moves from false to true.
type Notification struct {
	ID          string           `json:"id" bson:"_id"`
	UserID      string           `json:"userId" bson:"userId"`
	Type        NotificationType `json:"type" bson:"type"`
	Content     string           `json:"content" bson:"content"`
	RelatedPost string           `json:"relatedPost,omitempty" bson:"relatedPost,omitempty"`
	Read        bool             `json:"read" bson:"read"`
	CreatedAt   time.Time        `json:"createdAt" bson:"createdAt"`
}

// UnreadCount returns the number of unread entries in list.
func UnreadCount(list []Notification) int {
	n := 0
	for i := range list {
		if !list[i].Read {
			n++
		}
	}
	return n
}

// PushKeys is the encryption material of a push subscription.
type PushKeys struct {
	P256dh string `json:"p256dh" bson:"p256dh" validate:"required"`
	Auth   string `json:"auth" bson:"auth" validate:"required"`
}

// PushSubscription is a browser delivery channel registered by a user.
// Endpoints are unique; registering an existing endpoint replaces it.
type PushSubscription struct {
	Endpoint  string    `json:"endpoint" bson:"_id" validate:"required,url"`
	Keys      PushKeys  `json:"keys" bson:"keys" validate:"required"`
	UserID    string    `json:"userId,omitempty" bson:"userId"`
	UserAgent string    `json:"userAgent,omitempty" bson:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
