// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package notify

import (
	"context"
	"fmt"

	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/models"
)

// commentPreviewLen is how much of a comment is quoted in the notification.
const commentPreviewLen = 80

// EventRouter registers event handlers. *events.Router implements it.
type EventRouter interface {
	Handle(name, topic string, fn events.HandlerFunc)
}

// RegisterHandlers subscribes the service to the feed and broadcast topics.
func (s *Service) RegisterHandlers(r EventRouter) {
	r.Handle("notify.post_liked", events.TopicPostLiked, s.HandlePostLiked)
	r.Handle("notify.post_commented", events.TopicPostCommented, s.HandlePostCommented)
	r.Handle("notify.broadcast", events.TopicBroadcast, s.HandleBroadcast)
}

// HandlePostLiked notifies the post author of a like.
func (s *Service) HandlePostLiked(ctx context.Context, e *events.Event) error {
	if !e.Liked || e.RecipientID == "" || e.RecipientID == e.ActorID {
		return nil
	}
	return s.once(e, func() error {
		content := fmt.Sprintf("%s liked your post", actorName(e))
		_, err := s.create(ctx, e.ID, e.RecipientID, models.NotificationLike, content, e.PostID)
		return err
	})
}

// HandlePostCommented notifies the post author of a comment.
func (s *Service) HandlePostCommented(ctx context.Context, e *events.Event) error {
	if e.RecipientID == "" || e.RecipientID == e.ActorID {
		return nil
	}
	return s.once(e, func() error {
		content := fmt.Sprintf("%s commented: %s", actorName(e), truncate(e.Text, commentPreviewLen))
		_, err := s.create(ctx, e.ID, e.RecipientID, models.NotificationComment, content, e.PostID)
		return err
	})
}

// HandleBroadcast fans an admin announcement out to every member.
func (s *Service) HandleBroadcast(ctx context.Context, e *events.Event) error {
	if e.Text == "" {
		return nil
	}
	return s.once(e, func() error {
		_, err := s.Broadcast(ctx, e.ID, e.Text)
		return err
	})
}

// once runs fn unless e was handled recently. A failed fn is not
// remembered, so the redelivery is processed.
func (s *Service) once(e *events.Event, fn func() error) error {
	if e.ID != "" && s.seen.Seen(e.ID) {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	if e.ID != "" {
		s.seen.Record(e.ID)
	}
	return nil
}

func actorName(e *events.Event) string {
	if e.ActorName != "" {
		return e.ActorName
	}
	return "Someone"
}
