// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package events carries domain events between the feed and the notification
// pipeline over Watermill. Two transports are available: an in-process Go
// channel (default) and NATS JetStream, optionally backed by an embedded
// nats-server.
package events

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version.
const SchemaVersion = 1

// Topics
const (
	TopicPostCreated   = "feed.post_created"
	TopicPostLiked     = "feed.post_liked"
	TopicPostCommented = "feed.post_commented"
	TopicPostDeleted   = "feed.post_deleted"
	TopicPostsExpired  = "feed.posts_expired"
	TopicBroadcast     = "notify.broadcast"
)

// Topics lists every topic, for stream provisioning.
var Topics = []string{
	TopicPostCreated,
	TopicPostLiked,
	TopicPostCommented,
	TopicPostDeleted,
	TopicPostsExpired,
	TopicBroadcast,
}

// Event is the envelope for every domain event.
type Event struct {
	SchemaVersion int       `json:"schema_version"`
	ID            string    `json:"id"`
	Topic         string    `json:"topic"`
	Timestamp     time.Time `json:"timestamp"`

	// ActorID is the user who caused the event.
	ActorID   string `json:"actor_id,omitempty"`
	ActorName string `json:"actor_name,omitempty"`

	// RecipientID is the user the event concerns (the post author for likes
	// and comments). Empty for broadcasts.
	RecipientID string `json:"recipient_id,omitempty"`

	PostID    string `json:"post_id,omitempty"`
	CommentID string `json:"comment_id,omitempty"`
	Text      string `json:"text,omitempty"`

	// Liked is the new like state for TopicPostLiked.
	Liked bool `json:"liked,omitempty"`

	// Count is a topic-specific quantity (posts expired, likes after toggle).
	Count int `json:"count,omitempty"`
}

// New creates an event for topic with a fresh ID and timestamp.
func New(topic string, now time.Time) *Event {
	return &Event{
		SchemaVersion: SchemaVersion,
		ID:            uuid.New().String(),
		Topic:         topic,
		Timestamp:     now.UTC(),
	}
}

// Validate checks the fields every event needs.
func (e *Event) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("event id is required")
	}
	if e.Topic == "" {
		return fmt.Errorf("event topic is required")
	}
	return nil
}

// Marshal serializes an event.
func Marshal(e *Event) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Unmarshal parses an event payload.
func Unmarshal(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
