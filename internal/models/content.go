// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package models

import "time"

// ContentKind partitions the gym content managed from the admin dashboard.
type ContentKind string

const (
	ContentTrainer     ContentKind = "trainer"
	ContentClass       ContentKind = "class"
	ContentTestimonial ContentKind = "testimonial"
	ContentMessage     ContentKind = "message" // motivational messages
)

// ContentKinds lists every kind in display order.
var ContentKinds = []ContentKind{ContentTrainer, ContentClass, ContentTestimonial, ContentMessage}

// ParseContentKind accepts the singular or plural form ("trainers").
func ParseContentKind(s string) (ContentKind, bool) {
	for _, k := range ContentKinds {
		if s == string(k) || s == string(k)+"s" || s == string(k)+"es" {
			return k, true
		}
	}
	return "", false
}

// ContentItem is a trainer, class, testimonial or motivational message.
// Kind-specific fields (schedule, specialty, rating) live in Attributes.
type ContentItem struct {
	ID         string            `json:"id" bson:"_id"`
	Kind       ContentKind       `json:"kind" bson:"kind"`
	Title      string            `json:"title" bson:"title"`
	Body       string            `json:"body,omitempty" bson:"body,omitempty"`
	ImageURL   string            `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty" bson:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// Feature names advertised by the capabilities endpoint.
const (
	FeatureFeed          = "feed"
	FeatureNotifications = "notifications"
	FeaturePush          = "push"
)

// Capabilities tells clients which features this server implements.
type Capabilities struct {
	Version  string          `json:"version"`
	Features map[string]bool `json:"features"`
}

// Has reports whether the named feature is available.
func (c *Capabilities) Has(feature string) bool {
	return c != nil && c.Features[feature]
}
