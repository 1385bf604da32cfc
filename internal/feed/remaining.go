// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package feed

import (
	"fmt"
	"time"

	"github.com/tomtom215/flyfitness/internal/models"
)

// ExpiredLabel is what TimeRemaining returns once a post has expired.
const ExpiredLabel = "Expired"

// Remaining returns max(0, createdAt+24h-now).
func Remaining(createdAt, now time.Time) time.Duration {
	d := models.ExpiresAtFor(createdAt).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// TimeRemaining formats the lifetime left for a post created at createdAt as
// "{h}h {m}m remaining", or ExpiredLabel when none is left.
func TimeRemaining(createdAt, now time.Time) string {
	d := Remaining(createdAt, now)
	if d <= 0 {
		return ExpiredLabel
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%dh %dm remaining", hours, minutes)
}
