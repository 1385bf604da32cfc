// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package feed

import "github.com/tomtom215/flyfitness/internal/models"

// PostView is a post as the signed-in viewer sees it.
type PostView struct {
	models.Post
	TimeRemaining string
	LikeCount     int
	LikedByViewer bool
	CanDelete     bool
}
