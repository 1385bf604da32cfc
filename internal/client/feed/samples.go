// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package feed

import (
	"time"

	"github.com/tomtom215/flyfitness/internal/models"
)

var (
	sampleCoach  = models.UserRef{ID: "sample-coach", Name: "Coach Rita"}
	sampleMember = models.UserRef{ID: "sample-member", Name: "Sam Lifts"}
	sampleRunner = models.UserRef{ID: "sample-runner", Name: "Priya Runs"}
)

// SamplePosts returns the placeholder feed shown when the server has no
// feed. Timestamps are relative to now so every post is live.
func SamplePosts(now time.Time) []models.Post {
	at := func(ago time.Duration) time.Time { return now.Add(-ago).UTC() }
	posts := []models.Post{
		{
			ID:        "sample-1",
			Author:    sampleCoach,
			Content:   "Morning HIIT class is full, see you at 6!",
			CreatedAt: at(45 * time.Minute),
			Likes:     []string{sampleMember.ID, sampleRunner.ID},
		},
		{
			ID:        "sample-2",
			Author:    sampleMember,
			Content:   "New deadlift PR: 180kg. Thanks for the spot!",
			CreatedAt: at(3 * time.Hour),
			Likes:     []string{sampleCoach.ID},
			Comments: []models.Comment{
				{ID: "sample-2-c1", Author: sampleCoach, Text: "Huge! Form looked clean.", CreatedAt: at(2 * time.Hour)},
			},
		},
		{
			ID:        "sample-3",
			Author:    sampleRunner,
			Content:   "10k on the treadmill before work. Who's joining tomorrow?",
			CreatedAt: at(9 * time.Hour),
		},
	}
	for i := range posts {
		posts[i].Normalize()
	}
	return posts
}
