// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package feed implements the ephemeral social feed.

Every post lives for exactly models.PostLifetime (24 hours) from creation.
After that it is hidden from listings, refuses likes and comments with
ErrPostExpired, and is removed together with its media by the Sweeper. The
storage backends also put a TTL on posts so nothing outlives a stalled sweeper
for long.

Likes are a set of user IDs toggled atomically by the store, so concurrent
toggles from different users never lose an update and two toggles from the
same user always cancel out.

Likes and comments from someone other than the post author are published as
events (see package events) for the notification pipeline.
*/
package feed
