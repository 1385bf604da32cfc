// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package feed is the client-side view of the 24 hour community feed.
//
// Store applies likes, comments and deletes optimistically and records
// each in a ledger of Mutation entries that end committed or rolled-back.
// Permission checks mirror the server's, so a request the server would
// refuse is never sent.
package feed
