// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package client is the Go SDK for the Fly Fitness Zone REST API.

Client wraps every /api/v1 endpoint a member app needs and unwraps the
response envelope. Non-2xx responses become *APIError, which matches
ErrUnauthorized, ErrNotFound and ErrServer through errors.Is.

Stateful pieces live in subpackages:

  - session: the logged-in user and token, persisted in an injected Storage
  - feed: the post list with optimistic likes, comments and deletes
  - notifications: the inbox with unread-count polling
  - push: Web Push subscription management over a Platform abstraction
  - schedule: interval tasks with an injectable ticker

Typical wiring:

	sess, _ := session.New(session.NewFileStorage(path))
	api := client.New("https://gym.example.com",
		client.WithTokenSource(sess),
		client.WithUnauthorizedHandler(func() { _ = sess.Logout() }),
	)
	posts := feed.NewStore(api, sess.UserID)
	inbox := notifications.NewStore(api)
	unbind := inbox.Bind(ctx, sess)
	defer unbind()

cmd/flyctl is a terminal client built on these packages.
*/
package client
