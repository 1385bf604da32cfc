// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package auth provides member authentication for the Fly Fitness Zone API.

Accounts are created in two steps. Register stores a pending registration
and mails a six digit one-time code; VerifyOTP redeems the code, creates the
user and returns a session. Login exchanges an email and password for a
session.

Sessions are HS256 JWTs signed with the configured secret:

	manager, err := auth.NewJWTManager(&cfg.Security)
	token, expiresAt, err := manager.GenerateToken(user)

Passwords and OTP codes are stored as bcrypt hashes only. A pending
registration is discarded after its TTL or after too many wrong codes.

Middleware.Authenticate validates the bearer token on each request and puts
the Claims in the request context:

	r.With(authMW.Authenticate).Get("/users/me", handler)

	claims, ok := auth.ClaimsFromContext(r.Context())
*/
package auth
