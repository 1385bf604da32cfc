// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// General API info for swag. Regenerate the docs package with:
//
//	swag init -g cmd/server/docs.go -o docs
//
// @title Fly Fitness Zone API
// @version 1.0
// @description Gym member app backend: accounts, an ephemeral 24 hour community feed, notifications and Web Push.
// @description
// @description ## Authentication
// @description
// @description Sign up with `/auth/register`, confirm the emailed 6 digit code with `/auth/verify-otp`,
// @description then send the returned token as `Authorization: Bearer <token>`.
// @description
// @description ## Envelope
// @description
// @description Every JSON response is wrapped as `{"success", "data", "error", "metadata"}`.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/flyfitness
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @BasePath /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

package main
