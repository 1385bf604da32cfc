// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package main is the entry point for the Fly Fitness Zone server.

Fly Fitness Zone is the backend of a gym's member app: OTP-confirmed sign-up,
member profiles with a weight log, an ephemeral community feed where every
post disappears 24 hours after it was created, per-member notifications with
Web Push delivery, and admin-managed gym content (trainers, classes,
testimonials, motivational messages).

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("flyfitness")
	├── DataSupervisor ("data-layer")
	│   ├── Feed sweeper (purges expired posts and their media)
	│   └── Badger value log GC (badger driver, event outbox)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── Embedded NATS server (optional)
	│   ├── Event router (feed events -> notifications)
	│   └── Outbox retry loop (republishes events the bus refused)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Store: BadgerDB (embedded, default) or MongoDB with GridFS media
 4. Event bus: Watermill GoChannel, or NATS JetStream when enabled,
    wrapped by the BadgerDB event outbox
 5. Services: auth, feed, notifications, push, content
 6. Supervisor tree and HTTP server

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Storage
	DB_DRIVER=badger             # badger or mongo
	BADGER_PATH=/data/flyfitness
	MONGO_URI=mongodb://localhost:27017

	# Authentication
	JWT_SECRET=<32+ chars>
	ADMIN_EMAIL=coach@example.com
	ADMIN_PASSWORD=<password>

	# Web Push
	PUSH_ENABLED=true
	VAPID_PUBLIC_KEY=<base64url>
	VAPID_PRIVATE_KEY=<base64url>

	# Event bus
	NATS_ENABLED=false
	NATS_EMBEDDED=true
	WAL_ENABLED=true
	WAL_PATH=/data/flyfitness-wal

# Signal Handling

The server shuts down gracefully on SIGINT and SIGTERM: the HTTP server
drains in-flight requests, the event router finishes its handlers and the
store is closed last.
*/
package main
