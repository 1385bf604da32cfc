// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package supervisor runs the long-lived services of the server under a suture v4
supervisor tree.

Services are grouped into three layers so a crash in one restarts only its
own layer:

	RootSupervisor ("flyfitness")
	├── DataSupervisor ("data-layer")
	│   ├── FeedSweeperService
	│   └── ValueLogGCService (badger backend only)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── EmbeddedNATSService (if nats.embedded)
	│   └── EventRouterService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog using the zerolog-backed slog logger from package logging.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))
	tree.AddDataService(services.NewFeedSweeperService(feedSvc, 5*time.Minute))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
