// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package testinfra provides container helpers for integration tests.
//
// Everything here is behind the integration build tag and uses
// testcontainers-go to run real dependencies:
//
//	func TestMongoStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo.Container)
//
//	    s, err := mongostore.Connect(ctx, mongostore.Options{URI: mongo.URI, Database: "test"})
//	    // ...
//	}
//
// Tests are skipped when Docker is unavailable. The first run pulls images.
package testinfra
