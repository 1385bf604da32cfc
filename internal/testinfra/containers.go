// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

//go:build integration

package testinfra

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// SkipIfNoDocker skips store integration tests in -short mode or when no
// container runtime answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("store integration test skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
}

// CleanupContainer terminates container, reporting rather than failing on
// error so one stuck container does not hide the test result.
func CleanupContainer(t *testing.T, ctx context.Context, container testcontainers.Container) {
	t.Helper()
	if container == nil {
		return
	}
	if err := container.Terminate(ctx); err != nil {
		t.Logf("terminate %s container: %v", DefaultMongoImage, err)
	}
}
