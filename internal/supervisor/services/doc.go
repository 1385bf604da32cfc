// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

// Package services adapts server components to suture.Service.
//
// Each wrapper turns a component lifecycle (ListenAndServe/Shutdown, Run/Close,
// periodic work) into a context-aware Serve method and names itself through
// fmt.Stringer so supervisor logs identify it.
package services
