// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package main

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/store/badgerstore"
	"github.com/tomtom215/flyfitness/internal/wal"
)

func TestHostPort(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"loopback", "nats://127.0.0.1:4222", "127.0.0.1", 4222, false},
		{"hostname", "nats://nats.internal:5222", "nats.internal", 5222, false},
		{"missing port", "nats://localhost", "", 0, true},
		{"bad port", "nats://localhost:abc", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := hostPort(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("hostPort(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("hostPort(%q) = %q, %d", tt.url, host, port)
			}
		})
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	media := &config.MediaConfig{MaxUploadBytes: 50 << 20}
	s, gc, err := openStore(ctx, &config.DatabaseConfig{Driver: config.DriverBadger, InMemory: true}, media)
	if err != nil {
		t.Fatalf("openStore() error = %v", err)
	}
	defer s.Close()
	if gc != nil {
		t.Error("in-memory store should not be garbage collected")
	}
	if media.MaxUploadBytes != badgerstore.InMemoryMaxMediaBytes {
		t.Errorf("MaxUploadBytes = %d, want in-memory limit %d", media.MaxUploadBytes, badgerstore.InMemoryMaxMediaBytes)
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}

	if _, _, err := openStore(ctx, &config.DatabaseConfig{Driver: "sqlite"}, &config.MediaConfig{}); err == nil {
		t.Error("unknown driver should fail")
	}
}

func TestInitPush(t *testing.T) {
	ctx := context.Background()
	s, _, err := openStore(ctx, &config.DatabaseConfig{InMemory: true}, &config.MediaConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	disabled, err := initPush(&config.PushConfig{Enabled: false}, s)
	if err != nil {
		t.Fatalf("initPush(disabled) error = %v", err)
	}
	if disabled.registry == nil || disabled.pusher != nil || disabled.publicKey != "" {
		t.Errorf("disabled push = %+v", disabled)
	}

	enabled, err := initPush(&config.PushConfig{Enabled: true, Subject: "mailto:ops@example.com"}, s)
	if err != nil {
		t.Fatalf("initPush(enabled) error = %v", err)
	}
	if enabled.pusher == nil || enabled.publicKey == "" {
		t.Errorf("enabled push = %+v", enabled)
	}

	if _, err := initPush(&config.PushConfig{Enabled: true, VAPIDPublicKey: "only-half"}, s); err == nil {
		t.Error("a lone public key should be rejected")
	}
}

func TestInitEventBus_InProcess(t *testing.T) {
	bus, embedded, err := initEventBus(&config.NATSConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("initEventBus() error = %v", err)
	}
	defer bus.Close()
	if embedded != nil {
		t.Error("no embedded server expected when NATS is disabled")
	}
}

func TestInitOutbox(t *testing.T) {
	bus := events.NewGoChannelBus(watermill.NopLogger{})
	defer bus.Close()

	pub, outbox, err := initOutbox(&config.WALConfig{Enabled: false}, bus)
	if err != nil || outbox != nil || pub != bus {
		t.Fatalf("disabled outbox = %v, %v, %v", pub, outbox, err)
	}

	pub, outbox, err = initOutbox(&config.WALConfig{Enabled: true, InMemory: true}, bus)
	if err != nil {
		t.Fatalf("initOutbox() error = %v", err)
	}
	defer outbox.Close()
	if _, ok := pub.(*wal.DurablePublisher); !ok {
		t.Errorf("publisher = %T, want *wal.DurablePublisher", pub)
	}
}
