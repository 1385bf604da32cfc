// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestMarshalRoundTrip(t *testing.T) {
	e := New(TopicPostLiked, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	e.ActorID = "bob"
	e.RecipientID = "alice"
	e.PostID = "p1"
	e.Liked = true

	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got.ID != e.ID || got.Topic != TopicPostLiked || got.RecipientID != "alice" || !got.Liked {
		t.Errorf("Unmarshal() = %+v", got)
	}
	if got.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion = %d, want %d", got.SchemaVersion, SchemaVersion)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		wantErr bool
	}{
		{"valid", Event{ID: "1", Topic: TopicBroadcast}, false},
		{"missing id", Event{Topic: TopicBroadcast}, true},
		{"missing topic", Event{ID: "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.event.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	if _, err := Unmarshal([]byte("not json")); err == nil {
		t.Error("Unmarshal(garbage) expected error")
	}
	if _, err := Unmarshal([]byte(`{"id":"x"}`)); err == nil {
		t.Error("Unmarshal(no topic) expected error")
	}
}

func TestGoChannelBus_RouterDelivers(t *testing.T) {
	bus := NewGoChannelBus(nil)
	defer bus.Close()

	cfg := DefaultRouterConfig()
	cfg.CloseTimeout = time.Second
	router, err := NewRouter(cfg, bus.Subscriber(), nil)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	received := make(chan *Event, 1)
	router.Handle("test-liked", TopicPostLiked, func(_ context.Context, e *Event) error {
		received <- e
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	defer router.Close()

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	e := New(TopicPostLiked, time.Now())
	e.PostID = "p1"
	if err := bus.Publish(ctx, e); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case got := <-received:
		if got.ID != e.ID || got.PostID != "p1" {
			t.Errorf("received %+v", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestRouter_RetriesFailedHandler(t *testing.T) {
	bus := NewGoChannelBus(nil)
	defer bus.Close()

	cfg := RouterConfig{
		CloseTimeout:         time.Second,
		RetryMaxRetries:      2,
		RetryInitialInterval: time.Millisecond,
		RetryMaxInterval:     5 * time.Millisecond,
		RetryMultiplier:      1,
	}
	router, err := NewRouter(cfg, bus.Subscriber(), nil)
	if err != nil {
		t.Fatalf("NewRouter() error = %v", err)
	}

	var calls atomic.Int32
	done := make(chan struct{})
	router.Handle("flaky", TopicBroadcast, func(_ context.Context, _ *Event) error {
		if calls.Add(1) < 2 {
			return errors.New("transient")
		}
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()
	defer router.Close()
	<-router.Running()

	if err := bus.Publish(ctx, New(TopicBroadcast, time.Now())); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("handler calls = %d, want success on retry", calls.Load())
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewGoChannelBus(nil)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := bus.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := bus.Publish(context.Background(), New(TopicBroadcast, time.Now())); !errors.Is(err, ErrBusClosed) {
		t.Errorf("Publish() after close error = %v, want ErrBusClosed", err)
	}
}

func TestNewPublishBreaker_Trips(t *testing.T) {
	cb := NewPublishBreaker("test-events", 2, time.Minute)
	fail := func() (any, error) { return nil, errors.New("down") }

	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(fail)

	if cb.State() != gobreaker.StateOpen {
		t.Errorf("State() = %v, want open", cb.State())
	}
	if _, err := cb.Execute(fail); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Execute() on open breaker error = %v, want ErrOpenState", err)
	}
}
