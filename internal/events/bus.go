// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/flyfitness/internal/metrics"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Bus publishes domain events and hands out the subscriber used by the router.
type Bus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[any]
	logger     watermill.LoggerAdapter

	mu     sync.RWMutex
	closed bool
}

// NewGoChannelBus creates an in-process bus.
func NewGoChannelBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            256,
		BlockPublishUntilSubscriberAck: false,
	}, logger)

	return &Bus{
		publisher:  ch,
		subscriber: ch,
		logger:     logger,
	}
}

// NATSConfig configures a JetStream-backed bus.
type NATSConfig struct {
	URL           string
	DurableName   string
	QueueGroup    string
	CloseTimeout  time.Duration
	MaxReconnects int
	ReconnectWait time.Duration
}

// NewNATSBus creates a bus on NATS JetStream. Streams are provisioned on first use.
func NewNATSBus(cfg NATSConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.CloseTimeout == 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   30 * time.Second,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			DurablePrefix: cfg.DurableName,
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}

	return &Bus{
		publisher:  pub,
		subscriber: sub,
		logger:     logger,
	}, nil
}

// SetCircuitBreaker guards Publish with cb.
func (b *Bus) SetCircuitBreaker(cb *gobreaker.CircuitBreaker[any]) {
	b.breaker = cb
}

// Subscriber returns the subscriber handlers consume from.
func (b *Bus) Subscriber() message.Subscriber {
	return b.subscriber
}

// Publish serializes e and publishes it on e.Topic.
func (b *Bus) Publish(_ context.Context, e *Event) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBusClosed
	}

	data, err := Marshal(e)
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}
	msg := message.NewMessage(e.ID, data)
	msg.Metadata.Set("topic", e.Topic)
	if e.ActorID != "" {
		msg.Metadata.Set("actor_id", e.ActorID)
	}

	if b.breaker != nil {
		_, err = b.breaker.Execute(func() (any, error) {
			return nil, b.publisher.Publish(e.Topic, msg)
		})
	} else {
		err = b.publisher.Publish(e.Topic, msg)
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", e.Topic, err)
	}

	metrics.RecordEventPublished(e.Topic)
	return nil
}

// Close shuts down the publisher and subscriber.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.publisher.Close(); err != nil {
		errs = append(errs, err)
	}
	// gochannel uses one value for both sides
	if any(b.subscriber) != any(b.publisher) {
		if err := b.subscriber.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewPublishBreaker returns a circuit breaker for event publishing that
// reports transitions to Prometheus.
func NewPublishBreaker(name string, maxFailures uint32, timeout time.Duration) *gobreaker.CircuitBreaker[any] {
	return gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String())
		},
	})
}
