// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/feed"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/notify"
	"github.com/tomtom215/flyfitness/internal/push"
	"github.com/tomtom215/flyfitness/internal/store"
	"github.com/tomtom215/flyfitness/internal/store/badgerstore"
	"github.com/tomtom215/flyfitness/internal/store/mongostore"
	"github.com/tomtom215/flyfitness/internal/supervisor/services"
	"github.com/tomtom215/flyfitness/internal/wal"
)

// openStore opens the configured backend. The returned collector is non-nil
// only for an on-disk badger store. An in-memory badger store lowers
// mediaCfg.MaxUploadBytes to the largest attachment it can hold.
func openStore(ctx context.Context, dbCfg *config.DatabaseConfig, mediaCfg *config.MediaConfig) (store.Store, services.ValueLogCollector, error) {
	switch dbCfg.Driver {
	case config.DriverMongo:
		s, err := mongostore.Connect(ctx, mongostore.Options{
			URI:            dbCfg.MongoURI,
			Database:       dbCfg.MongoDatabase,
			MediaBucket:    mediaCfg.GridFSBucket,
			ConnectTimeout: dbCfg.ConnectTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		logging.Info().Str("database", dbCfg.MongoDatabase).Msg("Connected to MongoDB")
		return s, nil, nil

	case config.DriverBadger, "":
		s, err := badgerstore.Open(badgerstore.Options{
			Path:     dbCfg.Path,
			InMemory: dbCfg.InMemory,
		})
		if err != nil {
			return nil, nil, err
		}
		if dbCfg.InMemory {
			logging.Warn().Msg("BadgerDB running in memory, data is lost on restart")
			if limit := s.MaxMediaBytes(); mediaCfg.MaxUploadBytes > limit {
				logging.Warn().Int64("configured", mediaCfg.MaxUploadBytes).Int64("limit", limit).
					Msg("Lowering MEDIA_MAX_UPLOAD_BYTES to the in-memory BadgerDB value limit")
				mediaCfg.MaxUploadBytes = limit
			}
			return s, nil, nil
		}
		logging.Info().Str("path", dbCfg.Path).Msg("BadgerDB opened")
		return s, s, nil

	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", dbCfg.Driver)
	}
}

// initEventBus returns an in-process bus, or a JetStream bus when NATS is
// enabled. The embedded server is nil unless one was started.
func initEventBus(cfg *config.NATSConfig, logger watermill.LoggerAdapter) (*events.Bus, *events.EmbeddedServer, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Using in-process event bus (NATS_ENABLED=false)")
		return events.NewGoChannelBus(logger), nil, nil
	}

	natsURL := cfg.URL
	var embedded *events.EmbeddedServer
	if cfg.EmbeddedServer {
		host, port, err := hostPort(cfg.URL)
		if err != nil {
			return nil, nil, err
		}
		embedded, err = events.NewEmbeddedServer(events.ServerConfig{
			Host:              host,
			Port:              port,
			StoreDir:          cfg.StoreDir,
			JetStreamMaxMem:   cfg.MaxMemory,
			JetStreamMaxStore: cfg.MaxStore,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("start embedded NATS: %w", err)
		}
		natsURL = embedded.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	}

	bus, err := events.NewNATSBus(events.NATSConfig{
		URL:           natsURL,
		DurableName:   cfg.DurableName,
		QueueGroup:    cfg.QueueGroup,
		CloseTimeout:  cfg.CloseTimeout,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}, logger)
	if err != nil {
		if embedded != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = embedded.Shutdown(shutdownCtx)
		}
		return nil, nil, err
	}
	bus.SetCircuitBreaker(events.NewPublishBreaker("event-publisher", 5, 30*time.Second))

	logging.Info().Str("url", natsURL).Msg("NATS JetStream event bus connected")
	return bus, embedded, nil
}

// initOutbox wraps bus with the durable outbox. With the outbox disabled the
// bus is returned as is and the WAL is nil.
func initOutbox(cfg *config.WALConfig, bus *events.Bus) (feed.Publisher, *wal.BadgerWAL, error) {
	if !cfg.Enabled {
		logging.Warn().Msg("Event outbox disabled (WAL_ENABLED=false), failed publishes are dropped")
		return bus, nil, nil
	}
	outbox, err := wal.Open(wal.ConfigFromConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Int64("pending", outbox.Stats().Pending).
		Msg("Event outbox opened")
	return wal.NewDurablePublisher(bus, outbox), outbox, nil
}

func hostPort(rawURL string) (string, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", 0, fmt.Errorf("parse NATS URL: %w", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", 0, fmt.Errorf("parse NATS URL host: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("parse NATS URL port: %w", err)
	}
	return host, port, nil
}

// pushComponents groups the Web Push wiring.
type pushComponents struct {
	registry  *push.Registry
	pusher    notify.Pusher
	publicKey string
}

// initPush always creates the registry. The sender exists only when push is enabled.
func initPush(cfg *config.PushConfig, s store.PushStore) (*pushComponents, error) {
	pc := &pushComponents{registry: push.NewRegistry(s)}
	if !cfg.Enabled {
		logging.Info().Msg("Web push disabled (PUSH_ENABLED=false)")
		return pc, nil
	}

	keys, generated, err := push.LoadKeys(cfg)
	if err != nil {
		return nil, err
	}
	if generated {
		logging.Warn().
			Str("vapid_public_key", keys.Public).
			Msg("Generated ephemeral VAPID keys; subscriptions will not survive a restart. Set VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY")
	}

	sender := push.NewSender(s, push.SenderConfigFromConfig(cfg, keys))
	pc.pusher = sender
	pc.publicKey = sender.PublicKey()
	logging.Info().Float64("rate_per_second", cfg.RatePerSecond).Msg("Web push sender initialized")
	return pc, nil
}
