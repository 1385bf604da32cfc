// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"

	_ "github.com/tomtom215/flyfitness/docs" // Import generated swagger docs
	"github.com/tomtom215/flyfitness/internal/api"
	"github.com/tomtom215/flyfitness/internal/auth"
	"github.com/tomtom215/flyfitness/internal/authz"
	"github.com/tomtom215/flyfitness/internal/config"
	"github.com/tomtom215/flyfitness/internal/content"
	"github.com/tomtom215/flyfitness/internal/events"
	"github.com/tomtom215/flyfitness/internal/feed"
	"github.com/tomtom215/flyfitness/internal/logging"
	"github.com/tomtom215/flyfitness/internal/mail"
	"github.com/tomtom215/flyfitness/internal/middleware"
	"github.com/tomtom215/flyfitness/internal/notify"
	"github.com/tomtom215/flyfitness/internal/supervisor"
	"github.com/tomtom215/flyfitness/internal/supervisor/services"
	"github.com/tomtom215/flyfitness/internal/wal"
)

const (
	// shutdownTimeout bounds HTTP drain and embedded NATS shutdown.
	shutdownTimeout = 10 * time.Second

	// gcInterval is how often badger's value log is compacted.
	gcInterval = 10 * time.Minute

	// performanceWindow is the number of requests kept for /admin/performance.
	performanceWindow = 1000
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", api.Version).
		Str("environment", cfg.Server.Environment).
		Str("db_driver", cfg.Database.Driver).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Fly Fitness Zone with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, gc, err := openStore(ctx, &cfg.Database, &cfg.Media)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	// zerolog bridged to slog for suture and watermill
	slogLogger := logging.NewSlogLogger()
	wmLogger := watermill.NewSlogLogger(slogLogger)

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  shutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	bus, natsServer, err := initEventBus(&cfg.NATS, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	publisher, outbox, err := initOutbox(&cfg.WAL, bus)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open event outbox")
	}
	if outbox != nil {
		defer func() {
			if err := outbox.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event outbox")
			}
		}()
	}

	// === SERVICES ===

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	authSvc := auth.NewService(db, tokens, mail.New(&cfg.Email), auth.OptionsFromConfig(&cfg.Security))
	if err := authSvc.EnsureAdmin(ctx, cfg.Security.AdminEmail, cfg.Security.AdminPassword); err != nil {
		logging.Fatal().Err(err).Msg("Failed to provision admin account")
	}

	feedSvc := feed.NewService(db, publisher, feed.Config{
		MediaBaseURL:   cfg.Media.PublicBaseURL,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
	})

	pushInit, err := initPush(&cfg.Push, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize web push")
	}
	notifySvc := notify.NewService(db, pushInit.pusher)

	contentSvc := content.NewService(db)
	if cfg.Database.SeedSampleContent {
		if err := contentSvc.Seed(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to seed sample content")
		}
	}

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization")
	}
	defer enforcer.Close()

	eventRouter, err := events.NewRouter(events.DefaultRouterConfig(), bus.Subscriber(), wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event router")
	}
	notifySvc.RegisterHandlers(eventRouter)

	handler := api.NewHandler(api.Dependencies{
		Config:         cfg,
		Store:          db,
		Tokens:         tokens,
		Auth:           authSvc,
		Feed:           feedSvc,
		Notify:         notifySvc,
		Registry:       pushInit.registry,
		Content:        contentSvc,
		Enforcer:       enforcer,
		VAPIDPublicKey: pushInit.publicKey,
		Publisher:      publisher,
		Monitor:        middleware.NewPerformanceMonitor(performanceWindow, middleware.DefaultSlowRequestThreshold),
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	if cfg.Feed.Enabled {
		tree.AddDataService(services.NewFeedSweeperService(feedSvc, cfg.Feed.SweepInterval))
		logging.Info().Dur("interval", cfg.Feed.SweepInterval).Msg("Feed sweeper added to supervisor tree")
	}
	if gc != nil {
		tree.AddDataService(services.NewValueLogGCService(gc, gcInterval))
	}

	// Messaging layer services
	if natsServer != nil {
		tree.AddMessagingService(services.NewEmbeddedNATSService(natsServer, shutdownTimeout))
	}
	tree.AddMessagingService(services.NewEventRouterService(eventRouter))
	logging.Info().Msg("Event router added to supervisor tree")
	if outbox != nil {
		tree.AddMessagingService(wal.NewRetryLoop(outbox, bus))
		if !cfg.WAL.InMemory {
			tree.AddDataService(services.NewValueLogGCService(outbox, gcInterval))
		}
		logging.Info().Dur("interval", cfg.WAL.RetryInterval).Msg("Event outbox retry loop added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, shutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
