// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Command server runs the Pulse engagement and personalization service.
//
// Initialization order matters: configuration first (logging settings live
// there), then logging, then storage, then the domain services, then the
// event plumbing, and finally the HTTP server. Everything long-running is
// handed to a supervisor tree so a crashing subsystem restarts with backoff
// instead of taking the process down.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/pulsekit/pulse/internal/api"
	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/config"
	"github.com/pulsekit/pulse/internal/events"
	"github.com/pulsekit/pulse/internal/experiment"
	"github.com/pulsekit/pulse/internal/logging"
	"github.com/pulsekit/pulse/internal/profile"
	"github.com/pulsekit/pulse/internal/recommend"
	"github.com/pulsekit/pulse/internal/social"
	"github.com/pulsekit/pulse/internal/supervisor"
	"github.com/pulsekit/pulse/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Pulse with supervisor tree")

	if cfg.Storage.Path != "" {
		logging.Info().
			Str("storage_path", cfg.Storage.Path).
			Str("catalog_url", cfg.Catalog.URL).
			Msg("Configuration loaded")
	} else {
		logging.Info().
			Bool("persistent", false).
			Str("catalog_url", cfg.Catalog.URL).
			Msg("Configuration loaded (in-memory mode)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open BadgerDB when a storage path is configured. An empty path keeps
	// everything in memory, which is the mode used by CI and local hacking.
	var db *badger.DB
	if cfg.Storage.Path != "" {
		opts := badger.DefaultOptions(cfg.Storage.Path)
		opts.Logger = nil // Suppress BadgerDB logs
		db, err = badger.Open(opts)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open storage")
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing storage")
			}
		}()
		logging.Info().Str("path", cfg.Storage.Path).Msg("Storage opened")
	}

	// Interaction ledger
	var interactionStore social.InteractionStore
	if db != nil {
		interactionStore, err = social.NewBadgerStore(db)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize interaction store")
		}
	} else {
		interactionStore = social.NewMemoryStore()
	}
	socialSvc, err := social.NewService(ctx, interactionStore,
		logging.With().Str("component", "social").Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize interaction ledger")
	}

	// User profiles
	var profileBackend profile.Backend
	if db != nil {
		profileBackend = profile.NewBadgerBackend(db)
	} else {
		profileBackend = profile.NewMemoryBackend()
	}
	profiles, err := profile.NewStore(ctx, profileBackend,
		logging.With().Str("component", "profile").Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize profile store")
	}

	// Content catalog: HTTP-backed with circuit breaker when an upstream is
	// configured, otherwise an empty in-memory catalog populated via tests
	// or a future admin surface.
	var cat catalog.Catalog
	if cfg.Catalog.URL != "" {
		cat, err = catalog.NewHTTPCatalog(catalog.HTTPConfig{
			URL:              cfg.Catalog.URL,
			RefreshInterval:  cfg.Catalog.RefreshInterval,
			RequestTimeout:   cfg.Catalog.RequestTimeout,
			PullsPerMinute:   cfg.Catalog.PullsPerMinute,
			FailureThreshold: cfg.Catalog.FailureThreshold,
		}, logging.With().Str("component", "catalog").Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize catalog client")
		}
		logging.Info().Str("url", cfg.Catalog.URL).Msg("Catalog upstream configured")
	} else {
		cat = catalog.NewMemory(nil)
		logging.Info().Msg("Catalog upstream not configured - using in-memory catalog")
	}

	// Recommendation engine
	recCfg := recommend.DefaultConfig()
	recCfg.DefaultLimit = cfg.Recommend.DefaultLimit
	recCfg.MaxLimit = cfg.Recommend.MaxLimit
	recCfg.FeedLimit = cfg.Recommend.FeedLimit
	recCfg.Cache = recommend.CacheConfig{
		Enabled:    cfg.Recommend.CacheEnabled,
		TTL:        cfg.Recommend.CacheTTL,
		MaxEntries: cfg.Recommend.CacheMax,
	}
	engine, err := recommend.NewEngine(recCfg, cat, profiles,
		logging.With().Str("component", "recommend").Logger())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation engine")
	}

	// A/B experiment evaluator. Left nil when disabled, which keeps the
	// experiment route group off the router entirely.
	var experiments *experiment.Evaluator
	if cfg.Experiment.Enabled {
		var experimentBackend experiment.Backend
		if db != nil {
			experimentBackend = experiment.NewBadgerBackend(db)
		} else {
			experimentBackend = experiment.NewMemoryBackend()
		}
		experiments, err = experiment.NewEvaluator(ctx, experimentBackend,
			logging.With().Str("component", "experiment").Logger())
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize experiment evaluator")
		}
	} else {
		logging.Info().Msg("Experiment evaluation disabled (EXPERIMENT_ENABLED=false)")
	}

	// Event bus: interactions recorded by the ledger flow through the bus to
	// the profile updater, which also invalidates cached recommendations.
	wmLogger := events.NewLoggerAdapter(logging.With().Str("component", "events").Logger())
	bus := events.NewBus(events.BusConfig{
		OutputBuffer: cfg.Events.OutputBuffer,
	}, wmLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	publisher := events.NewPublisher(bus.Publisher(),
		logging.With().Str("component", "events").Logger())
	socialSvc.SetEventSink(publisher)

	routerCfg := events.DefaultRouterConfig()
	routerCfg.RetryMaxRetries = cfg.Events.RetryMaxRetries
	routerCfg.RetryInitialInterval = cfg.Events.RetryInitialInterval
	routerCfg.RetryMaxInterval = cfg.Events.RetryMaxInterval
	routerCfg.RetryMultiplier = cfg.Events.RetryMultiplier
	routerCfg.CloseTimeout = cfg.Events.CloseTimeout
	eventRouter, err := events.NewRouter(routerCfg, bus.Subscriber(), bus.Publisher(),
		profiles, engine, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event router")
	}

	// Optional NATS JetStream mirror for downstream consumers outside this
	// process (analytics, warehousing).
	if cfg.Events.NATSEnabled {
		natsCfg := events.DefaultNATSConfig()
		natsCfg.Enabled = true
		natsCfg.URL = cfg.Events.NATSURL
		natsCfg.Subject = cfg.Events.NATSSubject
		natsPublisher, err := events.NewNATSPublisher(natsCfg, wmLogger)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize NATS publisher")
		}
		eventRouter.AddMirror(bus.Subscriber(), natsPublisher, natsCfg.Subject)
		logging.Info().
			Str("url", natsCfg.URL).
			Str("subject", natsCfg.Subject).
			Msg("NATS event mirror enabled")
	}

	// HTTP layer
	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mwConfig.RateLimitDisabled = cfg.Security.RateLimitDisabled
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	handler := api.NewHandler(socialSvc, profiles, engine, experiments, cat)
	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Supervisor tree: data layer (storage GC), events layer (interaction
	// router), API layer (HTTP server).
	slogLogger := logging.NewSlogLogger()
	tree := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())

	if db != nil {
		tree.AddDataService(services.NewBadgerGCService(db, cfg.Storage.GCInterval,
			logging.With().Str("component", "storage-gc").Logger()))
		logging.Info().Dur("interval", cfg.Storage.GCInterval).Msg("Storage GC service added")
	}

	tree.AddEventsService(services.NewEventRouterService(eventRouter))
	logging.Info().Msg("Event router service added")

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
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
