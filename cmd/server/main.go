// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main is the entry point for the Clipdeck statistics service.
//
// The statistics service collects engagement counters for campaign clips
// from the public video platforms, caches them in Redis, detects bot-like
// engagement patterns, and maintains the weekly leaderboards in Postgres.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and optional config file (Koanf v2)
//  2. Postgres: ranking and campaign-cache tables, schema ensured on boot
//  3. Redis: stats cache with a fixed one hour TTL
//  4. Peer clients: clip-service and campaign-service over HTTP, each
//     behind its own circuit breaker
//  5. RabbitMQ: publisher plus the consumer router with retry and
//     dead-letter middleware
//  6. Scheduler: cron-driven stats refresh and weekly ranking runs
//  7. HTTP server: public stats and rankings reads, authenticated writes
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config.yaml, built-in defaults.
// See the config package for the required variables.
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM: it stops
// accepting connections, waits for in-flight requests, stops the cron
// scheduler, closes the event router, and releases Redis and Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipdeck/statistics-service/internal/api"
	"github.com/clipdeck/statistics-service/internal/botdetect"
	"github.com/clipdeck/statistics-service/internal/cache"
	"github.com/clipdeck/statistics-service/internal/campaigns"
	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/database"
	"github.com/clipdeck/statistics-service/internal/events"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/platform"
	"github.com/clipdeck/statistics-service/internal/rankings"
	"github.com/clipdeck/statistics-service/internal/scheduler"
	"github.com/clipdeck/statistics-service/internal/stats"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Default logger, config not available yet
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Int("port", cfg.Server.Port).
		Str("environment", cfg.Server.Environment).
		Msg("Starting statistics service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres holds the weekly ranking tables and the campaign mirror.
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to Postgres")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		logging.Fatal().Err(err).Msg("Failed to ensure database schema")
	}
	logging.Info().Msg("Database initialized successfully")

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing Redis client")
		}
	}()
	statsCache := cache.NewStatsCache(redisClient, cfg.Stats.CacheTTL)
	logging.Info().Dur("ttl", cfg.Stats.CacheTTL).Msg("Stats cache ready")

	clipService := clipclient.NewClipClient(cfg.Services.ClipServiceURL, cfg.Services.Timeout)
	campaignService := clipclient.NewCampaignClient(cfg.Services.CampaignServiceURL, cfg.Services.Timeout)

	registry := platform.NewRegistry(cfg.Platforms)
	if cfg.Platforms.YouTubeAPIKey == "" {
		logging.Warn().Msg("YOUTUBE_API_KEY not set, YouTube stat fetches will fail")
	}

	// Event bus. One AMQP connection publishes, a second consumes; the
	// poison publisher reuses the publishing connection for DLQ routing.
	wmLogger := logging.NewWatermillAdapter()
	amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQ, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create AMQP publisher")
	}
	amqpSubscriber, err := events.NewAMQPSubscriber(cfg.RabbitMQ, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create AMQP subscriber")
	}
	publisher := events.NewPublisher(amqpPublisher)
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event publisher")
		}
	}()

	collector := stats.NewCollector(registry, statsCache, publisher, cfg.Stats.BatchDelay)
	detector := botdetect.NewRunner(clipService, publisher)

	rankingStore := rankings.NewRepository(pool)
	rankingEngine := rankings.NewEngine(clipService, rankingStore)

	campaignStore := campaigns.NewRepository(pool)
	campaignMirror := campaigns.NewService(campaignStore, campaignService)

	consumer, err := events.NewConsumer(cfg.RabbitMQ, amqpSubscriber, amqpPublisher, clipService, collector, campaignMirror, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build event consumer")
	}
	go func() {
		if err := consumer.Run(ctx); err != nil {
			logging.Error().Err(err).Msg("Event consumer stopped with error")
		}
	}()
	<-consumer.Running()
	logging.Info().Msg("Event consumer running")

	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		cronScheduler = scheduler.New(cfg.Scheduler, clipService, collector, rankingEngine, cfg.Stats.MaxBatchSize)
		if err := cronScheduler.Start(); err != nil {
			logging.Fatal().Err(err).Msg("Failed to start scheduler")
		}
		logging.Info().
			Str("refresh_cron", cfg.Scheduler.RefreshCron).
			Str("rankings_cron", cfg.Scheduler.RankingsCron).
			Msg("Scheduler started")
	} else {
		logging.Warn().Msg("Scheduler disabled, stats refresh and rankings only run on demand")
	}

	router := api.NewRouter(cfg, api.Deps{
		Clips:     clipService,
		Stats:     collector,
		Rankings:  rankingStore,
		Calc:      rankingEngine,
		Detection: detector,
		Readiness: map[string]api.ReadinessCheck{
			"postgres": pool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("HTTP server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	if err := consumer.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event consumer")
	}

	logging.Info().Msg("Shutdown complete")
}
