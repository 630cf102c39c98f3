// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and validates the statistics-service configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in sensible defaults for all optional settings
//  2. Config File: optional YAML config file (config.yaml)
//  3. Environment Variables: override any setting
//
// Required environment variables (startup aborts when missing or invalid):
//   - DATABASE_URL: Postgres connection string for ranking tables
//   - REDIS_URL: Redis connection string for the stats cache
//   - RABBITMQ_URL: AMQP connection string for the event bus
//   - CLIP_SERVICE_URL / CAMPAIGN_SERVICE_URL: peer service base URLs
//   - JWT_SECRET: token signing secret, at least 16 characters
//
// Optional:
//   - PORT, HOST, ENVIRONMENT, LOG_LEVEL, LOG_FORMAT
//   - EVENT_EXCHANGE: topic exchange name (default: clipdeck.events)
//   - YOUTUBE_API_KEY: required only for YouTube stat fetches
//   - ALLOWED_ORIGINS: comma-separated CORS origins
//
// Config is immutable after Load() and safe for concurrent reads.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	RabbitMQ  RabbitMQConfig  `koanf:"rabbitmq"`
	Services  ServicesConfig  `koanf:"services"`
	Platforms PlatformsConfig `koanf:"platforms"`
	Stats     StatsConfig     `koanf:"stats"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Environment string        `koanf:"environment"` // development, production, test
	Timeout     time.Duration `koanf:"timeout"`
}

// DatabaseConfig holds Postgres settings for the ranking and campaign tables.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// RedisConfig holds Redis settings for the stats cache.
type RedisConfig struct {
	URL string `koanf:"url"`
}

// RabbitMQConfig holds event-bus settings.
//
// The consumer binds queues on the topic exchange for each routing key in
// events.ConsumedTopics; PrefetchCount bounds in-flight deliveries per
// consumer. A failing message is attempted at most RetryMaxAttempts times
// in total (the first delivery plus retries with exponential backoff)
// before routing to the dead-letter topic.
type RabbitMQConfig struct {
	URL                  string        `koanf:"url"`
	Exchange             string        `koanf:"exchange"`
	QueuePrefix          string        `koanf:"queue_prefix"`
	PrefetchCount        int           `koanf:"prefetch_count"`
	RetryMaxAttempts     int           `koanf:"retry_max_attempts"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	DeadLetterTopic      string        `koanf:"dead_letter_topic"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// ServicesConfig holds peer HTTP service settings.
type ServicesConfig struct {
	ClipServiceURL     string        `koanf:"clip_service_url"`
	CampaignServiceURL string        `koanf:"campaign_service_url"`
	Timeout            time.Duration `koanf:"timeout"`
}

// PlatformsConfig holds external platform API settings.
type PlatformsConfig struct {
	YouTubeAPIKey string        `koanf:"youtube_api_key"`
	FetchTimeout  time.Duration `koanf:"fetch_timeout"`
}

// StatsConfig holds collector tuning.
type StatsConfig struct {
	// CacheTTL is the stats cache entry lifetime. Fixed contract: 3600s.
	CacheTTL time.Duration `koanf:"cache_ttl"`

	// BatchDelay is the pause between clips in a batch refresh. The platform
	// APIs are free-tier public endpoints; 100ms keeps us under their soft
	// rate limits.
	BatchDelay time.Duration `koanf:"batch_delay"`

	// MaxBatchSize caps clips per batch-refresh request.
	MaxBatchSize int `koanf:"max_batch_size"`
}

// SchedulerConfig holds cron schedules.
type SchedulerConfig struct {
	Enabled      bool   `koanf:"enabled"`
	RefreshCron  string `koanf:"refresh_cron"`
	RankingsCron string `koanf:"rankings_cron"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	JWTSecret       string        `koanf:"jwt_secret"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8084,
			Host:        "0.0.0.0",
			Environment: "development",
			Timeout:     30 * time.Second,
		},
		Database: DatabaseConfig{URL: ""},
		Redis:    RedisConfig{URL: ""},
		RabbitMQ: RabbitMQConfig{
			URL:                  "",
			Exchange:             "clipdeck.events",
			QueuePrefix:          "statistics.events",
			PrefetchCount:        10,
			RetryMaxAttempts:     3,
			RetryInitialInterval: time.Second,
			RetryMaxInterval:     30 * time.Second,
			DeadLetterTopic:      "statistics.events.dlq",
			CloseTimeout:         30 * time.Second,
		},
		Services: ServicesConfig{
			ClipServiceURL:     "",
			CampaignServiceURL: "",
			Timeout:            10 * time.Second,
		},
		Platforms: PlatformsConfig{
			YouTubeAPIKey: "",
			FetchTimeout:  10 * time.Second,
		},
		Stats: StatsConfig{
			CacheTTL:     time.Hour,
			BatchDelay:   100 * time.Millisecond,
			MaxBatchSize: 500,
		},
		Scheduler: SchedulerConfig{
			Enabled:      true,
			RefreshCron:  "0 * * * *", // top of every hour
			RankingsCron: "0 0 * * *", // midnight UTC
		},
		Security: SecurityConfig{
			JWTSecret:       "",
			AllowedOrigins:  []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
