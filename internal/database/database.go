// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package database owns the Postgres connection pool and the schema the
// service needs. Rankings and the campaign mirror are the only locally
// persisted state; everything else lives in Redis or upstream services.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipdeck/statistics-service/internal/logging"
)

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// schema holds the service's tables. Statements are idempotent so startup
// is safe on an already-provisioned database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS weekly_clip_ranking (
		week_start    date             NOT NULL,
		submission_id text             NOT NULL,
		week_end      date             NOT NULL,
		platform      text             NOT NULL,
		views         bigint           NOT NULL DEFAULT 0,
		likes         bigint           NOT NULL DEFAULT 0,
		engagement    double precision NOT NULL DEFAULT 0,
		rank          integer          NOT NULL,
		PRIMARY KEY (week_start, submission_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_clip_ranking_week_platform
		ON weekly_clip_ranking (week_start, platform, rank)`,
	`CREATE TABLE IF NOT EXISTS weekly_campaign_ranking (
		week_start     date             NOT NULL,
		campaign_id    text             NOT NULL,
		week_end       date             NOT NULL,
		total_views    bigint           NOT NULL DEFAULT 0,
		total_likes    bigint           NOT NULL DEFAULT 0,
		avg_engagement double precision NOT NULL DEFAULT 0,
		clips_count    integer          NOT NULL DEFAULT 0,
		rank           integer          NOT NULL,
		PRIMARY KEY (week_start, campaign_id)
	)`,
	`CREATE TABLE IF NOT EXISTS campaign_cache (
		id        text        PRIMARY KEY,
		title     text        NOT NULL DEFAULT '',
		status    text        NOT NULL,
		synced_at timestamptz NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates the service tables when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	logging.Debug().Msg("database schema ensured")
	return nil
}
