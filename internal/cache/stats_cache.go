// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides the Redis-backed stats cache. Cached entries are
// JSON documents keyed by platform and platform video ID with a fixed TTL,
// so a crashed service warms back up from whatever Redis still holds.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/models"
)

// StatsCache stores the latest fetched stats per (platform, video) pair.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache over an existing Redis client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &StatsCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and returns a connected client. The
// connection is verified with a ping so misconfiguration fails at startup.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Key returns the cache key for a platform video.
func Key(platform models.Platform, videoID string) string {
	return fmt.Sprintf("stats:%s:%s", platform, videoID)
}

// Get returns the cached stats, or (nil, nil) when the entry is absent. A
// corrupt entry is treated as a miss and logged; the caller refetches and
// overwrites it.
func (c *StatsCache) Get(ctx context.Context, platform models.Platform, videoID string) (*models.PlatformStats, error) {
	raw, err := c.client.Get(ctx, Key(platform, videoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.CacheMisses.Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stats cache get: %w", err)
	}

	var stats models.PlatformStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		metrics.CacheMisses.Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("platform", platform.String()).
			Str("video_id", videoID).
			Msg("corrupt stats cache entry, treating as miss")
		return nil, nil
	}
	metrics.CacheHits.Inc()
	return &stats, nil
}

// Set stores stats under the cache TTL.
func (c *StatsCache) Set(ctx context.Context, platform models.Platform, videoID string, stats *models.PlatformStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("stats cache encode: %w", err)
	}
	if err := c.client.Set(ctx, Key(platform, videoID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("stats cache set: %w", err)
	}
	return nil
}

// Delete removes a cached entry. Used when a clip is rejected after the
// fact so stale numbers stop being served.
func (c *StatsCache) Delete(ctx context.Context, platform models.Platform, videoID string) error {
	if err := c.client.Del(ctx, Key(platform, videoID)).Err(); err != nil {
		return fmt.Errorf("stats cache delete: %w", err)
	}
	return nil
}
