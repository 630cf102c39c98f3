// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stats implements the collector that refreshes clip engagement
// numbers from the platforms, writes them through the cache, and announces
// updates on the event bus.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/platform"
)

// Cache is the slice of the stats cache the collector needs.
type Cache interface {
	Get(ctx context.Context, platform models.Platform, videoID string) (*models.PlatformStats, error)
	Set(ctx context.Context, platform models.Platform, videoID string, stats *models.PlatformStats) error
}

// Publisher announces stat updates on the event bus.
type Publisher interface {
	PublishStatsUpdated(ctx context.Context, clipID string, stats *models.PlatformStats) error
}

// AdapterRegistry resolves platforms to their adapters.
type AdapterRegistry interface {
	Adapter(p models.Platform) (platform.Adapter, error)
}

// Collector fetches, caches and publishes clip stats.
type Collector struct {
	registry   AdapterRegistry
	cache      Cache
	publisher  Publisher
	batchDelay time.Duration
}

// NewCollector creates a collector. batchDelay is the pause between clips
// in a batch refresh; it keeps platform scrapes under rate limits.
func NewCollector(registry AdapterRegistry, cache Cache, publisher Publisher, batchDelay time.Duration) *Collector {
	if batchDelay <= 0 {
		batchDelay = 100 * time.Millisecond
	}
	return &Collector{
		registry:   registry,
		cache:      cache,
		publisher:  publisher,
		batchDelay: batchDelay,
	}
}

// RefreshClipStats fetches fresh stats for one clip, caches them and
// publishes stats.updated. A fetch failure propagates so the caller can
// retry; cache and publish failures are logged and swallowed since the
// fetched stats already exist and the next cycle heals both.
func (c *Collector) RefreshClipStats(ctx context.Context, clip clipclient.Clip) (*models.PlatformStats, error) {
	adapter, err := c.registry.Adapter(clip.Platform)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return nil, err
	}

	stats, err := adapter.Fetch(ctx, clip.PlatformVideoID)
	if err != nil {
		metrics.RefreshTotal.WithLabelValues("failure").Inc()
		return nil, fmt.Errorf("refresh clip %s: %w", clip.ID, err)
	}

	if err := c.cache.Set(ctx, clip.Platform, clip.PlatformVideoID, stats); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("clip_id", clip.ID).
			Msg("stats cache write failed, continuing")
	}

	if err := c.publisher.PublishStatsUpdated(ctx, clip.ID, stats); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("clip_id", clip.ID).
			Msg("stats.updated publish failed, continuing")
	}

	metrics.RefreshTotal.WithLabelValues("success").Inc()
	logging.Ctx(ctx).Debug().
		Str("clip_id", clip.ID).
		Str("platform", clip.Platform.String()).
		Int64("views", stats.Views).
		Msg("clip stats refreshed")
	return stats, nil
}

// GetOrFetchStats serves stats from the cache when warm. A miss delegates
// to RefreshClipStats, so a cold read caches the result and announces
// stats.updated exactly like an explicit refresh.
func (c *Collector) GetOrFetchStats(ctx context.Context, clip clipclient.Clip) (*models.PlatformStats, error) {
	cached, err := c.cache.Get(ctx, clip.Platform, clip.PlatformVideoID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("stats cache read failed, falling back to fetch")
	}
	if cached != nil {
		return cached, nil
	}
	return c.RefreshClipStats(ctx, clip)
}

// BatchResult summarizes a batch refresh run.
type BatchResult struct {
	Succeeded int
	Failed    int
}

// BatchRefreshStats refreshes each clip in order, pausing for the pacing
// delay after every clip, success or failure. Per-clip failures are
// counted and never abort the batch. Cancelling the context stops the
// batch at the next pause.
func (c *Collector) BatchRefreshStats(ctx context.Context, clips []clipclient.Clip) (BatchResult, error) {
	start := time.Now()
	defer func() {
		metrics.BatchRefreshDuration.Observe(time.Since(start).Seconds())
	}()

	var result BatchResult
	for i, clip := range clips {
		if _, err := c.RefreshClipStats(ctx, clip); err != nil {
			result.Failed++
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("clip_id", clip.ID).
				Msg("batch refresh: clip failed")
		} else {
			result.Succeeded++
		}

		select {
		case <-time.After(c.batchDelay):
		case <-ctx.Done():
			logging.Ctx(ctx).Info().
				Int("remaining", len(clips)-i-1).
				Msg("batch refresh cancelled")
			return result, ctx.Err()
		}
	}

	logging.Ctx(ctx).Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Dur("took", time.Since(start)).
		Msg("batch refresh complete")
	return result, nil
}
