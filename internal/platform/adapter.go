// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package platform fetches engagement counters from the four supported video
// platforms and normalizes them to a common models.PlatformStats tuple.
//
// Failure policy: adapters return all-zero stats only for "document not
// found" soft failures on platforms whose endpoints are best-effort scrapes
// (TikTok missing data, any Instagram error). Transport failures and
// malformed bodies on contract endpoints (YouTube, Twitter) return errors so
// the caller can retry. Each adapter documents which side of the line it is
// on.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/models"
)

// Sentinel errors shared by the adapters.
var (
	// ErrUnknownPlatform indicates a platform outside the supported set.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrVideoNotFound indicates the platform has no document for the ID.
	ErrVideoNotFound = errors.New("video not found")

	// ErrMissingAPIKey indicates a required platform API key is not configured.
	ErrMissingAPIKey = errors.New("platform api key not configured")

	// ErrTweetURLParse indicates a tweet ID could not be extracted.
	ErrTweetURLParse = errors.New("could not extract tweet id from url")
)

// UpstreamError reports a non-2xx or malformed response from a platform API.
type UpstreamError struct {
	Platform models.Platform
	Status   int
	Message  string
}

// Error implements the error interface.
func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s upstream error (status %d): %s", e.Platform, e.Status, e.Message)
}

// Adapter fetches normalized stats for one platform.
type Adapter interface {
	// Platform returns the platform this adapter serves.
	Platform() models.Platform

	// Fetch retrieves current stats for the given platform video ID.
	Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error)
}

// Registry maps platforms to their adapters. Registered adapters are wrapped
// with Prometheus instrumentation.
type Registry struct {
	adapters map[models.Platform]Adapter
}

// NewRegistry builds a registry with all four production adapters sharing one
// HTTP client bounded by cfg.FetchTimeout.
func NewRegistry(cfg config.PlatformsConfig) *Registry {
	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := &http.Client{Timeout: timeout}

	r := &Registry{adapters: make(map[models.Platform]Adapter)}
	r.Register(NewYouTubeAdapter(client, cfg.YouTubeAPIKey))
	r.Register(NewTikTokAdapter(client))
	r.Register(NewInstagramAdapter(client))
	r.Register(NewTwitterAdapter(client))
	return r
}

// Register adds an adapter, replacing any existing one for the same platform.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Platform()] = &instrumentedAdapter{next: a}
}

// Adapter returns the adapter for the given platform.
func (r *Registry) Adapter(p models.Platform) (Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, p)
	}
	return a, nil
}

// instrumentedAdapter records fetch latency and errors around an adapter.
type instrumentedAdapter struct {
	next Adapter
}

func (a *instrumentedAdapter) Platform() models.Platform {
	return a.next.Platform()
}

func (a *instrumentedAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	start := time.Now()
	stats, err := a.next.Fetch(ctx, videoID)
	metrics.PlatformFetchDuration.WithLabelValues(a.next.Platform().String()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.PlatformFetchErrors.WithLabelValues(a.next.Platform().String()).Inc()
	}
	return stats, err
}

// clampNonNegative guards against platforms reporting negative counters.
func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
