// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package metrics provides Prometheus collectors for the statistics service,
// exposed at /metrics in Prometheus text format.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Platform adapter metrics

	// PlatformFetchDuration tracks platform API call latency per platform.
	PlatformFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "platform_fetch_duration_seconds",
			Help:    "Platform API fetch latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"platform"},
	)

	// PlatformFetchErrors counts failed platform fetches.
	PlatformFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_fetch_errors_total",
			Help: "Failed platform API fetches",
		},
		[]string{"platform"},
	)

	// Stats cache metrics

	// CacheHits counts stats cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_cache_hits_total",
			Help: "Stats cache hits",
		},
	)

	// CacheMisses counts stats cache misses (including decode failures).
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stats_cache_misses_total",
			Help: "Stats cache misses",
		},
	)

	// Collector metrics

	// RefreshTotal counts clip stat refreshes by outcome (success, failure).
	RefreshTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stats_refresh_total",
			Help: "Clip stat refreshes by outcome",
		},
		[]string{"outcome"},
	)

	// BatchRefreshDuration tracks wall time of batch refresh runs.
	BatchRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stats_batch_refresh_duration_seconds",
			Help:    "Batch refresh wall time",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Bot detection metrics

	// DetectionRuns counts bot detection runs.
	DetectionRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bot_detection_runs_total",
			Help: "Bot detection runs",
		},
	)

	// DetectionFlags counts emitted bot flags by type and severity.
	DetectionFlags = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_detection_flags_total",
			Help: "Bot flags emitted by type and severity",
		},
		[]string{"flag_type", "severity"},
	)

	// Event bus metrics

	// EventsPublished counts published events by topic.
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Events published by topic",
		},
		[]string{"topic"},
	)

	// EventsConsumed counts consumed events by topic and outcome.
	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_consumed_total",
			Help: "Events consumed by topic and outcome",
		},
		[]string{"topic", "outcome"},
	)

	// Rankings metrics

	// RankingRunDuration tracks ranking calculation durations by kind.
	RankingRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_run_duration_seconds",
			Help:    "Ranking calculation duration",
			Buckets: []float64{.1, .5, 1, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	// RankingRowsUpserted counts upserted ranking rows by kind.
	RankingRowsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_rows_upserted_total",
			Help: "Ranking rows upserted",
		},
		[]string{"kind"},
	)

	// HTTP metrics

	// HTTPRequestsTotal counts API requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "route"},
	)
)
