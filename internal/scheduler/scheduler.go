// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scheduler drives the periodic work: the hourly stats refresh and
// the nightly ranking calculations. Job failures are logged and never
// crash the process; a slow run skips the next tick instead of stacking.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/stats"
)

// RefreshLister supplies the clips due for a refresh.
type RefreshLister interface {
	NeedsRefresh(ctx context.Context) ([]clipclient.Clip, error)
}

// BatchRefresher refreshes a batch of clips.
type BatchRefresher interface {
	BatchRefreshStats(ctx context.Context, clips []clipclient.Clip) (stats.BatchResult, error)
}

// RankingsRunner runs both weekly ranking calculations.
type RankingsRunner interface {
	RunAll(ctx context.Context, weekStart time.Time) error
}

// Scheduler owns the cron entries.
type Scheduler struct {
	cron         *cron.Cron
	cfg          config.SchedulerConfig
	lister       RefreshLister
	refresher    BatchRefresher
	rankings     RankingsRunner
	maxBatchSize int
}

// New creates a scheduler. maxBatchSize caps how many clips one hourly
// tick will refresh.
func New(cfg config.SchedulerConfig, lister RefreshLister, refresher BatchRefresher, rankings RankingsRunner, maxBatchSize int) *Scheduler {
	logger := &cronLogger{}
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		cfg:          cfg,
		lister:       lister,
		refresher:    refresher,
		rankings:     rankings,
		maxBatchSize: maxBatchSize,
	}
}

// Start registers the cron entries and begins ticking.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.RefreshCron, s.refreshTick); err != nil {
		return fmt.Errorf("register refresh cron %q: %w", s.cfg.RefreshCron, err)
	}
	if _, err := s.cron.AddFunc(s.cfg.RankingsCron, s.rankingsTick); err != nil {
		return fmt.Errorf("register rankings cron %q: %w", s.cfg.RankingsCron, err)
	}
	s.cron.Start()
	logging.Info().
		Str("refresh_cron", s.cfg.RefreshCron).
		Str("rankings_cron", s.cfg.RankingsCron).
		Msg("scheduler started")
	return nil
}

// Stop halts the cron ticker. In-flight jobs are abandoned at process
// exit.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// refreshTick pulls the needs-refresh list and refreshes it, capped at
// the configured batch size.
func (s *Scheduler) refreshTick() {
	ctx := logging.ContextWithCorrelationID(context.Background(), logging.GenerateCorrelationID())
	log := logging.Ctx(ctx)

	clips, err := s.lister.NeedsRefresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: needs-refresh fetch failed")
		return
	}
	if len(clips) == 0 {
		log.Debug().Msg("scheduler: no clips need refresh")
		return
	}
	if s.maxBatchSize > 0 && len(clips) > s.maxBatchSize {
		log.Warn().
			Int("listed", len(clips)).
			Int("cap", s.maxBatchSize).
			Msg("scheduler: capping refresh batch")
		clips = clips[:s.maxBatchSize]
	}

	result, err := s.refresher.BatchRefreshStats(ctx, clips)
	if err != nil {
		log.Error().Err(err).Msg("scheduler: batch refresh aborted")
		return
	}
	log.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("scheduler: hourly refresh done")
}

// rankingsTick runs both weekly ranking calculations for the current
// week.
func (s *Scheduler) rankingsTick() {
	ctx := logging.ContextWithCorrelationID(context.Background(), logging.GenerateCorrelationID())
	if err := s.rankings.RunAll(ctx, time.Time{}); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("scheduler: rankings run failed")
		return
	}
	logging.Ctx(ctx).Info().Msg("scheduler: rankings run done")
}

// cronLogger adapts zerolog to the cron logging interface.
type cronLogger struct{}

func (l *cronLogger) Info(msg string, keysAndValues ...any) {
	logging.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logging.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
