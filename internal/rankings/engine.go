// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rankings computes the weekly clip and campaign leaderboards from
// pre-aggregated clip-service data and persists them as ranked rows.
package rankings

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/models"
)

// AggregateSource supplies the weekly aggregates rankings are computed
// from.
type AggregateSource interface {
	ApprovedForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]clipclient.ClipAggregate, error)
	CampaignStatsForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]clipclient.CampaignAggregate, error)
}

// Store persists ranked rows.
type Store interface {
	UpsertClipRankings(ctx context.Context, rows []models.WeeklyClipRanking) error
	UpsertCampaignRankings(ctx context.Context, rows []models.WeeklyCampaignRanking) error
}

// Engine runs the two weekly ranking calculations.
type Engine struct {
	source AggregateSource
	store  Store
}

// NewEngine creates a rankings engine.
func NewEngine(source AggregateSource, store Store) *Engine {
	return &Engine{source: source, store: store}
}

// WeekBounds returns the Monday 00:00 UTC start of the ISO week containing
// t, and the Sunday that ends it.
func WeekBounds(t time.Time) (weekStart, weekEnd time.Time) {
	t = t.UTC()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday is day 7 in ISO weeks
	}
	weekStart = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(weekday - 1))
	weekEnd = weekStart.AddDate(0, 0, 6)
	return weekStart, weekEnd
}

// CalculateClipRankings ranks the week's approved clips by views, breaking
// ties by engagement, and upserts the result. A zero weekStart means the
// current week. An empty aggregate set is a no-op.
func (e *Engine) CalculateClipRankings(ctx context.Context, weekStart time.Time) error {
	start := time.Now()
	defer func() {
		metrics.RankingRunDuration.WithLabelValues("clips").Observe(time.Since(start).Seconds())
	}()

	weekStart, weekEnd := resolveWeek(weekStart)
	aggregates, err := e.source.ApprovedForRankings(ctx, weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("clip rankings: %w", err)
	}
	if len(aggregates) == 0 {
		logging.Ctx(ctx).Debug().Time("week_start", weekStart).Msg("no clips to rank this week")
		return nil
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		if aggregates[i].Views != aggregates[j].Views {
			return aggregates[i].Views > aggregates[j].Views
		}
		return aggregates[i].Engagement > aggregates[j].Engagement
	})

	rows := make([]models.WeeklyClipRanking, len(aggregates))
	for i, agg := range aggregates {
		rows[i] = models.WeeklyClipRanking{
			WeekStart:    weekStart,
			WeekEnd:      weekEnd,
			SubmissionID: agg.SubmissionID,
			Platform:     agg.Platform,
			Views:        agg.Views,
			Likes:        agg.Likes,
			Engagement:   agg.Engagement,
			Rank:         i + 1,
		}
	}

	if err := e.store.UpsertClipRankings(ctx, rows); err != nil {
		return fmt.Errorf("clip rankings: %w", err)
	}
	metrics.RankingRowsUpserted.WithLabelValues("clips").Add(float64(len(rows)))
	logging.Ctx(ctx).Info().
		Time("week_start", weekStart).
		Int("rows", len(rows)).
		Msg("clip rankings calculated")
	return nil
}

// CalculateCampaignRankings ranks the week's campaigns by total views,
// breaking ties by average engagement.
func (e *Engine) CalculateCampaignRankings(ctx context.Context, weekStart time.Time) error {
	start := time.Now()
	defer func() {
		metrics.RankingRunDuration.WithLabelValues("campaigns").Observe(time.Since(start).Seconds())
	}()

	weekStart, weekEnd := resolveWeek(weekStart)
	aggregates, err := e.source.CampaignStatsForRankings(ctx, weekStart, weekEnd)
	if err != nil {
		return fmt.Errorf("campaign rankings: %w", err)
	}
	if len(aggregates) == 0 {
		logging.Ctx(ctx).Debug().Time("week_start", weekStart).Msg("no campaigns to rank this week")
		return nil
	}

	sort.SliceStable(aggregates, func(i, j int) bool {
		if aggregates[i].TotalViews != aggregates[j].TotalViews {
			return aggregates[i].TotalViews > aggregates[j].TotalViews
		}
		return aggregates[i].AvgEngagement > aggregates[j].AvgEngagement
	})

	rows := make([]models.WeeklyCampaignRanking, len(aggregates))
	for i, agg := range aggregates {
		rows[i] = models.WeeklyCampaignRanking{
			WeekStart:     weekStart,
			WeekEnd:       weekEnd,
			CampaignID:    agg.CampaignID,
			TotalViews:    agg.TotalViews,
			TotalLikes:    agg.TotalLikes,
			AvgEngagement: agg.AvgEngagement,
			ClipsCount:    agg.ClipsCount,
			Rank:          i + 1,
		}
	}

	if err := e.store.UpsertCampaignRankings(ctx, rows); err != nil {
		return fmt.Errorf("campaign rankings: %w", err)
	}
	metrics.RankingRowsUpserted.WithLabelValues("campaigns").Add(float64(len(rows)))
	logging.Ctx(ctx).Info().
		Time("week_start", weekStart).
		Int("rows", len(rows)).
		Msg("campaign rankings calculated")
	return nil
}

// RunAll runs both calculations concurrently and joins their errors.
func (e *Engine) RunAll(ctx context.Context, weekStart time.Time) error {
	var wg sync.WaitGroup
	var clipErr, campaignErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		clipErr = e.CalculateClipRankings(ctx, weekStart)
	}()
	go func() {
		defer wg.Done()
		campaignErr = e.CalculateCampaignRankings(ctx, weekStart)
	}()
	wg.Wait()

	if clipErr != nil {
		return clipErr
	}
	return campaignErr
}

func resolveWeek(weekStart time.Time) (time.Time, time.Time) {
	if weekStart.IsZero() {
		return WeekBounds(time.Now())
	}
	return WeekBounds(weekStart)
}
