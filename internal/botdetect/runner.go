// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"context"
	"strings"

	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/logging"
)

// HistoryFetcher pulls a clip's engagement history and identity fields.
type HistoryFetcher interface {
	StatsHistory(ctx context.Context, clipID string) (*clipclient.ClipHistory, error)
}

// AlertPublisher announces significant detections. Confidence is scaled to
// [0,1] for the event payload.
type AlertPublisher interface {
	PublishBotDetected(ctx context.Context, clipID, campaignID, userID string, flagType string, confidence float64, evidence string) error
}

// Runner wires the pure engine to the clip-service and the event bus.
type Runner struct {
	fetcher   HistoryFetcher
	publisher AlertPublisher
}

// NewRunner creates a detection runner.
func NewRunner(fetcher HistoryFetcher, publisher AlertPublisher) *Runner {
	return &Runner{fetcher: fetcher, publisher: publisher}
}

// Run fetches a clip's history, runs detection and publishes
// stats.bot_detected when at least one HIGH or MEDIUM flag fired. History
// fetch failures are logged and yield an empty result; publish failures
// are logged and never propagated.
func (r *Runner) Run(ctx context.Context, clipID string) Result {
	history, err := r.fetcher.StatsHistory(ctx, clipID)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("clip_id", clipID).
			Msg("bot detection: history fetch failed")
		return Result{HasAnomalies: false, Flags: []BotFlag{}, ConfidenceScore: 0}
	}

	result := Detect(history.History, history.Platform)
	first := result.FirstSignificant()
	if first == nil {
		return result
	}

	var evidence []string
	for _, f := range result.Flags {
		if f.Severity.Significant() {
			evidence = append(evidence, string(f.Type)+": "+f.Description)
		}
	}

	err = r.publisher.PublishBotDetected(
		ctx,
		clipID,
		history.CampaignID,
		history.UserID,
		string(first.Type),
		float64(result.ConfidenceScore)/100,
		strings.Join(evidence, "; "),
	)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("clip_id", clipID).
			Msg("bot detection: publish failed")
	} else {
		logging.Ctx(ctx).Info().
			Str("clip_id", clipID).
			Str("flag_type", string(first.Type)).
			Int("confidence_score", result.ConfidenceScore).
			Msg("bot activity flagged")
	}
	return result
}
