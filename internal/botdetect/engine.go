// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package botdetect implements the statistical engine that inspects a
// clip's engagement history for purchased-traffic signatures. The engine is
// pure: it never performs I/O, so every rule is testable with a literal
// history slice.
package botdetect

import (
	"math"

	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/models"
)

// rule is one detection check. Each rule gates itself on a minimum history
// length and emits at most one flag.
type rule func(history []models.StatsHistoryEntry, t Thresholds) *BotFlag

// rules in evaluation order. The order is stable because the published
// event carries the first significant flag.
var rules = []rule{
	detectViewsSpike,
	detectLikesSpike,
	detectCommentsSpike,
	detectEngagementRatio,
	detectZeroVariance,
	detectVelocityAnomaly,
	detectRatioAnomaly,
	detectSuddenStop,
	detectTimePattern,
}

// Detect runs all rules over a newest-first history. Histories shorter
// than two samples carry no signal and yield an empty result.
func Detect(history []models.StatsHistoryEntry, platform models.Platform) Result {
	metrics.DetectionRuns.Inc()

	if len(history) < 2 {
		return Result{HasAnomalies: false, Flags: []BotFlag{}, ConfidenceScore: 0}
	}

	thresholds := ThresholdsFor(platform)
	flags := make([]BotFlag, 0, 4)
	for _, r := range rules {
		if flag := r(history, thresholds); flag != nil {
			flags = append(flags, *flag)
			metrics.DetectionFlags.WithLabelValues(string(flag.Type), string(flag.Severity)).Inc()
		}
	}

	if len(flags) == 0 {
		return Result{HasAnomalies: false, Flags: flags, ConfidenceScore: 0}
	}

	var sum int
	for _, f := range flags {
		sum += f.Confidence
	}
	score := int(math.Round(float64(sum) / float64(len(flags))))

	return Result{HasAnomalies: true, Flags: flags, ConfidenceScore: score}
}
