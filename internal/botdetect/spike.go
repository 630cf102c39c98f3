// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"fmt"

	"github.com/clipdeck/statistics-service/internal/models"
)

// detectViewsSpike flags a single-period view jump. HIGH requires growth
// above the platform's high threshold and an absolute delta above twice
// MinViews; MEDIUM relaxes both by one tier.
func detectViewsSpike(history []models.StatsHistoryEntry, t Thresholds) *BotFlag {
	if len(history) < 2 {
		return nil
	}
	latest, previous := history[0], history[1]
	growth := growthRate(float64(previous.Views), float64(latest.Views))
	delta := latest.Views - previous.Views

	switch {
	case growth > t.ViewsSpike.High && delta > 2*t.MinViews:
		return &BotFlag{
			Type:        FlagViewsSpike,
			Severity:    SeverityHigh,
			Confidence:  90,
			Description: fmt.Sprintf("views grew %.0f%% in one period (+%d)", growth, delta),
		}
	case growth > t.ViewsSpike.Medium && delta > t.MinViews:
		return &BotFlag{
			Type:        FlagViewsSpike,
			Severity:    SeverityMedium,
			Confidence:  70,
			Description: fmt.Sprintf("views grew %.0f%% in one period (+%d)", growth, delta),
		}
	}
	return nil
}

// detectLikesSpike flags a single-period like jump.
func detectLikesSpike(history []models.StatsHistoryEntry, t Thresholds) *BotFlag {
	if len(history) < 2 {
		return nil
	}
	latest, previous := history[0], history[1]
	growth := growthRate(float64(previous.Likes), float64(latest.Likes))
	delta := latest.Likes - previous.Likes

	switch {
	case growth > t.LikesSpike.High && delta > 100:
		return &BotFlag{
			Type:        FlagLikesSpike,
			Severity:    SeverityHigh,
			Confidence:  85,
			Description: fmt.Sprintf("likes grew %.0f%% in one period (+%d)", growth, delta),
		}
	case growth > t.LikesSpike.Medium && delta > 50:
		return &BotFlag{
			Type:        FlagLikesSpike,
			Severity:    SeverityMedium,
			Confidence:  65,
			Description: fmt.Sprintf("likes grew %.0f%% in one period (+%d)", growth, delta),
		}
	}
	return nil
}

// detectCommentsSpike flags a single-period comment jump. Comments spike
// only at HIGH; low-volume comment noise makes a medium tier useless.
func detectCommentsSpike(history []models.StatsHistoryEntry, t Thresholds) *BotFlag {
	if len(history) < 2 {
		return nil
	}
	latest, previous := history[0], history[1]
	growth := growthRate(float64(previous.Comments), float64(latest.Comments))
	delta := latest.Comments - previous.Comments

	if growth > t.CommentsSpike.High && delta > 50 {
		return &BotFlag{
			Type:        FlagCommentsSpike,
			Severity:    SeverityHigh,
			Confidence:  88,
			Description: fmt.Sprintf("comments grew %.0f%% in one period (+%d)", growth, delta),
		}
	}
	return nil
}
