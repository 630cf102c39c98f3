// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"fmt"

	"github.com/clipdeck/statistics-service/internal/models"
)

// detectEngagementRatio flags an implausible interactions-per-view ratio on
// the latest sample. A clip with zero views has ratio 0.
func detectEngagementRatio(history []models.StatsHistoryEntry, t Thresholds) *BotFlag {
	if len(history) < 2 {
		return nil
	}
	latest := history[0]

	var ratio float64
	if latest.Views > 0 {
		ratio = float64(latest.Likes+latest.Comments) / float64(latest.Views)
	}

	switch {
	case ratio > t.EngagementRatio.High && latest.Views > t.MinViews:
		return &BotFlag{
			Type:        FlagEngagementRatio,
			Severity:    SeverityHigh,
			Confidence:  92,
			Description: fmt.Sprintf("engagement ratio %.2f exceeds %.2f at %d views", ratio, t.EngagementRatio.High, latest.Views),
		}
	case ratio > t.EngagementRatio.Medium:
		return &BotFlag{
			Type:        FlagEngagementRatio,
			Severity:    SeverityMedium,
			Confidence:  75,
			Description: fmt.Sprintf("engagement ratio %.2f exceeds %.2f", ratio, t.EngagementRatio.Medium),
		}
	}
	return nil
}

// detectRatioAnomaly flags counter ratios that organic audiences do not
// produce: likes above 15% of views or comments above 5% of views on a clip
// with real traffic. Evaluated on the latest sample only.
func detectRatioAnomaly(history []models.StatsHistoryEntry, t Thresholds) *BotFlag {
	if len(history) < 5 {
		return nil
	}
	latest := history[0]
	if latest.Views < 100 {
		return nil
	}

	views := float64(latest.Views)
	likeRatio := float64(latest.Likes) / views
	commentRatio := float64(latest.Comments) / views

	switch {
	case likeRatio > 0.15 && latest.Views > 1000:
		return &BotFlag{
			Type:        FlagRatioAnomaly,
			Severity:    SeverityHigh,
			Confidence:  90,
			Description: fmt.Sprintf("like ratio %.3f exceeds 0.15 at %d views", likeRatio, latest.Views),
		}
	case commentRatio > 0.05 && latest.Views > 1000:
		return &BotFlag{
			Type:        FlagRatioAnomaly,
			Severity:    SeverityMedium,
			Confidence:  75,
			Description: fmt.Sprintf("comment ratio %.3f exceeds 0.05 at %d views", commentRatio, latest.Views),
		}
	}
	return nil
}
