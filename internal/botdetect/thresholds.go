// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"github.com/clipdeck/statistics-service/internal/models"
)

// SpikeThresholds holds the high/medium growth-rate percentages for one
// counter.
type SpikeThresholds struct {
	High   float64
	Medium float64
}

// RatioThresholds holds the high/medium engagement-ratio cutoffs.
type RatioThresholds struct {
	High   float64
	Medium float64
}

// Thresholds are the per-platform tuning constants. MinViews is the
// absolute activation floor that keeps tiny clips from tripping
// percentage-based rules.
type Thresholds struct {
	ViewsSpike      SpikeThresholds
	LikesSpike      SpikeThresholds
	CommentsSpike   SpikeThresholds
	EngagementRatio RatioThresholds
	MinViews        int64
}

var platformThresholds = map[models.Platform]Thresholds{
	models.PlatformTikTok: {
		ViewsSpike:      SpikeThresholds{High: 800, Medium: 300},
		LikesSpike:      SpikeThresholds{High: 400, Medium: 200},
		CommentsSpike:   SpikeThresholds{High: 500, Medium: 250},
		EngagementRatio: RatioThresholds{High: 0.40, Medium: 0.25},
		MinViews:        500,
	},
	models.PlatformInstagram: {
		ViewsSpike:      SpikeThresholds{High: 600, Medium: 250},
		LikesSpike:      SpikeThresholds{High: 350, Medium: 180},
		CommentsSpike:   SpikeThresholds{High: 450, Medium: 220},
		EngagementRatio: RatioThresholds{High: 0.35, Medium: 0.20},
		MinViews:        300,
	},
	models.PlatformYouTube: {
		ViewsSpike:      SpikeThresholds{High: 700, Medium: 280},
		LikesSpike:      SpikeThresholds{High: 380, Medium: 190},
		CommentsSpike:   SpikeThresholds{High: 480, Medium: 240},
		EngagementRatio: RatioThresholds{High: 0.38, Medium: 0.22},
		MinViews:        400,
	},
	models.PlatformTwitter: {
		ViewsSpike:      SpikeThresholds{High: 700, Medium: 280},
		LikesSpike:      SpikeThresholds{High: 380, Medium: 190},
		CommentsSpike:   SpikeThresholds{High: 480, Medium: 240},
		EngagementRatio: RatioThresholds{High: 0.38, Medium: 0.22},
		MinViews:        400,
	},
}

// ThresholdsFor returns the tuning constants for a platform. Unknown
// platforms fall back to the YouTube profile.
func ThresholdsFor(p models.Platform) Thresholds {
	if t, ok := platformThresholds[p]; ok {
		return t
	}
	return platformThresholds[models.PlatformYouTube]
}
