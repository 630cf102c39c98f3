// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package clipclient

import (
	"github.com/clipdeck/statistics-service/internal/models"
)

// Clip is the clip-service view of a submitted clip.
type Clip struct {
	ID              string          `json:"id"`
	CampaignID      string          `json:"campaignId"`
	UserID          string          `json:"userId"`
	Platform        models.Platform `json:"platform"`
	PlatformVideoID string          `json:"platformVideoId"`
	Status          string          `json:"status"`
}

// ClipHistory bundles a clip's engagement history with the identity fields
// bot detection needs for the published event.
type ClipHistory struct {
	ClipID     string                     `json:"clipId"`
	CampaignID string                     `json:"campaignId"`
	UserID     string                     `json:"userId"`
	Platform   models.Platform            `json:"platform"`
	History    []models.StatsHistoryEntry `json:"history"`
}

// ClipAggregate is one clip's pre-aggregated weekly totals from the
// clip-service rankings feed.
type ClipAggregate struct {
	SubmissionID string          `json:"submissionId"`
	Platform     models.Platform `json:"platform"`
	Views        int64           `json:"views"`
	Likes        int64           `json:"likes"`
	Engagement   float64         `json:"engagement"`
}

// CampaignAggregate is one campaign's pre-aggregated weekly totals.
type CampaignAggregate struct {
	CampaignID    string  `json:"campaignId"`
	TotalViews    int64   `json:"totalViews"`
	TotalLikes    int64   `json:"totalLikes"`
	AvgEngagement float64 `json:"avgEngagement"`
	ClipsCount    int     `json:"clipsCount"`
}

// Campaign is the campaign-service view of a campaign.
type Campaign struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}
