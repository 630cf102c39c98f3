// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "time"

// WeeklyClipRanking is one ranked clip row for a calendar week.
// Primary key is (WeekStart, SubmissionID); rows are upserted by the rankings
// engine and never deleted.
type WeeklyClipRanking struct {
	WeekStart    time.Time `json:"week_start"`
	WeekEnd      time.Time `json:"week_end"`
	SubmissionID string    `json:"submission_id"`
	Platform     Platform  `json:"platform"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Engagement   float64   `json:"engagement"`
	Rank         int       `json:"rank"`
}

// WeeklyCampaignRanking is one ranked campaign row for a calendar week.
// Primary key is (WeekStart, CampaignID).
type WeeklyCampaignRanking struct {
	WeekStart     time.Time `json:"week_start"`
	WeekEnd       time.Time `json:"week_end"`
	CampaignID    string    `json:"campaign_id"`
	TotalViews    int64     `json:"total_views"`
	TotalLikes    int64     `json:"total_likes"`
	AvgEngagement float64   `json:"avg_engagement"`
	ClipsCount    int       `json:"clips_count"`
	Rank          int       `json:"rank"`
}

// CampaignCacheRow is the locally mirrored campaign metadata, populated from
// campaign events or a pull from the campaign-service. Rows older than the
// staleness threshold (5 minutes) are refreshed on read.
type CampaignCacheRow struct {
	CampaignID string    `json:"campaign_id"`
	Title      string    `json:"title"`
	Status     string    `json:"status"`
	SyncedAt   time.Time `json:"synced_at"`
}
