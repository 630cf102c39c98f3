// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package models

import "time"

// PlatformStats is the normalized counter tuple returned by a platform
// adapter. Counters are always non-negative; adapters clamp anything the
// upstream reports as negative. The metadata fields are optional and may be
// empty depending on what the platform exposes.
type PlatformStats struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`

	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Title        string     `json:"title,omitempty"`
	Author       string     `json:"author,omitempty"`
	PublishedAt  *time.Time `json:"published_at,omitempty"`
}

// Engagement returns the engagement ratio (likes + comments) / views.
// Returns 0 when views is zero so callers never divide by zero.
func (s *PlatformStats) Engagement() float64 {
	if s.Views <= 0 {
		return 0
	}
	return float64(s.Likes+s.Comments) / float64(s.Views)
}

// StatsHistoryEntry is one point in a clip's engagement time series as served
// by the clip-service. Histories are ordered newest-first: index 0 is the most
// recent snapshot and entry[i] - entry[i+1] is positive growth.
type StatsHistoryEntry struct {
	Views      int64     `json:"views"`
	Likes      int64     `json:"likes"`
	Comments   int64     `json:"comments"`
	Shares     int64     `json:"shares"`
	RecordedAt time.Time `json:"recorded_at"`
}
