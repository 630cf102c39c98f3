// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models defines the shared domain types for the statistics service:
// platform identifiers, engagement counter tuples, stats histories, and the
// weekly ranking rows persisted by the rankings engine.
package models

import "strings"

// Platform identifies one of the supported video platforms.
type Platform string

const (
	PlatformYouTube   Platform = "YOUTUBE"
	PlatformTikTok    Platform = "TIKTOK"
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformTwitter   Platform = "TWITTER"
)

// Platforms lists all supported platforms in a stable order.
var Platforms = []Platform{
	PlatformYouTube,
	PlatformTikTok,
	PlatformInstagram,
	PlatformTwitter,
}

// ParsePlatform normalizes a platform string (case-insensitive) to a Platform.
// Returns false when the platform is not one of the four supported values.
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(strings.ToUpper(strings.TrimSpace(s))) {
	case PlatformYouTube:
		return PlatformYouTube, true
	case PlatformTikTok:
		return PlatformTikTok, true
	case PlatformInstagram:
		return PlatformInstagram, true
	case PlatformTwitter:
		return PlatformTwitter, true
	default:
		return "", false
	}
}

// String returns the canonical uppercase platform name.
func (p Platform) String() string {
	return string(p)
}
