// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/models"
)

// DefaultTikTokBaseURL is the tikwm.com resolver endpoint.
const DefaultTikTokBaseURL = "https://www.tikwm.com/api/"

// TikTokAdapter fetches video statistics through the tikwm.com resolver.
//
// Failure policy: best-effort scrape. Transport failures and non-2xx
// responses return errors; a 2xx response without a data object means the
// resolver could not find the video and yields all-zero stats so batch
// refreshes keep moving.
type TikTokAdapter struct {
	client  *http.Client
	baseURL string
}

// NewTikTokAdapter creates a TikTok adapter.
func NewTikTokAdapter(client *http.Client) *TikTokAdapter {
	return &TikTokAdapter{client: client, baseURL: DefaultTikTokBaseURL}
}

// Platform returns models.PlatformTikTok.
func (a *TikTokAdapter) Platform() models.Platform {
	return models.PlatformTikTok
}

// tiktokResponse mirrors the subset of the tikwm response we read.
type tiktokResponse struct {
	Data *struct {
		PlayCount    int64  `json:"play_count"`
		DiggCount    int64  `json:"digg_count"`
		CommentCount int64  `json:"comment_count"`
		ShareCount   int64  `json:"share_count"`
		Title        string `json:"title"`
		Cover        string `json:"cover"`
		CreateTime   int64  `json:"create_time"`
		Author       *struct {
			Nickname string `json:"nickname"`
		} `json:"author"`
	} `json:"data"`
}

// Fetch retrieves statistics for a TikTok video. The argument may be a full
// video URL or a bare video ID; bare IDs are wrapped in a canonical URL
// before resolution.
func (a *TikTokAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	videoURL := videoID
	if !strings.Contains(videoURL, "tiktok.com") {
		videoURL = fmt.Sprintf("https://www.tiktok.com/@tiktok/video/%s", videoID)
	}

	endpoint := a.baseURL + "?url=" + url.QueryEscape(videoURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("tiktok: build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiktok: fetch %s: %w", videoID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("tiktok: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Platform: models.PlatformTikTok, Status: resp.StatusCode, Message: truncate(string(body), 200)}
	}

	var parsed tiktokResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("tiktok: decode response: %w", err)
	}
	if parsed.Data == nil {
		// Resolver found no document; soft failure by policy.
		logging.Ctx(ctx).Debug().Str("video_id", videoID).Msg("tiktok resolver returned no data")
		return &models.PlatformStats{}, nil
	}

	d := parsed.Data
	stats := &models.PlatformStats{
		Views:        clampNonNegative(d.PlayCount),
		Likes:        clampNonNegative(d.DiggCount),
		Comments:     clampNonNegative(d.CommentCount),
		Shares:       clampNonNegative(d.ShareCount),
		Title:        d.Title,
		ThumbnailURL: d.Cover,
	}
	if d.Author != nil {
		stats.Author = d.Author.Nickname
	}
	if d.CreateTime > 0 {
		published := time.Unix(d.CreateTime, 0).UTC()
		stats.PublishedAt = &published
	}
	return stats, nil
}
