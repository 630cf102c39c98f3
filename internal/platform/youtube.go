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
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/clipdeck/statistics-service/internal/models"
)

// DefaultYouTubeBaseURL is the YouTube Data API v3 base URL.
const DefaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// YouTubeAdapter fetches video statistics from the YouTube Data API v3.
//
// Failure policy: contract endpoint. Missing API key is a configuration
// error, an empty items array is ErrVideoNotFound, and transport or decode
// failures return errors. Missing counter fields decode as zero. YouTube
// does not expose share counts, so Shares is always 0.
type YouTubeAdapter struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewYouTubeAdapter creates a YouTube adapter. The API key may be empty, in
// which case every Fetch fails with ErrMissingAPIKey.
func NewYouTubeAdapter(client *http.Client, apiKey string) *YouTubeAdapter {
	return &YouTubeAdapter{client: client, baseURL: DefaultYouTubeBaseURL, apiKey: apiKey}
}

// Platform returns models.PlatformYouTube.
func (a *YouTubeAdapter) Platform() models.Platform {
	return models.PlatformYouTube
}

// youtubeResponse mirrors the subset of the videos.list response we read.
type youtubeResponse struct {
	Items []struct {
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		Snippet struct {
			Title        string    `json:"title"`
			ChannelTitle string    `json:"channelTitle"`
			PublishedAt  time.Time `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

// Fetch retrieves statistics for a YouTube video ID.
func (a *YouTubeAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	if a.apiKey == "" {
		return nil, fmt.Errorf("youtube: %w", ErrMissingAPIKey)
	}

	q := url.Values{}
	q.Set("part", "statistics,snippet")
	q.Set("id", videoID)
	q.Set("key", a.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: fetch %s: %w", videoID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("youtube: read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Platform: models.PlatformYouTube, Status: resp.StatusCode, Message: truncate(string(body), 200)}
	}

	var parsed youtubeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("youtube: decode response: %w", err)
	}
	if len(parsed.Items) == 0 {
		return nil, fmt.Errorf("youtube video %s: %w", videoID, ErrVideoNotFound)
	}

	item := parsed.Items[0]
	stats := &models.PlatformStats{
		Views:        clampNonNegative(parseCount(item.Statistics.ViewCount)),
		Likes:        clampNonNegative(parseCount(item.Statistics.LikeCount)),
		Comments:     clampNonNegative(parseCount(item.Statistics.CommentCount)),
		Shares:       0, // not exposed by the YouTube Data API
		Title:        item.Snippet.Title,
		Author:       item.Snippet.ChannelTitle,
		ThumbnailURL: item.Snippet.Thumbnails.High.URL,
	}
	if !item.Snippet.PublishedAt.IsZero() {
		published := item.Snippet.PublishedAt
		stats.PublishedAt = &published
	}
	return stats, nil
}

// parseCount parses a decimal counter string; missing or malformed values
// count as zero per the API contract (absent fields mean the counter is
// hidden, not unknown).
func parseCount(s string) int64 {
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// truncate shortens s to at most n bytes for error messages.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
