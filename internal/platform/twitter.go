// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package platform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/goccy/go-json"

	"github.com/clipdeck/statistics-service/internal/models"
)

// DefaultTwitterBaseURL is the tweet syndication CDN endpoint.
const DefaultTwitterBaseURL = "https://cdn.syndication.twimg.com"

// tweetIDPattern matches status URLs on twitter.com, x.com and nitter
// mirrors.
var tweetIDPattern = regexp.MustCompile(`(?:twitter\.com|x\.com|nitter\.[^/]+)/[^/]+/status/(\d+)`)

// bareTweetIDPattern matches an already-extracted numeric tweet ID.
var bareTweetIDPattern = regexp.MustCompile(`^\d+$`)

// TwitterAdapter fetches tweet statistics from the syndication CDN used by
// embedded tweets.
//
// Failure policy: contract endpoint. An unparseable URL is
// ErrTweetURLParse, a 404 is ErrVideoNotFound, and other non-2xx responses
// return UpstreamError so the caller can retry.
type TwitterAdapter struct {
	client  *http.Client
	baseURL string
}

// NewTwitterAdapter creates a Twitter adapter.
func NewTwitterAdapter(client *http.Client) *TwitterAdapter {
	return &TwitterAdapter{client: client, baseURL: DefaultTwitterBaseURL}
}

// Platform returns models.PlatformTwitter.
func (a *TwitterAdapter) Platform() models.Platform {
	return models.PlatformTwitter
}

// ExtractTweetID pulls the numeric tweet ID out of a status URL. Bare
// numeric IDs pass through unchanged.
func ExtractTweetID(raw string) (string, error) {
	if bareTweetIDPattern.MatchString(raw) {
		return raw, nil
	}
	m := tweetIDPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrTweetURLParse, raw)
	}
	return m[1], nil
}

// tweetResponse mirrors the subset of the syndication payload we read.
type tweetResponse struct {
	Text string `json:"text"`
	User struct {
		Name string `json:"name"`
	} `json:"user"`
	CreatedAt         time.Time `json:"created_at"`
	ImpressionCount   int64     `json:"impression_count"`
	FavoriteCount     int64     `json:"favorite_count"`
	ConversationCount int64     `json:"conversation_count"`
	RetweetCount      int64     `json:"retweet_count"`
	QuoteCount        int64     `json:"quote_count"`
	MediaDetails      []struct {
		MediaURLHTTPS string `json:"media_url_https"`
	} `json:"mediaDetails"`
}

// Fetch retrieves statistics for a tweet URL or bare tweet ID. Retweets and
// quotes are summed into Shares.
func (a *TwitterAdapter) Fetch(ctx context.Context, videoID string) (*models.PlatformStats, error) {
	tweetID, err := ExtractTweetID(videoID)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/tweet-result?id=%s&token=x", a.baseURL, tweetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("twitter: build request: %w", err)
	}
	req.Header.Set("User-Agent", instagramUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter: fetch %s: %w", tweetID, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("twitter: read body: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("tweet %s: %w", tweetID, ErrVideoNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{Platform: models.PlatformTwitter, Status: resp.StatusCode, Message: truncate(string(body), 200)}
	}

	var parsed tweetResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("twitter: decode response: %w", err)
	}

	stats := &models.PlatformStats{
		Views:    clampNonNegative(parsed.ImpressionCount),
		Likes:    clampNonNegative(parsed.FavoriteCount),
		Comments: clampNonNegative(parsed.ConversationCount),
		Shares:   clampNonNegative(parsed.RetweetCount) + clampNonNegative(parsed.QuoteCount),
		Title:    truncate(parsed.Text, 200),
		Author:   parsed.User.Name,
	}
	if len(parsed.MediaDetails) > 0 {
		stats.ThumbnailURL = parsed.MediaDetails[0].MediaURLHTTPS
	}
	if !parsed.CreatedAt.IsZero() {
		created := parsed.CreatedAt
		stats.PublishedAt = &created
	}
	return stats, nil
}
