// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package clipclient

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// ClipClient talks to the clip-service.
type ClipClient struct {
	peer *peerClient
}

// NewClipClient creates a clip-service client.
func NewClipClient(baseURL string, timeout time.Duration) *ClipClient {
	return &ClipClient{peer: newPeerClient("clip-service", baseURL, timeout)}
}

// GetClip fetches one clip by ID.
func (c *ClipClient) GetClip(ctx context.Context, clipID string) (*Clip, error) {
	var clip Clip
	if err := c.peer.getJSON(ctx, "/clips/"+url.PathEscape(clipID), &clip); err != nil {
		return nil, err
	}
	return &clip, nil
}

// NeedsRefresh returns the clips whose cached stats are due for a refresh.
func (c *ClipClient) NeedsRefresh(ctx context.Context) ([]Clip, error) {
	var clips []Clip
	if err := c.peer.getJSON(ctx, "/clips/needs-refresh", &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// StatsHistory fetches a clip's engagement history, newest-first.
func (c *ClipClient) StatsHistory(ctx context.Context, clipID string) (*ClipHistory, error) {
	var history ClipHistory
	if err := c.peer.getJSON(ctx, "/clips/"+url.PathEscape(clipID)+"/stats-history", &history); err != nil {
		return nil, err
	}
	if history.ClipID == "" {
		history.ClipID = clipID
	}
	return &history, nil
}

// ApprovedForRankings fetches per-clip weekly aggregates for the given
// week. Dates are sent as YYYY-MM-DD.
func (c *ClipClient) ApprovedForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]ClipAggregate, error) {
	q := url.Values{}
	q.Set("weekStart", weekStart.Format("2006-01-02"))
	q.Set("weekEnd", weekEnd.Format("2006-01-02"))

	var aggregates []ClipAggregate
	if err := c.peer.getJSON(ctx, "/clips/approved-for-rankings?"+q.Encode(), &aggregates); err != nil {
		return nil, fmt.Errorf("approved-for-rankings: %w", err)
	}
	return aggregates, nil
}

// CampaignStatsForRankings fetches per-campaign weekly aggregates.
func (c *ClipClient) CampaignStatsForRankings(ctx context.Context, weekStart, weekEnd time.Time) ([]CampaignAggregate, error) {
	q := url.Values{}
	q.Set("weekStart", weekStart.Format("2006-01-02"))
	q.Set("weekEnd", weekEnd.Format("2006-01-02"))

	var aggregates []CampaignAggregate
	if err := c.peer.getJSON(ctx, "/clips/campaign-stats-for-rankings?"+q.Encode(), &aggregates); err != nil {
		return nil, fmt.Errorf("campaign-stats-for-rankings: %w", err)
	}
	return aggregates, nil
}
