// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package clipclient

import (
	"context"
	"net/url"
	"time"
)

// CampaignClient talks to the campaign-service.
type CampaignClient struct {
	peer *peerClient
}

// NewCampaignClient creates a campaign-service client.
func NewCampaignClient(baseURL string, timeout time.Duration) *CampaignClient {
	return &CampaignClient{peer: newPeerClient("campaign-service", baseURL, timeout)}
}

// GetCampaign fetches one campaign by ID.
func (c *CampaignClient) GetCampaign(ctx context.Context, campaignID string) (*Campaign, error) {
	var campaign Campaign
	if err := c.peer.getJSON(ctx, "/campaigns/"+url.PathEscape(campaignID), &campaign); err != nil {
		return nil, err
	}
	return &campaign, nil
}
