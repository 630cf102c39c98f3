// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package campaigns

import (
	"context"
	"fmt"
	"time"

	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/models"
)

// staleAfter is the window after which a cached row is re-pulled from the
// campaign-service.
const staleAfter = 5 * time.Minute

// Store is the persistence surface the service needs.
type Store interface {
	Upsert(ctx context.Context, id, title, status string) error
	UpdateStatus(ctx context.Context, id, status string) error
	Get(ctx context.Context, id string) (*models.CampaignCacheRow, error)
}

// Puller fetches campaigns from the campaign-service on a cache miss.
type Puller interface {
	GetCampaign(ctx context.Context, campaignID string) (*clipclient.Campaign, error)
}

// Service keeps the campaign mirror current.
type Service struct {
	store  Store
	puller Puller
	now    func() time.Time
}

// NewService creates a campaign cache service.
func NewService(store Store, puller Puller) *Service {
	return &Service{store: store, puller: puller, now: time.Now}
}

// HandleCreated records a newly created campaign. New campaigns always
// start ACTIVE.
func (s *Service) HandleCreated(ctx context.Context, campaignID, title string) error {
	return s.store.Upsert(ctx, campaignID, title, "ACTIVE")
}

// HandleStatusChanged records a campaign status transition.
func (s *Service) HandleStatusChanged(ctx context.Context, campaignID, newStatus string) error {
	return s.store.UpdateStatus(ctx, campaignID, newStatus)
}

// Get returns campaign metadata, pulling from the campaign-service when
// the row is missing or older than the staleness window. When the pull
// fails a stale row is still served; a missing row propagates the error.
func (s *Service) Get(ctx context.Context, campaignID string) (*models.CampaignCacheRow, error) {
	cached, err := s.store.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if cached != nil && s.now().Sub(cached.SyncedAt) < staleAfter {
		return cached, nil
	}

	campaign, err := s.puller.GetCampaign(ctx, campaignID)
	if err != nil {
		if cached != nil {
			logging.Ctx(ctx).Warn().
				Err(err).
				Str("campaign_id", campaignID).
				Msg("campaign pull failed, serving stale row")
			return cached, nil
		}
		return nil, fmt.Errorf("pull campaign %s: %w", campaignID, err)
	}

	if err := s.store.Upsert(ctx, campaign.ID, campaign.Title, campaign.Status); err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("campaign_id", campaignID).
			Msg("campaign cache write failed, serving pulled row")
	}
	return &models.CampaignCacheRow{
		CampaignID: campaign.ID,
		Title:      campaign.Title,
		Status:     campaign.Status,
		SyncedAt:   s.now(),
	}, nil
}
