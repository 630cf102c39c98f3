// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package campaigns maintains the local mirror of campaign metadata.
// Rows arrive through campaign lifecycle events and are backfilled by a
// pull from the campaign-service when a lookup misses or goes stale.
package campaigns

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipdeck/statistics-service/internal/models"
)

// Repository stores campaign rows in the campaign_cache table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository over a connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Upsert writes a campaign row, refreshing synced_at.
func (r *Repository) Upsert(ctx context.Context, id, title, status string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaign_cache (id, title, status, synced_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			synced_at = EXCLUDED.synced_at`,
		id, title, status,
	)
	if err != nil {
		return fmt.Errorf("upsert campaign %s: %w", id, err)
	}
	return nil
}

// UpdateStatus changes a campaign's status, inserting a placeholder row
// when the created event was never seen.
func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaign_cache (id, title, status, synced_at)
		VALUES ($1, '', $2, now())
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			synced_at = EXCLUDED.synced_at`,
		id, status,
	)
	if err != nil {
		return fmt.Errorf("update campaign status %s: %w", id, err)
	}
	return nil
}

// Get reads one campaign row, (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id string) (*models.CampaignCacheRow, error) {
	var row models.CampaignCacheRow
	err := r.pool.QueryRow(ctx, `
		SELECT id, title, status, synced_at FROM campaign_cache WHERE id = $1`,
		id,
	).Scan(&row.CampaignID, &row.Title, &row.Status, &row.SyncedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign %s: %w", id, err)
	}
	return &row, nil
}
