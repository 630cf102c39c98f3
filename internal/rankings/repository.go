// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package rankings

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clipdeck/statistics-service/internal/models"
)

// Repository persists and reads ranking rows in Postgres. Old-week rows
// are kept forever; the tables are the historical leaderboard record.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a repository over a connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertClipRankings writes ranked clip rows inside one transaction so a
// reader never sees a half-applied week. Rows are issued in rank order.
func (r *Repository) UpsertClipRankings(ctx context.Context, rows []models.WeeklyClipRanking) error {
	if len(rows) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			_, err := tx.Exec(ctx, `
				INSERT INTO weekly_clip_ranking
					(week_start, submission_id, week_end, platform, views, likes, engagement, rank)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (week_start, submission_id) DO UPDATE SET
					views = EXCLUDED.views,
					likes = EXCLUDED.likes,
					engagement = EXCLUDED.engagement,
					rank = EXCLUDED.rank`,
				row.WeekStart, row.SubmissionID, row.WeekEnd, string(row.Platform),
				row.Views, row.Likes, row.Engagement, row.Rank,
			)
			if err != nil {
				return fmt.Errorf("upsert clip ranking %s: %w", row.SubmissionID, err)
			}
		}
		return nil
	})
}

// UpsertCampaignRankings writes ranked campaign rows inside one
// transaction.
func (r *Repository) UpsertCampaignRankings(ctx context.Context, rows []models.WeeklyCampaignRanking) error {
	if len(rows) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			_, err := tx.Exec(ctx, `
				INSERT INTO weekly_campaign_ranking
					(week_start, campaign_id, week_end, total_views, total_likes, avg_engagement, clips_count, rank)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				ON CONFLICT (week_start, campaign_id) DO UPDATE SET
					total_views = EXCLUDED.total_views,
					total_likes = EXCLUDED.total_likes,
					avg_engagement = EXCLUDED.avg_engagement,
					clips_count = EXCLUDED.clips_count,
					rank = EXCLUDED.rank`,
				row.WeekStart, row.CampaignID, row.WeekEnd, row.TotalViews,
				row.TotalLikes, row.AvgEngagement, row.ClipsCount, row.Rank,
			)
			if err != nil {
				return fmt.Errorf("upsert campaign ranking %s: %w", row.CampaignID, err)
			}
		}
		return nil
	})
}

// ListClipRankings reads one week's clip leaderboard, best rank first.
// A zero weekStart means the current week; an empty platform means all
// platforms. Limit is clamped to [1, 200].
func (r *Repository) ListClipRankings(ctx context.Context, weekStart time.Time, platform models.Platform, limit int) ([]models.WeeklyClipRanking, error) {
	weekStart, _ = resolveWeek(weekStart)
	limit = clampLimit(limit)

	query := `
		SELECT week_start, submission_id, week_end, platform, views, likes, engagement, rank
		FROM weekly_clip_ranking
		WHERE week_start = $1`
	args := []any{weekStart}
	if platform != "" {
		query += ` AND platform = $2`
		args = append(args, string(platform))
	}
	query += fmt.Sprintf(` ORDER BY rank ASC LIMIT %d`, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clip rankings: %w", err)
	}
	defer rows.Close()

	var out []models.WeeklyClipRanking
	for rows.Next() {
		var row models.WeeklyClipRanking
		var plat string
		if err := rows.Scan(&row.WeekStart, &row.SubmissionID, &row.WeekEnd, &plat,
			&row.Views, &row.Likes, &row.Engagement, &row.Rank); err != nil {
			return nil, fmt.Errorf("scan clip ranking: %w", err)
		}
		row.Platform = models.Platform(plat)
		out = append(out, row)
	}
	return out, rows.Err()
}

// ListCampaignRankings reads one week's campaign leaderboard, best rank
// first.
func (r *Repository) ListCampaignRankings(ctx context.Context, weekStart time.Time, limit int) ([]models.WeeklyCampaignRanking, error) {
	weekStart, _ = resolveWeek(weekStart)
	limit = clampLimit(limit)

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT week_start, campaign_id, week_end, total_views, total_likes, avg_engagement, clips_count, rank
		FROM weekly_campaign_ranking
		WHERE week_start = $1
		ORDER BY rank ASC LIMIT %d`, limit),
		weekStart,
	)
	if err != nil {
		return nil, fmt.Errorf("list campaign rankings: %w", err)
	}
	defer rows.Close()

	var out []models.WeeklyCampaignRanking
	for rows.Next() {
		var row models.WeeklyCampaignRanking
		if err := rows.Scan(&row.WeekStart, &row.CampaignID, &row.WeekEnd, &row.TotalViews,
			&row.TotalLikes, &row.AvgEngagement, &row.ClipsCount, &row.Rank); err != nil {
			return nil, fmt.Errorf("scan campaign ranking: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func clampLimit(limit int) int {
	switch {
	case limit < 1:
		return 50
	case limit > 200:
		return 200
	default:
		return limit
	}
}
