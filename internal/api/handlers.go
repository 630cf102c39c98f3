// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/clipdeck/statistics-service/internal/botdetect"
	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/stats"
)

// ClipResolver fetches clips from the clip-service.
type ClipResolver interface {
	GetClip(ctx context.Context, clipID string) (*clipclient.Clip, error)
}

// StatsService is the collector surface the handlers use.
type StatsService interface {
	GetOrFetchStats(ctx context.Context, clip clipclient.Clip) (*models.PlatformStats, error)
	RefreshClipStats(ctx context.Context, clip clipclient.Clip) (*models.PlatformStats, error)
	BatchRefreshStats(ctx context.Context, clips []clipclient.Clip) (stats.BatchResult, error)
}

// RankingReader reads the persisted leaderboards.
type RankingReader interface {
	ListClipRankings(ctx context.Context, weekStart time.Time, platform models.Platform, limit int) ([]models.WeeklyClipRanking, error)
	ListCampaignRankings(ctx context.Context, weekStart time.Time, limit int) ([]models.WeeklyCampaignRanking, error)
}

// RankingCalculator triggers a recalculation.
type RankingCalculator interface {
	RunAll(ctx context.Context, weekStart time.Time) error
}

// DetectionRunner runs bot detection for one clip.
type DetectionRunner interface {
	Run(ctx context.Context, clipID string) botdetect.Result
}

// handlers carries the service dependencies for the HTTP surface.
type handlers struct {
	clips     ClipResolver
	stats     StatsService
	rankings  RankingReader
	calc      RankingCalculator
	detection DetectionRunner
	validate  *validator.Validate

	maxBatchSize int
}

// statsResponse is the read-side stats shape.
type statsResponse struct {
	ClipID     string  `json:"clipId"`
	Views      int64   `json:"views"`
	Likes      int64   `json:"likes"`
	Comments   int64   `json:"comments"`
	Shares     int64   `json:"shares"`
	Engagement float64 `json:"engagement"`
}

func toStatsResponse(clipID string, s *models.PlatformStats) statsResponse {
	return statsResponse{
		ClipID:     clipID,
		Views:      s.Views,
		Likes:      s.Likes,
		Comments:   s.Comments,
		Shares:     s.Shares,
		Engagement: s.Engagement(),
	}
}

// getStats serves a clip's current stats, fetching from the platform only
// on a cache miss.
func (h *handlers) getStats(w http.ResponseWriter, r *http.Request) {
	clipID := chi.URLParam(r, "clipID")

	clip, err := h.clips.GetClip(r.Context(), clipID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if clip.PlatformVideoID == "" {
		writeError(w, r, &badRequest{msg: "clip has no platform video id"})
		return
	}

	s, err := h.stats.GetOrFetchStats(r.Context(), *clip)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toStatsResponse(clipID, s))
}

// refreshStats forces a platform fetch for one clip and kicks off bot
// detection in the background.
func (h *handlers) refreshStats(w http.ResponseWriter, r *http.Request) {
	clipID := chi.URLParam(r, "clipID")

	clip, err := h.clips.GetClip(r.Context(), clipID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if clip.PlatformVideoID == "" {
		writeError(w, r, &badRequest{msg: "clip has no platform video id"})
		return
	}

	s, err := h.stats.RefreshClipStats(r.Context(), *clip)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if h.detection != nil {
		detachedCtx := logging.ContextWithCorrelationID(context.Background(), logging.CorrelationIDFromContext(r.Context()))
		go h.detection.Run(detachedCtx, clipID)
	}

	writeJSON(w, http.StatusOK, toStatsResponse(clipID, s))
}

// batchRefreshRequest is the staff batch refresh body.
type batchRefreshRequest struct {
	ClipIDs []string `json:"clipIds" validate:"required,min=1,max=500,dive,required"`
}

// batchRefresh refreshes up to maxBatchSize clips. Clips that cannot be
// resolved count as failures without aborting the batch.
func (h *handlers) batchRefresh(w http.ResponseWriter, r *http.Request) {
	var req batchRefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, &badRequest{msg: "invalid json body"})
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeError(w, r, err)
		return
	}
	if h.maxBatchSize > 0 && len(req.ClipIDs) > h.maxBatchSize {
		writeError(w, r, &badRequest{msg: "batch exceeds maximum size"})
		return
	}

	var clips []clipclient.Clip
	unresolved := 0
	for _, clipID := range req.ClipIDs {
		clip, err := h.clips.GetClip(r.Context(), clipID)
		if err != nil || clip.PlatformVideoID == "" {
			unresolved++
			continue
		}
		clips = append(clips, *clip)
	}

	result, err := h.stats.BatchRefreshStats(r.Context(), clips)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"succeeded": result.Succeeded,
		"failed":    result.Failed + unresolved,
	})
}

// weeklyClips serves one week's clip leaderboard.
func (h *handlers) weeklyClips(w http.ResponseWriter, r *http.Request) {
	weekStart, err := parseWeekStart(r.URL.Query().Get("weekStart"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var platform models.Platform
	if raw := r.URL.Query().Get("platform"); raw != "" {
		parsed, ok := models.ParsePlatform(raw)
		if !ok {
			writeError(w, r, &badRequest{msg: "unknown platform " + raw})
			return
		}
		platform = parsed
	}

	rows, err := h.rankings.ListClipRankings(r.Context(), weekStart, platform, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.WeeklyClipRanking{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// weeklyCampaigns serves one week's campaign leaderboard.
func (h *handlers) weeklyCampaigns(w http.ResponseWriter, r *http.Request) {
	weekStart, err := parseWeekStart(r.URL.Query().Get("weekStart"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	rows, err := h.rankings.ListCampaignRankings(r.Context(), weekStart, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.WeeklyCampaignRanking{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// calculateRankings kicks off both weekly calculations in the background.
type calculateRequest struct {
	WeekStart string `json:"weekStart"`
}

func (h *handlers) calculateRankings(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, &badRequest{msg: "invalid json body"})
			return
		}
	}
	weekStart, err := parseWeekStart(req.WeekStart)
	if err != nil {
		writeError(w, r, err)
		return
	}

	detachedCtx := logging.ContextWithCorrelationID(context.Background(), logging.CorrelationIDFromContext(r.Context()))
	go func() {
		if err := h.calc.RunAll(detachedCtx, weekStart); err != nil {
			logging.Ctx(detachedCtx).Error().Err(err).Msg("manual rankings run failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "calculation started"})
}

// parseWeekStart parses an optional YYYY-MM-DD query value; empty means
// the current week.
func parseWeekStart(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, &badRequest{msg: "weekStart must be YYYY-MM-DD"}
	}
	return t, nil
}

// parseLimit parses an optional limit query value and enforces the 1-200
// range.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 200 {
		return 0, &badRequest{msg: "limit must be an integer between 1 and 200"}
	}
	return limit, nil
}
