// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/clipdeck/statistics-service/internal/botdetect"
	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/models"
	"github.com/clipdeck/statistics-service/internal/stats"
)

const testSecret = "test-secret-at-least-16-chars"

type fakeClips struct {
	clips map[string]*clipclient.Clip
}

func (f *fakeClips) GetClip(_ context.Context, clipID string) (*clipclient.Clip, error) {
	clip, ok := f.clips[clipID]
	if !ok {
		return nil, clipclient.ErrNotFound
	}
	return clip, nil
}

type fakeStats struct {
	mu           sync.Mutex
	stats        *models.PlatformStats
	err          error
	refreshed    []string
	batchClips   []clipclient.Clip
	batchResult  stats.BatchResult
	fetchedCold  int
	refreshCalls int
}

func (f *fakeStats) GetOrFetchStats(_ context.Context, _ clipclient.Clip) (*models.PlatformStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchedCold++
	return f.stats, f.err
}

func (f *fakeStats) RefreshClipStats(_ context.Context, clip clipclient.Clip) (*models.PlatformStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshCalls++
	f.refreshed = append(f.refreshed, clip.ID)
	return f.stats, f.err
}

func (f *fakeStats) BatchRefreshStats(_ context.Context, clips []clipclient.Clip) (stats.BatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchClips = clips
	return f.batchResult, f.err
}

type fakeRankings struct {
	clipRows     []models.WeeklyClipRanking
	campaignRows []models.WeeklyCampaignRanking
	err          error

	gotWeek     time.Time
	gotPlatform models.Platform
	gotLimit    int
}

func (f *fakeRankings) ListClipRankings(_ context.Context, weekStart time.Time, platform models.Platform, limit int) ([]models.WeeklyClipRanking, error) {
	f.gotWeek, f.gotPlatform, f.gotLimit = weekStart, platform, limit
	return f.clipRows, f.err
}

func (f *fakeRankings) ListCampaignRankings(_ context.Context, weekStart time.Time, limit int) ([]models.WeeklyCampaignRanking, error) {
	f.gotWeek, f.gotLimit = weekStart, limit
	return f.campaignRows, f.err
}

type fakeCalc struct {
	mu    sync.Mutex
	runs  int
	weeks []time.Time
	done  chan struct{}
}

func (f *fakeCalc) RunAll(_ context.Context, weekStart time.Time) error {
	f.mu.Lock()
	f.runs++
	f.weeks = append(f.weeks, weekStart)
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
	}
	return nil
}

type fakeDetection struct {
	mu   sync.Mutex
	runs []string
	done chan struct{}
}

func (f *fakeDetection) Run(_ context.Context, clipID string) botdetect.Result {
	f.mu.Lock()
	f.runs = append(f.runs, clipID)
	f.mu.Unlock()
	if f.done != nil {
		close(f.done)
	}
	return botdetect.Result{}
}

func testConfig() *config.Config {
	return &config.Config{
		Stats: config.StatsConfig{MaxBatchSize: 3},
		Security: config.SecurityConfig{
			JWTSecret:       testSecret,
			AllowedOrigins:  []string{"*"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
	}
}

func mintToken(t *testing.T, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func newTestRouter(deps Deps) http.Handler {
	return NewRouter(testConfig(), deps)
}

func doRequest(t *testing.T, h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGetStats(t *testing.T) {
	clips := &fakeClips{clips: map[string]*clipclient.Clip{
		"clip-1": {ID: "clip-1", Platform: models.PlatformYouTube, PlatformVideoID: "vid-1"},
	}}
	svc := &fakeStats{stats: &models.PlatformStats{Views: 1000, Likes: 80, Comments: 20}}
	h := newTestRouter(Deps{Clips: clips, Stats: svc, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/stats/clip-1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var got statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got.ClipID != "clip-1" || got.Views != 1000 {
		t.Errorf("body = %+v, want clip-1 with 1000 views", got)
	}
	if got.Engagement != 0.1 {
		t.Errorf("Engagement = %v, want 0.1", got.Engagement)
	}
}

func TestGetStatsUnknownClip(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/stats/missing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestGetStatsClipWithoutVideoID(t *testing.T) {
	clips := &fakeClips{clips: map[string]*clipclient.Clip{
		"clip-1": {ID: "clip-1", Platform: models.PlatformTikTok},
	}}
	h := newTestRouter(Deps{Clips: clips, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/stats/clip-1", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRefreshStatsRequiresAuth(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodPost, "/stats/refresh/clip-1", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRefreshStatsRejectsBadToken(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodPost, "/stats/refresh/clip-1", "", "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestRefreshStatsTriggersDetection(t *testing.T) {
	clips := &fakeClips{clips: map[string]*clipclient.Clip{
		"clip-1": {ID: "clip-1", Platform: models.PlatformYouTube, PlatformVideoID: "vid-1"},
	}}
	svc := &fakeStats{stats: &models.PlatformStats{Views: 500}}
	detection := &fakeDetection{done: make(chan struct{})}
	h := newTestRouter(Deps{Clips: clips, Stats: svc, Rankings: &fakeRankings{}, Calc: &fakeCalc{}, Detection: detection})

	rec := doRequest(t, h, http.MethodPost, "/stats/refresh/clip-1", "", mintToken(t, "USER"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	svc.mu.Lock()
	refreshed := len(svc.refreshed)
	svc.mu.Unlock()
	if refreshed != 1 {
		t.Errorf("refresh calls = %d, want 1", refreshed)
	}

	select {
	case <-detection.done:
	case <-time.After(2 * time.Second):
		t.Fatal("bot detection was not triggered")
	}
	detection.mu.Lock()
	defer detection.mu.Unlock()
	if len(detection.runs) != 1 || detection.runs[0] != "clip-1" {
		t.Errorf("detection runs = %v, want [clip-1]", detection.runs)
	}
}

func TestBatchRefreshRequiresStaff(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})
	body := `{"clipIds":["clip-1"]}`

	rec := doRequest(t, h, http.MethodPost, "/stats/batch-refresh", body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = doRequest(t, h, http.MethodPost, "/stats/batch-refresh", body, mintToken(t, "USER"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-staff status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestBatchRefreshCountsUnresolvedClips(t *testing.T) {
	clips := &fakeClips{clips: map[string]*clipclient.Clip{
		"clip-1": {ID: "clip-1", Platform: models.PlatformYouTube, PlatformVideoID: "vid-1"},
		"clip-2": {ID: "clip-2", Platform: models.PlatformTikTok, PlatformVideoID: "vid-2"},
	}}
	svc := &fakeStats{batchResult: stats.BatchResult{Succeeded: 2}}
	h := newTestRouter(Deps{Clips: clips, Stats: svc, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	body := `{"clipIds":["clip-1","clip-2","missing"]}`
	rec := doRequest(t, h, http.MethodPost, "/stats/batch-refresh", body, mintToken(t, "STAFF"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var got map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if got["succeeded"] != 2 || got["failed"] != 1 {
		t.Errorf("result = %v, want succeeded=2 failed=1", got)
	}
	if len(svc.batchClips) != 2 {
		t.Errorf("batch received %d clips, want 2", len(svc.batchClips))
	}
}

func TestBatchRefreshValidation(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})
	token := mintToken(t, "ADMIN")

	tests := []struct {
		name string
		body string
	}{
		{"empty list", `{"clipIds":[]}`},
		{"missing field", `{}`},
		{"bad json", `{"clipIds":`},
		{"over max batch size", `{"clipIds":["a","b","c","d"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodPost, "/stats/batch-refresh", tt.body, token)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestWeeklyClips(t *testing.T) {
	rankings := &fakeRankings{clipRows: []models.WeeklyClipRanking{
		{SubmissionID: "sub-1", Platform: models.PlatformTikTok, Views: 9000, Rank: 1},
		{SubmissionID: "sub-2", Platform: models.PlatformTikTok, Views: 5000, Rank: 2},
	}}
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: rankings, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/rankings/weekly-clips?weekStart=2026-08-24&platform=tiktok&limit=10", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var rows []models.WeeklyClipRanking
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(rows) != 2 || rows[0].SubmissionID != "sub-1" {
		t.Errorf("rows = %+v, want sub-1 first of 2", rows)
	}

	if rankings.gotPlatform != models.PlatformTikTok {
		t.Errorf("platform filter = %q, want TIKTOK", rankings.gotPlatform)
	}
	if rankings.gotLimit != 10 {
		t.Errorf("limit = %d, want 10", rankings.gotLimit)
	}
	wantWeek := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	if !rankings.gotWeek.Equal(wantWeek) {
		t.Errorf("weekStart = %v, want %v", rankings.gotWeek, wantWeek)
	}
}

func TestWeeklyClipsEmptyWeekIsEmptyArray(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/rankings/weekly-clips", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestWeeklyClipsRejectsBadQuery(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	tests := []struct {
		name   string
		target string
	}{
		{"bad week", "/rankings/weekly-clips?weekStart=24-08-2026"},
		{"bad platform", "/rankings/weekly-clips?platform=TWITCH"},
		{"limit zero", "/rankings/weekly-clips?limit=0"},
		{"limit too big", "/rankings/weekly-clips?limit=500"},
		{"limit not a number", "/rankings/weekly-clips?limit=ten"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, h, http.MethodGet, tt.target, "", "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestWeeklyCampaigns(t *testing.T) {
	rankings := &fakeRankings{campaignRows: []models.WeeklyCampaignRanking{
		{CampaignID: "camp-1", TotalViews: 50000, Rank: 1},
	}}
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: rankings, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/rankings/weekly-campaigns?limit=25", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var rows []models.WeeklyCampaignRanking
	if err := json.Unmarshal(rec.Body.Bytes(), &rows); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(rows) != 1 || rows[0].CampaignID != "camp-1" {
		t.Errorf("rows = %+v, want camp-1", rows)
	}
	if rankings.gotLimit != 25 {
		t.Errorf("limit = %d, want 25", rankings.gotLimit)
	}
}

func TestCalculateRankings(t *testing.T) {
	calc := &fakeCalc{done: make(chan struct{})}
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: calc})

	rec := doRequest(t, h, http.MethodPost, "/rankings/calculate", `{"weekStart":"2026-08-17"}`, mintToken(t, "STAFF"))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusAccepted, rec.Body.String())
	}

	select {
	case <-calc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("ranking calculation was not triggered")
	}
	calc.mu.Lock()
	defer calc.mu.Unlock()
	wantWeek := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	if len(calc.weeks) != 1 || !calc.weeks[0].Equal(wantWeek) {
		t.Errorf("weeks = %v, want [%v]", calc.weeks, wantWeek)
	}
}

func TestCalculateRankingsRequiresStaff(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodPost, "/rankings/calculate", "", mintToken(t, "USER"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestHealth(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReady(t *testing.T) {
	deps := Deps{
		Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{},
		Readiness: map[string]ReadinessCheck{
			"redis":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return nil },
		},
	}
	h := newTestRouter(deps)

	rec := doRequest(t, h, http.MethodGet, "/ready", "", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyReportsFailedDependency(t *testing.T) {
	deps := Deps{
		Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{},
		Readiness: map[string]ReadinessCheck{
			"redis":    func(context.Context) error { return nil },
			"postgres": func(context.Context) error { return fmt.Errorf("connection refused") },
		},
	}
	h := newTestRouter(deps)

	rec := doRequest(t, h, http.MethodGet, "/ready", "", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body["redis"] != "ok" || body["postgres"] != "connection refused" {
		t.Errorf("body = %v, want redis ok and postgres failing", body)
	}
}

func TestInternalErrorsDoNotLeakDetails(t *testing.T) {
	clips := &fakeClips{clips: map[string]*clipclient.Clip{
		"clip-1": {ID: "clip-1", Platform: models.PlatformYouTube, PlatformVideoID: "vid-1"},
	}}
	svc := &fakeStats{err: errors.New("pgx: connection reset by peer at 10.0.0.5")}
	h := newTestRouter(Deps{Clips: clips, Stats: svc, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/stats/clip-1", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if strings.Contains(rec.Body.String(), "10.0.0.5") {
		t.Errorf("response leaked internal error detail: %s", rec.Body.String())
	}
}

func TestCorrelationIDEchoed(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "corr-123" {
		t.Errorf("X-Correlation-ID = %q, want corr-123", got)
	}
}

func TestCorrelationIDGenerated(t *testing.T) {
	h := newTestRouter(Deps{Clips: &fakeClips{}, Stats: &fakeStats{}, Rankings: &fakeRankings{}, Calc: &fakeCalc{}})

	rec := doRequest(t, h, http.MethodGet, "/health", "", "")
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected a generated X-Correlation-ID header")
	}
}

func TestClaimsIsStaff(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"STAFF", true},
		{"staff", true},
		{"ADMIN", true},
		{"USER", false},
		{"", false},
	}
	for _, tt := range tests {
		claims := &Claims{Role: tt.role}
		if got := claims.IsStaff(); got != tt.want {
			t.Errorf("IsStaff(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
