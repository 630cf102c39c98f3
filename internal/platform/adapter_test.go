// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/models"
)

func TestRegistryKnowsAllPlatforms(t *testing.T) {
	r := NewRegistry(config.PlatformsConfig{YouTubeAPIKey: "key", FetchTimeout: time.Second})

	for _, p := range models.Platforms {
		if _, err := r.Adapter(p); err != nil {
			t.Errorf("Adapter(%s) returned error: %v", p, err)
		}
	}
	if _, err := r.Adapter(models.Platform("TWITCH")); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("Adapter(TWITCH) error = %v, want ErrUnknownPlatform", err)
	}
}

func TestYouTubeFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "abc123" {
			t.Errorf("id query = %q, want abc123", got)
		}
		if r.URL.Query().Get("key") == "" {
			t.Error("missing api key in query")
		}
		w.Write([]byte(`{"items":[{
			"statistics":{"viewCount":"1500","likeCount":"120","commentCount":"30"},
			"snippet":{"title":"Clip","channelTitle":"Creator","publishedAt":"2026-08-01T12:00:00Z",
				"thumbnails":{"high":{"url":"https://i.ytimg.com/t.jpg"}}}
		}]}`))
	}))
	defer srv.Close()

	a := NewYouTubeAdapter(srv.Client(), "test-key")
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if stats.Views != 1500 || stats.Likes != 120 || stats.Comments != 30 {
		t.Errorf("stats = %+v, want views=1500 likes=120 comments=30", stats)
	}
	if stats.Shares != 0 {
		t.Errorf("Shares = %d, want 0 (not exposed by youtube)", stats.Shares)
	}
	if stats.Title != "Clip" || stats.Author != "Creator" {
		t.Errorf("metadata = %q/%q, want Clip/Creator", stats.Title, stats.Author)
	}
	if stats.PublishedAt == nil || !stats.PublishedAt.Equal(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("PublishedAt = %v, want 2026-08-01T12:00:00Z", stats.PublishedAt)
	}
}

func TestYouTubeFetchMissingCountersAreZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[{"statistics":{"viewCount":"42"},"snippet":{"title":"x"}}]}`))
	}))
	defer srv.Close()

	a := NewYouTubeAdapter(srv.Client(), "test-key")
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "abc")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if stats.Views != 42 || stats.Likes != 0 || stats.Comments != 0 {
		t.Errorf("stats = %+v, want views=42 and missing counters zero", stats)
	}
}

func TestYouTubeFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	a := NewYouTubeAdapter(srv.Client(), "test-key")
	a.baseURL = srv.URL

	if _, err := a.Fetch(context.Background(), "gone"); !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("Fetch error = %v, want ErrVideoNotFound", err)
	}
}

func TestYouTubeFetchMissingAPIKey(t *testing.T) {
	a := NewYouTubeAdapter(http.DefaultClient, "")
	if _, err := a.Fetch(context.Background(), "abc"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Fetch error = %v, want ErrMissingAPIKey", err)
	}
}

func TestYouTubeFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	}))
	defer srv.Close()

	a := NewYouTubeAdapter(srv.Client(), "test-key")
	a.baseURL = srv.URL

	_, err := a.Fetch(context.Background(), "abc")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Fetch error = %v, want *UpstreamError", err)
	}
	if upstream.Status != http.StatusForbidden {
		t.Errorf("upstream status = %d, want 403", upstream.Status)
	}
}

func TestTikTokFetch(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Write([]byte(`{"data":{
			"play_count":98765,"digg_count":4321,"comment_count":210,"share_count":87,
			"title":"dance","cover":"https://p16.example/c.jpg","create_time":1754000000,
			"author":{"nickname":"someone"}
		}}`))
	}))
	defer srv.Close()

	a := NewTikTokAdapter(srv.Client())
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "7300000000000000000")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if gotURL != "https://www.tiktok.com/@tiktok/video/7300000000000000000" {
		t.Errorf("resolver url = %q, want synthesized canonical url", gotURL)
	}
	if stats.Views != 98765 || stats.Likes != 4321 || stats.Comments != 210 || stats.Shares != 87 {
		t.Errorf("stats = %+v, want 98765/4321/210/87", stats)
	}
	if stats.Author != "someone" {
		t.Errorf("Author = %q, want someone", stats.Author)
	}
	if stats.PublishedAt == nil {
		t.Error("PublishedAt is nil, want create_time mapped")
	}
}

func TestTikTokFetchFullURLPassedThrough(t *testing.T) {
	var gotURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Write([]byte(`{"data":{"play_count":1}}`))
	}))
	defer srv.Close()

	a := NewTikTokAdapter(srv.Client())
	a.baseURL = srv.URL

	in := "https://www.tiktok.com/@creator/video/123"
	if _, err := a.Fetch(context.Background(), in); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if gotURL != in {
		t.Errorf("resolver url = %q, want input passed through unchanged", gotURL)
	}
}

func TestTikTokFetchNoDataIsZeroStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":-1,"msg":"url invalid"}`))
	}))
	defer srv.Close()

	a := NewTikTokAdapter(srv.Client())
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "bad")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if stats.Views != 0 || stats.Likes != 0 || stats.Comments != 0 || stats.Shares != 0 {
		t.Errorf("stats = %+v, want all zero on missing data", stats)
	}
}

func TestInstagramFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		w.Write([]byte(`{"data":{
			"view_count":5000,"like_count":400,"comment_count":25,
			"caption":"reel","username":"ig_user","thumbnail_url":"https://ig/t.jpg"
		}}`))
	}))
	defer srv.Close()

	a := NewInstagramAdapter(srv.Client())
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "https://www.instagram.com/reel/xyz/")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if stats.Views != 5000 || stats.Likes != 400 || stats.Comments != 25 || stats.Shares != 0 {
		t.Errorf("stats = %+v, want 5000/400/25/0", stats)
	}
	if stats.Author != "ig_user" {
		t.Errorf("Author = %q, want ig_user", stats.Author)
	}
}

func TestInstagramFetchAnswersComputeChallenge(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Write([]byte(`{"error":"COMPUTE_REQUIRED","challenge":{"timestamp":"1756166400","expectedCompute":"deadbeef"}}`))
			return
		}
		if got := r.Header.Get("X-Compute"); got != "deadbeef" {
			t.Errorf("X-Compute = %q, want deadbeef", got)
		}
		if got := r.Header.Get("X-Timestamp"); got != "1756166400" {
			t.Errorf("X-Timestamp = %q, want 1756166400", got)
		}
		w.Write([]byte(`{"data":{"view_count":777,"like_count":7,"comment_count":1}}`))
	}))
	defer srv.Close()

	a := NewInstagramAdapter(srv.Client())
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "https://www.instagram.com/reel/xyz/")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (challenge then answer)", calls)
	}
	if stats.Views != 777 {
		t.Errorf("Views = %d, want 777", stats.Views)
	}
}

func TestInstagramFetchErrorsAreZeroStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	a := NewInstagramAdapter(srv.Client())
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "https://www.instagram.com/reel/xyz/")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if stats.Views != 0 || stats.Likes != 0 {
		t.Errorf("stats = %+v, want zeros on upstream error", stats)
	}
}

func TestExtractTweetID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://twitter.com/user/status/1234567890", "1234567890", false},
		{"https://x.com/user/status/987654321", "987654321", false},
		{"https://nitter.net/user/status/111222333", "111222333", false},
		{"https://x.com/user/status/555?s=20", "555", false},
		{"1234567890", "1234567890", false},
		{"https://x.com/user", "", true},
		{"not a url", "", true},
	}

	for _, tt := range tests {
		got, err := ExtractTweetID(tt.input)
		if tt.wantErr {
			if !errors.Is(err, ErrTweetURLParse) {
				t.Errorf("ExtractTweetID(%q) error = %v, want ErrTweetURLParse", tt.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ExtractTweetID(%q) returned error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ExtractTweetID(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTwitterFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "1234567890" {
			t.Errorf("id query = %q, want 1234567890", got)
		}
		w.Write([]byte(`{
			"text":"hello","user":{"name":"Poster"},"created_at":"2026-08-20T09:00:00Z",
			"impression_count":20000,"favorite_count":800,"conversation_count":60,
			"retweet_count":90,"quote_count":10,
			"mediaDetails":[{"media_url_https":"https://pbs.twimg.com/m.jpg"}]
		}`))
	}))
	defer srv.Close()

	a := NewTwitterAdapter(srv.Client())
	a.baseURL = srv.URL

	stats, err := a.Fetch(context.Background(), "https://x.com/user/status/1234567890")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if stats.Views != 20000 || stats.Likes != 800 || stats.Comments != 60 {
		t.Errorf("stats = %+v, want 20000/800/60", stats)
	}
	if stats.Shares != 100 {
		t.Errorf("Shares = %d, want retweets+quotes = 100", stats.Shares)
	}
	if stats.Author != "Poster" {
		t.Errorf("Author = %q, want Poster", stats.Author)
	}
}

func TestTwitterFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	a := NewTwitterAdapter(srv.Client())
	a.baseURL = srv.URL

	if _, err := a.Fetch(context.Background(), "123"); !errors.Is(err, ErrVideoNotFound) {
		t.Errorf("Fetch error = %v, want ErrVideoNotFound", err)
	}
}

func TestTwitterFetchBadURL(t *testing.T) {
	a := NewTwitterAdapter(http.DefaultClient)
	if _, err := a.Fetch(context.Background(), "https://example.com/nope"); !errors.Is(err, ErrTweetURLParse) {
		t.Errorf("Fetch error = %v, want ErrTweetURLParse", err)
	}
}

func TestClampNonNegative(t *testing.T) {
	if got := clampNonNegative(-5); got != 0 {
		t.Errorf("clampNonNegative(-5) = %d, want 0", got)
	}
	if got := clampNonNegative(7); got != 7 {
		t.Errorf("clampNonNegative(7) = %d, want 7", got)
	}
}
