// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api exposes the read-side HTTP surface: stats lookups and
// refresh triggers, the weekly leaderboards, and the operational
// endpoints.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clipdeck/statistics-service/internal/config"
)

// ReadinessCheck probes one dependency for /ready.
type ReadinessCheck func(ctx context.Context) error

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Clips     ClipResolver
	Stats     StatsService
	Rankings  RankingReader
	Calc      RankingCalculator
	Detection DetectionRunner

	// Readiness maps a dependency name to its probe.
	Readiness map[string]ReadinessCheck
}

// NewRouter builds the service router.
func NewRouter(cfg *config.Config, deps Deps) *chi.Mux {
	h := &handlers{
		clips:        deps.Clips,
		stats:        deps.Stats,
		rankings:     deps.Rankings,
		calc:         deps.Calc,
		detection:    deps.Detection,
		validate:     validator.New(),
		maxBatchSize: cfg.Stats.MaxBatchSize,
	}
	auth := newAuthenticator(cfg.Security.JWTSecret)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(correlationMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow))
	r.Use(observeMiddleware)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(deps.Readiness))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/stats", func(r chi.Router) {
		r.Get("/{clipID}", h.getStats)
		r.With(auth.RequireAuth).Post("/refresh/{clipID}", h.refreshStats)
		r.With(auth.RequireStaff).Post("/batch-refresh", h.batchRefresh)
	})

	r.Route("/rankings", func(r chi.Router) {
		r.Get("/weekly-clips", h.weeklyClips)
		r.Get("/weekly-campaigns", h.weeklyCampaigns)
		r.With(auth.RequireStaff).Post("/calculate", h.calculateRankings)
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyHandler probes every dependency and reports 503 when any fails.
func readyHandler(checks map[string]ReadinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		result := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				result[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		writeJSON(w, status, result)
	}
}
