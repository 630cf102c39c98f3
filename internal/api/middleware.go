// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/metrics"
)

// correlationMiddleware attaches a correlation ID to every request,
// honoring one supplied by the caller.
func correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = logging.GenerateCorrelationID()
		}
		ctx := logging.ContextWithCorrelationID(r.Context(), correlationID)
		w.Header().Set("X-Correlation-ID", correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// observeMiddleware records request logs and Prometheus metrics with the
// chi route pattern as the label, not the raw path.
func observeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(elapsed.Seconds())

		logging.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", ww.Status()).
			Dur("took", elapsed).
			Msg("request handled")
	})
}
