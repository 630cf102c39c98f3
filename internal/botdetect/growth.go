// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"math"

	"github.com/clipdeck/statistics-service/internal/models"
)

// growthRate returns the percentage growth from prev to curr. Growth from
// zero is +Inf when curr is positive, 0 when both are zero.
func growthRate(prev, curr float64) float64 {
	if prev == 0 {
		if curr > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return (curr - prev) / prev * 100
}

// viewGrowthRates returns the per-step percentage growth of views across a
// newest-first history, newest step first.
func viewGrowthRates(history []models.StatsHistoryEntry) []float64 {
	rates := make([]float64, 0, len(history)-1)
	for i := 0; i+1 < len(history); i++ {
		rates = append(rates, growthRate(float64(history[i+1].Views), float64(history[i].Views)))
	}
	return rates
}

// viewDeltas returns the per-step absolute view growth across a
// newest-first history, newest step first.
func viewDeltas(history []models.StatsHistoryEntry) []float64 {
	deltas := make([]float64, 0, len(history)-1)
	for i := 0; i+1 < len(history); i++ {
		deltas = append(deltas, float64(history[i].Views-history[i+1].Views))
	}
	return deltas
}

// mean returns the arithmetic mean, 0 for an empty slice.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev returns the population standard deviation.
func stdev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
