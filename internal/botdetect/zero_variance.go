// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"fmt"
	"math"

	"github.com/clipdeck/statistics-service/internal/models"
)

// detectZeroVariance flags suspiciously uniform view growth. Organic
// traffic is bursty; a growth-rate series with a coefficient of variation
// under 0.1 means a scheduler is feeding views at a fixed rate. The mean
// per-step delta floor keeps dormant clips (a handful of views per period)
// from qualifying.
func detectZeroVariance(history []models.StatsHistoryEntry, _ Thresholds) *BotFlag {
	if len(history) < 5 {
		return nil
	}

	rates := make([]float64, 0, len(history)-1)
	for _, r := range viewGrowthRates(history) {
		if math.IsInf(r, 0) {
			continue
		}
		rates = append(rates, r)
	}
	if len(rates) < 5 {
		return nil
	}

	m := mean(rates)
	if m == 0 {
		return nil
	}
	cv := stdev(rates) / math.Abs(m)
	meanDelta := mean(viewDeltas(history))

	if cv < 0.1 && meanDelta > 20 {
		return &BotFlag{
			Type:        FlagZeroVariance,
			Severity:    SeverityHigh,
			Confidence:  95,
			Description: fmt.Sprintf("view growth variation %.3f below 0.1 across %d periods", cv, len(rates)),
		}
	}
	return nil
}
