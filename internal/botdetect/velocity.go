// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"fmt"
	"math"

	"github.com/clipdeck/statistics-service/internal/models"
)

// detectVelocityAnomaly flags a sudden change in view acceleration. The
// velocity series is the per-step view delta; acceleration is its first
// difference. One acceleration sample dwarfing the average points at a
// purchased burst switching on or off.
func detectVelocityAnomaly(history []models.StatsHistoryEntry, _ Thresholds) *BotFlag {
	if len(history) < 5 {
		return nil
	}

	velocity := viewDeltas(history)
	accel := make([]float64, 0, len(velocity)-1)
	for i := 0; i+1 < len(velocity); i++ {
		accel = append(accel, velocity[i]-velocity[i+1])
	}
	if len(accel) == 0 {
		return nil
	}

	var maxAbs float64
	for _, a := range accel {
		if abs := math.Abs(a); abs > maxAbs {
			maxAbs = abs
		}
	}

	if maxAbs > 5*mean(accel) && maxAbs > 1000 {
		return &BotFlag{
			Type:        FlagVelocityAnomaly,
			Severity:    SeverityHigh,
			Confidence:  85,
			Description: fmt.Sprintf("view acceleration peak %.0f is %.1fx the average", maxAbs, maxAbs/math.Max(math.Abs(mean(accel)), 1)),
		}
	}
	return nil
}
