// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"fmt"

	"github.com/clipdeck/statistics-service/internal/models"
)

// detectSuddenStop flags view growth that collapses to under a tenth of
// its previous level, the signature of a bot contract expiring. Compares
// the most recent six samples against the six before them.
func detectSuddenStop(history []models.StatsHistoryEntry, _ Thresholds) *BotFlag {
	if len(history) < 12 {
		return nil
	}

	recentAvg := mean(viewDeltas(history[0:6]))
	previousAvg := mean(viewDeltas(history[6:12]))

	if previousAvg > 500 && recentAvg < 0.1*previousAvg {
		return &BotFlag{
			Type:        FlagSuddenStop,
			Severity:    SeverityMedium,
			Confidence:  70,
			Description: fmt.Sprintf("view growth fell from %.0f to %.0f per period", previousAvg, recentAvg),
		}
	}
	return nil
}
