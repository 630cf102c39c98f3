// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

import (
	"fmt"

	"github.com/clipdeck/statistics-service/internal/models"
)

// detectTimePattern flags view growth concentrated in one hour of the day.
// Organic audiences spread across time zones; a bot farm runs on a timer.
// Per-step view growth is bucketed by the hour of the newer sample and the
// hottest bucket is compared against the average of the occupied buckets.
func detectTimePattern(history []models.StatsHistoryEntry, _ Thresholds) *BotFlag {
	if len(history) < 24 {
		return nil
	}

	var buckets [24]float64
	var occupied [24]bool
	for i := 0; i+1 < len(history); i++ {
		hour := history[i].RecordedAt.UTC().Hour()
		buckets[hour] += float64(history[i].Views - history[i+1].Views)
		occupied[hour] = true
	}

	var maxBucket, sum float64
	maxHour, count := 0, 0
	for h := 0; h < 24; h++ {
		if !occupied[h] {
			continue
		}
		count++
		sum += buckets[h]
		if buckets[h] > maxBucket {
			maxBucket = buckets[h]
			maxHour = h
		}
	}
	if count == 0 {
		return nil
	}
	avgBucket := sum / float64(count)

	if maxBucket > 8*avgBucket && maxBucket > 5000 {
		return &BotFlag{
			Type:        FlagTimePattern,
			Severity:    SeverityMedium,
			Confidence:  70,
			Description: fmt.Sprintf("%.0f views concentrated at hour %02d UTC, %.1fx the hourly average", maxBucket, maxHour, maxBucket/avgBucket),
		}
	}
	return nil
}
