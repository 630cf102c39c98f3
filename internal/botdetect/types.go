// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package botdetect

// FlagType identifies which detection rule fired.
type FlagType string

// Flag types, one per rule.
const (
	FlagViewsSpike      FlagType = "VIEWS_SPIKE"
	FlagLikesSpike      FlagType = "LIKES_SPIKE"
	FlagCommentsSpike   FlagType = "COMMENTS_SPIKE"
	FlagEngagementRatio FlagType = "ENGAGEMENT_RATIO"
	FlagZeroVariance    FlagType = "ZERO_VARIANCE"
	FlagVelocityAnomaly FlagType = "VELOCITY_ANOMALY"
	FlagRatioAnomaly    FlagType = "RATIO_ANOMALY"
	FlagSuddenStop      FlagType = "SUDDEN_STOP"
	FlagTimePattern     FlagType = "TIME_PATTERN"
)

// Severity grades a flag. Only HIGH and MEDIUM flags trigger a
// stats.bot_detected event.
type Severity string

// Severities in decreasing order of concern.
const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

// Significant reports whether the severity warrants publishing an event.
func (s Severity) Significant() bool {
	return s == SeverityHigh || s == SeverityMedium
}

// BotFlag is one rule's finding. Confidence is a 0-100 integer.
type BotFlag struct {
	Type        FlagType `json:"type"`
	Severity    Severity `json:"severity"`
	Confidence  int      `json:"confidence"`
	Description string   `json:"description"`
}

// Result is the outcome of a full detection run. ConfidenceScore is the
// rounded mean of flag confidences, zero when no flags fired.
type Result struct {
	HasAnomalies    bool      `json:"hasAnomalies"`
	Flags           []BotFlag `json:"flags"`
	ConfidenceScore int       `json:"confidenceScore"`
}

// FirstSignificant returns the first HIGH or MEDIUM flag in rule order, or
// nil when none fired.
func (r *Result) FirstSignificant() *BotFlag {
	for i := range r.Flags {
		if r.Flags[i].Severity.Significant() {
			return &r.Flags[i]
		}
	}
	return nil
}
