// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/models"
)

// Publisher wraps a Watermill publisher with the service's typed events.
type Publisher struct {
	pub message.Publisher
}

// NewPublisher creates a typed publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub}
}

// publish wraps payload in an envelope and sends it on topic.
func (p *Publisher) publish(topic string, payload any) error {
	msg, err := NewMessage(topic, payload)
	if err != nil {
		return err
	}
	if err := p.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	metrics.EventsPublished.WithLabelValues(topic).Inc()
	return nil
}

// PublishStatsUpdated announces fresh stats for a clip.
func (p *Publisher) PublishStatsUpdated(_ context.Context, clipID string, stats *models.PlatformStats) error {
	return p.publish(TopicStatsUpdated, StatsUpdatedPayload{
		ClipID:     clipID,
		Views:      stats.Views,
		Likes:      stats.Likes,
		Comments:   stats.Comments,
		Shares:     stats.Shares,
		Engagement: stats.Engagement(),
	})
}

// PublishBotDetected announces a significant bot-detection finding.
func (p *Publisher) PublishBotDetected(_ context.Context, clipID, campaignID, userID, flagType string, confidence float64, evidence string) error {
	return p.publish(TopicBotDetected, BotDetectedPayload{
		ClipID:     clipID,
		CampaignID: campaignID,
		UserID:     userID,
		FlagType:   flagType,
		Confidence: confidence,
		Evidence:   evidence,
	})
}

// Close closes the underlying publisher.
func (p *Publisher) Close() error {
	return p.pub.Close()
}
