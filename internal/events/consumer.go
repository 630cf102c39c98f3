// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/config"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/metrics"
	"github.com/clipdeck/statistics-service/internal/models"
)

// ClipFetcher resolves clip IDs to full clips.
type ClipFetcher interface {
	GetClip(ctx context.Context, clipID string) (*clipclient.Clip, error)
}

// Refresher refreshes one clip's stats.
type Refresher interface {
	RefreshClipStats(ctx context.Context, clip clipclient.Clip) (*models.PlatformStats, error)
}

// CampaignMirror applies campaign lifecycle events to the local cache.
type CampaignMirror interface {
	HandleCreated(ctx context.Context, campaignID, title string) error
	HandleStatusChanged(ctx context.Context, campaignID, newStatus string) error
}

// Consumer routes incoming events to their handlers behind the retry and
// poison-queue middleware stack. Handler errors nack the message; after
// the retries are exhausted the message lands on the dead-letter topic.
type Consumer struct {
	router *message.Router

	clips     ClipFetcher
	refresher Refresher
	campaigns CampaignMirror
}

// NewConsumer builds the consumer router. poisonPublisher receives
// messages whose handlers failed through all retries.
func NewConsumer(
	cfg config.RabbitMQConfig,
	subscriber message.Subscriber,
	poisonPublisher message.Publisher,
	clips ClipFetcher,
	refresher Refresher,
	campaigns CampaignMirror,
	logger watermill.LoggerAdapter,
) (*Consumer, error) {
	if logger == nil {
		logger = watermill.NewStdLogger(false, false)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	// Middleware order is outer to inner: panics become errors, errors
	// retry with backoff, exhausted retries route to the DLQ.
	router.AddMiddleware(middleware.Recoverer)

	// RetryMaxAttempts counts total deliveries, so the middleware gets
	// one fewer retry than that.
	maxRetries := cfg.RetryMaxAttempts - 1
	if maxRetries < 0 {
		maxRetries = 0
	}
	retry := middleware.Retry{
		MaxRetries:      maxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	router.AddMiddleware(retry.Middleware)

	if poisonPublisher != nil && cfg.DeadLetterTopic != "" {
		poison, err := middleware.PoisonQueue(poisonPublisher, cfg.DeadLetterTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue: %w", err)
		}
		router.AddMiddleware(poison)
	}

	c := &Consumer{
		router:    router,
		clips:     clips,
		refresher: refresher,
		campaigns: campaigns,
	}

	handlers := map[string]message.NoPublishHandlerFunc{
		TopicClipApproved:          c.handleClipApproved,
		TopicClipSubmitted:         c.handleClipSubmitted,
		TopicStatsRequested:        c.handleStatsRequested,
		TopicCampaignCreated:       c.handleCampaignCreated,
		TopicCampaignStatusChanged: c.handleCampaignStatusChanged,
	}
	for topic, handler := range handlers {
		router.AddNoPublisherHandler("statistics_"+topic, topic, subscriber, instrument(topic, handler))
	}

	return c, nil
}

// Run blocks processing messages until ctx is cancelled or Close is
// called.
func (c *Consumer) Run(ctx context.Context) error {
	return c.router.Run(ctx)
}

// Running returns a channel closed once the router is up.
func (c *Consumer) Running() chan struct{} {
	return c.router.Running()
}

// Close drains in-flight handlers and shuts the router down.
func (c *Consumer) Close() error {
	return c.router.Close()
}

// instrument wraps a handler with consumption metrics.
func instrument(topic string, next message.NoPublishHandlerFunc) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		err := next(msg)
		if err != nil {
			metrics.EventsConsumed.WithLabelValues(topic, "failure").Inc()
			return err
		}
		metrics.EventsConsumed.WithLabelValues(topic, "success").Inc()
		return nil
	}
}

// handleClipApproved refreshes a freshly approved clip. Clips without a
// platform video ID have nothing to fetch yet and are acknowledged as-is.
// Errors propagate so the broker redelivers.
func (c *Consumer) handleClipApproved(msg *message.Message) error {
	ctx := msg.Context()
	envelope, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	var payload ClipApprovedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		return err
	}

	clip, err := c.clips.GetClip(ctx, payload.ClipID)
	if err != nil {
		if clipclient.IsNotFound(err) {
			logging.Ctx(ctx).Warn().
				Str("clip_id", payload.ClipID).
				Msg("approved clip not found, dropping event")
			return nil
		}
		return err
	}
	if clip.PlatformVideoID == "" {
		logging.Ctx(ctx).Debug().
			Str("clip_id", clip.ID).
			Msg("approved clip has no platform video id yet")
		return nil
	}

	_, err = c.refresher.RefreshClipStats(ctx, *clip)
	return err
}

// handleClipSubmitted records the submission; stats only matter once the
// clip is approved.
func (c *Consumer) handleClipSubmitted(msg *message.Message) error {
	envelope, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	var payload ClipSubmittedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		return err
	}
	logging.Ctx(msg.Context()).Info().
		Str("clip_id", payload.ClipID).
		Str("campaign_id", payload.CampaignID).
		Msg("clip submitted")
	return nil
}

// handleStatsRequested performs an on-demand refresh of one clip.
func (c *Consumer) handleStatsRequested(msg *message.Message) error {
	ctx := msg.Context()
	envelope, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	var payload StatsRequestedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		return err
	}

	clip, err := c.clips.GetClip(ctx, payload.ClipID)
	if err != nil {
		if clipclient.IsNotFound(err) {
			logging.Ctx(ctx).Warn().
				Str("clip_id", payload.ClipID).
				Msg("requested clip not found, dropping event")
			return nil
		}
		return err
	}
	if clip.PlatformVideoID == "" {
		return nil
	}

	_, err = c.refresher.RefreshClipStats(ctx, *clip)
	return err
}

func (c *Consumer) handleCampaignCreated(msg *message.Message) error {
	envelope, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	var payload CampaignCreatedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		return err
	}
	return c.campaigns.HandleCreated(msg.Context(), payload.CampaignID, payload.Title)
}

func (c *Consumer) handleCampaignStatusChanged(msg *message.Message) error {
	envelope, err := DecodeEnvelope(msg)
	if err != nil {
		return err
	}
	var payload CampaignStatusChangedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		return err
	}
	return c.campaigns.HandleStatusChanged(msg.Context(), payload.CampaignID, payload.NewStatus)
}
