// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/clipdeck/statistics-service/internal/models"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	msg, err := NewMessage(TopicStatsUpdated, StatsUpdatedPayload{
		ClipID: "clip-1", Views: 1000, Likes: 80, Comments: 20, Shares: 5, Engagement: 0.1,
	})
	if err != nil {
		t.Fatalf("NewMessage returned error: %v", err)
	}

	envelope, err := DecodeEnvelope(msg)
	if err != nil {
		t.Fatalf("DecodeEnvelope returned error: %v", err)
	}
	if envelope.Event != TopicStatsUpdated {
		t.Errorf("Event = %q, want %q", envelope.Event, TopicStatsUpdated)
	}
	if envelope.Service != "statistics-service" {
		t.Errorf("Service = %q, want statistics-service", envelope.Service)
	}
	if envelope.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}

	var payload StatsUpdatedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	if payload.ClipID != "clip-1" || payload.Views != 1000 || payload.Engagement != 0.1 {
		t.Errorf("payload = %+v, want clip-1/1000/0.1", payload)
	}
}

func TestPublisherStatsUpdatedComputesEngagement(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	messages, err := pubsub.Subscribe(context.Background(), TopicStatsUpdated)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	p := NewPublisher(pubsub)
	stats := &models.PlatformStats{Views: 1000, Likes: 80, Comments: 20, Shares: 5}
	if err := p.PublishStatsUpdated(context.Background(), "clip-1", stats); err != nil {
		t.Fatalf("PublishStatsUpdated returned error: %v", err)
	}

	msg := <-messages
	msg.Ack()

	envelope, err := DecodeEnvelope(msg)
	if err != nil {
		t.Fatalf("DecodeEnvelope returned error: %v", err)
	}
	var payload StatsUpdatedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	if payload.Engagement != 0.1 {
		t.Errorf("Engagement = %v, want (80+20)/1000 = 0.1", payload.Engagement)
	}
}

func TestPublisherBotDetected(t *testing.T) {
	pubsub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubsub.Close()

	messages, err := pubsub.Subscribe(context.Background(), TopicBotDetected)
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}

	p := NewPublisher(pubsub)
	err = p.PublishBotDetected(context.Background(), "clip-1", "camp-1", "user-1", "VIEWS_SPIKE", 0.9, "VIEWS_SPIKE: views grew 1100% in one period (+11000)")
	if err != nil {
		t.Fatalf("PublishBotDetected returned error: %v", err)
	}

	msg := <-messages
	msg.Ack()

	envelope, _ := DecodeEnvelope(msg)
	var payload BotDetectedPayload
	if err := DecodePayload(envelope, &payload); err != nil {
		t.Fatalf("DecodePayload returned error: %v", err)
	}
	if payload.FlagType != "VIEWS_SPIKE" || payload.Confidence != 0.9 {
		t.Errorf("payload = %+v, want VIEWS_SPIKE/0.9", payload)
	}
	if payload.CampaignID != "camp-1" || payload.UserID != "user-1" {
		t.Errorf("identity = %s/%s, want camp-1/user-1", payload.CampaignID, payload.UserID)
	}
}

func TestDecodeEnvelopeRejectsGarbage(t *testing.T) {
	msg := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	if _, err := DecodeEnvelope(msg); err == nil {
		t.Error("expected decode error for garbage body, got nil")
	}
}
