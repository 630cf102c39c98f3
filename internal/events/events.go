// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events defines the service's event-bus surface: the topics it
// publishes and consumes, the typed payloads carried on each, and the
// Watermill publisher and consumer wiring over RabbitMQ.
package events

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// Topics on the clipdeck.events exchange. Routing keys double as
// Watermill topics.
const (
	TopicStatsUpdated          = "stats.updated"
	TopicBotDetected           = "stats.bot_detected"
	TopicStatsRequested        = "stats.requested"
	TopicClipApproved          = "clip.approved"
	TopicClipSubmitted         = "clip.submitted"
	TopicCampaignCreated       = "campaign.created"
	TopicCampaignStatusChanged = "campaign.status_changed"
)

// ConsumedTopics are the routing keys this service subscribes to.
var ConsumedTopics = []string{
	TopicClipSubmitted,
	TopicClipApproved,
	TopicStatsRequested,
	TopicCampaignCreated,
	TopicCampaignStatusChanged,
}

// serviceName identifies this service in event envelopes.
const serviceName = "statistics-service"

// Envelope is the wire format shared by all events. The consumer
// dispatches on Event before decoding Payload into the matching type.
type Envelope struct {
	Event     string          `json:"event"`
	Service   string          `json:"service"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// StatsUpdatedPayload announces fresh engagement numbers for a clip.
type StatsUpdatedPayload struct {
	ClipID     string  `json:"clipId"`
	Views      int64   `json:"views"`
	Likes      int64   `json:"likes"`
	Comments   int64   `json:"comments"`
	Shares     int64   `json:"shares"`
	Engagement float64 `json:"engagement"`
}

// BotDetectedPayload announces a significant bot-detection finding.
// Confidence is scaled to [0,1].
type BotDetectedPayload struct {
	ClipID     string  `json:"clipId"`
	CampaignID string  `json:"campaignId"`
	UserID     string  `json:"userId"`
	FlagType   string  `json:"flagType"`
	Confidence float64 `json:"confidence"`
	Evidence   string  `json:"evidence"`
}

// ClipApprovedPayload carries the approved clip's ID; the handler fetches
// the full clip from the clip-service.
type ClipApprovedPayload struct {
	ClipID string `json:"clipId"`
}

// ClipSubmittedPayload carries a newly submitted clip.
type ClipSubmittedPayload struct {
	ClipID     string `json:"clipId"`
	CampaignID string `json:"campaignId"`
	UserID     string `json:"userId"`
}

// StatsRequestedPayload asks for an immediate refresh of one clip.
type StatsRequestedPayload struct {
	ClipID string `json:"clipId"`
}

// CampaignCreatedPayload carries a new campaign's metadata.
type CampaignCreatedPayload struct {
	CampaignID string `json:"campaignId"`
	Title      string `json:"title"`
}

// CampaignStatusChangedPayload carries a campaign status transition.
type CampaignStatusChangedPayload struct {
	CampaignID string `json:"campaignId"`
	NewStatus  string `json:"newStatus"`
}

// NewMessage wraps a payload in an envelope and returns it as a Watermill
// message.
func NewMessage(topic string, payload any) (*message.Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	envelope := Envelope{
		Event:     topic,
		Service:   serviceName,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", topic, err)
	}
	return message.NewMessage(watermill.NewUUID(), body), nil
}

// DecodeEnvelope parses a message body into an envelope.
func DecodeEnvelope(msg *message.Message) (*Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	return &envelope, nil
}

// DecodePayload parses an envelope's payload into out.
func DecodePayload(envelope *Envelope, out any) error {
	if err := json.Unmarshal(envelope.Payload, out); err != nil {
		return fmt.Errorf("decode %s payload: %w", envelope.Event, err)
	}
	return nil
}
