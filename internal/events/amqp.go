// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	amqp "github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/clipdeck/statistics-service/internal/config"
)

// amqpConfig builds the shared topology: a durable topic exchange where
// the Watermill topic is the routing key. Each subscribed routing key gets
// its own durable queue (statistics.events.<key>); binding several keys to
// one shared queue would round-robin deliveries across handlers instead of
// routing by key. Brokers pre-provisioned with a single statistics.events
// queue need the per-key queues declared instead; this service declares
// them itself on startup.
func amqpConfig(cfg config.RabbitMQConfig) amqp.Config {
	return amqp.Config{
		Connection: amqp.ConnectionConfig{
			AmqpURI: cfg.URL,
		},
		Marshaler: amqp.DefaultMarshaler{},
		Exchange: amqp.ExchangeConfig{
			GenerateName: func(topic string) string { return cfg.Exchange },
			Type:         "topic",
			Durable:      true,
		},
		Queue: amqp.QueueConfig{
			GenerateName: func(topic string) string { return cfg.QueuePrefix + "." + topic },
			Durable:      true,
		},
		QueueBind: amqp.QueueBindConfig{
			GenerateRoutingKey: func(topic string) string { return topic },
		},
		Publish: amqp.PublishConfig{
			GenerateRoutingKey: func(topic string) string { return topic },
		},
		Consume: amqp.ConsumeConfig{
			Qos: amqp.QosConfig{
				PrefetchCount: cfg.PrefetchCount,
			},
		},
		TopologyBuilder: &amqp.DefaultTopologyBuilder{},
	}
}

// NewAMQPPublisher opens a publisher on the configured exchange.
func NewAMQPPublisher(cfg config.RabbitMQConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	pub, err := amqp.NewPublisher(amqpConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("create amqp publisher: %w", err)
	}
	return pub, nil
}

// NewAMQPSubscriber opens a subscriber on the configured exchange.
func NewAMQPSubscriber(cfg config.RabbitMQConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := amqp.NewSubscriber(amqpConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("create amqp subscriber: %w", err)
	}
	return sub, nil
}
