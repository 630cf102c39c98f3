// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// minJWTSecretLength is the minimum accepted JWT secret length.
const minJWTSecretLength = 16

// Validate checks that required configuration is present and valid.
// Any error returned here is startup-fatal.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateInfrastructure(); err != nil {
		return err
	}
	if err := c.validateServices(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateStats()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, production or test, got %q", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateInfrastructure() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.RabbitMQ.URL == "" {
		return fmt.Errorf("RABBITMQ_URL is required")
	}
	if !strings.HasPrefix(c.RabbitMQ.URL, "amqp://") && !strings.HasPrefix(c.RabbitMQ.URL, "amqps://") {
		return fmt.Errorf("RABBITMQ_URL must be an amqp:// or amqps:// URL")
	}
	if c.RabbitMQ.Exchange == "" {
		return fmt.Errorf("EVENT_EXCHANGE must not be empty")
	}
	if c.RabbitMQ.PrefetchCount < 1 {
		return fmt.Errorf("rabbitmq prefetch_count must be at least 1, got %d", c.RabbitMQ.PrefetchCount)
	}
	return nil
}

func (c *Config) validateServices() error {
	if err := validateHTTPURL(c.Services.ClipServiceURL, "CLIP_SERVICE_URL"); err != nil {
		return err
	}
	return validateHTTPURL(c.Services.CampaignServiceURL, "CAMPAIGN_SERVICE_URL")
}

func (c *Config) validateSecurity() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength)
	}
	return nil
}

func (c *Config) validateStats() error {
	if c.Stats.MaxBatchSize < 1 {
		return fmt.Errorf("stats max_batch_size must be at least 1, got %d", c.Stats.MaxBatchSize)
	}
	if c.Stats.CacheTTL <= 0 {
		return fmt.Errorf("stats cache_ttl must be positive")
	}
	if c.Stats.BatchDelay < 0 {
		return fmt.Errorf("stats batch_delay must not be negative")
	}
	return nil
}

// validateHTTPURL checks that value is a well-formed http(s) URL.
func validateHTTPURL(value, name string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https scheme, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s is missing a host", name)
	}
	return nil
}
