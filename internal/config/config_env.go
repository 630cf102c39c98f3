// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "strings"

// envMappings maps flat deployment environment variable names to koanf config
// paths. These are the names the platform's deploy manifests use; anything
// not listed falls through to the generic SECTION_FIELD transform.
var envMappings = map[string]string{
	"port":        "server.port",
	"host":        "server.host",
	"environment": "server.environment",
	// NODE_ENV is accepted for compatibility with the platform's shared
	// deployment templates.
	"node_env": "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"database_url": "database.url",
	"redis_url":    "redis.url",

	"rabbitmq_url":   "rabbitmq.url",
	"event_exchange": "rabbitmq.exchange",

	"jwt_secret":      "security.jwt_secret",
	"allowed_origins": "security.allowed_origins",

	"youtube_api_key": "platforms.youtube_api_key",

	"clip_service_url":     "services.clip_service_url",
	"campaign_service_url": "services.campaign_service_url",
}

// envTransformFunc transforms environment variable names to koanf config
// paths. Known flat names are resolved through envMappings; everything else
// maps SECTION_SOME_FIELD -> section.some_field.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	parts := strings.SplitN(key, "_", 2)
	if len(parts) != 2 {
		// Single-word vars without a mapping are not config keys.
		return ""
	}

	section := parts[0]
	if !knownSection(section) {
		return ""
	}
	return section + "." + parts[1]
}

// knownSection reports whether the given prefix is a config section. Unknown
// prefixes are dropped so unrelated environment variables (PATH, TERM, ...)
// never leak into the configuration tree.
func knownSection(s string) bool {
	switch s {
	case "server", "database", "redis", "rabbitmq", "services",
		"platforms", "stats", "scheduler", "security", "logging":
		return true
	default:
		return false
	}
}
