// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// WatermillAdapter bridges the global zerolog logger to the
// watermill.LoggerAdapter interface used by the event router and the
// AMQP publisher/subscriber.
type WatermillAdapter struct {
	logger zerolog.Logger
}

// NewWatermillAdapter returns a watermill logger backed by the global logger.
func NewWatermillAdapter() *WatermillAdapter {
	return &WatermillAdapter{logger: With().Str("component", "watermill").Logger()}
}

// Error logs an error message with fields.
func (a *WatermillAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.event(a.logger.Error().Err(err), fields).Msg(msg)
}

// Info logs an informational message with fields.
func (a *WatermillAdapter) Info(msg string, fields watermill.LogFields) {
	a.event(a.logger.Info(), fields).Msg(msg)
}

// Debug logs a debug message with fields.
func (a *WatermillAdapter) Debug(msg string, fields watermill.LogFields) {
	a.event(a.logger.Debug(), fields).Msg(msg)
}

// Trace logs a trace message with fields.
func (a *WatermillAdapter) Trace(msg string, fields watermill.LogFields) {
	a.event(a.logger.Trace(), fields).Msg(msg)
}

// With returns a child adapter carrying the given fields on every message.
func (a *WatermillAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &WatermillAdapter{logger: ctx.Logger()}
}

func (a *WatermillAdapter) event(e *zerolog.Event, fields watermill.LogFields) *zerolog.Event {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	return e
}
