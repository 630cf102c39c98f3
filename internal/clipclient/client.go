// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clipclient provides HTTP clients for the clip-service and
// campaign-service peers. Calls carry the internal-service header and run
// behind a circuit breaker so a dead peer fails fast instead of tying up
// the batch refresher.
package clipclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/clipdeck/statistics-service/internal/logging"
)

// internalServiceHeader identifies this service to peers on the internal
// network.
const internalServiceHeader = "statistics-service"

// ErrNotFound indicates the peer has no entity for the given ID.
var ErrNotFound = errors.New("entity not found")

// PeerError reports a non-2xx response from a peer service.
type PeerError struct {
	Service string
	Status  int
	Message string
}

// Error implements the error interface.
func (e *PeerError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Message)
}

// peerClient is the shared transport under both typed clients.
type peerClient struct {
	name    string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func newPeerClient(name, baseURL string, timeout time.Duration) *peerClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// A 404 is a valid answer, not peer breakage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("peer", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("peer circuit breaker state change")
		},
	}
	return &peerClient{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// getJSON fetches path and decodes the response into out. A 404 maps to
// ErrNotFound without tripping the breaker.
func (c *peerClient) getJSON(ctx context.Context, path string, out any) error {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", c.name, err)
		}
		req.Header.Set("X-Internal-Service", internalServiceHeader)
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.name, err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, fmt.Errorf("%s: read body: %w", c.name, err)
		}
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%s%s: %w", c.name, path, ErrNotFound)
		case resp.StatusCode < 200 || resp.StatusCode > 299:
			return nil, &PeerError{Service: c.name, Status: resp.StatusCode, Message: truncate(string(raw), 200)}
		}
		return raw, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.name, path, err)
	}
	return nil
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
