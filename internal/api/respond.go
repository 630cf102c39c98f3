// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/clipdeck/statistics-service/internal/clipclient"
	"github.com/clipdeck/statistics-service/internal/logging"
	"github.com/clipdeck/statistics-service/internal/platform"
)

// errorBody is the uniform error response shape.
type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// badRequest is a sentinel-friendly validation error for handler input.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }

// writeError maps an error to a status code and logs server-side
// failures. Client errors carry their message; internal errors do not
// leak details.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		br            *badRequest
		validationErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &br):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: br.msg})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: validationErr.Error()})
	case errors.Is(err, platform.ErrUnknownPlatform), errors.Is(err, platform.ErrTweetURLParse):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, clipclient.ErrNotFound), errors.Is(err, platform.ErrVideoNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	default:
		logging.Ctx(r.Context()).Error().Err(err).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
