// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package api provides the HTTP surface: Chi routing, request parsing
// and the {error, message} error envelope over the core services.
package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/feed"
	"github.com/tomtom215/eventus/internal/interactions"
	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/validation"
)

// errorBody is the error envelope for every 4xx/5xx response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON renders v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Response encoding failed")
	}
}

// writeError renders the error envelope.
func writeError(w http.ResponseWriter, status int, errLabel, message string) {
	writeJSON(w, status, errorBody{Error: errLabel, Message: message})
}

// respondServiceError maps a service error onto the right status and
// envelope. Unrecognized errors become opaque 500s; the details stay in
// the logs keyed by request id.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *validation.RequestValidationError
	switch {
	case errors.Is(err, feed.ErrInvalidPageToken):
		writeError(w, http.StatusBadRequest, "Invalid page token", "")
	case errors.Is(err, interactions.ErrInvalidBundleMetadata):
		writeError(w, http.StatusBadRequest, "Invalid bundle metadata", err.Error())
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "Validation failed", vErr.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found", "referenced entity does not exist")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal error", "")
	}
}
