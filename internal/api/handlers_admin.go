// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/ingest"
)

// AdminIngest serves POST /admin/ingest: the HTTP-triggered twin of the
// scheduled run, optionally scoped to one source.
func (h *Handler) AdminIngest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceID string `json:"sourceId,omitempty"`
		Force    bool   `json:"force,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Validation failed", "request body must be JSON")
			return
		}
	}

	opts := ingest.Options{ForceRefresh: req.Force}
	var (
		stats ingest.Stats
		err   error
	)
	if req.SourceID != "" {
		stats, err = h.ingest.RunSource(r.Context(), req.SourceID, opts)
	} else {
		stats, err = h.ingest.RunAll(r.Context(), opts)
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}
