// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package api

import (
	"net/http"
	"strconv"
)

// proposal query bounds.
const (
	defaultProposalLimit = 20
	maxProposalLimit     = 100
)

// TagProposals serves GET /tag-proposals.
func (h *Handler) TagProposals(w http.ResponseWriter, r *http.Request) {
	limit := defaultProposalLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxProposalLimit {
			writeError(w, http.StatusBadRequest, "Validation failed", "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	proposals, err := h.store.GetTopProposals(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"proposals": proposals,
		"count":     len(proposals),
	})
}
