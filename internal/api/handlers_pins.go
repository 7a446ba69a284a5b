// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/interactions"
	"github.com/tomtom215/eventus/internal/models"
)

// GetPinnedEvents serves GET /users/{userId}/pinned-events.
func (h *Handler) GetPinnedEvents(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if header := r.Header.Get("x-user-id"); header != "" && header != userID {
		writeError(w, http.StatusForbidden, "Forbidden", "x-user-id does not match the requested user")
		return
	}

	q := interactions.PinnedQuery{
		Mode:      r.URL.Query().Get("mode"),
		PageToken: r.URL.Query().Get("pageToken"),
	}

	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > interactions.MaxPinnedPageSize {
			writeError(w, http.StatusBadRequest, "Validation failed", "pageSize must be between 1 and 30")
			return
		}
		q.PageSize = size
	}

	for param, dst := range map[string]*time.Time{"start": &q.Start, "end": &q.End} {
		if raw := r.URL.Query().Get(param); raw != "" {
			ts, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Validation failed", param+" must be RFC3339")
				return
			}
			*dst = ts
		}
	}

	page, err := h.interactions.GetPinnedEvents(r.Context(), userID, q)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"events":        page.Events,
		"nextPageToken": page.NextPageToken,
		"window": map[string]any{
			"start": page.Window.Start,
			"end":   page.Window.End,
		},
		"updatedAt": page.UpdatedAt,
	})
}

// SetPinnedEvent serves POST /users/{userId}/pinned-events.
func (h *Handler) SetPinnedEvent(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if header := r.Header.Get("x-user-id"); header != "" && header != userID {
		writeError(w, http.StatusForbidden, "Forbidden", "x-user-id does not match the requested user")
		return
	}

	var req struct {
		EventID string `json:"eventId"`
		Pinned  *bool  `json:"pinned,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.EventID == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", "eventId is required")
		return
	}
	pinned := req.Pinned == nil || *req.Pinned

	if err := h.interactions.ApplyPinToggle(r.Context(), userID, req.EventID, models.ContentTypeEvent, pinned); err != nil {
		respondServiceError(w, r, err)
		return
	}

	event, err := h.store.GetEvent(r.Context(), req.EventID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pinned": pinned,
		"event":  event,
	})
}
