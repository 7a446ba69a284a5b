// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/store"
)

// interactionRequest is the wire shape of one interaction record.
type interactionRequest struct {
	UserID      string         `json:"userId"`
	ContentID   string         `json:"contentId"`
	ContentType string         `json:"contentType"`
	Action      string         `json:"action"`
	DwellTime   float64        `json:"dwellTime,omitempty"`
	Timestamp   *time.Time     `json:"timestamp,omitempty"`
	Context     contextRequest `json:"context"`
	ContentTags []string       `json:"contentTags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type contextRequest struct {
	Position  int    `json:"position"`
	SessionID string `json:"sessionId,omitempty"`
	TimeOfDay string `json:"timeOfDay"`
	DayOfWeek string `json:"dayOfWeek"`
}

func (req *interactionRequest) toModel() *models.UserInteraction {
	in := &models.UserInteraction{
		UserID:      req.UserID,
		ContentID:   req.ContentID,
		ContentType: req.ContentType,
		Action:      req.Action,
		DwellTime:   req.DwellTime,
		ContentTags: req.ContentTags,
		Metadata:    req.Metadata,
		Context: models.InteractionContext{
			Position:  req.Context.Position,
			SessionID: req.Context.SessionID,
			TimeOfDay: req.Context.TimeOfDay,
			DayOfWeek: req.Context.DayOfWeek,
		},
	}
	if req.Timestamp != nil {
		in.Timestamp = req.Timestamp.UTC()
	}
	return in
}

// RecordInteraction serves POST /interactions.
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req interactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "request body must be a JSON interaction")
		return
	}

	ids, err := h.interactions.RecordInteractions(r.Context(), []*models.UserInteraction{req.toModel()})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":       true,
		"interactionId": ids[0],
	})
}

// RecordInteractionBatch serves POST /interactions/batch.
func (h *Handler) RecordInteractionBatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Interactions []interactionRequest `json:"interactions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", "request body must be a JSON interaction batch")
		return
	}
	if len(req.Interactions) == 0 || len(req.Interactions) > store.MaxInteractionBatch {
		writeError(w, http.StatusBadRequest, "Validation failed", "interactions must contain between 1 and 100 records")
		return
	}

	batch := make([]*models.UserInteraction, len(req.Interactions))
	for i := range req.Interactions {
		batch[i] = req.Interactions[i].toModel()
	}

	ids, err := h.interactions.RecordInteractions(r.Context(), batch)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"count":          len(ids),
		"interactionIds": ids,
	})
}
