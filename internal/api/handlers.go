// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/eventus/internal/classify"
	"github.com/tomtom215/eventus/internal/feed"
	"github.com/tomtom215/eventus/internal/ingest"
	"github.com/tomtom215/eventus/internal/interactions"
	"github.com/tomtom215/eventus/internal/store"
)

// IngestTrigger runs ingest on demand for the admin entry point. The
// scheduler provides the implementation.
type IngestTrigger interface {
	RunAll(ctx context.Context, opts ingest.Options) (ingest.Stats, error)
	RunSource(ctx context.Context, sourceID string, opts ingest.Options) (ingest.Stats, error)
}

// Handler contains dependencies for the API handlers.
//
// Methods are split across files:
//   - handlers.go: struct, constructor, /status (this file)
//   - handlers_feed.go: /feed
//   - handlers_interactions.go: /interactions, /interactions/batch
//   - handlers_pins.go: pinned-events endpoints
//   - handlers_proposals.go: /tag-proposals
//   - handlers_admin.go: /admin/ingest
type Handler struct {
	store        *store.Store
	feed         *feed.Service
	interactions *interactions.Service
	gateway      *classify.Gateway
	ingest       IngestTrigger
	startTime    time.Time
}

// NewHandler creates the API handler.
func NewHandler(st *store.Store, feedSvc *feed.Service, interactionsSvc *interactions.Service, gateway *classify.Gateway, trigger IngestTrigger) *Handler {
	return &Handler{
		store:        st,
		feed:         feedSvc,
		interactions: interactionsSvc,
		gateway:      gateway,
		ingest:       trigger,
		startTime:    time.Now(),
	}
}

// Status reports per-service health.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	services := map[string]string{
		"store":      healthLabel(h.store.Healthy()),
		"classifier": healthLabel(h.gateway.Healthy()),
	}
	status := "ok"
	for _, s := range services {
		if s != "ok" {
			status = "degraded"
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    status,
		"services":  services,
		"uptime":    time.Since(h.startTime).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func healthLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "unavailable"
}
