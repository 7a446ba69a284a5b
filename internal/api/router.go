// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/eventus/internal/middleware"
)

// RouterConfig carries the HTTP-surface settings the router needs.
type RouterConfig struct {
	APIKey      string
	CORSOrigins []string
	RateLimit   int // requests per minute per IP
}

// NewRouter wires every route with its middleware stack. The status
// and metrics endpoints stay unauthenticated for probes and scrapers;
// everything else requires the API key.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", middleware.APIKeyHeader, "x-user-id"},
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}
	r.Use(middleware.Prometheus)

	// Probes and scrapers.
	r.Get("/status", h.Status)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Client surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.APIKey))

		r.Get("/feed", h.Feed)
		r.Post("/interactions", h.RecordInteraction)
		r.Post("/interactions/batch", h.RecordInteractionBatch)
		r.Get("/users/{userId}/pinned-events", h.GetPinnedEvents)
		r.Post("/users/{userId}/pinned-events", h.SetPinnedEvent)
		r.Get("/tag-proposals", h.TagProposals)

		r.Post("/admin/ingest", h.AdminIngest)
	})

	return r
}
