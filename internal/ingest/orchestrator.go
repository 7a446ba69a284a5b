// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package ingest drives the three-phase pipeline for a source: prepare
// (normalize + change detection), tag (LLM classification), embed (one
// batch call) and persist (proposals, series attach, category assign,
// event write). Per-entry failures mark that entry skipped and never
// cascade to the rest of the run.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventus/internal/category"
	"github.com/tomtom215/eventus/internal/classify"
	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/metrics"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/slug"
	"github.com/tomtom215/eventus/internal/sources"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// Stats aggregates the outcome of one ingest run.
type Stats struct {
	Fetched int `json:"fetched"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// add merges o into s.
func (s *Stats) add(o Stats) {
	s.Fetched += o.Fetched
	s.Created += o.Created
	s.Updated += o.Updated
	s.Skipped += o.Skipped
}

// Options modify a run.
type Options struct {
	// ForceRefresh reclassifies every event even when the stored record
	// is unchanged, and forces category re-assignment.
	ForceRefresh bool
}

// ClassifierGateway is the slice of the classify gateway the pipeline
// calls.
type ClassifierGateway interface {
	ClassifyTags(ctx context.Context, title, description string) ([]models.TagCandidate, error)
	EmbedMany(ctx context.Context, texts []string) ([][]float64, error)
}

// SeriesAssigner places a series into a category.
type SeriesAssigner interface {
	AssignSeries(ctx context.Context, seriesID string, force bool) (*category.Assignment, error)
}

// Orchestrator wires the pipeline dependencies.
type Orchestrator struct {
	store    *store.Store
	gateway  ClassifierGateway
	assigner SeriesAssigner
}

// NewOrchestrator builds an orchestrator.
func NewOrchestrator(st *store.Store, gateway ClassifierGateway, assigner SeriesAssigner) *Orchestrator {
	return &Orchestrator{store: st, gateway: gateway, assigner: assigner}
}

// preparedEvent carries one payload's state across phases.
type preparedEvent struct {
	normalized *sources.NormalizedEvent
	existing   *models.CanonicalEvent
	reuse      bool

	candidates []models.TagCandidate
	tags       []string
	vector     []float64
}

// Run executes the pipeline for one adapter over one window.
func (o *Orchestrator) Run(ctx context.Context, adapter sources.Adapter, window timeutil.Window, opts Options) (Stats, error) {
	start := time.Now()
	sourceID := adapter.SourceID()
	log := logging.Ctx(ctx).With().Str("source", sourceID).Logger()

	payloads, err := adapter.FetchRawEvents(ctx, window)
	if err != nil {
		// An adapter-boundary failure aborts this source's run; the
		// scheduler carries on with the next source.
		return Stats{}, err
	}

	stats := Stats{Fetched: len(payloads)}
	log.Info().Int("fetched", len(payloads)).
		Time("windowStart", window.Start).
		Time("windowEnd", window.End).
		Msg("Ingest run started")

	// Phase 0: normalize and change-detect, sequential per payload.
	entries := make([]*preparedEvent, 0, len(payloads))
	for _, payload := range payloads {
		entry := o.prepare(ctx, adapter, payload, opts, &log)
		if entry == nil {
			stats.Skipped++
			continue
		}
		entries = append(entries, entry)
	}

	// Phase 1: tag classification fans out across entries; the gateway's
	// rate limiter paces the upstream.
	var wg sync.WaitGroup
	for _, entry := range entries {
		if entry.reuse {
			continue
		}
		wg.Add(1)
		go func(entry *preparedEvent) {
			defer wg.Done()
			o.tag(ctx, entry, &log)
		}(entry)
	}
	wg.Wait()

	// Phase 2: one embedding batch over the entries that got tags.
	o.embed(ctx, entries, &log)

	// Phase 3: persist, sequential so series and category transactions
	// stay simple; conflicts serialize at the store regardless.
	for _, entry := range entries {
		outcome := o.persist(ctx, adapter.SourceID(), entry, opts, &log)
		switch outcome {
		case "created":
			stats.Created++
		case "updated":
			stats.Updated++
		default:
			stats.Skipped++
		}
		metrics.IngestEvents.WithLabelValues(sourceID, outcome).Inc()
	}

	metrics.IngestRunDuration.WithLabelValues(sourceID).Observe(time.Since(start).Seconds())
	metrics.IngestLastRun.WithLabelValues(sourceID).SetToCurrentTime()

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Dur("duration", time.Since(start)).
		Msg("Ingest run finished")
	return stats, nil
}

// prepare normalizes one payload and decides whether the stored
// classification can be reused. Returns nil when the payload is
// skipped.
func (o *Orchestrator) prepare(ctx context.Context, adapter sources.Adapter, payload sources.RawEventPayload, opts Options, log *zerolog.Logger) *preparedEvent {
	normalized, err := adapter.Normalize(payload)
	if err != nil {
		log.Warn().Err(err).
			Str("sourceEventId", payload.SourceEventID).
			Msg("Normalization failed, skipping payload")
		return nil
	}

	existing, err := o.store.GetEvent(ctx, normalized.Event.ID)
	if err != nil {
		log.Error().Err(err).Str("event", normalized.Event.ID).Msg("Event pre-read failed, skipping")
		return nil
	}

	entry := &preparedEvent{normalized: normalized, existing: existing}

	if !opts.ForceRefresh && existing != nil &&
		!existing.LastUpdatedAt.IsZero() &&
		existing.LastUpdatedAt.Equal(normalized.Event.LastUpdatedAt) {
		entry.reuse = true
		entry.tags = existing.Tags
		entry.vector = existing.Vector
		if existing.Classification != nil {
			entry.candidates = existing.Classification.Candidates
		}
		metrics.ClassifyReused.Inc()
	}
	return entry
}

// tag runs phase 1 for one entry. Upstream failures degrade to an
// untagged entry rather than skipping it.
func (o *Orchestrator) tag(ctx context.Context, entry *preparedEvent, log *zerolog.Logger) {
	event := entry.normalized.Event
	candidates, err := o.gateway.ClassifyTags(ctx, event.Title, event.Description)
	if err != nil {
		log.Error().Err(err).Str("event", event.ID).Msg("Tag classification failed, continuing untagged")
		return
	}
	entry.candidates = candidates
	entry.tags = classify.TagsFromCandidates(candidates)
}

// embed runs phase 2: a single batch call covering every non-reuse
// entry with a non-empty tag list. A batch failure leaves all affected
// entries unembedded; they still persist.
func (o *Orchestrator) embed(ctx context.Context, entries []*preparedEvent, log *zerolog.Logger) {
	var texts []string
	var targets []*preparedEvent
	for _, entry := range entries {
		if entry.reuse || len(entry.tags) == 0 {
			continue
		}
		event := entry.normalized.Event
		texts = append(texts, classify.EnrichedText(event.Title, event.Description, entry.tags))
		targets = append(targets, entry)
	}
	if len(texts) == 0 {
		return
	}

	vectors, err := o.gateway.EmbedMany(ctx, texts)
	if err != nil {
		log.Error().Err(err).Int("batch", len(texts)).Msg("Embedding batch failed, continuing without vectors")
		return
	}
	for i, entry := range targets {
		entry.vector = vectors[i]
	}
}

// persist runs phase 3 for one entry and returns its outcome label.
func (o *Orchestrator) persist(ctx context.Context, sourceID string, entry *preparedEvent, opts Options, log *zerolog.Logger) string {
	event := entry.normalized.Event

	if entry.reuse {
		if err := o.store.TouchEvent(ctx, event.ID, event.LastFetchedAt); err != nil {
			log.Error().Err(err).Str("event", event.ID).Msg("Touch failed, skipping")
			return "skipped"
		}
		return "updated"
	}

	// Record proposals for the final slug set before merging with any
	// source-provided tags.
	proposalTags := entry.tags
	if len(proposalTags) > 0 {
		if err := o.store.RecordTagProposals(ctx, event.ID, event.Title, sourceID, proposalTags); err != nil {
			log.Error().Err(err).Str("event", event.ID).Msg("Tag proposal recording failed")
		}
	}

	// Merge LLM tags with slug-clean source tags, re-filtered.
	event.Tags = slug.FilterTags(append(append([]string{}, entry.tags...), event.Tags...))
	event.Classification = &models.Classification{
		Tags:       entry.tags,
		Candidates: entry.candidates,
	}
	event.Vector = entry.vector

	// Attach to the series; series and category failures are logged and
	// the event is still written, classification simply stays partial.
	host := entry.normalized.Host
	hostID := sources.HostID(host, sourceID)
	attach, err := o.store.AttachEvent(ctx, event, store.AttachContext{
		HostID:    hostID,
		HostName:  host.HostName,
		Organizer: host.Organizer,
		SourceID:  sourceID,
	})
	if err != nil {
		log.Error().Err(err).Str("event", event.ID).Msg("Series attach failed")
	} else {
		event.SeriesID = attach.SeriesID
		force := attach.Created || opts.ForceRefresh
		assignment, err := o.assigner.AssignSeries(ctx, attach.SeriesID, force)
		if err != nil {
			log.Error().Err(err).Str("series", attach.SeriesID).Msg("Category assignment failed")
		} else if assignment != nil {
			event.SeriesCategoryID = assignment.CategoryID
			event.SeriesCategoryName = assignment.CategoryName
		}
	}

	created, err := o.store.SaveEvent(ctx, event, entry.existing)
	if err != nil {
		log.Error().Err(err).Str("event", event.ID).Msg("Event write failed, skipping")
		return "skipped"
	}
	if created {
		return "created"
	}
	return "updated"
}
