// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Command ingest runs one ingest pass over the configured sources and
// exits: 0 on success, 1 on fatal error. Intended for cron-style
// invocation and migrations.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/tomtom215/eventus/internal/category"
	"github.com/tomtom215/eventus/internal/classify"
	"github.com/tomtom215/eventus/internal/config"
	"github.com/tomtom215/eventus/internal/ingest"
	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/scheduler"
	"github.com/tomtom215/eventus/internal/slug"
	"github.com/tomtom215/eventus/internal/store"
)

// runBudget bounds a scheduled invocation.
const runBudget = 540 * time.Second

func main() {
	sourceID := flag.String("source", "", "ingest only this source id")
	force := flag.Bool("force", false, "reclassify events even when unchanged")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Configuration invalid")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	slug.SetBlocklist(cfg.Ingest.TagBlocklist)

	loc, err := cfg.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("Display time zone invalid")
	}

	st, err := store.Open(store.Options{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory})
	if err != nil {
		logging.Fatal().Err(err).Msg("Document store unavailable")
	}
	defer st.Close()

	gateway := classify.New(classify.Config{
		BaseURL:        cfg.Classify.LLMBaseURL,
		APIKey:         cfg.Classify.LLMAPIKey,
		LLMModel:       cfg.Classify.LLMModel,
		EmbeddingModel: cfg.Classify.EmbeddingModel,
		EmbeddingDim:   cfg.Classify.EmbeddingDim,
		MaxSuggestions: cfg.Classify.MaxSuggestions,
		TimeoutSeconds: cfg.Classify.Timeout.Seconds(),
		RequestsPerSec: cfg.Classify.RequestsPerSec,
		Debug:          cfg.Classify.Debug,
	})
	orchestrator := ingest.NewOrchestrator(st, gateway, category.NewAssigner(st, gateway))

	sched, err := scheduler.New(orchestrator, cfg.Ingest, loc, cfg.Classify.Timeout)
	if err != nil {
		logging.Fatal().Err(err).Msg("Source configuration invalid")
	}

	ctx, cancel := context.WithTimeout(context.Background(), runBudget)
	defer cancel()

	opts := ingest.Options{ForceRefresh: *force}
	var stats ingest.Stats
	if *sourceID != "" {
		stats, err = sched.RunSource(ctx, *sourceID, opts)
	} else {
		stats, err = sched.RunAll(ctx, opts)
	}
	if err != nil {
		logging.Error().Err(err).Msg("Ingest failed")
		os.Exit(1)
	}

	logging.Info().
		Int("fetched", stats.Fetched).
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("skipped", stats.Skipped).
		Msg("Ingest complete")
}
