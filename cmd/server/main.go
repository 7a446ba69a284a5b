// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Command server runs the Eventus service: the supervised HTTP surface,
// the half-hourly ingest scheduler and the interaction fan-out
// consumer, all over one BadgerDB document store.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/eventus/internal/api"
	"github.com/tomtom215/eventus/internal/category"
	"github.com/tomtom215/eventus/internal/classify"
	"github.com/tomtom215/eventus/internal/config"
	"github.com/tomtom215/eventus/internal/feed"
	"github.com/tomtom215/eventus/internal/ingest"
	"github.com/tomtom215/eventus/internal/interactions"
	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/profile"
	"github.com/tomtom215/eventus/internal/scheduler"
	"github.com/tomtom215/eventus/internal/slug"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config errors are fatal before the logger is configured.
		logging.Fatal().Err(err).Msg("Configuration invalid, refusing to start")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	slug.SetBlocklist(cfg.Ingest.TagBlocklist)

	loc, err := cfg.Location()
	if err != nil {
		logging.Fatal().Err(err).Msg("Display time zone invalid")
	}

	st, err := store.Open(store.Options{Path: cfg.Store.Path, InMemory: cfg.Store.InMemory})
	if err != nil {
		logging.Fatal().Err(err).Msg("Document store unavailable")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Store close failed")
		}
	}()

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

	assigner := category.NewAssigner(st, gateway)
	orchestrator := ingest.NewOrchestrator(st, gateway, assigner)

	sched, err := scheduler.New(orchestrator, cfg.Ingest, loc, cfg.Classify.Timeout)
	if err != nil {
		logging.Fatal().Err(err).Msg("Source configuration invalid")
	}

	profiles := profile.NewBuilder(st)
	ranker := feed.NewRanker(feed.Weights{
		Topic:       cfg.Feed.Weights.Topic,
		ContentType: cfg.Feed.Weights.ContentType,
		Time:        cfg.Feed.Weights.Time,
		Style:       cfg.Feed.Weights.Style,
		Recency:     cfg.Feed.Weights.Recency,
		Popularity:  cfg.Feed.Weights.Popularity,
	}, loc)
	feedSvc := feed.NewService(st, profiles, ranker, loc,
		cfg.Feed.ExploitRatio, cfg.Feed.DefaultPageSize, cfg.Feed.MaxPageSize, cfg.Feed.CandidateTTL)
	sched.SetOnRunComplete(feedSvc.InvalidateCandidates)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	interactionSvc := interactions.NewService(st, pubSub, loc)
	fanout := interactions.NewFanout(interactionSvc, pubSub)

	handler := api.NewHandler(st, feedSvc, interactionSvc, gateway, sched)
	router := api.NewRouter(handler, api.RouterConfig{
		APIKey:      cfg.Server.APIKey,
		CORSOrigins: cfg.Server.CORSOrigins,
		RateLimit:   cfg.Server.RateLimit,
	})

	tree := supervisor.NewTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	tree.Add(supervisor.NewHTTPService(cfg.Server.Addr, router, cfg.Server.Timeout))
	tree.Add(sched)
	tree.Add(fanout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.Server.Addr).Msg("Eventus starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Error().Err(err).Msg("Supervisor tree exited")
		os.Exit(1)
	}
	logging.Info().Msg("Eventus stopped")
}
