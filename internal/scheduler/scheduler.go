// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package scheduler drives periodic ingest across all configured
// sources: a half-hourly cadence aligned to the display time zone plus
// the on-demand trigger behind the admin endpoint. One source failing
// never stops the others.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/eventus/internal/config"
	"github.com/tomtom215/eventus/internal/ingest"
	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/sources"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// Scheduler runs the ingest cadence over the configured adapter set.
type Scheduler struct {
	orchestrator *ingest.Orchestrator
	adapters     []sourceEntry
	interval     time.Duration
	lookback     int
	lookahead    int
	location     *time.Location

	// onRunComplete fires after every full run; the feed service hooks
	// its candidate-cache invalidation here.
	onRunComplete func()
}

type sourceEntry struct {
	adapter   sources.Adapter
	chunkDays int
}

// New builds a scheduler from config, constructing one adapter per
// configured source.
func New(orchestrator *ingest.Orchestrator, cfg config.IngestConfig, loc *time.Location, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		orchestrator: orchestrator,
		interval:     cfg.Interval,
		lookback:     cfg.LookbackDays,
		lookahead:    cfg.LookaheadDays,
		location:     loc,
	}
	if s.interval <= 0 {
		s.interval = 30 * time.Minute
	}

	for _, sc := range cfg.Sources {
		var (
			adapter   sources.Adapter
			chunkDays = sc.ChunkDays
		)
		switch sc.Kind {
		case "calendar-feed":
			adapter = sources.NewCalendarFeedAdapter(sources.CalendarFeedConfig{
				SourceID: sc.ID,
				URL:      sc.URL,
				Label:    sc.Label,
				TimeZone: sc.TimeZone,
				Timeout:  timeout,
			})
			if chunkDays <= 0 {
				chunkDays = ingest.DefaultCalendarChunkDays
			}
		case "mock":
			adapter = sources.NewMockAdapter(sc.ID, sc.Label, nil)
			if chunkDays <= 0 {
				chunkDays = ingest.DefaultFeedAPIChunkDays
			}
		default:
			return nil, fmt.Errorf("unknown source kind %q for source %s", sc.Kind, sc.ID)
		}
		s.adapters = append(s.adapters, sourceEntry{adapter: adapter, chunkDays: chunkDays})
	}
	return s, nil
}

// AddAdapter registers an extra adapter. Test hook.
func (s *Scheduler) AddAdapter(adapter sources.Adapter, chunkDays int) {
	s.adapters = append(s.adapters, sourceEntry{adapter: adapter, chunkDays: chunkDays})
}

// SetOnRunComplete registers the post-run callback.
func (s *Scheduler) SetOnRunComplete(fn func()) { s.onRunComplete = fn }

// Serve runs the cadence until ctx is cancelled. Implements
// suture.Service.
func (s *Scheduler) Serve(ctx context.Context) error {
	// One run at startup so a fresh deployment has data before the
	// first tick.
	if _, err := s.RunAll(ctx, ingest.Options{}); err != nil {
		logging.Error().Err(err).Msg("Initial ingest run failed")
	}

	// Wait for the first wall-clock-aligned tick, then keep the cadence.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Until(s.NextAlignedRun(time.Now()))):
	}
	if _, err := s.RunAll(ctx, ingest.Options{}); err != nil {
		logging.Error().Err(err).Msg("Scheduled ingest run failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunAll(ctx, ingest.Options{}); err != nil {
				logging.Error().Err(err).Msg("Scheduled ingest run failed")
			}
		}
	}
}

// String names the service in the supervisor tree.
func (s *Scheduler) String() string { return "ingest-scheduler" }

// RunAll ingests every source over the default window, aggregating
// stats. Per-source failures are logged and the next source proceeds.
func (s *Scheduler) RunAll(ctx context.Context, opts ingest.Options) (ingest.Stats, error) {
	var total ingest.Stats
	window := sources.DefaultWindow(time.Now(), s.lookback, s.lookahead, s.location)

	for _, entry := range s.adapters {
		stats, err := s.orchestrator.RunChunked(ctx, entry.adapter, window, entry.chunkDays, opts)
		total = aggregate(total, stats)
		if err != nil {
			logging.Error().Err(err).Str("source", entry.adapter.SourceID()).Msg("Source ingest failed, continuing with next source")
		}
	}

	if s.onRunComplete != nil {
		s.onRunComplete()
	}
	return total, nil
}

// RunSource ingests one source by id.
func (s *Scheduler) RunSource(ctx context.Context, sourceID string, opts ingest.Options) (ingest.Stats, error) {
	for _, entry := range s.adapters {
		if entry.adapter.SourceID() != sourceID {
			continue
		}
		window := sources.DefaultWindow(time.Now(), s.lookback, s.lookahead, s.location)
		stats, err := s.orchestrator.RunChunked(ctx, entry.adapter, window, entry.chunkDays, opts)
		if err == nil && s.onRunComplete != nil {
			s.onRunComplete()
		}
		return stats, err
	}
	return ingest.Stats{}, fmt.Errorf("unknown source %q", sourceID)
}

// aggregate merges run stats. Kept as a free function so callers never
// mutate a shared Stats value concurrently.
func aggregate(a, b ingest.Stats) ingest.Stats {
	return ingest.Stats{
		Fetched: a.Fetched + b.Fetched,
		Created: a.Created + b.Created,
		Updated: a.Updated + b.Updated,
		Skipped: a.Skipped + b.Skipped,
	}
}

// NextAlignedRun reports when the next cadence tick lands, aligned to
// the display time zone's wall clock.
func (s *Scheduler) NextAlignedRun(now time.Time) time.Time {
	local := now.In(s.location)
	day := timeutil.DayWindow(now, s.location)
	elapsed := local.Sub(day.Start.In(s.location))
	ticks := elapsed / s.interval
	return day.Start.Add((ticks + 1) * s.interval)
}
