// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/eventus/internal/category"
	"github.com/tomtom215/eventus/internal/config"
	"github.com/tomtom215/eventus/internal/ingest"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/sources"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/timeutil"
)

type nilGateway struct{}

func (nilGateway) ClassifyTags(ctx context.Context, title, description string) ([]models.TagCandidate, error) {
	return nil, nil
}

func (nilGateway) EmbedMany(ctx context.Context, texts []string) ([][]float64, error) {
	return make([][]float64, len(texts)), nil
}

type nilAssigner struct{}

func (nilAssigner) AssignSeries(ctx context.Context, seriesID string, force bool) (*category.Assignment, error) {
	return nil, nil
}

// failingAdapter always fails its fetch.
type failingAdapter struct{ id string }

func (f failingAdapter) SourceID() string { return f.id }

func (f failingAdapter) FetchRawEvents(ctx context.Context, w timeutil.Window) ([]sources.RawEventPayload, error) {
	return nil, errors.New("upstream down")
}

func (f failingAdapter) Normalize(p sources.RawEventPayload) (*sources.NormalizedEvent, error) {
	return nil, errors.New("unreachable")
}

func testScheduler(t *testing.T, cfg config.IngestConfig) (*store.Store, *Scheduler) {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })

	orch := ingest.NewOrchestrator(s, nilGateway{}, nilAssigner{})
	sched, err := New(orch, cfg, time.UTC, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	return s, sched
}

func TestNew_RejectsUnknownKind(t *testing.T) {
	s, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	orch := ingest.NewOrchestrator(s, nilGateway{}, nilAssigner{})
	_, err = New(orch, config.IngestConfig{
		Sources: []config.SourceConfig{{ID: "x", Kind: "carrier-pigeon"}},
	}, time.UTC, time.Second)
	if err == nil {
		t.Error("unknown source kind must be rejected")
	}
}

func TestRunAll_SourceFailureIsolated(t *testing.T) {
	s, sched := testScheduler(t, config.IngestConfig{LookbackDays: 1, LookaheadDays: 7})

	now := time.Now().UTC()
	sched.AddAdapter(failingAdapter{id: "broken"}, 7)
	sched.AddAdapter(sources.NewMockAdapter("ok", "Cal", []sources.MockEvent{
		{ID: "e1", Title: "Surviving Event", Start: now.Add(24 * time.Hour)},
	}), 7)

	ran := false
	sched.SetOnRunComplete(func() { ran = true })

	stats, err := sched.RunAll(context.Background(), ingest.Options{})
	if err != nil {
		t.Fatalf("RunAll: %v", err)
	}
	if stats.Created != 1 {
		t.Errorf("stats = %+v; the healthy source must still ingest", stats)
	}
	if !ran {
		t.Error("onRunComplete must fire")
	}

	event, _ := s.GetEvent(context.Background(), "ok:e1")
	if event == nil {
		t.Error("event from healthy source missing")
	}
}

func TestRunSource_Unknown(t *testing.T) {
	_, sched := testScheduler(t, config.IngestConfig{})
	if _, err := sched.RunSource(context.Background(), "ghost", ingest.Options{}); err == nil {
		t.Error("unknown source id must error")
	}
}

func TestNextAlignedRun(t *testing.T) {
	_, sched := testScheduler(t, config.IngestConfig{Interval: 30 * time.Minute})

	now := time.Date(2026, 8, 5, 10, 17, 0, 0, time.UTC)
	next := sched.NextAlignedRun(now)
	want := time.Date(2026, 8, 5, 10, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("next = %v, want %v", next, want)
	}
}
