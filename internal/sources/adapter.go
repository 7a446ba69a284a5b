// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package sources defines the source-adapter contract the ingest
// pipeline consumes and ships the calendar-feed adapter. An adapter
// fetches raw items for a time window and normalizes each into a
// canonical event plus host context; everything downstream of that
// contract is source-agnostic.
package sources

import (
	"context"
	"time"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// RawEventPayload is one fetched item before normalization. Raw holds
// the source's own representation, opaque to the pipeline.
type RawEventPayload struct {
	SourceID      string
	SourceEventID string
	FetchedAt     time.Time
	Raw           map[string]any
}

// HostContext identifies the organizer a payload belongs to.
// HostIDSeed is deterministic: two events from the same organizer on
// the same source always yield the same seed.
type HostContext struct {
	HostIDSeed string
	HostName   string
	Organizer  string
}

// NormalizedEvent is the result of normalizing one payload.
type NormalizedEvent struct {
	Event       *models.CanonicalEvent
	RawSnapshot map[string]any
	Host        HostContext
}

// Adapter is the pluggable source backend.
type Adapter interface {
	// SourceID returns the stable identifier of this source.
	SourceID() string

	// FetchRawEvents fetches every raw item inside the window.
	FetchRawEvents(ctx context.Context, window timeutil.Window) ([]RawEventPayload, error)

	// Normalize converts one payload to the canonical schema. A failed
	// normalization skips that payload only.
	Normalize(payload RawEventPayload) (*NormalizedEvent, error)
}

// DefaultWindow builds a source-defined default window of lookback and
// lookahead days around now, with day boundaries in loc.
func DefaultWindow(now time.Time, lookbackDays, lookaheadDays int, loc *time.Location) timeutil.Window {
	start := timeutil.DayWindow(now.AddDate(0, 0, -lookbackDays), loc).Start
	end := timeutil.DayWindow(now.AddDate(0, 0, lookaheadDays), loc).End
	return timeutil.Window{Start: start, End: end}
}
