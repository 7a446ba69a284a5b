// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package ingest

import (
	"context"

	"github.com/tomtom215/eventus/internal/sources"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// DefaultChunkDays per source kind: calendars paginate comfortably in
// week-sized windows, feed APIs tolerate larger ones.
const (
	DefaultCalendarChunkDays = 7
	DefaultFeedAPIChunkDays  = 15
)

// RunChunked splits [window.Start, window.End) into chunkDays-sized
// sub-windows, right-exclusive and contiguous, runs the pipeline over
// each and aggregates the stats. A chunk failure aborts the remainder
// of this source's run.
func (o *Orchestrator) RunChunked(ctx context.Context, adapter sources.Adapter, window timeutil.Window, chunkDays int, opts Options) (Stats, error) {
	if chunkDays <= 0 {
		chunkDays = DefaultCalendarChunkDays
	}

	var total Stats
	for start := window.Start; start.Before(window.End); {
		end := start.AddDate(0, 0, chunkDays)
		if end.After(window.End) {
			end = window.End
		}
		stats, err := o.Run(ctx, adapter, timeutil.Window{Start: start, End: end}, opts)
		total.add(stats)
		if err != nil {
			return total, err
		}
		start = end
	}
	return total, nil
}
