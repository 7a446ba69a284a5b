// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package sources

import (
	"context"
	"time"

	"github.com/tomtom215/eventus/internal/timeutil"
)

// MockAdapter serves fixture payloads for tests and local development.
// It normalizes through the same path as the calendar adapter so the
// pipeline exercises identical code.
type MockAdapter struct {
	sourceID string
	label    string
	items    []MockEvent
	inner    *CalendarFeedAdapter
}

// MockEvent is one fixture event.
type MockEvent struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         *time.Time
	Location    string
	Organizer   string
	// Updated defaults to Start so unchanged fixtures reuse their
	// stored classification across runs.
	Updated time.Time
}

// NewMockAdapter builds an adapter over fixed events.
func NewMockAdapter(sourceID, label string, items []MockEvent) *MockAdapter {
	return &MockAdapter{
		sourceID: sourceID,
		label:    label,
		items:    items,
		inner: NewCalendarFeedAdapter(CalendarFeedConfig{
			SourceID: sourceID,
			Label:    label,
		}),
	}
}

// SourceID returns the configured source identifier.
func (a *MockAdapter) SourceID() string { return a.sourceID }

// FetchRawEvents returns the fixtures that fall inside the window.
func (a *MockAdapter) FetchRawEvents(ctx context.Context, window timeutil.Window) ([]RawEventPayload, error) {
	fetchedAt := time.Now().UTC()
	var payloads []RawEventPayload
	for _, m := range a.items {
		if !window.Contains(m.Start) {
			continue
		}
		updated := m.Updated
		if updated.IsZero() {
			updated = m.Start
		}
		item := map[string]any{
			"id":          m.ID,
			"summary":     m.Title,
			"description": m.Description,
			"start":       map[string]any{"dateTime": m.Start.Format(time.RFC3339)},
			"location":    m.Location,
			"updated":     updated.Format(time.RFC3339),
		}
		if m.End != nil {
			item["end"] = map[string]any{"dateTime": m.End.Format(time.RFC3339)}
		}
		if m.Organizer != "" {
			item["organizer"] = map[string]any{"displayName": m.Organizer}
		}
		payloads = append(payloads, RawEventPayload{
			SourceID:      a.sourceID,
			SourceEventID: m.ID,
			FetchedAt:     fetchedAt,
			Raw:           map[string]any{"item": item},
		})
	}
	return payloads, nil
}

// Normalize delegates to the calendar normalization path.
func (a *MockAdapter) Normalize(payload RawEventPayload) (*NormalizedEvent, error) {
	return a.inner.Normalize(payload)
}
