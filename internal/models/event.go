// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package models defines the canonical record types shared across the
// ingestion pipeline, stores and feed: events, series, categories,
// interactions, pins and the uniform content item the ranker scores.
package models

import (
	"fmt"
	"time"
)

// DefaultTitle is substituted when a source event arrives without one.
const DefaultTitle = "Untitled Event"

// MaxBreadcrumbs caps the audit chain on events and series.
const MaxBreadcrumbs = 20

// Venue describes where an event takes place.
type Venue struct {
	Name        string `json:"name,omitempty"`
	Address     string `json:"address,omitempty"`
	RawLocation string `json:"rawLocation,omitempty"`
}

// SourceRef identifies the upstream record an entity was derived from.
type SourceRef struct {
	SourceID      string `json:"sourceId"`
	SourceEventID string `json:"sourceEventId,omitempty"`
	SourceURL     string `json:"sourceUrl,omitempty"`
}

// Breadcrumb is one entry of the append-only audit chain recording every
// fetch that touched a record.
type Breadcrumb struct {
	Type          string         `json:"type"`
	SourceID      string         `json:"sourceId"`
	SourceEventID string         `json:"sourceEventId,omitempty"`
	FetchedAt     time.Time      `json:"fetchedAt"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// TagCandidate is a single classifier suggestion with provenance.
type TagCandidate struct {
	Tag        string  `json:"tag"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale,omitempty"`
	// Source is one of "llm", "embedding", "keyword".
	Source string `json:"source,omitempty"`
}

// Classification is the persisted outcome of the tag classifier.
type Classification struct {
	Tags       []string       `json:"tags,omitempty"`
	Candidates []TagCandidate `json:"candidates,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// CanonicalEvent is the normalized form every source event is reduced to.
// Identity is "{sourceId}:{sourceEventId}".
type CanonicalEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	TimeZone  string     `json:"timeZone,omitempty"`
	IsAllDay  bool       `json:"isAllDay,omitempty"`

	Venue     *Venue `json:"venue,omitempty"`
	Organizer string `json:"organizer,omitempty"`
	Price     string `json:"price,omitempty"`
	Status    string `json:"status,omitempty"`

	// Tags is the final sorted-unique, stop-word-filtered slug set.
	Tags           []string        `json:"tags,omitempty"`
	Classification *Classification `json:"classification,omitempty"`

	// Vector is the embedding of the enriched text. Length equals the
	// deployment's embedding dimension, or nil when not embedded.
	Vector []float64 `json:"vector,omitempty"`

	Breadcrumbs []Breadcrumb `json:"breadcrumbs,omitempty"`
	Source      SourceRef    `json:"source"`

	LastFetchedAt time.Time `json:"lastFetchedAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	SeriesID           string `json:"seriesId,omitempty"`
	SeriesCategoryID   string `json:"seriesCategoryId,omitempty"`
	SeriesCategoryName string `json:"seriesCategoryName,omitempty"`
}

// EventID builds the canonical event identity from its source reference.
func EventID(sourceID, sourceEventID string) string {
	return fmt.Sprintf("%s:%s", sourceID, sourceEventID)
}

// AppendBreadcrumb appends b to chain, keeping the most recent
// MaxBreadcrumbs entries.
func AppendBreadcrumb(chain []Breadcrumb, b Breadcrumb) []Breadcrumb {
	chain = append(chain, b)
	if len(chain) > MaxBreadcrumbs {
		chain = chain[len(chain)-MaxBreadcrumbs:]
	}
	return chain
}
