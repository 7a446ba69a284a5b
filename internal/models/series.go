// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package models

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/tomtom215/eventus/internal/slug"
)

// MaxSeriesOccurrences caps the rolling window of upcoming occurrences.
const MaxSeriesOccurrences = 20

// ContentTypeSeries is the content type carried by every EventSeries.
const ContentTypeSeries = "event-series"

// maxSeriesIDLen bounds series identifiers; longer ids are tail-hashed.
const maxSeriesIDLen = 200

// Host identifies the organizer a series belongs to.
type Host struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Organizer string   `json:"organizer,omitempty"`
	SourceIDs []string `json:"sourceIds,omitempty"`
}

// Occurrence is one upcoming instance of a series, denormalized from the
// member event.
type Occurrence struct {
	EventID   string     `json:"eventId"`
	Title     string     `json:"title"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
	Location  string     `json:"location,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
}

// SeriesStats carries aggregate counters for a series.
type SeriesStats struct {
	UpcomingCount int `json:"upcomingCount"`
}

// EventSeries clusters recurring events sharing (host, title).
// Identity is "{hostId}__{slug(title)}", tail-hashed past 200 chars.
type EventSeries struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Summary     string `json:"summary,omitempty"`
	ContentType string `json:"contentType"`

	Host Host `json:"host"`

	// Tags is the union of member-event tag sets.
	Tags        []string     `json:"tags,omitempty"`
	Breadcrumbs []Breadcrumb `json:"breadcrumbs,omitempty"`
	Source      SourceRef    `json:"source"`
	Venue       *Venue       `json:"venue,omitempty"`

	CategoryID   string `json:"categoryId,omitempty"`
	CategoryName string `json:"categoryName,omitempty"`
	CategorySlug string `json:"categorySlug,omitempty"`

	// UpcomingOccurrences is ordered ascending by startTime, capped at
	// MaxSeriesOccurrences; entries older than 24h are evicted on write.
	UpcomingOccurrences []Occurrence `json:"upcomingOccurrences,omitempty"`
	NextOccurrence      *Occurrence  `json:"nextOccurrence,omitempty"`
	NextStartTime       *time.Time   `json:"nextStartTime,omitempty"`

	Vector []float64 `json:"vector,omitempty"`

	Stats SeriesStats `json:"stats"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BuildSeriesID derives the deterministic series identity for a host and
// event title. Titles that slugify to nothing fall back to "untitled".
func BuildSeriesID(hostID, title string) string {
	titleSlug := slug.Slugify(title)
	if titleSlug == "" {
		titleSlug = "untitled"
	}
	id := hostID + "__" + titleSlug
	if len(id) <= maxSeriesIDLen {
		return id
	}
	h := fnv.New64a()
	h.Write([]byte(id))
	suffix := fmt.Sprintf("-%011x", h.Sum64()&0xfffffffffff)
	return id[:maxSeriesIDLen-len(suffix)] + suffix
}
