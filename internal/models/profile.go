// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package models

import "time"

// Engagement style thresholds.
const (
	DeepReaderDwellSeconds  = 10
	QuickBrowserDwellSecond = 3
	ScrollsDeepPosition     = 20
)

// EngagementStyle summarizes how a user consumes the feed.
type EngagementStyle struct {
	IsDeepReader bool    `json:"isDeepReader"`
	QuickBrowser bool    `json:"quickBrowser"`
	ScrollsDeep  bool    `json:"scrollsDeep"`
	AvgDwellTime float64 `json:"avgDwellTime"`
	AvgPosition  float64 `json:"avgPosition"`
}

// UserProfile is derived from the most recent interactions; it is
// computed on demand and not stored long-term.
type UserProfile struct {
	UserID string `json:"userId"`

	// Embedding is the centroid of positive-action content vectors,
	// nil when the user has none.
	Embedding []float64 `json:"embedding,omitempty"`

	// ContentTypeAffinity maps content type to a score in [-1, 1].
	ContentTypeAffinity map[string]float64 `json:"contentTypeAffinity,omitempty"`

	// TimeOfDayPatterns is a histogram over the four buckets.
	TimeOfDayPatterns map[string]int `json:"timeOfDayPatterns,omitempty"`

	EngagementStyle EngagementStyle `json:"engagementStyle"`

	TotalInteractions int       `json:"totalInteractions"`
	LastActiveAt      time.Time `json:"lastActiveAt"`
}

// PinnedEvent is a per-(user, event) pin with a denormalized snapshot so
// the pinned view renders without hydrating the event.
type PinnedEvent struct {
	UserID         string     `json:"userId"`
	EventID        string     `json:"eventId"`
	Title          string     `json:"title"`
	Location       string     `json:"location,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	EventStartTime time.Time  `json:"eventStartTime"`
	EventEndTime   *time.Time `json:"eventEndTime,omitempty"`
	ContentType    string     `json:"contentType"`
	Source         SourceRef  `json:"source"`
	SeriesID       string     `json:"seriesId,omitempty"`
	SeriesTitle    string     `json:"seriesTitle,omitempty"`
	HostName       string     `json:"hostName,omitempty"`
	PinnedAt       time.Time  `json:"pinnedAt"`

	// Derived marks occurrences synthesized from a pinned series rather
	// than pinned directly.
	Derived bool `json:"derived,omitempty"`
}

// PinnedSeries is a per-(user, series) pin.
type PinnedSeries struct {
	UserID   string    `json:"userId"`
	SeriesID string    `json:"seriesId"`
	Title    string    `json:"title"`
	HostName string    `json:"hostName,omitempty"`
	Tags     []string  `json:"tags,omitempty"`
	Source   SourceRef `json:"source"`
	PinnedAt time.Time `json:"pinnedAt"`
}

// UserCategoryBundleState tracks the last category version a user has
// acknowledged, driving the "what's new" diff.
type UserCategoryBundleState struct {
	UserID          string    `json:"userId"`
	CategoryID      string    `json:"categoryId"`
	LastSeenVersion int       `json:"lastSeenVersion"`
	LastSeenAt      time.Time `json:"lastSeenAt"`
}
