// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package models

import "time"

// ContentStats carries the popularity counters read by the ranker.
type ContentStats struct {
	Views     int `json:"views"`
	Likes     int `json:"likes"`
	Shares    int `json:"shares"`
	Bookmarks int `json:"bookmarks"`
}

// Add returns the element-wise sum of two stat sets.
func (s ContentStats) Add(o ContentStats) ContentStats {
	return ContentStats{
		Views:     s.Views + o.Views,
		Likes:     s.Likes + o.Likes,
		Shares:    s.Shares + o.Shares,
		Bookmarks: s.Bookmarks + o.Bookmarks,
	}
}

// ContentItem is the uniform shape the feed ranker scores. Events,
// series and synthetic category bundles are all flattened onto it;
// cross-references travel as ids in Metadata, never as pointers.
type ContentItem struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	ContentType string         `json:"contentType"`
	Tags        []string       `json:"tags,omitempty"`
	Embedding   []float64      `json:"embedding,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	StartTime   *time.Time     `json:"startTime,omitempty"`
	Stats       ContentStats   `json:"stats"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ScoredItem pairs a content item with its ranking score and the
// per-signal breakdown.
type ScoredItem struct {
	Item  ContentItem        `json:"item"`
	Score float64            `json:"score"`
	// Scores breaks the total down by signal name.
	Scores map[string]float64 `json:"scores,omitempty"`
}

// EventContentItem flattens a canonical event for ranking.
func EventContentItem(e *CanonicalEvent) ContentItem {
	start := e.StartTime
	return ContentItem{
		ID:          e.ID,
		Title:       e.Title,
		ContentType: ContentTypeEvent,
		Tags:        e.Tags,
		Embedding:   e.Vector,
		CreatedAt:   e.CreatedAt,
		StartTime:   &start,
		Metadata: map[string]any{
			"seriesId":   e.SeriesID,
			"categoryId": e.SeriesCategoryID,
		},
	}
}

// SeriesContentItem flattens a series for ranking.
func SeriesContentItem(s *EventSeries) ContentItem {
	item := ContentItem{
		ID:          s.ID,
		Title:       s.Title,
		ContentType: ContentTypeSeries,
		Tags:        s.Tags,
		Embedding:   s.Vector,
		CreatedAt:   s.CreatedAt,
		StartTime:   s.NextStartTime,
		Metadata: map[string]any{
			"hostId":     s.Host.ID,
			"categoryId": s.CategoryID,
		},
	}
	return item
}
