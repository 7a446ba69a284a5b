// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package models

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

const (
	// MaxCategoryTags caps the category tag union.
	MaxCategoryTags = 50

	// MaxCategorySamples caps sampleSeriesTitles.
	MaxCategorySamples = 8

	// MaxCategoryChangeLog caps the retained changeLog entries.
	MaxCategoryChangeLog = 25
)

// ChangeLogEntry records the series added in one version bump.
type ChangeLogEntry struct {
	Version           int       `json:"version"`
	AddedSeriesIDs    []string  `json:"addedSeriesIds,omitempty"`
	AddedSeriesTitles []string  `json:"addedSeriesTitles,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// EventCategory groups a host's series into a user-facing bucket.
// Identity is "category:{hash12(hostId:name-lowercased)}".
type EventCategory struct {
	ID          string `json:"id"`
	HostID      string `json:"hostId"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`

	// Tags is the union of member-series tags, capped at MaxCategoryTags.
	Tags []string `json:"tags,omitempty"`

	// SampleSeriesTitles holds the most recent MaxCategorySamples titles.
	SampleSeriesTitles []string `json:"sampleSeriesTitles,omitempty"`

	SeriesIDs []string `json:"seriesIds,omitempty"`

	// Version increments by 1 whenever a series not already in SeriesIDs
	// is added. Always >= 1.
	Version   int              `json:"version"`
	ChangeLog []ChangeLogEntry `json:"changeLog,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryID derives the deterministic category identity for a host and
// category name. The name is lower-cased so renames differing only by
// case collide onto the same document.
func CategoryID(hostID, name string) string {
	sum := sha256.Sum256([]byte(hostID + ":" + strings.ToLower(name)))
	return "category:" + hex.EncodeToString(sum[:])[:12]
}

// HasSeries reports whether seriesID is already a member.
func (c *EventCategory) HasSeries(seriesID string) bool {
	for _, id := range c.SeriesIDs {
		if id == seriesID {
			return true
		}
	}
	return false
}
