// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package models

import "time"

// MaxProposalSamples caps the retained sample events per proposal.
const MaxProposalSamples = 5

// ProposalSample is one example event that carried the proposed tag.
type ProposalSample struct {
	EventID  string    `json:"eventId"`
	Title    string    `json:"title"`
	SourceID string    `json:"sourceId"`
	SeenAt   time.Time `json:"seenAt"`
}

// TagProposal tracks how often a candidate slug shows up across sources,
// pending human promotion into the curated tag vocabulary.
type TagProposal struct {
	Slug            string           `json:"slug"`
	Status          string           `json:"status"` // "pending" until reviewed
	OccurrenceCount int              `json:"occurrenceCount"`
	SourceCounts    map[string]int   `json:"sourceCounts,omitempty"`
	SampleEvents    []ProposalSample `json:"sampleEvents,omitempty"`
	FirstSeenAt     time.Time        `json:"firstSeenAt"`
	LastSeenAt      time.Time        `json:"lastSeenAt"`
}

// ProposalStatusPending is the initial status of every recorded proposal.
const ProposalStatusPending = "pending"
