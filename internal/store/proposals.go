// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package store

import (
	"context"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/eventus/internal/models"
)

// MaxProposalTagsPerEvent caps how many slugs a single event may feed
// into the proposal recorder.
const MaxProposalTagsPerEvent = 10

// RecordTagProposals bumps the occurrence counters for each slug an
// event carried. Each slug's increments (count, per-source count,
// lastSeenAt, sample list) run in one transaction over its proposal
// document; a missing proposal is created with count 1.
func (s *Store) RecordTagProposals(ctx context.Context, eventID, eventTitle, sourceID string, slugs []string) error {
	if len(slugs) > MaxProposalTagsPerEvent {
		slugs = slugs[:MaxProposalTagsPerEvent]
	}
	now := time.Now().UTC()

	for _, tag := range slugs {
		err := s.update("tagProposals", func(txn *badger.Txn) error {
			var p models.TagProposal
			err := getJSON(txn, proposalKey(tag), &p)
			if err == ErrNotFound {
				p = models.TagProposal{
					Slug:        tag,
					Status:      models.ProposalStatusPending,
					FirstSeenAt: now,
				}
			} else if err != nil {
				return err
			}

			p.OccurrenceCount++
			if p.SourceCounts == nil {
				p.SourceCounts = map[string]int{}
			}
			p.SourceCounts[sourceID]++
			p.LastSeenAt = now
			p.SampleEvents = prependSample(p.SampleEvents, models.ProposalSample{
				EventID:  eventID,
				Title:    eventTitle,
				SourceID: sourceID,
				SeenAt:   now,
			})

			return setJSON(txn, proposalKey(tag), &p)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// GetTopProposals returns pending proposals ordered by
// (occurrenceCount DESC, lastSeenAt DESC), capped at limit.
func (s *Store) GetTopProposals(ctx context.Context, limit int) ([]*models.TagProposal, error) {
	var proposals []*models.TagProposal
	err := s.iteratePrefix(proposalKeyPrefix, false, func(key string, val []byte) (bool, error) {
		var p models.TagProposal
		if err := unmarshal(val, &p); err != nil {
			return false, err
		}
		if p.Status == models.ProposalStatusPending {
			proposals = append(proposals, &p)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(proposals, func(i, j int) bool {
		if proposals[i].OccurrenceCount != proposals[j].OccurrenceCount {
			return proposals[i].OccurrenceCount > proposals[j].OccurrenceCount
		}
		return proposals[i].LastSeenAt.After(proposals[j].LastSeenAt)
	})
	if limit > 0 && len(proposals) > limit {
		proposals = proposals[:limit]
	}
	return proposals, nil
}

// prependSample inserts the newest sample at the head, de-duplicating
// by eventId and keeping MaxProposalSamples entries.
func prependSample(samples []models.ProposalSample, sample models.ProposalSample) []models.ProposalSample {
	out := make([]models.ProposalSample, 0, len(samples)+1)
	out = append(out, sample)
	for _, s := range samples {
		if s.EventID == sample.EventID {
			continue
		}
		out = append(out, s)
	}
	if len(out) > models.MaxProposalSamples {
		out = out[:models.MaxProposalSamples]
	}
	return out
}
