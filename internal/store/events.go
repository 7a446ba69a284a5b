// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package store

import (
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// GetEvent returns the stored event or nil when absent.
func (s *Store) GetEvent(ctx context.Context, id string) (*models.CanonicalEvent, error) {
	var event models.CanonicalEvent
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, eventKey(id), &event)
	})
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// SaveEvent writes the full event record and reports whether it was
// created. existing is the pre-read snapshot (nil on first save); it
// decides created-vs-updated and locates the start-time index entry to
// replace. Tags are normalized on write; JSON marshalling with
// omitempty strips absent optional fields so no undefined values reach
// the store.
func (s *Store) SaveEvent(ctx context.Context, event *models.CanonicalEvent, existing *models.CanonicalEvent) (bool, error) {
	created := existing == nil
	now := time.Now().UTC()

	event.Tags = normalizeTags(event.Tags)
	event.UpdatedAt = now
	if created {
		event.CreatedAt = now
	} else {
		event.CreatedAt = existing.CreatedAt
	}

	err := s.update("events", func(txn *badger.Txn) error {
		if existing != nil && !existing.StartTime.Equal(event.StartTime) {
			if err := txn.Delete([]byte(eventStartIdxKey(existing.StartTime, event.ID))); err != nil {
				return err
			}
		}
		if err := txn.Set([]byte(eventStartIdxKey(event.StartTime, event.ID)), []byte(event.ID)); err != nil {
			return err
		}
		return setJSON(txn, eventKey(event.ID), event)
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

// TouchEvent refreshes only the fetch bookkeeping timestamps. Used when
// change detection determined no reclassification is needed.
func (s *Store) TouchEvent(ctx context.Context, id string, fetchedAt time.Time) error {
	return s.update("events", func(txn *badger.Txn) error {
		var event models.CanonicalEvent
		if err := getJSON(txn, eventKey(id), &event); err != nil {
			return err
		}
		event.LastFetchedAt = fetchedAt
		event.UpdatedAt = time.Now().UTC()
		return setJSON(txn, eventKey(id), &event)
	})
}

// UpdateEventSeriesInfo merge-patches the series back-references onto an
// event after series attachment / category assignment.
func (s *Store) UpdateEventSeriesInfo(ctx context.Context, eventID, seriesID, categoryID, categoryName string) error {
	return s.update("events", func(txn *badger.Txn) error {
		var event models.CanonicalEvent
		if err := getJSON(txn, eventKey(eventID), &event); err != nil {
			return err
		}
		if seriesID != "" {
			event.SeriesID = seriesID
		}
		if categoryID != "" {
			event.SeriesCategoryID = categoryID
			event.SeriesCategoryName = categoryName
		}
		event.UpdatedAt = time.Now().UTC()
		return setJSON(txn, eventKey(eventID), &event)
	})
}

// ListEventsInWindow returns events with startTime in [window.Start,
// window.End), ordered by (startTime ASC, id ASC), capped at limit
// (0 = no cap).
func (s *Store) ListEventsInWindow(ctx context.Context, window timeutil.Window, limit int) ([]*models.CanonicalEvent, error) {
	var ids []string
	endPrefix := eventStartIdxPrefix + tsKey(window.End)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(eventStartIdxPrefix + tsKey(window.Start))
		for it.Seek(seek); it.ValidForPrefix([]byte(eventStartIdxPrefix)); it.Next() {
			item := it.Item()
			if string(item.Key()) >= endPrefix {
				break
			}
			// The index value carries the event id; ids themselves may
			// contain ':' so the key tail is not parseable.
			id, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			ids = append(ids, string(id))
			if limit > 0 && len(ids) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events := make([]*models.CanonicalEvent, 0, len(ids))
	for _, id := range ids {
		event, err := s.GetEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if event != nil {
			events = append(events, event)
		}
	}
	return events, nil
}

// normalizeTags lower-cases, trims, drops empties and de-duplicates
// while preserving order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
