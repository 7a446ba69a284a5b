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
	"github.com/tomtom215/eventus/internal/timeutil"
)

// occurrenceGrace keeps occurrences up to this long past their start.
const occurrenceGrace = 24 * time.Hour

// AttachContext carries the host and source information an attachment
// needs beyond the event itself.
type AttachContext struct {
	HostID    string
	HostName  string
	Organizer string
	SourceID  string
}

// AttachResult reports the outcome of AttachEvent.
type AttachResult struct {
	SeriesID string
	Host     models.Host
	Created  bool
}

// AttachEvent attaches an event to its (host, title) series inside a
// single transaction: create on first attachment, otherwise merge the
// occurrence (dedupe by eventId, evict stale, sort, cap), union tags and
// sourceIds, append a breadcrumb and refresh the next-occurrence
// denormalization.
func (s *Store) AttachEvent(ctx context.Context, event *models.CanonicalEvent, ac AttachContext) (*AttachResult, error) {
	seriesID := models.BuildSeriesID(ac.HostID, event.Title)
	now := time.Now().UTC()
	occurrence := occurrenceFromEvent(event)

	result := &AttachResult{SeriesID: seriesID}

	err := s.update("eventSeries", func(txn *badger.Txn) error {
		var series models.EventSeries
		err := getJSON(txn, seriesKey(seriesID), &series)
		switch err {
		case nil:
			result.Created = false
		case ErrNotFound:
			result.Created = true
			series = models.EventSeries{
				ID:          seriesID,
				Title:       event.Title,
				Description: event.Description,
				ContentType: models.ContentTypeSeries,
				Host: models.Host{
					ID:        ac.HostID,
					Name:      ac.HostName,
					Organizer: ac.Organizer,
				},
				Source: models.SourceRef{
					SourceID:  ac.SourceID,
					SourceURL: event.Source.SourceURL,
				},
				Venue:     event.Venue,
				CreatedAt: now,
			}
		default:
			return err
		}

		prevNext := series.NextStartTime

		// Merge occurrences: drop this event's prior entry and anything
		// stale, append, sort, cap.
		merged := make([]models.Occurrence, 0, len(series.UpcomingOccurrences)+1)
		cutoff := now.Add(-occurrenceGrace)
		for _, occ := range series.UpcomingOccurrences {
			if occ.EventID == occurrence.EventID || occ.StartTime.Before(cutoff) {
				continue
			}
			merged = append(merged, occ)
		}
		if !occurrence.StartTime.Before(cutoff) {
			merged = append(merged, occurrence)
		}
		sort.Slice(merged, func(i, j int) bool {
			if merged[i].StartTime.Equal(merged[j].StartTime) {
				return merged[i].EventID < merged[j].EventID
			}
			return merged[i].StartTime.Before(merged[j].StartTime)
		})
		if len(merged) > models.MaxSeriesOccurrences {
			merged = merged[:models.MaxSeriesOccurrences]
		}
		series.UpcomingOccurrences = merged

		series.Tags = unionStrings(series.Tags, event.Tags)
		series.Host.SourceIDs = unionStrings(series.Host.SourceIDs, []string{ac.SourceID})
		if series.Vector == nil && event.Vector != nil {
			series.Vector = event.Vector
		}

		series.Breadcrumbs = appendSeriesBreadcrumb(series.Breadcrumbs, models.Breadcrumb{
			Type:          "event-attach",
			SourceID:      ac.SourceID,
			SourceEventID: event.Source.SourceEventID,
			FetchedAt:     event.LastFetchedAt,
		})

		if len(merged) > 0 {
			first := merged[0]
			series.NextOccurrence = &first
			series.NextStartTime = &first.StartTime
		} else {
			series.NextOccurrence = nil
			series.NextStartTime = nil
		}
		series.Stats.UpcomingCount = len(merged)
		series.UpdatedAt = now

		// Keep the next-start index in step with the denormalization.
		if prevNext != nil && (series.NextStartTime == nil || !prevNext.Equal(*series.NextStartTime)) {
			if err := txn.Delete([]byte(seriesNextIdxKey(*prevNext, seriesID))); err != nil {
				return err
			}
		}
		if series.NextStartTime != nil {
			if err := txn.Set([]byte(seriesNextIdxKey(*series.NextStartTime, seriesID)), []byte(seriesID)); err != nil {
				return err
			}
		}

		result.Host = series.Host
		return setJSON(txn, seriesKey(seriesID), &series)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetSeries returns the stored series or nil when absent.
func (s *Store) GetSeries(ctx context.Context, id string) (*models.EventSeries, error) {
	var series models.EventSeries
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, seriesKey(id), &series)
	})
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &series, nil
}

// UpdateSeriesCategory merge-patches the category assignment onto a
// series document.
func (s *Store) UpdateSeriesCategory(ctx context.Context, seriesID, categoryID, categoryName, categorySlug string) error {
	return s.update("eventSeries", func(txn *badger.Txn) error {
		var series models.EventSeries
		if err := getJSON(txn, seriesKey(seriesID), &series); err != nil {
			return err
		}
		series.CategoryID = categoryID
		series.CategoryName = categoryName
		series.CategorySlug = categorySlug
		series.UpdatedAt = time.Now().UTC()
		return setJSON(txn, seriesKey(seriesID), &series)
	})
}

// ListSeriesInWindow returns series whose next start falls inside the
// window, ordered by nextStartTime ascending.
func (s *Store) ListSeriesInWindow(ctx context.Context, window timeutil.Window, limit int) ([]*models.EventSeries, error) {
	var ids []string
	endPrefix := seriesNextIdxPrefix + tsKey(window.End)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		seek := []byte(seriesNextIdxPrefix + tsKey(window.Start))
		for it.Seek(seek); it.ValidForPrefix([]byte(seriesNextIdxPrefix)); it.Next() {
			item := it.Item()
			if string(item.Key()) >= endPrefix {
				break
			}
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

	out := make([]*models.EventSeries, 0, len(ids))
	for _, id := range ids {
		series, err := s.GetSeries(ctx, id)
		if err != nil {
			return nil, err
		}
		if series != nil {
			out = append(out, series)
		}
	}
	return out, nil
}

// occurrenceFromEvent builds the denormalized occurrence for an event.
func occurrenceFromEvent(event *models.CanonicalEvent) models.Occurrence {
	location := ""
	if event.Venue != nil {
		location = event.Venue.Name
		if location == "" {
			location = event.Venue.RawLocation
		}
	}
	return models.Occurrence{
		EventID:   event.ID,
		Title:     event.Title,
		StartTime: event.StartTime,
		EndTime:   event.EndTime,
		Location:  location,
		Tags:      event.Tags,
	}
}

// appendSeriesBreadcrumb appends b, de-duplicating by sourceEventId and
// keeping the newest MaxBreadcrumbs entries.
func appendSeriesBreadcrumb(chain []models.Breadcrumb, b models.Breadcrumb) []models.Breadcrumb {
	out := make([]models.Breadcrumb, 0, len(chain)+1)
	for _, c := range chain {
		if c.SourceEventID != "" && c.SourceEventID == b.SourceEventID {
			continue
		}
		out = append(out, c)
	}
	out = append(out, b)
	if len(out) > models.MaxBreadcrumbs {
		out = out[len(out)-models.MaxBreadcrumbs:]
	}
	return out
}

// unionStrings merges b into a, de-duplicating and sorting ascending.
func unionStrings(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	for _, s := range b {
		if _, dup := seen[s]; !dup {
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
