// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package interactions

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tomtom215/eventus/internal/feed"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// Pinned-events pagination bounds.
const (
	DefaultPinnedPageSize = 10
	MaxPinnedPageSize     = 30

	defaultPinnedWindowDays = 30
)

// ApplyPinToggle pins (active=true) or unpins an event or series for a
// user. Event pins denormalize a display snapshot; series pins later
// derive synthetic occurrences in the pinned view.
func (s *Service) ApplyPinToggle(ctx context.Context, userID, contentID, contentType string, active bool) error {
	switch contentType {
	case models.ContentTypeEvent:
		if !active {
			return s.store.RemoveEventPin(ctx, userID, contentID)
		}
		event, err := s.store.GetEvent(ctx, contentID)
		if err != nil {
			return err
		}
		if event == nil {
			return store.ErrNotFound
		}
		return s.store.SetEventPin(ctx, eventPinSnapshot(userID, event, time.Now().UTC()))

	case models.ContentTypeSeries:
		if !active {
			return s.store.RemoveSeriesPin(ctx, userID, contentID)
		}
		series, err := s.store.GetSeries(ctx, contentID)
		if err != nil {
			return err
		}
		if series == nil {
			return store.ErrNotFound
		}
		return s.store.SetSeriesPin(ctx, &models.PinnedSeries{
			UserID:   userID,
			SeriesID: series.ID,
			Title:    series.Title,
			HostName: series.Host.Name,
			Tags:     series.Tags,
			Source:   series.Source,
			PinnedAt: time.Now().UTC(),
		})

	default:
		return fmt.Errorf("content type %q cannot be pinned", contentType)
	}
}

// eventPinSnapshot denormalizes the pinned-view fields from an event.
func eventPinSnapshot(userID string, event *models.CanonicalEvent, pinnedAt time.Time) *models.PinnedEvent {
	location := ""
	if event.Venue != nil {
		location = event.Venue.Name
		if location == "" {
			location = event.Venue.RawLocation
		}
	}
	return &models.PinnedEvent{
		UserID:         userID,
		EventID:        event.ID,
		Title:          event.Title,
		Location:       location,
		Tags:           event.Tags,
		EventStartTime: event.StartTime,
		EventEndTime:   event.EndTime,
		ContentType:    models.ContentTypeEvent,
		Source:         event.Source,
		SeriesID:       event.SeriesID,
		HostName:       event.Organizer,
		PinnedAt:       pinnedAt,
	}
}

// PinnedQuery is one pinned-events read.
type PinnedQuery struct {
	Mode      string // "today" or ""
	Start     time.Time
	End       time.Time
	PageSize  int
	PageToken string
}

// PinnedPage is the pinned-events response.
type PinnedPage struct {
	Events        []*models.PinnedEvent `json:"events"`
	NextPageToken string                `json:"nextPageToken,omitempty"`
	Window        timeutil.Window       `json:"window"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// GetPinnedEvents merges direct pins with occurrences derived from
// pinned series inside the query window, ordered by
// (startTime ASC, pinnedAt DESC, eventId ASC), offset-paginated.
func (s *Service) GetPinnedEvents(ctx context.Context, userID string, q PinnedQuery) (*PinnedPage, error) {
	offset, err := feed.DecodePageToken(q.PageToken)
	if err != nil {
		return nil, err
	}

	window, err := s.buildPinnedWindow(q)
	if err != nil {
		return nil, err
	}

	direct, err := s.store.ListEventPins(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries := make([]*models.PinnedEvent, 0, len(direct))
	directIDs := map[string]struct{}{}
	for _, pin := range direct {
		if !window.Contains(pin.EventStartTime) {
			continue
		}
		entries = append(entries, pin)
		directIDs[pin.EventID] = struct{}{}
	}

	derived, err := s.derivePinnedOccurrences(ctx, userID, window, directIDs)
	if err != nil {
		return nil, err
	}
	entries = append(entries, derived...)

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.EventStartTime.Equal(b.EventStartTime) {
			return a.EventStartTime.Before(b.EventStartTime)
		}
		if !a.PinnedAt.Equal(b.PinnedAt) {
			return a.PinnedAt.After(b.PinnedAt)
		}
		return a.EventID < b.EventID
	})

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPinnedPageSize
	}
	if pageSize > MaxPinnedPageSize {
		pageSize = MaxPinnedPageSize
	}

	page, nextToken := feed.Paginate(entries, offset, pageSize)
	return &PinnedPage{
		Events:        page,
		NextPageToken: nextToken,
		Window:        window,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

// buildPinnedWindow resolves the query window: today is the half-open
// local day, an explicit range must be forward, and the default looks
// ahead thirty days from now.
func (s *Service) buildPinnedWindow(q PinnedQuery) (timeutil.Window, error) {
	now := time.Now().UTC()
	if q.Mode == "today" {
		return timeutil.DayWindow(now, s.location), nil
	}
	if !q.Start.IsZero() || !q.End.IsZero() {
		if q.Start.IsZero() || q.End.IsZero() || !q.End.After(q.Start) {
			return timeutil.Window{}, fmt.Errorf("pinned-events window requires end > start")
		}
		return timeutil.Window{Start: q.Start.UTC(), End: q.End.UTC()}, nil
	}
	return timeutil.Window{Start: now, End: now.AddDate(0, 0, defaultPinnedWindowDays)}, nil
}

// derivePinnedOccurrences expands pinned series into synthetic entries
// for their windowed occurrences, suppressing events already pinned
// directly.
func (s *Service) derivePinnedOccurrences(ctx context.Context, userID string, window timeutil.Window, directIDs map[string]struct{}) ([]*models.PinnedEvent, error) {
	seriesPins, err := s.store.ListSeriesPins(ctx, userID)
	if err != nil {
		return nil, err
	}

	var out []*models.PinnedEvent
	for _, pin := range seriesPins {
		series, err := s.store.GetSeries(ctx, pin.SeriesID)
		if err != nil {
			return nil, err
		}
		if series == nil {
			continue
		}
		for _, occ := range series.UpcomingOccurrences {
			if !window.Contains(occ.StartTime) {
				continue
			}
			if _, dup := directIDs[occ.EventID]; dup {
				continue
			}
			out = append(out, &models.PinnedEvent{
				UserID:         userID,
				EventID:        occ.EventID,
				Title:          occ.Title,
				Location:       occ.Location,
				Tags:           occ.Tags,
				EventStartTime: occ.StartTime,
				EventEndTime:   occ.EndTime,
				ContentType:    models.ContentTypeEvent,
				Source:         series.Source,
				SeriesID:       series.ID,
				SeriesTitle:    series.Title,
				HostName:       series.Host.Name,
				PinnedAt:       pin.PinnedAt,
				Derived:        true,
			})
		}
	}
	return out, nil
}
