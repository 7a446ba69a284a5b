// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/timeutil"
)

const (
	// fetch retry policy: 3 attempts with attempt*250ms linear backoff.
	fetchAttempts = 3
	fetchBackoff  = 250 * time.Millisecond

	// maxPages bounds pagination per fetch.
	maxPages = 25
)

// CalendarFeedAdapter pulls events from a calendar-style JSON feed.
// Recurrences are expanded server-side: every request asks for
// singleEvents ordered by start time, and passes the configured time
// zone so the upstream resolves day boundaries consistently.
type CalendarFeedAdapter struct {
	sourceID string
	feedURL  string
	label    string
	timeZone string

	http *http.Client
}

// CalendarFeedConfig configures one calendar feed source.
type CalendarFeedConfig struct {
	SourceID string
	URL      string
	Label    string
	TimeZone string
	Timeout  time.Duration
}

// NewCalendarFeedAdapter builds the adapter.
func NewCalendarFeedAdapter(cfg CalendarFeedConfig) *CalendarFeedAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CalendarFeedAdapter{
		sourceID: cfg.SourceID,
		feedURL:  cfg.URL,
		label:    cfg.Label,
		timeZone: cfg.TimeZone,
		http:     &http.Client{Timeout: timeout},
	}
}

// SourceID returns the configured source identifier.
func (a *CalendarFeedAdapter) SourceID() string { return a.sourceID }

// feed wire shapes.
type feedTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type feedItem struct {
	ID          string    `json:"id"`
	Summary     string    `json:"summary"`
	Description string    `json:"description,omitempty"`
	Start       *feedTime `json:"start"`
	End         *feedTime `json:"end,omitempty"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status,omitempty"`
	HTMLLink    string    `json:"htmlLink,omitempty"`
	Organizer   *struct {
		DisplayName string `json:"displayName,omitempty"`
		Email       string `json:"email,omitempty"`
	} `json:"organizer,omitempty"`
	Price string `json:"price,omitempty"`
	// Updated is the source's own last-modified stamp; it drives the
	// reuse-vs-reclassify decision.
	Updated string `json:"updated,omitempty"`
}

type feedPage struct {
	Items         []feedItem `json:"items"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// FetchRawEvents pulls every item in the window, following pagination
// up to maxPages.
func (a *CalendarFeedAdapter) FetchRawEvents(ctx context.Context, window timeutil.Window) ([]RawEventPayload, error) {
	var payloads []RawEventPayload
	pageToken := ""

	for page := 0; page < maxPages; page++ {
		reqURL, err := a.buildURL(window, pageToken)
		if err != nil {
			return nil, err
		}

		body, err := a.get(ctx, reqURL)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", a.sourceID, err)
		}

		var p feedPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode feed page from %s: %w", a.sourceID, err)
		}

		fetchedAt := time.Now().UTC()
		for _, item := range p.Items {
			if item.ID == "" {
				continue
			}
			raw := map[string]any{
				"item":       item,
				"fetchedUrl": RedactURL(reqURL),
			}
			payloads = append(payloads, RawEventPayload{
				SourceID:      a.sourceID,
				SourceEventID: item.ID,
				FetchedAt:     fetchedAt,
				Raw:           raw,
			})
		}

		if p.NextPageToken == "" {
			return payloads, nil
		}
		pageToken = p.NextPageToken
	}

	logging.Warn().Str("source", a.sourceID).Int("pages", maxPages).Msg("Pagination cap reached, truncating fetch")
	return payloads, nil
}

// buildURL assembles the page request for the window.
func (a *CalendarFeedAdapter) buildURL(window timeutil.Window, pageToken string) (string, error) {
	u, err := url.Parse(a.feedURL)
	if err != nil {
		return "", fmt.Errorf("parse feed url: %w", err)
	}
	q := u.Query()
	q.Set("timeMin", window.Start.Format(time.RFC3339))
	q.Set("timeMax", window.End.Format(time.RFC3339))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	if a.timeZone != "" {
		q.Set("timeZone", a.timeZone)
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// get fetches the URL with linear-backoff retries.
func (a *CalendarFeedAdapter) get(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * fetchBackoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := a.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK {
			return body, nil
		}
		lastErr = fmt.Errorf("feed status %d", resp.StatusCode)
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return nil, lastErr
		}
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", fetchAttempts, lastErr)
}

// Normalize converts one feed item into the canonical schema.
func (a *CalendarFeedAdapter) Normalize(payload RawEventPayload) (*NormalizedEvent, error) {
	itemRaw, ok := payload.Raw["item"]
	if !ok {
		return nil, fmt.Errorf("payload %s has no item", payload.SourceEventID)
	}
	// Round-trip through JSON so mock payloads built from maps and live
	// payloads built from feedItem normalize identically.
	data, err := json.Marshal(itemRaw)
	if err != nil {
		return nil, fmt.Errorf("remarshal item: %w", err)
	}
	var item feedItem
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}

	start, allDay, err := parseFeedTime(item.Start, a.timeZone)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", payload.SourceEventID, err)
	}

	title := strings.TrimSpace(item.Summary)
	if title == "" {
		title = models.DefaultTitle
	}

	event := &models.CanonicalEvent{
		ID:          models.EventID(payload.SourceID, payload.SourceEventID),
		Title:       title,
		Description: strings.TrimSpace(item.Description),
		StartTime:   start,
		IsAllDay:    allDay,
		Status:      item.Status,
		Price:       item.Price,
		Source: models.SourceRef{
			SourceID:      payload.SourceID,
			SourceEventID: payload.SourceEventID,
			SourceURL:     item.HTMLLink,
		},
		LastFetchedAt: payload.FetchedAt,
		LastUpdatedAt: payload.FetchedAt,
	}
	if item.Updated != "" {
		if updated, err := time.Parse(time.RFC3339, item.Updated); err == nil {
			event.LastUpdatedAt = updated.UTC()
		}
	}
	if item.Start != nil && item.Start.TimeZone != "" {
		event.TimeZone = item.Start.TimeZone
	} else {
		event.TimeZone = a.timeZone
	}
	if end, _, err := parseFeedTime(item.End, a.timeZone); err == nil && item.End != nil {
		event.EndTime = &end
	}
	if item.Location != "" {
		event.Venue = &models.Venue{RawLocation: item.Location}
	}

	organizer := ""
	if item.Organizer != nil {
		organizer = item.Organizer.DisplayName
	}
	event.Organizer = organizer

	fetchedURL, _ := payload.Raw["fetchedUrl"].(string)
	event.Breadcrumbs = models.AppendBreadcrumb(nil, models.Breadcrumb{
		Type:          "fetch",
		SourceID:      payload.SourceID,
		SourceEventID: payload.SourceEventID,
		FetchedAt:     payload.FetchedAt,
		Metadata:      map[string]any{"fetchedUrl": fetchedURL},
	})

	return &NormalizedEvent{
		Event:       event,
		RawSnapshot: payload.Raw,
		Host:        DeriveHostContext(organizer, a.label, payload.SourceID),
	}, nil
}

// parseFeedTime resolves a feed timestamp: dateTime verbatim, or an
// all-day date at local midnight in the feed's zone.
func parseFeedTime(ft *feedTime, fallbackZone string) (time.Time, bool, error) {
	if ft == nil {
		return time.Time{}, false, fmt.Errorf("missing start time")
	}
	if ft.DateTime != "" {
		t, err := time.Parse(time.RFC3339, ft.DateTime)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse dateTime %q: %w", ft.DateTime, err)
		}
		return t.UTC(), false, nil
	}
	if ft.Date != "" {
		zone := ft.TimeZone
		if zone == "" {
			zone = fallbackZone
		}
		loc := time.UTC
		if zone != "" {
			if l, err := time.LoadLocation(zone); err == nil {
				loc = l
			}
		}
		t, err := time.ParseInLocation("2006-01-02", ft.Date, loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("parse date %q: %w", ft.Date, err)
		}
		return t.UTC(), true, nil
	}
	return time.Time{}, false, fmt.Errorf("missing start time")
}
