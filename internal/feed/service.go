// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package feed

import (
	"context"
	"math/rand"
	"time"

	"github.com/tomtom215/eventus/internal/cache"
	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/metrics"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/profile"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// Query is one feed request.
type Query struct {
	UserID    string
	Start     time.Time // zero = today
	Days      int       // 1..31, default 1
	PageSize  int
	PageToken string
	Tags      []string // at most 10 slugs, intersected with candidates
}

// Page is the feed response.
type Page struct {
	Count         int                 `json:"count"`
	Events        []models.ScoredItem `json:"events"`
	NextPageToken string              `json:"nextPageToken,omitempty"`
	IsCaughtUp    bool                `json:"isCaughtUp"`
	Window        WindowOut           `json:"window"`
	Personalized  bool                `json:"personalized"`
}

// WindowOut echoes the resolved window.
type WindowOut struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Service assembles candidates, personalizes and paginates.
type Service struct {
	store    *store.Store
	profiles *profile.Builder
	bundler  *Bundler
	ranker   *Ranker
	location *time.Location

	exploitRatio    float64
	defaultPageSize int
	maxPageSize     int

	candidates *cache.Cache

	// now and newRNG are injection points for deterministic tests.
	now    func() time.Time
	newRNG func() *rand.Rand
}

// NewService builds the feed service.
func NewService(st *store.Store, profiles *profile.Builder, ranker *Ranker, loc *time.Location, exploitRatio float64, defaultPageSize, maxPageSize int, candidateTTL time.Duration) *Service {
	return &Service{
		store:           st,
		profiles:        profiles,
		bundler:         NewBundler(st),
		ranker:          ranker,
		location:        loc,
		exploitRatio:    exploitRatio,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		candidates:      cache.New(candidateTTL),
		now:             time.Now,
		newRNG: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// SetClock overrides the time source. Test hook.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// SetRNG overrides the exploration RNG factory. Test hook.
func (s *Service) SetRNG(newRNG func() *rand.Rand) { s.newRNG = newRNG }

// InvalidateCandidates drops the candidate cache, called after ingest
// runs so fresh events surface immediately.
func (s *Service) InvalidateCandidates() { s.candidates.Clear() }

// Fetch serves one feed query.
func (s *Service) Fetch(ctx context.Context, q Query) (*Page, error) {
	offset, err := DecodePageToken(q.PageToken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	days := q.Days
	if days <= 0 {
		days = 1
	}
	anchor := q.Start
	if anchor.IsZero() {
		anchor = now
	}
	window := timeutil.DaysWindow(anchor, days, s.location)

	events, series, err := s.loadCandidates(ctx, window, q.Tags)
	if err != nil {
		return nil, err
	}

	items := make([]models.ContentItem, 0, len(events)+len(series))
	for _, e := range events {
		items = append(items, models.EventContentItem(e))
	}

	if q.UserID != "" {
		bundles, err := s.bundler.BuildBundles(ctx, q.UserID, series, window)
		if err != nil {
			return nil, err
		}
		items = append(items, bundles.Bundles...)
		for _, sr := range bundles.Ungrouped {
			items = append(items, models.SeriesContentItem(sr))
		}
	} else {
		for _, sr := range series {
			items = append(items, models.SeriesContentItem(sr))
		}
	}

	ranked, personalized, err := s.rank(ctx, q.UserID, items, now)
	if err != nil {
		return nil, err
	}
	metrics.FeedRequests.WithLabelValues(boolLabel(personalized)).Inc()

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = s.defaultPageSize
	}
	if pageSize > s.maxPageSize {
		pageSize = s.maxPageSize
	}

	pageItems, nextToken := Paginate(ranked, offset, pageSize)
	return &Page{
		Count:         len(pageItems),
		Events:        pageItems,
		NextPageToken: nextToken,
		IsCaughtUp:    nextToken == "",
		Window:        WindowOut{Start: window.Start, End: window.End},
		Personalized:  personalized,
	}, nil
}

// rank applies the behavioral ranker when the user qualifies, the
// cold-start ordering otherwise.
func (s *Service) rank(ctx context.Context, userID string, items []models.ContentItem, now time.Time) ([]models.ScoredItem, bool, error) {
	if userID == "" {
		return ColdStart(items), false, nil
	}

	enough, err := s.profiles.HasEnoughData(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if !enough {
		return ColdStart(items), false, nil
	}

	p, err := s.profiles.BuildUserProfile(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	if len(p.Embedding) == 0 {
		return ColdStart(items), false, nil
	}

	ranked := s.ranker.Rank(p, items, now)
	ranked = ApplyExplorationMix(ranked, s.exploitRatio, s.newRNG())
	return ranked, true, nil
}

// loadCandidates reads the windowed candidate sets through the TTL
// cache, then applies the tag filter.
func (s *Service) loadCandidates(ctx context.Context, window timeutil.Window, tags []string) ([]*models.CanonicalEvent, []*models.EventSeries, error) {
	type candidateSet struct {
		Events []*models.CanonicalEvent
		Series []*models.EventSeries
	}

	key := cache.GenerateKey("feed-candidates", window.Start, window.End)
	if cached, ok := s.candidates.Get(key); ok {
		set := cached.(*candidateSet)
		return filterEventsByTags(set.Events, tags), filterSeriesByTags(set.Series, tags), nil
	}

	events, err := s.store.ListEventsInWindow(ctx, window, 0)
	if err != nil {
		return nil, nil, err
	}
	series, err := s.store.ListSeriesInWindow(ctx, window, 0)
	if err != nil {
		return nil, nil, err
	}

	s.candidates.Set(key, &candidateSet{Events: events, Series: series})
	logging.Ctx(ctx).Debug().
		Int("events", len(events)).
		Int("series", len(series)).
		Msg("Feed candidates loaded")
	return filterEventsByTags(events, tags), filterSeriesByTags(series, tags), nil
}

func filterEventsByTags(events []*models.CanonicalEvent, tags []string) []*models.CanonicalEvent {
	if len(tags) == 0 {
		return events
	}
	out := make([]*models.CanonicalEvent, 0, len(events))
	for _, e := range events {
		if hasAnyTag(e.Tags, tags) {
			out = append(out, e)
		}
	}
	return out
}

func filterSeriesByTags(series []*models.EventSeries, tags []string) []*models.EventSeries {
	if len(tags) == 0 {
		return series
	}
	out := make([]*models.EventSeries, 0, len(series))
	for _, s := range series {
		if hasAnyTag(s.Tags, tags) {
			out = append(out, s)
		}
	}
	return out
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
