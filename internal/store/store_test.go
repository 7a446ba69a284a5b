// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package store

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/timeutil"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func testEvent(id string, start time.Time) *models.CanonicalEvent {
	return &models.CanonicalEvent{
		ID:        id,
		Title:     "Community Yoga in the Park",
		StartTime: start,
		Source: models.SourceRef{
			SourceID:      "s1",
			SourceEventID: id,
		},
		LastFetchedAt: time.Now().UTC(),
		LastUpdatedAt: time.Now().UTC(),
	}
}

// ===================================================================================================
// Event Store Tests
// ===================================================================================================

func TestSaveEvent_CreatedVsUpdated(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(24 * time.Hour)
	event := testEvent("s1:e1", start)

	created, err := s.SaveEvent(ctx, event, nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !created {
		t.Error("first save should report created")
	}

	stored, err := s.GetEvent(ctx, "s1:e1")
	if err != nil || stored == nil {
		t.Fatalf("get: %v, %v", stored, err)
	}

	created, err = s.SaveEvent(ctx, event, stored)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if created {
		t.Error("second save should report updated")
	}
}

func TestSaveEvent_NormalizesTags(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	event := testEvent("s1:e1", time.Now().UTC())
	event.Tags = []string{" Yoga ", "yoga", "", "WELLNESS"}

	if _, err := s.SaveEvent(ctx, event, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	stored, _ := s.GetEvent(ctx, "s1:e1")
	want := []string{"yoga", "wellness"}
	if len(stored.Tags) != len(want) {
		t.Fatalf("tags = %v, want %v", stored.Tags, want)
	}
	for i := range want {
		if stored.Tags[i] != want[i] {
			t.Errorf("tags = %v, want %v", stored.Tags, want)
			break
		}
	}
}

func TestGetEvent_AbsentIsNil(t *testing.T) {
	s := testStore(t)
	event, err := s.GetEvent(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if event != nil {
		t.Error("absent event should be nil")
	}
}

func TestTouchEvent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	event := testEvent("s1:e1", time.Now().UTC())
	if _, err := s.SaveEvent(ctx, event, nil); err != nil {
		t.Fatal(err)
	}

	touchAt := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
	if err := s.TouchEvent(ctx, "s1:e1", touchAt); err != nil {
		t.Fatalf("touch: %v", err)
	}
	stored, _ := s.GetEvent(ctx, "s1:e1")
	if !stored.LastFetchedAt.Equal(touchAt) {
		t.Errorf("lastFetchedAt = %v, want %v", stored.LastFetchedAt, touchAt)
	}
}

func TestListEventsInWindow_OrderAndBounds(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 10, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"s1:c", "s1:a", "s1:b"} {
		event := testEvent(id, base.Add(time.Duration(2-i)*time.Hour))
		if _, err := s.SaveEvent(ctx, event, nil); err != nil {
			t.Fatal(err)
		}
	}
	// Outside the window.
	outside := testEvent("s1:z", base.AddDate(0, 0, 5))
	if _, err := s.SaveEvent(ctx, outside, nil); err != nil {
		t.Fatal(err)
	}

	window := timeutil.Window{Start: base.Add(-time.Hour), End: base.AddDate(0, 0, 1)}
	events, err := s.ListEventsInWindow(ctx, window, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if events[i].StartTime.Before(events[i-1].StartTime) {
			t.Error("events must be ordered by startTime ascending")
		}
	}
}

func TestUpdateEventSeriesInfo(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	if _, err := s.SaveEvent(ctx, testEvent("s1:e1", time.Now().UTC()), nil); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateEventSeriesInfo(ctx, "s1:e1", "series-1", "category:abc", "Yoga Classes"); err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ := s.GetEvent(ctx, "s1:e1")
	if stored.SeriesID != "series-1" || stored.SeriesCategoryID != "category:abc" || stored.SeriesCategoryName != "Yoga Classes" {
		t.Errorf("series info not patched: %+v", stored)
	}
}

// ===================================================================================================
// Series Store Tests
// ===================================================================================================

func attach(t *testing.T, s *Store, event *models.CanonicalEvent) *AttachResult {
	t.Helper()
	res, err := s.AttachEvent(context.Background(), event, AttachContext{
		HostID:    "host:abc123",
		HostName:  "Parks Department",
		Organizer: "Parks Department",
		SourceID:  "s1",
	})
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	return res
}

func TestAttachEvent_CreatesThenMerges(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	start := time.Now().UTC().Add(24 * time.Hour)

	e1 := testEvent("s1:e1", start)
	e1.Tags = []string{"yoga"}
	res := attach(t, s, e1)
	if !res.Created {
		t.Error("first attach should create the series")
	}

	e2 := testEvent("s1:e2", start.Add(7*24*time.Hour))
	e2.Tags = []string{"wellness"}
	res = attach(t, s, e2)
	if res.Created {
		t.Error("second attach should merge")
	}

	series, err := s.GetSeries(ctx, res.SeriesID)
	if err != nil || series == nil {
		t.Fatalf("get series: %v %v", series, err)
	}
	if series.Stats.UpcomingCount != 2 {
		t.Errorf("upcomingCount = %d, want 2", series.Stats.UpcomingCount)
	}
	if series.NextOccurrence == nil || series.NextOccurrence.EventID != "s1:e1" {
		t.Errorf("nextOccurrence = %+v, want s1:e1", series.NextOccurrence)
	}
	if len(series.Tags) != 2 {
		t.Errorf("tags = %v, want union of member tags", series.Tags)
	}
}

func TestAttachEvent_DeduplicatesByEventID(t *testing.T) {
	s := testStore(t)
	start := time.Now().UTC().Add(24 * time.Hour)

	attach(t, s, testEvent("s1:e1", start))
	// Same event re-fetched with a shifted start: latest wins, no dup.
	res := attach(t, s, testEvent("s1:e1", start.Add(time.Hour)))

	series, _ := s.GetSeries(context.Background(), res.SeriesID)
	if len(series.UpcomingOccurrences) != 1 {
		t.Fatalf("occurrences = %d, want 1", len(series.UpcomingOccurrences))
	}
	if !series.UpcomingOccurrences[0].StartTime.Equal(start.Add(time.Hour)) {
		t.Error("latest occurrence version must win")
	}
}

func TestAttachEvent_EvictsStaleAndCaps(t *testing.T) {
	s := testStore(t)
	now := time.Now().UTC()

	// A stale occurrence beyond the 24h grace.
	attach(t, s, testEvent("s1:old", now.Add(-48*time.Hour)))

	var res *AttachResult
	for i := 0; i < models.MaxSeriesOccurrences+5; i++ {
		res = attach(t, s, testEvent("s1:e"+string(rune('a'+i)), now.Add(time.Duration(i+1)*time.Hour)))
	}

	series, _ := s.GetSeries(context.Background(), res.SeriesID)
	if len(series.UpcomingOccurrences) != models.MaxSeriesOccurrences {
		t.Errorf("occurrences = %d, want cap %d", len(series.UpcomingOccurrences), models.MaxSeriesOccurrences)
	}
	for _, occ := range series.UpcomingOccurrences {
		if occ.EventID == "s1:old" {
			t.Error("stale occurrence should be evicted")
		}
		if occ.StartTime.Before(now.Add(-24 * time.Hour)) {
			t.Error("occurrence older than 24h grace survived")
		}
	}
	for i := 1; i < len(series.UpcomingOccurrences); i++ {
		if series.UpcomingOccurrences[i].StartTime.Before(series.UpcomingOccurrences[i-1].StartTime) {
			t.Error("occurrences must be sorted ascending")
		}
	}
}

func TestAttachEvent_TieBreakByEventID(t *testing.T) {
	s := testStore(t)
	start := time.Now().UTC().Add(24 * time.Hour)

	attach(t, s, testEvent("s1:zz", start))
	res := attach(t, s, testEvent("s1:aa", start))

	series, _ := s.GetSeries(context.Background(), res.SeriesID)
	if series.UpcomingOccurrences[0].EventID != "s1:aa" {
		t.Errorf("equal startTime must order by eventId; got %q first", series.UpcomingOccurrences[0].EventID)
	}
}

func TestListSeriesInWindow(t *testing.T) {
	s := testStore(t)
	start := time.Now().UTC().Add(24 * time.Hour)
	res := attach(t, s, testEvent("s1:e1", start))

	window := timeutil.Window{Start: start.Add(-time.Hour), End: start.Add(time.Hour)}
	series, err := s.ListSeriesInWindow(context.Background(), window, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(series) != 1 || series[0].ID != res.SeriesID {
		t.Errorf("series = %v, want [%s]", series, res.SeriesID)
	}

	empty, _ := s.ListSeriesInWindow(context.Background(), timeutil.Window{Start: start.Add(2 * time.Hour), End: start.Add(3 * time.Hour)}, 0)
	if len(empty) != 0 {
		t.Error("series outside window should not list")
	}
}

// ===================================================================================================
// Category Store Tests
// ===================================================================================================

func TestCategoryLifecycle_VersionAndChangeLog(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	cat, err := s.CreateCategory(ctx, "host:abc", "Yoga Classes", "series-1", "Morning Yoga", []string{"yoga"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if cat.Version != 1 || len(cat.ChangeLog) != 1 || cat.ChangeLog[0].Version != 1 {
		t.Fatalf("fresh category version/changeLog wrong: %+v", cat)
	}

	// Adding a new series bumps version with a matching log entry.
	cat, err = s.AddSeriesToCategory(ctx, cat.ID, "series-2", "Evening Yoga", []string{"wellness"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if cat.Version != 2 {
		t.Errorf("version = %d, want 2", cat.Version)
	}
	last := cat.ChangeLog[len(cat.ChangeLog)-1]
	if last.Version != 2 || len(last.AddedSeriesIDs) != 1 || last.AddedSeriesIDs[0] != "series-2" {
		t.Errorf("changeLog tail = %+v", last)
	}

	// Re-adding an existing member must not bump.
	cat, err = s.AddSeriesToCategory(ctx, cat.ID, "series-2", "Evening Yoga", nil)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Version != 2 {
		t.Errorf("no-op add bumped version to %d", cat.Version)
	}

	// Version equals the count of entries that add series (the creation
	// entry included), and every member has a bump entry.
	bumps := 0
	covered := map[string]bool{}
	for _, entry := range cat.ChangeLog {
		if len(entry.AddedSeriesIDs) > 0 {
			bumps++
		}
		for _, id := range entry.AddedSeriesIDs {
			covered[id] = true
		}
	}
	if cat.Version != bumps {
		t.Errorf("version %d != bumping entries %d", cat.Version, bumps)
	}
	for _, id := range cat.SeriesIDs {
		if !covered[id] {
			t.Errorf("series %s lacks a changeLog bump", id)
		}
	}
}

func TestCategoryChangeLog_Cap(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cat, err := s.CreateCategory(ctx, "host:abc", "Workshops", "series-0", "First", nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= models.MaxCategoryChangeLog+10; i++ {
		cat, err = s.AddSeriesToCategory(ctx, cat.ID, "series-"+string(rune('a'+i%26))+string(rune('0'+i/26)), "Series", nil)
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(cat.ChangeLog) > models.MaxCategoryChangeLog {
		t.Errorf("changeLog len = %d, want <= %d", len(cat.ChangeLog), models.MaxCategoryChangeLog)
	}
}

func TestRemoveSeriesFromCategory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	cat, _ := s.CreateCategory(ctx, "host:abc", "Yoga Classes", "series-1", "Morning Yoga", nil)
	version := cat.Version

	if err := s.RemoveSeriesFromCategory(ctx, cat.ID, "series-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	cat, _ = s.GetCategory(ctx, cat.ID)
	if len(cat.SeriesIDs) != 0 {
		t.Errorf("seriesIds = %v, want empty", cat.SeriesIDs)
	}
	if cat.Version != version {
		t.Error("removal must not bump the version")
	}
}

func TestListCategoriesByHost(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	s.CreateCategory(ctx, "host:abc", "Yoga Classes", "series-1", "A", nil)
	s.CreateCategory(ctx, "host:abc", "Pottery", "series-2", "B", nil)
	s.CreateCategory(ctx, "host:other", "Chess", "series-3", "C", nil)

	cats, err := s.ListCategoriesByHost(ctx, "host:abc")
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 {
		t.Errorf("len = %d, want 2", len(cats))
	}
}

// ===================================================================================================
// Proposal Tests
// ===================================================================================================

func TestRecordTagProposals_CountsAndSamples(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := s.RecordTagProposals(ctx, "s1:e"+string(rune('1'+i)), "Event", "s1", []string{"acro-yoga"})
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := s.RecordTagProposals(ctx, "s2:e1", "Other", "s2", []string{"acro-yoga", "handstands"}); err != nil {
		t.Fatal(err)
	}

	proposals, err := s.GetTopProposals(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(proposals) != 2 {
		t.Fatalf("len = %d, want 2", len(proposals))
	}

	top := proposals[0]
	if top.Slug != "acro-yoga" || top.OccurrenceCount != 4 {
		t.Errorf("top = %+v, want acro-yoga count 4", top)
	}
	// occurrenceCount equals the sum of sourceCounts.
	sum := 0
	for _, n := range top.SourceCounts {
		sum += n
	}
	if sum != top.OccurrenceCount {
		t.Errorf("sourceCounts sum %d != occurrenceCount %d", sum, top.OccurrenceCount)
	}
	if len(top.SampleEvents) != 4 {
		t.Errorf("samples = %d, want 4", len(top.SampleEvents))
	}
	if top.SampleEvents[0].EventID != "s2:e1" {
		t.Error("newest sample should be first")
	}
}

func TestRecordTagProposals_SampleDedupAndCap(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < models.MaxProposalSamples+3; i++ {
		id := "s1:e" + string(rune('a'+i))
		if err := s.RecordTagProposals(ctx, id, "Event", "s1", []string{"handstands"}); err != nil {
			t.Fatal(err)
		}
	}
	// Same event again: dedupe, no growth.
	if err := s.RecordTagProposals(ctx, "s1:ea", "Event", "s1", []string{"handstands"}); err != nil {
		t.Fatal(err)
	}

	proposals, _ := s.GetTopProposals(ctx, 1)
	if len(proposals[0].SampleEvents) != models.MaxProposalSamples {
		t.Errorf("samples = %d, want cap %d", len(proposals[0].SampleEvents), models.MaxProposalSamples)
	}
}

// ===================================================================================================
// Interaction + Pin + Bundle State Tests
// ===================================================================================================

func TestAppendAndListInteractions(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Now().UTC()

	var batch []*models.UserInteraction
	for i := 0; i < 5; i++ {
		batch = append(batch, &models.UserInteraction{
			ID:          "in-" + string(rune('a'+i)),
			UserID:      "u1",
			ContentID:   "s1:e1",
			ContentType: models.ContentTypeEvent,
			Action:      models.ActionViewed,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	if err := s.AppendInteractions(ctx, batch); err != nil {
		t.Fatal(err)
	}

	recent, err := s.ListRecentInteractions(ctx, "u1", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if recent[0].ID != "in-e" {
		t.Errorf("newest first; got %s", recent[0].ID)
	}

	other, _ := s.ListRecentInteractions(ctx, "u2", 10)
	if len(other) != 0 {
		t.Error("interactions must be scoped per user")
	}
}

func TestAppendInteractions_BatchLimit(t *testing.T) {
	s := testStore(t)
	batch := make([]*models.UserInteraction, MaxInteractionBatch+1)
	for i := range batch {
		batch[i] = &models.UserInteraction{ID: "x", UserID: "u", Timestamp: time.Now()}
	}
	if err := s.AppendInteractions(context.Background(), batch); err == nil {
		t.Error("oversized batch must be rejected")
	}
}

func TestEventPin_RoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	pin := &models.PinnedEvent{
		UserID:         "u1",
		EventID:        "s1:e1",
		Title:          "Community Yoga",
		EventStartTime: time.Now().UTC(),
		PinnedAt:       time.Now().UTC(),
	}
	if err := s.SetEventPin(ctx, pin); err != nil {
		t.Fatal(err)
	}

	pins, _ := s.ListEventPins(ctx, "u1")
	if len(pins) != 1 {
		t.Fatalf("len = %d, want 1", len(pins))
	}

	if err := s.RemoveEventPin(ctx, "u1", "s1:e1"); err != nil {
		t.Fatal(err)
	}
	pins, _ = s.ListEventPins(ctx, "u1")
	if len(pins) != 0 {
		t.Error("unpin must restore the pre-pin state")
	}
	// Unpinning again is a no-op.
	if err := s.RemoveEventPin(ctx, "u1", "s1:e1"); err != nil {
		t.Errorf("double unpin errored: %v", err)
	}
}

func TestBundleState_MarkSeenMonotonic(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.MarkSeen(ctx, "u1", "category:abc", 3); err != nil {
		t.Fatal(err)
	}
	// A stale ack must not move the version backwards.
	if err := s.MarkSeen(ctx, "u1", "category:abc", 2); err != nil {
		t.Fatal(err)
	}

	states, err := s.GetBundleStates(ctx, "u1", []string{"category:abc", "category:missing"})
	if err != nil {
		t.Fatal(err)
	}
	if st := states["category:abc"]; st == nil || st.LastSeenVersion != 3 {
		t.Errorf("state = %+v, want lastSeenVersion 3", states["category:abc"])
	}
	if _, ok := states["category:missing"]; ok {
		t.Error("unseen category must be absent from the result")
	}
}
