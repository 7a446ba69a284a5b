// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package profile

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func saveVectorEvent(t *testing.T, s *store.Store, id string, vec []float64) {
	t.Helper()
	event := &models.CanonicalEvent{
		ID:        id,
		Title:     "Event " + id,
		StartTime: time.Now().UTC().Add(time.Hour),
		Vector:    vec,
		Source:    models.SourceRef{SourceID: "s1", SourceEventID: id},
	}
	if _, err := s.SaveEvent(context.Background(), event, nil); err != nil {
		t.Fatal(err)
	}
}

func record(t *testing.T, s *store.Store, userID, contentID, action, bucket string, dwell float64, pos int) {
	t.Helper()
	in := &models.UserInteraction{
		ID:          contentID + "-" + action + "-" + strconv.Itoa(pos),
		UserID:      userID,
		ContentID:   contentID,
		ContentType: models.ContentTypeEvent,
		Action:      action,
		DwellTime:   dwell,
		Timestamp:   time.Now().UTC(),
		Context: models.InteractionContext{
			Position:  pos,
			TimeOfDay: bucket,
			DayOfWeek: "monday",
		},
	}
	if err := s.AppendInteractions(context.Background(), []*models.UserInteraction{in}); err != nil {
		t.Fatal(err)
	}
}

func TestHasEnoughData_Threshold(t *testing.T) {
	s := testStore(t)
	b := NewBuilder(s)
	ctx := context.Background()

	for i := 0; i < PersonalizationThreshold-1; i++ {
		record(t, s, "u1", "s1:e"+strconv.Itoa(i), models.ActionViewed, "morning", 0, i)
	}
	enough, err := b.HasEnoughData(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if enough {
		t.Error("19 interactions must not qualify")
	}

	record(t, s, "u1", "s1:e99", models.ActionViewed, "morning", 0, 0)
	enough, _ = b.HasEnoughData(ctx, "u1")
	if !enough {
		t.Error("20 interactions must qualify")
	}
}

func TestBuildUserProfile_Centroid(t *testing.T) {
	s := testStore(t)
	b := NewBuilder(s)

	saveVectorEvent(t, s, "s1:a", []float64{1, 0})
	saveVectorEvent(t, s, "s1:b", []float64{0, 1})
	saveVectorEvent(t, s, "s1:c", []float64{9, 9}) // only viewed, excluded

	record(t, s, "u1", "s1:a", models.ActionLiked, "morning", 5, 1)
	record(t, s, "u1", "s1:b", models.ActionBookmarked, "morning", 5, 2)
	record(t, s, "u1", "s1:c", models.ActionViewed, "morning", 5, 3)

	p, err := b.BuildUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Embedding) != 2 {
		t.Fatalf("embedding = %v", p.Embedding)
	}
	if math.Abs(p.Embedding[0]-0.5) > 1e-9 || math.Abs(p.Embedding[1]-0.5) > 1e-9 {
		t.Errorf("centroid = %v, want [0.5 0.5]", p.Embedding)
	}
}

func TestBuildUserProfile_NoPositiveVectors(t *testing.T) {
	s := testStore(t)
	b := NewBuilder(s)
	record(t, s, "u1", "s1:missing", models.ActionViewed, "morning", 0, 0)

	p, err := b.BuildUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Embedding != nil {
		t.Errorf("embedding = %v, want nil", p.Embedding)
	}
}

func TestBuildUserProfile_Affinity(t *testing.T) {
	s := testStore(t)
	b := NewBuilder(s)

	// Two likes on events: (3+3)/2/10 = 0.3.
	record(t, s, "u1", "s1:a", models.ActionLiked, "morning", 0, 0)
	record(t, s, "u1", "s1:b", models.ActionLiked, "evening", 0, 1)

	p, err := b.BuildUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	got := p.ContentTypeAffinity[models.ContentTypeEvent]
	if math.Abs(got-0.3) > 1e-9 {
		t.Errorf("affinity = %v, want 0.3", got)
	}
}

func TestBuildUserProfile_AffinityClamps(t *testing.T) {
	s := testStore(t)
	b := NewBuilder(s)

	// Attended (weight 10) alone hits the +1 clamp boundary exactly.
	record(t, s, "u1", "s1:a", models.ActionAttended, "morning", 0, 0)

	p, _ := b.BuildUserProfile(context.Background(), "u1")
	if got := p.ContentTypeAffinity[models.ContentTypeEvent]; got != 1 {
		t.Errorf("affinity = %v, want clamp at 1", got)
	}
}

func TestBuildUserProfile_TemporalAndStyle(t *testing.T) {
	s := testStore(t)
	b := NewBuilder(s)

	record(t, s, "u1", "s1:a", models.ActionViewed, "morning", 15, 30)
	record(t, s, "u1", "s1:b", models.ActionViewed, "morning", 13, 25)
	record(t, s, "u1", "s1:c", models.ActionViewed, "evening", 14, 28)

	p, err := b.BuildUserProfile(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.TimeOfDayPatterns["morning"] != 2 || p.TimeOfDayPatterns["evening"] != 1 {
		t.Errorf("patterns = %v", p.TimeOfDayPatterns)
	}

	style := p.EngagementStyle
	if !style.IsDeepReader {
		t.Errorf("avg dwell 14s should be deep reader: %+v", style)
	}
	if style.QuickBrowser {
		t.Error("deep reader cannot be quick browser")
	}
	if !style.ScrollsDeep {
		t.Errorf("avg position > 20 should scroll deep: %+v", style)
	}
	if p.TotalInteractions != 3 {
		t.Errorf("totalInteractions = %d", p.TotalInteractions)
	}
}

func TestBuildUserProfile_EmptyHistory(t *testing.T) {
	s := testStore(t)
	p, err := NewBuilder(s).BuildUserProfile(context.Background(), "nobody")
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalInteractions != 0 || p.Embedding != nil {
		t.Errorf("empty profile = %+v", p)
	}
}
