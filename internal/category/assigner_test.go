// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package category

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/eventus/internal/classify"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/store"
)

// fakeClassifier returns a scripted decision.
type fakeClassifier struct {
	decision *classify.CategoryDecision
	calls    int
	lastReq  classify.CategoryRequest
}

func (f *fakeClassifier) ClassifyCategory(ctx context.Context, req classify.CategoryRequest) (*classify.CategoryDecision, error) {
	f.calls++
	f.lastReq = req
	return f.decision, nil
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedSeries(t *testing.T, s *store.Store, title string) string {
	t.Helper()
	event := &models.CanonicalEvent{
		ID:        "s1:" + title,
		Title:     title,
		StartTime: time.Now().UTC().Add(time.Hour),
		Tags:      []string{"yoga"},
		Source:    models.SourceRef{SourceID: "s1", SourceEventID: title},
	}
	res, err := s.AttachEvent(context.Background(), event, store.AttachContext{
		HostID:   "host:abc",
		HostName: "Parks Department",
		SourceID: "s1",
	})
	if err != nil {
		t.Fatal(err)
	}
	return res.SeriesID
}

func TestAssignSeries_CreatesNewCategory(t *testing.T) {
	s := testStore(t)
	classifier := &fakeClassifier{decision: &classify.CategoryDecision{Name: "Outdoor Fitness", Action: "create-new"}}
	a := NewAssigner(s, classifier)

	seriesID := seedSeries(t, s, "Morning Yoga")
	assignment, err := a.AssignSeries(context.Background(), seriesID, false)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if assignment == nil || assignment.CategoryName != "Outdoor Fitness" {
		t.Fatalf("assignment = %+v", assignment)
	}

	cat, _ := s.GetCategory(context.Background(), assignment.CategoryID)
	if cat == nil || cat.Version != 1 || len(cat.SeriesIDs) != 1 {
		t.Fatalf("category = %+v", cat)
	}

	series, _ := s.GetSeries(context.Background(), seriesID)
	if series.CategoryID != assignment.CategoryID || series.CategorySlug != "outdoor-fitness" {
		t.Errorf("series patch = %+v", series)
	}
}

func TestAssignSeries_ReusesDespiteCreateAction(t *testing.T) {
	s := testStore(t)
	classifier := &fakeClassifier{decision: &classify.CategoryDecision{Name: "outdoor fitness", Action: "create-new"}}
	a := NewAssigner(s, classifier)

	first := seedSeries(t, s, "Morning Yoga")
	if _, err := s.CreateCategory(context.Background(), "host:abc", "Outdoor Fitness", "series-x", "Prior", nil); err != nil {
		t.Fatal(err)
	}

	// The declared action says create, but the name matches
	// case-insensitively: this is a reuse.
	assignment, err := a.AssignSeries(context.Background(), first, false)
	if err != nil {
		t.Fatal(err)
	}
	cats, _ := s.ListCategoriesByHost(context.Background(), "host:abc")
	if len(cats) != 1 {
		t.Fatalf("categories = %d, want reuse of the single one", len(cats))
	}
	cat, _ := s.GetCategory(context.Background(), assignment.CategoryID)
	if cat.Version != 2 {
		t.Errorf("version = %d, want bump to 2", cat.Version)
	}
}

func TestAssignSeries_AccentInsensitiveMatch(t *testing.T) {
	s := testStore(t)
	classifier := &fakeClassifier{decision: &classify.CategoryDecision{Name: "Música en Vivo", Action: "create-new"}}
	a := NewAssigner(s, classifier)

	seriesID := seedSeries(t, s, "Friday Concerts")
	if _, err := s.CreateCategory(context.Background(), "host:abc", "Musica en vivo", "series-x", "Prior", nil); err != nil {
		t.Fatal(err)
	}

	if _, err := a.AssignSeries(context.Background(), seriesID, false); err != nil {
		t.Fatal(err)
	}
	cats, _ := s.ListCategoriesByHost(context.Background(), "host:abc")
	if len(cats) != 1 {
		t.Error("accented name must match the existing category")
	}
}

func TestAssignSeries_AlreadyCategorizedWithoutForce(t *testing.T) {
	s := testStore(t)
	classifier := &fakeClassifier{decision: &classify.CategoryDecision{Name: "Outdoor Fitness", Action: "create-new"}}
	a := NewAssigner(s, classifier)

	seriesID := seedSeries(t, s, "Morning Yoga")
	if _, err := a.AssignSeries(context.Background(), seriesID, false); err != nil {
		t.Fatal(err)
	}
	calls := classifier.calls

	// Second assignment without force returns the stored answer.
	assignment, err := a.AssignSeries(context.Background(), seriesID, false)
	if err != nil {
		t.Fatal(err)
	}
	if classifier.calls != calls {
		t.Error("categorized series must not re-invoke the classifier without force")
	}
	if assignment.CategoryName != "Outdoor Fitness" {
		t.Errorf("assignment = %+v", assignment)
	}
}

func TestAssignSeries_ReassignmentRemovesFromOld(t *testing.T) {
	s := testStore(t)
	classifier := &fakeClassifier{decision: &classify.CategoryDecision{Name: "Old Category", Action: "create-new"}}
	a := NewAssigner(s, classifier)

	seriesID := seedSeries(t, s, "Morning Yoga")
	first, err := a.AssignSeries(context.Background(), seriesID, false)
	if err != nil {
		t.Fatal(err)
	}

	classifier.decision = &classify.CategoryDecision{Name: "New Category", Action: "create-new"}
	second, err := a.AssignSeries(context.Background(), seriesID, true)
	if err != nil {
		t.Fatal(err)
	}
	if second.CategoryID == first.CategoryID {
		t.Fatal("forced reassignment should land in the new category")
	}

	old, _ := s.GetCategory(context.Background(), first.CategoryID)
	for _, id := range old.SeriesIDs {
		if id == seriesID {
			t.Error("series must be removed from the previous category")
		}
	}
}

func TestAssignSeries_UndecidedLeavesUncategorized(t *testing.T) {
	s := testStore(t)
	classifier := &fakeClassifier{decision: nil} // parse failure upstream
	a := NewAssigner(s, classifier)

	seriesID := seedSeries(t, s, "Morning Yoga")
	assignment, err := a.AssignSeries(context.Background(), seriesID, false)
	if err != nil {
		t.Fatal(err)
	}
	if assignment != nil {
		t.Errorf("assignment = %+v, want nil", assignment)
	}
	series, _ := s.GetSeries(context.Background(), seriesID)
	if series.CategoryID != "" {
		t.Error("undecided series must stay uncategorized")
	}
}

func TestAssignSeries_PromptCarriesExistingCategories(t *testing.T) {
	s := testStore(t)
	classifier := &fakeClassifier{decision: &classify.CategoryDecision{Name: "Pottery", Action: "create-new"}}
	a := NewAssigner(s, classifier)

	if _, err := s.CreateCategory(context.Background(), "host:abc", "Outdoor Fitness", "series-x", "Morning Yoga", nil); err != nil {
		t.Fatal(err)
	}
	seriesID := seedSeries(t, s, "Wheel Throwing")
	if _, err := a.AssignSeries(context.Background(), seriesID, false); err != nil {
		t.Fatal(err)
	}

	if len(classifier.lastReq.Existing) != 1 || classifier.lastReq.Existing[0].Name != "Outdoor Fitness" {
		t.Errorf("existing categories in prompt = %+v", classifier.lastReq.Existing)
	}
}
