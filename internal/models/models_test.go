// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package models

import (
	"strings"
	"testing"
	"time"
)

func TestEventID(t *testing.T) {
	if got := EventID("s1", "e1"); got != "s1:e1" {
		t.Errorf("EventID = %q, want s1:e1", got)
	}
}

func TestBuildSeriesID(t *testing.T) {
	id := BuildSeriesID("host:abc123", "Community Yoga in the Park")
	want := "host:abc123__community-yoga-in-the-park"
	if id != want {
		t.Errorf("BuildSeriesID = %q, want %q", id, want)
	}
}

func TestBuildSeriesID_UntitledFallback(t *testing.T) {
	id := BuildSeriesID("host:abc123", "!!")
	if id != "host:abc123__untitled" {
		t.Errorf("BuildSeriesID = %q, want untitled fallback", id)
	}
}

func TestBuildSeriesID_LongTitleTailHashed(t *testing.T) {
	long := strings.Repeat("community yoga ", 30)
	id := BuildSeriesID("host:abc123", long)

	if len(id) != 200 {
		t.Errorf("len = %d, want exactly 200", len(id))
	}
	// Same input, same id; different input, different id.
	if id != BuildSeriesID("host:abc123", long) {
		t.Error("tail-hashed id must be deterministic")
	}
	other := BuildSeriesID("host:abc123", long+"x")
	if id == other {
		t.Error("distinct long titles must not collide")
	}
}

func TestCategoryID_CaseInsensitive(t *testing.T) {
	a := CategoryID("host:abc", "Yoga Classes")
	b := CategoryID("host:abc", "yoga classes")
	if a != b {
		t.Error("category id must be case-insensitive on name")
	}
	if !strings.HasPrefix(a, "category:") {
		t.Errorf("id %q missing prefix", a)
	}
	if len(a) != len("category:")+12 {
		t.Errorf("id %q hash length wrong", a)
	}
	if a == CategoryID("host:other", "Yoga Classes") {
		t.Error("different hosts must not collide")
	}
}

func TestAppendBreadcrumb_Cap(t *testing.T) {
	var chain []Breadcrumb
	for i := 0; i < 30; i++ {
		chain = AppendBreadcrumb(chain, Breadcrumb{
			Type:      "fetch",
			SourceID:  "s1",
			FetchedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
	}
	if len(chain) != MaxBreadcrumbs {
		t.Errorf("len = %d, want %d", len(chain), MaxBreadcrumbs)
	}
}

func TestContentStats_Add(t *testing.T) {
	sum := ContentStats{Views: 1, Likes: 2}.Add(ContentStats{Views: 3, Shares: 4, Bookmarks: 5})
	want := ContentStats{Views: 4, Likes: 2, Shares: 4, Bookmarks: 5}
	if sum != want {
		t.Errorf("Add = %+v, want %+v", sum, want)
	}
}

func TestActionWeights_Complete(t *testing.T) {
	actions := []string{
		ActionViewed, ActionLiked, ActionShared, ActionBookmarked,
		ActionDismissed, ActionNotInterested, ActionAttended,
		ActionEngaged, ActionCommented,
	}
	for _, a := range actions {
		if _, ok := ActionWeights[a]; !ok {
			t.Errorf("action %q has no weight", a)
		}
	}
	if ActionWeights[ActionAttended] != 10 {
		t.Errorf("attended weight = %v, want 10", ActionWeights[ActionAttended])
	}
	if ActionWeights[ActionNotInterested] != -5 {
		t.Errorf("not-interested weight = %v, want -5", ActionWeights[ActionNotInterested])
	}
}
