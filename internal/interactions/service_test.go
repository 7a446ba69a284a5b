// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package interactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/store"
)

func testSetup(t *testing.T) (*store.Store, *Service) {
	t.Helper()
	s, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	svc := NewService(s, pubSub, time.UTC)
	return s, svc
}

func validInteraction(action, contentType string) *models.UserInteraction {
	return &models.UserInteraction{
		UserID:      "u1",
		ContentID:   "s1:e1",
		ContentType: contentType,
		Action:      action,
		Context: models.InteractionContext{
			Position:  1,
			TimeOfDay: "morning",
			DayOfWeek: "monday",
		},
	}
}

func seedEvent(t *testing.T, s *store.Store, id string, start time.Time) {
	t.Helper()
	event := &models.CanonicalEvent{
		ID:        id,
		Title:     "Community Yoga",
		StartTime: start,
		Source:    models.SourceRef{SourceID: "s1", SourceEventID: id},
	}
	if _, err := s.SaveEvent(context.Background(), event, nil); err != nil {
		t.Fatal(err)
	}
}

// ===================================================================================================
// Recording Tests
// ===================================================================================================

func TestRecordInteractions_AssignsIDs(t *testing.T) {
	s, svc := testSetup(t)
	ids, err := svc.RecordInteractions(context.Background(), []*models.UserInteraction{
		validInteraction(models.ActionViewed, models.ContentTypeEvent),
		validInteraction(models.ActionLiked, models.ContentTypeEvent),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(ids) != 2 || ids[0] == "" || ids[0] == ids[1] {
		t.Errorf("ids = %v", ids)
	}

	recent, _ := s.ListRecentInteractions(context.Background(), "u1", 10)
	if len(recent) != 2 {
		t.Errorf("stored = %d, want 2", len(recent))
	}
}

func TestRecordInteractions_Validation(t *testing.T) {
	_, svc := testSetup(t)
	tests := []struct {
		name   string
		mutate func(*models.UserInteraction)
	}{
		{"unknown action", func(in *models.UserInteraction) { in.Action = "poked" }},
		{"unknown content type", func(in *models.UserInteraction) { in.ContentType = "video" }},
		{"empty user", func(in *models.UserInteraction) { in.UserID = "" }},
		{"empty content", func(in *models.UserInteraction) { in.ContentID = "" }},
		{"negative position", func(in *models.UserInteraction) { in.Context.Position = -1 }},
		{"bad bucket", func(in *models.UserInteraction) { in.Context.TimeOfDay = "noon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInteraction(models.ActionViewed, models.ContentTypeEvent)
			tt.mutate(in)
			if _, err := svc.RecordInteractions(context.Background(), []*models.UserInteraction{in}); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestRecordInteractions_BundleRequiresState(t *testing.T) {
	_, svc := testSetup(t)

	in := validInteraction(models.ActionViewed, models.ContentTypeCategoryBundle)
	_, err := svc.RecordInteractions(context.Background(), []*models.UserInteraction{in})
	if !errors.Is(err, ErrInvalidBundleMetadata) {
		t.Errorf("err = %v, want ErrInvalidBundleMetadata", err)
	}

	in.Metadata = map[string]any{"bundleState": map[string]any{"categoryId": "category:abc", "version": 3}}
	if _, err := svc.RecordInteractions(context.Background(), []*models.UserInteraction{in}); err != nil {
		t.Errorf("well-formed bundle metadata rejected: %v", err)
	}
}

func TestRecordInteractions_BatchBounds(t *testing.T) {
	_, svc := testSetup(t)
	if _, err := svc.RecordInteractions(context.Background(), nil); err == nil {
		t.Error("empty batch must be rejected")
	}
	big := make([]*models.UserInteraction, store.MaxInteractionBatch+1)
	for i := range big {
		big[i] = validInteraction(models.ActionViewed, models.ContentTypeEvent)
	}
	if _, err := svc.RecordInteractions(context.Background(), big); err == nil {
		t.Error("oversized batch must be rejected")
	}
}

// ===================================================================================================
// Side Effect Tests
// ===================================================================================================

func TestProcessSideEffects_BookmarkPinsAndUnpins(t *testing.T) {
	s, svc := testSetup(t)
	ctx := context.Background()
	seedEvent(t, s, "s1:e1", time.Now().UTC().Add(time.Hour))

	bookmark := validInteraction(models.ActionBookmarked, models.ContentTypeEvent)
	if err := svc.ProcessSideEffects(ctx, bookmark); err != nil {
		t.Fatalf("pin: %v", err)
	}
	pins, _ := s.ListEventPins(ctx, "u1")
	if len(pins) != 1 || pins[0].Title != "Community Yoga" {
		t.Fatalf("pins = %+v", pins)
	}

	unbookmark := validInteraction(models.ActionBookmarked, models.ContentTypeEvent)
	unbookmark.Metadata = map[string]any{"active": false}
	if err := svc.ProcessSideEffects(ctx, unbookmark); err != nil {
		t.Fatalf("unpin: %v", err)
	}
	pins, _ = s.ListEventPins(ctx, "u1")
	if len(pins) != 0 {
		t.Error("unpin must remove the entry")
	}
}

func TestProcessSideEffects_BundleMarksSeen(t *testing.T) {
	s, svc := testSetup(t)
	ctx := context.Background()

	in := validInteraction(models.ActionViewed, models.ContentTypeCategoryBundle)
	in.Metadata = map[string]any{"bundleState": map[string]any{"categoryId": "category:abc", "version": 4}}
	if err := svc.ProcessSideEffects(ctx, in); err != nil {
		t.Fatal(err)
	}

	states, _ := s.GetBundleStates(ctx, "u1", []string{"category:abc"})
	if st := states["category:abc"]; st == nil || st.LastSeenVersion != 4 {
		t.Errorf("state = %+v, want lastSeenVersion 4", states["category:abc"])
	}
}

func TestFanout_EndToEnd(t *testing.T) {
	s, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	seedEvent(t, s, "s1:e1", time.Now().UTC().Add(time.Hour))

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	svc := NewService(s, pubSub, time.UTC)
	fanout := NewFanout(svc, pubSub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fanout.Serve(ctx)
	// Give the subscriber a beat to attach before publishing.
	time.Sleep(50 * time.Millisecond)

	bookmark := validInteraction(models.ActionBookmarked, models.ContentTypeEvent)
	if _, err := svc.RecordInteractions(ctx, []*models.UserInteraction{bookmark}); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pins, _ := s.ListEventPins(ctx, "u1")
		if len(pins) == 1 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("fan-out never applied the pin")
}
