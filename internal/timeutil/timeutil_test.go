// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package timeutil

import (
	"testing"
	"time"
)

func losAngeles(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestDayWindow_HalfOpen(t *testing.T) {
	loc := losAngeles(t)
	// 2026-03-15 23:30 Pacific is 2026-03-16 06:30 UTC.
	ts := time.Date(2026, 3, 16, 6, 30, 0, 0, time.UTC)

	w := DayWindow(ts, loc)

	wantStart := time.Date(2026, 3, 15, 0, 0, 0, 0, loc).UTC()
	wantEnd := time.Date(2026, 3, 16, 0, 0, 0, 0, loc).UTC()
	if !w.Start.Equal(wantStart) {
		t.Errorf("start = %v, want %v", w.Start, wantStart)
	}
	if !w.End.Equal(wantEnd) {
		t.Errorf("end = %v, want %v", w.End, wantEnd)
	}

	if !w.Contains(w.Start) {
		t.Error("window must include its start")
	}
	if w.Contains(w.End) {
		t.Error("window must exclude its end")
	}
}

func TestDaysWindow_SpansDST(t *testing.T) {
	loc := losAngeles(t)
	// DST starts 2026-03-08 in the US; the local day is 23 hours long.
	ts := time.Date(2026, 3, 7, 12, 0, 0, 0, loc)

	w := DaysWindow(ts, 2, loc)
	span := w.End.Sub(w.Start)
	if span != 47*time.Hour {
		t.Errorf("2-day span across spring-forward = %v, want 47h", span)
	}
}

func TestTimeOfDayBucket(t *testing.T) {
	loc := losAngeles(t)
	tests := []struct {
		hour int
		want string
	}{
		{6, BucketMorning},
		{11, BucketMorning},
		{12, BucketAfternoon},
		{17, BucketAfternoon},
		{18, BucketEvening},
		{21, BucketEvening},
		{22, BucketNight},
		{2, BucketNight},
		{5, BucketNight},
	}
	for _, tt := range tests {
		ts := time.Date(2026, 6, 1, tt.hour, 30, 0, 0, loc)
		if got := TimeOfDayBucket(ts, loc); got != tt.want {
			t.Errorf("hour %d: bucket = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestValidBucket(t *testing.T) {
	for _, b := range Buckets {
		if !ValidBucket(b) {
			t.Errorf("expected %q valid", b)
		}
	}
	if ValidBucket("noon") {
		t.Error("noon should be invalid")
	}
}
