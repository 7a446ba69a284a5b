// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package timeutil resolves day boundaries in the configured display time
// zone. All windows are half-open [start, end) and carry absolute UTC
// instants; only the boundary computation happens in local time.
package timeutil

import "time"

// Time-of-day buckets, resolved against the display time zone.
const (
	BucketMorning   = "morning"   // 06:00-12:00
	BucketAfternoon = "afternoon" // 12:00-18:00
	BucketEvening   = "evening"   // 18:00-22:00
	BucketNight     = "night"     // everything else
)

// Buckets lists the four time-of-day buckets in display order.
var Buckets = []string{BucketMorning, BucketAfternoon, BucketEvening, BucketNight}

// Window is a half-open [Start, End) interval in UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}

// DayWindow returns [startOfDay, startOfNextDay) for the day containing
// ts, with boundaries resolved in loc and the result in UTC.
func DayWindow(ts time.Time, loc *time.Location) Window {
	local := ts.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start.UTC(), End: start.AddDate(0, 0, 1).UTC()}
}

// DaysWindow returns [startOfDay(ts), startOfDay(ts)+days) in UTC, with
// the day boundary resolved in loc.
func DaysWindow(ts time.Time, days int, loc *time.Location) Window {
	local := ts.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start.UTC(), End: start.AddDate(0, 0, days).UTC()}
}

// TimeOfDayBucket classifies ts into one of the four buckets using the
// local clock in loc.
func TimeOfDayBucket(ts time.Time, loc *time.Location) string {
	h := ts.In(loc).Hour()
	switch {
	case h >= 6 && h < 12:
		return BucketMorning
	case h >= 12 && h < 18:
		return BucketAfternoon
	case h >= 18 && h < 22:
		return BucketEvening
	default:
		return BucketNight
	}
}

// ValidBucket reports whether s is one of the four bucket names.
func ValidBucket(s string) bool {
	switch s {
	case BucketMorning, BucketAfternoon, BucketEvening, BucketNight:
		return true
	}
	return false
}
