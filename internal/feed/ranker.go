// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package feed ranks content items along six weighted behavioral
// signals, mixes in exploration, bundles category updates and serves
// the paginated personalized feed.
package feed

import (
	"math"
	"sort"
	"time"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// Weights are the six signal weights. They must sum to 1.
type Weights struct {
	Topic       float64
	ContentType float64
	Time        float64
	Style       float64
	Recency     float64
	Popularity  float64
}

// DefaultWeights mirror the deployment defaults.
var DefaultWeights = Weights{
	Topic:       0.40,
	ContentType: 0.25,
	Time:        0.15,
	Style:       0.10,
	Recency:     0.05,
	Popularity:  0.05,
}

// Ranker scores candidates against a user profile.
type Ranker struct {
	weights  Weights
	location *time.Location
}

// NewRanker builds a ranker.
func NewRanker(weights Weights, loc *time.Location) *Ranker {
	return &Ranker{weights: weights, location: loc}
}

// Rank scores every candidate and returns them sorted by descending
// score. The profile must have an embedding centroid; cold-start users
// take the ColdStart path instead.
func (r *Ranker) Rank(profile *models.UserProfile, candidates []models.ContentItem, now time.Time) []models.ScoredItem {
	scored := make([]models.ScoredItem, 0, len(candidates))
	nowBucket := timeutil.TimeOfDayBucket(now, r.location)

	for _, c := range candidates {
		scores := map[string]float64{
			"topic":       topicScore(profile.Embedding, c.Embedding),
			"contentType": contentTypeScore(profile.ContentTypeAffinity, c.ContentType),
			"time":        timeScore(profile.TimeOfDayPatterns, nowBucket),
			"style":       styleScore(profile.EngagementStyle, c.Title),
			"recency":     recencyScore(c.CreatedAt, now),
			"popularity":  popularityScore(c.Stats),
		}
		total := r.weights.Topic*scores["topic"] +
			r.weights.ContentType*scores["contentType"] +
			r.weights.Time*scores["time"] +
			r.weights.Style*scores["style"] +
			r.weights.Recency*scores["recency"] +
			r.weights.Popularity*scores["popularity"]

		scored = append(scored, models.ScoredItem{Item: c, Score: total, Scores: scores})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored
}

// ColdStart orders candidates by ascending createdAt with zero scores,
// for users below the personalization threshold or without a centroid.
func ColdStart(candidates []models.ContentItem) []models.ScoredItem {
	ordered := make([]models.ContentItem, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	scored := make([]models.ScoredItem, len(ordered))
	for i, c := range ordered {
		scored[i] = models.ScoredItem{Item: c}
	}
	return scored
}

// topicScore is the cosine similarity between the candidate embedding
// and the profile centroid; 0 when either is missing.
func topicScore(profile, candidate []float64) float64 {
	if len(profile) == 0 || len(candidate) == 0 || len(profile) != len(candidate) {
		return 0
	}
	var dot, normA, normB float64
	for i := range profile {
		dot += profile[i] * candidate[i]
		normA += profile[i] * profile[i]
		normB += candidate[i] * candidate[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp numeric drift into [0,1] signal space.
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// contentTypeScore maps affinity [-1,1] onto [0,1], neutral for
// unknown types.
func contentTypeScore(affinity map[string]float64, contentType string) float64 {
	a, ok := affinity[contentType]
	if !ok {
		return 0.5
	}
	return (a + 1) / 2
}

// timeScore is the share of the user's activity falling in the current
// bucket; neutral when the histogram is empty.
func timeScore(patterns map[string]int, nowBucket string) float64 {
	total := 0
	for _, n := range patterns {
		total += n
	}
	if total == 0 {
		return 0.5
	}
	return float64(patterns[nowBucket]) / float64(total)
}

// styleScore matches title length against reading style: deep readers
// favor long titles, quick browsers short ones, everyone else is
// neutral.
func styleScore(style models.EngagementStyle, title string) float64 {
	titleLen := float64(len(title))
	switch {
	case style.IsDeepReader:
		return math.Min(titleLen/200, 1)
	case style.QuickBrowser:
		return math.Max(1-titleLen/200, 0)
	default:
		return 0.5
	}
}

// recencyScore decays exponentially with a 24-hour time constant: 1 when
// fresh, 1/e after a day.
func recencyScore(createdAt, now time.Time) float64 {
	ageHours := now.Sub(createdAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	return math.Exp(-ageHours / 24)
}

// popularityScore is engagement per view against a 0.2 saturation
// ceiling; 0 without views.
func popularityScore(stats models.ContentStats) float64 {
	if stats.Views == 0 {
		return 0
	}
	engagement := float64(stats.Likes) + 2*float64(stats.Shares) + 1.5*float64(stats.Bookmarks)
	return math.Min(engagement/float64(stats.Views)/0.2, 1)
}
