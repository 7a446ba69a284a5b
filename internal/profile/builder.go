// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package profile derives user profiles from interaction history: the
// embedding centroid of positively-acted content, per-content-type
// affinity, time-of-day patterns and engagement style.
package profile

import (
	"context"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/store"
)

const (
	// historyLimit is how many recent interactions a profile considers.
	historyLimit = 200

	// vectorChunkSize bounds one batch of content-vector reads.
	vectorChunkSize = 10

	// PersonalizationThreshold is the minimum interaction count before
	// the feed personalizes.
	PersonalizationThreshold = 20
)

// Builder computes profiles on demand.
type Builder struct {
	store *store.Store
}

// NewBuilder builds a profile builder.
func NewBuilder(st *store.Store) *Builder {
	return &Builder{store: st}
}

// HasEnoughData reports whether the user crossed the personalization
// threshold.
func (b *Builder) HasEnoughData(ctx context.Context, userID string) (bool, error) {
	interactions, err := b.store.ListRecentInteractions(ctx, userID, PersonalizationThreshold)
	if err != nil {
		return false, err
	}
	return len(interactions) >= PersonalizationThreshold, nil
}

// BuildUserProfile derives the profile from the user's most recent
// interactions.
func (b *Builder) BuildUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	interactions, err := b.store.ListRecentInteractions(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	p := &models.UserProfile{
		UserID:              userID,
		ContentTypeAffinity: map[string]float64{},
		TimeOfDayPatterns:   map[string]int{},
		TotalInteractions:   len(interactions),
	}
	if len(interactions) == 0 {
		return p, nil
	}
	// Interactions arrive newest-first.
	p.LastActiveAt = interactions[0].Timestamp

	p.Embedding, err = b.buildCentroid(ctx, interactions)
	if err != nil {
		return nil, err
	}
	buildAffinity(p, interactions)
	buildTemporal(p, interactions)
	buildEngagementStyle(p, interactions)
	return p, nil
}

// buildCentroid loads vectors for positively-acted content in chunks
// and averages them element-wise. Nil when no vectors exist.
func (b *Builder) buildCentroid(ctx context.Context, interactions []*models.UserInteraction) ([]float64, error) {
	var ids []string
	seen := map[string]struct{}{}
	for _, in := range interactions {
		if _, positive := models.PositiveActions[in.Action]; !positive {
			continue
		}
		if _, dup := seen[in.ContentID]; dup {
			continue
		}
		seen[in.ContentID] = struct{}{}
		ids = append(ids, in.ContentID)
	}

	var sum []float64
	count := 0
	for start := 0; start < len(ids); start += vectorChunkSize {
		end := start + vectorChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		for _, id := range ids[start:end] {
			vec, err := b.loadVector(ctx, id)
			if err != nil {
				return nil, err
			}
			if vec == nil {
				continue
			}
			if sum == nil {
				sum = make([]float64, len(vec))
			}
			if len(vec) != len(sum) {
				continue
			}
			for i, v := range vec {
				sum[i] += v
			}
			count++
		}
	}
	if count == 0 {
		return nil, nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum, nil
}

// loadVector resolves a content id to its stored embedding, trying
// events first then series.
func (b *Builder) loadVector(ctx context.Context, contentID string) ([]float64, error) {
	event, err := b.store.GetEvent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if event != nil {
		return event.Vector, nil
	}
	series, err := b.store.GetSeries(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if series != nil {
		return series.Vector, nil
	}
	return nil, nil
}

// buildAffinity scores each content type as the action-weight sum over
// that type, normalized by its interaction count and a damping factor,
// clamped to [-1, 1].
func buildAffinity(p *models.UserProfile, interactions []*models.UserInteraction) {
	sums := map[string]float64{}
	counts := map[string]int{}
	for _, in := range interactions {
		sums[in.ContentType] += models.ActionWeights[in.Action]
		counts[in.ContentType]++
	}
	for t, sum := range sums {
		affinity := sum / float64(counts[t]) / 10
		if affinity > 1 {
			affinity = 1
		}
		if affinity < -1 {
			affinity = -1
		}
		p.ContentTypeAffinity[t] = affinity
	}
}

// buildTemporal histograms interactions across the four buckets.
func buildTemporal(p *models.UserProfile, interactions []*models.UserInteraction) {
	for _, in := range interactions {
		if in.Context.TimeOfDay != "" {
			p.TimeOfDayPatterns[in.Context.TimeOfDay]++
		}
	}
}

// buildEngagementStyle derives dwell and scroll-depth characteristics.
func buildEngagementStyle(p *models.UserProfile, interactions []*models.UserInteraction) {
	var dwellSum, posSum float64
	dwellCount := 0
	for _, in := range interactions {
		if in.DwellTime > 0 {
			dwellSum += in.DwellTime
			dwellCount++
		}
		posSum += float64(in.Context.Position)
	}

	style := models.EngagementStyle{}
	if dwellCount > 0 {
		style.AvgDwellTime = dwellSum / float64(dwellCount)
	}
	style.AvgPosition = posSum / float64(len(interactions))
	style.IsDeepReader = style.AvgDwellTime > models.DeepReaderDwellSeconds
	style.QuickBrowser = style.AvgDwellTime > 0 && style.AvgDwellTime < models.QuickBrowserDwellSecond
	style.ScrollsDeep = style.AvgPosition > models.ScrollsDeepPosition
	p.EngagementStyle = style
}
