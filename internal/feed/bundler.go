// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package feed

import (
	"context"
	"sort"

	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/slug"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/timeutil"
)

// Bundler groups candidate series into per-user "new items in category
// X" bundles by diffing category versions against the user's last-seen
// state.
type Bundler struct {
	store *store.Store
}

// NewBundler builds a bundler.
func NewBundler(st *store.Store) *Bundler {
	return &Bundler{store: st}
}

// BundleResult separates bundles from the series that stayed ungrouped.
type BundleResult struct {
	Bundles   []models.ContentItem
	Ungrouped []*models.EventSeries
}

// BuildBundles partitions candidate series by (host, category), diffs
// each category against the user's last-seen version and emits one
// synthetic bundle item per category with news. Series missing a host
// or category pass through ungrouped.
func (b *Bundler) BuildBundles(ctx context.Context, userID string, candidates []*models.EventSeries, window timeutil.Window) (*BundleResult, error) {
	result := &BundleResult{}

	groups := map[string][]*models.EventSeries{}
	var categoryIDs []string
	for _, s := range candidates {
		if s.Host.ID == "" || s.CategoryID == "" {
			result.Ungrouped = append(result.Ungrouped, s)
			continue
		}
		if _, seen := groups[s.CategoryID]; !seen {
			categoryIDs = append(categoryIDs, s.CategoryID)
		}
		groups[s.CategoryID] = append(groups[s.CategoryID], s)
	}
	if len(groups) == 0 {
		return result, nil
	}

	states, err := b.store.GetBundleStates(ctx, userID, categoryIDs)
	if err != nil {
		return nil, err
	}

	for _, categoryID := range categoryIDs {
		cat, err := b.store.GetCategory(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		if cat == nil {
			// Dangling category reference: the series still ranks alone.
			result.Ungrouped = append(result.Ungrouped, groups[categoryID]...)
			continue
		}

		members, err := b.hydrateMembers(ctx, cat, groups[categoryID], window)
		if err != nil {
			return nil, err
		}
		if len(members) == 0 {
			continue
		}

		state := states[categoryID]
		newSeriesIDs := diffNewSeries(cat, state)
		if state != nil && len(newSeriesIDs) == 0 {
			// Caught up: the user saw this version and nothing was added.
			continue
		}

		display := newSeriesIDs
		if state == nil {
			display = seriesIDsOf(members)
		}
		result.Bundles = append(result.Bundles, bundleItem(cat, members, newSeriesIDs, display))
	}
	return result, nil
}

// hydrateMembers resolves the category's full series membership,
// intersected with the query window, sorted by earliest upcoming
// occurrence. The candidate set seeds the map so already-loaded series
// are not re-read.
func (b *Bundler) hydrateMembers(ctx context.Context, cat *models.EventCategory, candidates []*models.EventSeries, window timeutil.Window) ([]*models.EventSeries, error) {
	byID := map[string]*models.EventSeries{}
	for _, s := range candidates {
		byID[s.ID] = s
	}
	for _, id := range cat.SeriesIDs {
		if _, loaded := byID[id]; loaded {
			continue
		}
		s, err := b.store.GetSeries(ctx, id)
		if err != nil {
			return nil, err
		}
		if s == nil {
			logging.Ctx(ctx).Warn().Str("series", id).Str("category", cat.ID).Msg("Category references missing series")
			continue
		}
		byID[id] = s
	}

	members := make([]*models.EventSeries, 0, len(byID))
	for _, s := range byID {
		if s.NextStartTime == nil || !window.Contains(*s.NextStartTime) {
			continue
		}
		members = append(members, s)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].NextStartTime.Before(*members[j].NextStartTime)
	})
	return members, nil
}

// diffNewSeries computes the series added since the user's last-seen
// version. No state means everything is new. An empty union with a
// newer version falls back to the full set so a truncated changeLog
// never hides an update.
func diffNewSeries(cat *models.EventCategory, state *models.UserCategoryBundleState) []string {
	if state == nil {
		return append([]string{}, cat.SeriesIDs...)
	}

	seen := map[string]struct{}{}
	var added []string
	for _, entry := range cat.ChangeLog {
		if entry.Version <= state.LastSeenVersion {
			continue
		}
		for _, id := range entry.AddedSeriesIDs {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			added = append(added, id)
		}
	}
	if len(added) == 0 && cat.Version > state.LastSeenVersion {
		return append([]string{}, cat.SeriesIDs...)
	}
	return added
}

// seriesIDsOf extracts ids preserving member order.
func seriesIDsOf(members []*models.EventSeries) []string {
	ids := make([]string, len(members))
	for i, s := range members {
		ids[i] = s.ID
	}
	return ids
}

// bundleItem assembles the synthetic feed item for a category bundle.
func bundleItem(cat *models.EventCategory, members []*models.EventSeries, newSeriesIDs, displaySeries []string) models.ContentItem {
	hostName := ""
	tags := map[string]struct{}{}
	var embeddingSum []float64
	embedded := 0
	stats := models.ContentStats{}
	earliest := members[0].CreatedAt

	for _, s := range members {
		if hostName == "" {
			hostName = s.Host.Name
		}
		stats = stats.Add(models.SeriesContentItem(s).Stats)
		for _, t := range s.Tags {
			tags[t] = struct{}{}
		}
		if len(s.Vector) > 0 {
			if embeddingSum == nil {
				embeddingSum = make([]float64, len(s.Vector))
			}
			if len(s.Vector) == len(embeddingSum) {
				for i, v := range s.Vector {
					embeddingSum[i] += v
				}
				embedded++
			}
		}
		if s.CreatedAt.Before(earliest) {
			earliest = s.CreatedAt
		}
	}

	if embedded > 0 {
		for i := range embeddingSum {
			embeddingSum[i] /= float64(embedded)
		}
	}

	tagList := make([]string, 0, len(tags))
	for t := range tags {
		tagList = append(tagList, t)
	}
	sort.Strings(tagList)

	title := cat.Name
	if hostName != "" {
		title = cat.Name + " · " + hostName
	}

	return models.ContentItem{
		ID:          "bundle:" + cat.ID,
		Title:       title,
		ContentType: models.ContentTypeCategoryBundle,
		Tags:        tagList,
		Embedding:   embeddingSum,
		CreatedAt:   earliest,
		StartTime:   members[0].NextStartTime,
		Stats:       stats,
		Metadata: map[string]any{
			"bundle": map[string]any{
				"categoryId":       cat.ID,
				"categoryName":     cat.Name,
				"categorySlug":     slug.Slugify(cat.Name),
				"hostName":         hostName,
				"seriesIds":        seriesIDsOf(members),
				"newSeriesIds":     newSeriesIDs,
				"displaySeries":    displaySeries,
				"totalSeriesCount": len(members),
				"bundleState": map[string]any{
					"categoryId": cat.ID,
					"version":    cat.Version,
				},
			},
		},
	}
}
