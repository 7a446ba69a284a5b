// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package category assigns event series to host-scoped categories. The
// LLM proposes a name and an action; the final reuse-vs-create decision
// is made by a case- and accent-insensitive match against the host's
// existing categories, regardless of the declared action.
package category

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tomtom215/eventus/internal/classify"
	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/slug"
	"github.com/tomtom215/eventus/internal/store"
)

// Assignment is the outcome of AssignSeries.
type Assignment struct {
	CategoryID   string
	CategoryName string
}

// Classifier is the slice of the classify gateway this package needs.
type Classifier interface {
	ClassifyCategory(ctx context.Context, req classify.CategoryRequest) (*classify.CategoryDecision, error)
}

// Assigner drives category placement.
type Assigner struct {
	store      *store.Store
	classifier Classifier
}

// NewAssigner builds an assigner.
func NewAssigner(st *store.Store, classifier Classifier) *Assigner {
	return &Assigner{store: st, classifier: classifier}
}

// AssignSeries places a series into a category for its host. An already
// categorized series is returned as-is unless force is set. A nil
// result with nil error means the classifier could not decide; the
// series stays uncategorized until the next forced pass.
func (a *Assigner) AssignSeries(ctx context.Context, seriesID string, force bool) (*Assignment, error) {
	series, err := a.store.GetSeries(ctx, seriesID)
	if err != nil {
		return nil, err
	}
	if series == nil {
		return nil, store.ErrNotFound
	}
	if series.CategoryID != "" && !force {
		return &Assignment{CategoryID: series.CategoryID, CategoryName: series.CategoryName}, nil
	}

	existing, err := a.store.ListCategoriesByHost(ctx, series.Host.ID)
	if err != nil {
		return nil, err
	}

	req := classify.CategoryRequest{
		SeriesTitle: series.Title,
		Description: series.Description,
	}
	for _, cat := range existing {
		req.Existing = append(req.Existing, classify.ExistingCategory{
			Name:         cat.Name,
			SampleTitles: cat.SampleSeriesTitles,
		})
	}

	decision, err := a.classifier.ClassifyCategory(ctx, req)
	if err != nil {
		return nil, err
	}
	if decision == nil {
		return nil, nil
	}

	// The declared action is advisory: a name matching an existing
	// category is always a reuse, and a novel name always creates.
	var target *models.EventCategory
	for _, cat := range existing {
		if foldName(cat.Name) == foldName(decision.Name) {
			target = cat
			break
		}
	}

	var assigned *models.EventCategory
	if target == nil {
		assigned, err = a.store.CreateCategory(ctx, series.Host.ID, decision.Name, seriesID, series.Title, series.Tags)
		if err != nil {
			return nil, err
		}
	} else {
		assigned, err = a.store.AddSeriesToCategory(ctx, target.ID, seriesID, series.Title, series.Tags)
		if err != nil {
			return nil, err
		}
	}

	// A reassignment removes the series from its previous category.
	if series.CategoryID != "" && series.CategoryID != assigned.ID {
		if err := a.store.RemoveSeriesFromCategory(ctx, series.CategoryID, seriesID); err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("series", seriesID).
				Str("category", series.CategoryID).
				Msg("Failed to remove series from previous category")
		}
	}

	if err := a.store.UpdateSeriesCategory(ctx, seriesID, assigned.ID, assigned.Name, slug.Slugify(assigned.Name)); err != nil {
		return nil, err
	}

	return &Assignment{CategoryID: assigned.ID, CategoryName: assigned.Name}, nil
}

// foldName lower-cases and strips accents so "Música" and "musica"
// collide.
func foldName(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
