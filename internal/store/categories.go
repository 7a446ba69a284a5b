// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package store

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/slug"
)

// GetCategory returns the stored category or nil when absent.
func (s *Store) GetCategory(ctx context.Context, id string) (*models.EventCategory, error) {
	var cat models.EventCategory
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, categoryKey(id), &cat)
	})
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

// ListCategoriesByHost returns every category owned by hostID.
func (s *Store) ListCategoriesByHost(ctx context.Context, hostID string) ([]*models.EventCategory, error) {
	var ids []string
	err := s.iteratePrefix(categoryHostIdxPrefix+hostID+":", false, func(key string, val []byte) (bool, error) {
		ids = append(ids, string(val))
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]*models.EventCategory, 0, len(ids))
	for _, id := range ids {
		cat, err := s.GetCategory(ctx, id)
		if err != nil {
			return nil, err
		}
		if cat != nil {
			out = append(out, cat)
		}
	}
	return out, nil
}

// CreateCategory writes a fresh category seeded with its first series.
// Version starts at 1 with a matching changeLog entry, so readers never
// observe a version without its bump record.
func (s *Store) CreateCategory(ctx context.Context, hostID, name, seriesID, seriesTitle string, tags []string) (*models.EventCategory, error) {
	now := time.Now().UTC()
	id := models.CategoryID(hostID, name)

	cat := &models.EventCategory{
		ID:                 id,
		HostID:             hostID,
		Name:               name,
		Slug:               slug.Slugify(name),
		Tags:               capStrings(normalizeTags(tags), models.MaxCategoryTags),
		SampleSeriesTitles: []string{seriesTitle},
		SeriesIDs:          []string{seriesID},
		Version:            1,
		ChangeLog: []models.ChangeLogEntry{{
			Version:           1,
			AddedSeriesIDs:    []string{seriesID},
			AddedSeriesTitles: []string{seriesTitle},
			CreatedAt:         now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.update("eventCategories", func(txn *badger.Txn) error {
		if err := txn.Set([]byte(categoryHostIdxKey(hostID, id)), []byte(id)); err != nil {
			return err
		}
		return setJSON(txn, categoryKey(id), cat)
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// AddSeriesToCategory adds seriesID to the category inside one
// transaction. When the series is new to the category the version bump
// and its changeLog entry commit together; a no-op membership leaves
// version and log untouched.
func (s *Store) AddSeriesToCategory(ctx context.Context, categoryID, seriesID, seriesTitle string, tags []string) (*models.EventCategory, error) {
	var out models.EventCategory
	err := s.update("eventCategories", func(txn *badger.Txn) error {
		var cat models.EventCategory
		if err := getJSON(txn, categoryKey(categoryID), &cat); err != nil {
			return err
		}

		if !cat.HasSeries(seriesID) {
			cat.SeriesIDs = append(cat.SeriesIDs, seriesID)
			cat.Version++
			cat.ChangeLog = append(cat.ChangeLog, models.ChangeLogEntry{
				Version:           cat.Version,
				AddedSeriesIDs:    []string{seriesID},
				AddedSeriesTitles: []string{seriesTitle},
				CreatedAt:         time.Now().UTC(),
			})
			if len(cat.ChangeLog) > models.MaxCategoryChangeLog {
				cat.ChangeLog = cat.ChangeLog[len(cat.ChangeLog)-models.MaxCategoryChangeLog:]
			}
		}

		cat.Tags = capStrings(unionStrings(cat.Tags, normalizeTags(tags)), models.MaxCategoryTags)
		cat.SampleSeriesTitles = refreshSamples(cat.SampleSeriesTitles, seriesTitle)
		cat.UpdatedAt = time.Now().UTC()

		out = cat
		return setJSON(txn, categoryKey(categoryID), &cat)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveSeriesFromCategory drops seriesID from the category's
// membership after a reassignment. Removals do not bump the version;
// only additions participate in the "what's new" diff.
func (s *Store) RemoveSeriesFromCategory(ctx context.Context, categoryID, seriesID string) error {
	return s.update("eventCategories", func(txn *badger.Txn) error {
		var cat models.EventCategory
		if err := getJSON(txn, categoryKey(categoryID), &cat); err != nil {
			if err == ErrNotFound {
				return nil
			}
			return err
		}
		kept := cat.SeriesIDs[:0]
		for _, id := range cat.SeriesIDs {
			if id != seriesID {
				kept = append(kept, id)
			}
		}
		cat.SeriesIDs = kept
		cat.UpdatedAt = time.Now().UTC()
		return setJSON(txn, categoryKey(categoryID), &cat)
	})
}

// refreshSamples keeps the most recent MaxCategorySamples titles,
// newest last, de-duplicated.
func refreshSamples(samples []string, title string) []string {
	out := make([]string, 0, len(samples)+1)
	for _, s := range samples {
		if s != title {
			out = append(out, s)
		}
	}
	out = append(out, title)
	if len(out) > models.MaxCategorySamples {
		out = out[len(out)-models.MaxCategorySamples:]
	}
	return out
}

// capStrings truncates s to at most n entries.
func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
