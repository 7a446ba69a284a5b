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
)

// GetBundleStates loads the user's per-category bundle state for the
// given categories. Categories the user has never seen are absent from
// the result map.
func (s *Store) GetBundleStates(ctx context.Context, userID string, categoryIDs []string) (map[string]*models.UserCategoryBundleState, error) {
	out := make(map[string]*models.UserCategoryBundleState, len(categoryIDs))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, categoryID := range categoryIDs {
			var st models.UserCategoryBundleState
			err := getJSON(txn, bundleStateKey(userID, categoryID), &st)
			if err == ErrNotFound {
				continue
			}
			if err != nil {
				return err
			}
			out[categoryID] = &st
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSeen records that the user has acknowledged the category at
// version. The stored version never moves backwards.
func (s *Store) MarkSeen(ctx context.Context, userID, categoryID string, version int) error {
	return s.update("categoryBundles", func(txn *badger.Txn) error {
		var st models.UserCategoryBundleState
		err := getJSON(txn, bundleStateKey(userID, categoryID), &st)
		if err != nil && err != ErrNotFound {
			return err
		}
		st.UserID = userID
		st.CategoryID = categoryID
		if version > st.LastSeenVersion {
			st.LastSeenVersion = version
		}
		st.LastSeenAt = time.Now().UTC()
		return setJSON(txn, bundleStateKey(userID, categoryID), &st)
	})
}
