// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/models"
)

// MaxInteractionBatch bounds one atomic interaction write.
const MaxInteractionBatch = 100

// AppendInteractions writes the batch atomically. The key layout
// ({userId}:{ts}:{id}) makes reverse prefix iteration return a user's
// interactions newest-first without a separate index.
func (s *Store) AppendInteractions(ctx context.Context, interactions []*models.UserInteraction) error {
	if len(interactions) == 0 {
		return nil
	}
	if len(interactions) > MaxInteractionBatch {
		return fmt.Errorf("interaction batch of %d exceeds maximum %d", len(interactions), MaxInteractionBatch)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, in := range interactions {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal interaction %s: %w", in.ID, err)
		}
		key := interactionKey(in.UserID, in.Timestamp, in.ID)
		if err := wb.Set([]byte(key), data); err != nil {
			return fmt.Errorf("batch set %s: %w", key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush interaction batch: %w", err)
	}
	return nil
}

// ListRecentInteractions returns a user's interactions newest-first,
// capped at limit.
func (s *Store) ListRecentInteractions(ctx context.Context, userID string, limit int) ([]*models.UserInteraction, error) {
	var out []*models.UserInteraction
	err := s.iteratePrefix(interactionUserPrefix(userID), true, func(key string, val []byte) (bool, error) {
		var in models.UserInteraction
		if err := unmarshal(val, &in); err != nil {
			return false, err
		}
		out = append(out, &in)
		return limit <= 0 || len(out) < limit, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
