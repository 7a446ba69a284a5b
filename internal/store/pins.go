// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/eventus/internal/models"
)

// SetEventPin stores a denormalized event pin for (userId, eventId).
func (s *Store) SetEventPin(ctx context.Context, pin *models.PinnedEvent) error {
	return s.update("userPinnedEvents", func(txn *badger.Txn) error {
		return setJSON(txn, pinEventKey(pin.UserID, pin.EventID), pin)
	})
}

// RemoveEventPin deletes a direct event pin. Removing an absent pin is
// a no-op.
func (s *Store) RemoveEventPin(ctx context.Context, userID, eventID string) error {
	return s.update("userPinnedEvents", func(txn *badger.Txn) error {
		err := txn.Delete([]byte(pinEventKey(userID, eventID)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// GetEventPin returns the stored pin or nil when absent.
func (s *Store) GetEventPin(ctx context.Context, userID, eventID string) (*models.PinnedEvent, error) {
	var pin models.PinnedEvent
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, pinEventKey(userID, eventID), &pin)
	})
	if err == ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pin, nil
}

// ListEventPins returns all of a user's direct event pins.
func (s *Store) ListEventPins(ctx context.Context, userID string) ([]*models.PinnedEvent, error) {
	var pins []*models.PinnedEvent
	err := s.iteratePrefix(pinEventPrefix(userID), false, func(key string, val []byte) (bool, error) {
		var pin models.PinnedEvent
		if err := unmarshal(val, &pin); err != nil {
			return false, err
		}
		pins = append(pins, &pin)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return pins, nil
}

// SetSeriesPin stores a series pin for (userId, seriesId).
func (s *Store) SetSeriesPin(ctx context.Context, pin *models.PinnedSeries) error {
	return s.update("userPinnedEvents", func(txn *badger.Txn) error {
		return setJSON(txn, pinSeriesKey(pin.UserID, pin.SeriesID), pin)
	})
}

// RemoveSeriesPin deletes a series pin. Absent pins are a no-op.
func (s *Store) RemoveSeriesPin(ctx context.Context, userID, seriesID string) error {
	return s.update("userPinnedEvents", func(txn *badger.Txn) error {
		err := txn.Delete([]byte(pinSeriesKey(userID, seriesID)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// ListSeriesPins returns all of a user's series pins.
func (s *Store) ListSeriesPins(ctx context.Context, userID string) ([]*models.PinnedSeries, error) {
	var pins []*models.PinnedSeries
	err := s.iteratePrefix(pinSeriesPrefix(userID), false, func(key string, val []byte) (bool, error) {
		var pin models.PinnedSeries
		if err := unmarshal(val, &pin); err != nil {
			return false, err
		}
		pins = append(pins, &pin)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return pins, nil
}
