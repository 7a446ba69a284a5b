// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package store is the BadgerDB-backed document store holding every
// persisted collection: events, series, categories, tag proposals,
// interactions, pinned events/series and per-user bundle state.
//
// Records are JSON documents under prefixed keys. Orderings the feed
// depends on (events by start time, series by next start time) are
// maintained as index keys written in the same transaction as the
// record. Transactions that conflict are retried once; a second
// failure surfaces to the caller as an upstream error.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/metrics"
)

// ErrNotFound signals a referenced document is absent. Callers decide
// whether that is a 404 or a skip-this-entry condition.
var ErrNotFound = errors.New("document not found")

// Store wraps the Badger instance.
type Store struct {
	db *badger.DB
}

// Options configures Open.
type Options struct {
	Path     string
	InMemory bool
}

// Open opens (or creates) the store at the configured path.
func Open(opts Options) (*Store, error) {
	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(nil)
	if opts.InMemory {
		bopts = bopts.WithInMemory(true).WithDir("").WithValueDir("")
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Healthy reports whether the store is open and usable.
func (s *Store) Healthy() bool {
	return s.db != nil && !s.db.IsClosed()
}

// update runs fn in a read-write transaction, retrying once on
// conflict. The collection label feeds the retry metric.
func (s *Store) update(collection string, fn func(txn *badger.Txn) error) error {
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		metrics.StoreTxnRetries.WithLabelValues(collection).Inc()
		logging.Debug().Str("collection", collection).Msg("Transaction conflict, retrying")
		err = s.db.Update(fn)
	}
	if err != nil {
		return fmt.Errorf("%s transaction: %w", collection, err)
	}
	return nil
}

// getJSON loads and unmarshals the document at key into out.
// Returns ErrNotFound when absent.
func getJSON(txn *badger.Txn, key string, out any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}

// unmarshal decodes a raw stored value.
func unmarshal(val []byte, out any) error {
	return json.Unmarshal(val, out)
}

// setJSON marshals v and writes it at key.
func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := txn.Set([]byte(key), data); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// iteratePrefix walks every document under prefix, handing raw values
// to fn. fn returning false stops the walk.
func (s *Store) iteratePrefix(prefix string, reverse bool, fn func(key string, val []byte) (bool, error)) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Reverse = reverse
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		seek := p
		if reverse {
			// Seek past the prefix range so reverse iteration starts at
			// its last key.
			seek = append(append([]byte{}, p...), 0xff)
		}
		for it.Seek(seek); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			key := string(item.Key())
			var cont bool
			err := item.Value(func(val []byte) error {
				var ferr error
				cont, ferr = fn(key, val)
				return ferr
			})
			if err != nil {
				return err
			}
			if !cont {
				return nil
			}
		}
		return nil
	})
}

// tsKey formats a timestamp for use inside an ordered index key.
// RFC3339 with fixed nanoseconds sorts lexically in time order.
func tsKey(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}
