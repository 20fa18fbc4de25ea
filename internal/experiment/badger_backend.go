// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package experiment

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"
)

// experimentCountsKey holds the serialized per-variant counters.
const experimentCountsKey = "experiment:counts"

// BadgerBackend persists experiment counters in Badger.
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend creates a backend on an already-open database.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// Save persists the counters under a single key.
func (b *BadgerBackend) Save(_ context.Context, counts map[Variant]Counts) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("marshal counters: %w", err)
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(experimentCountsKey), data)
	})
	if err != nil {
		return fmt.Errorf("write counters: %w", err)
	}
	return nil
}

// Load returns the persisted counters, or an empty map when none exist.
func (b *BadgerBackend) Load(_ context.Context) (map[Variant]Counts, error) {
	counts := make(map[Variant]Counts)

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(experimentCountsKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &counts)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("read counters: %w", err)
	}
	return counts, nil
}
