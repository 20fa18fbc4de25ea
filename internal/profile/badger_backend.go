// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package profile

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// profileKeyPrefix namespaces profile records in the shared BadgerDB.
const profileKeyPrefix = "profile:"

// BadgerBackend is a durable profile Backend backed by BadgerDB.
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend creates a BadgerDB-backed profile backend.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// Save persists one profile, replacing any previous version.
func (b *BadgerBackend) Save(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(profileKeyPrefix+p.ID), data)
	})
}

// Load returns all persisted profiles.
func (b *BadgerBackend) Load(ctx context.Context) ([]Profile, error) {
	var out []Profile

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(profileKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var p Profile
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &p)
			})
			if err != nil {
				return fmt.Errorf("decode profile: %w", err)
			}
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
