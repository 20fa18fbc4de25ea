// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package social

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage. Entries are keyed by a monotonic
// sequence so Load preserves insertion order across restarts; a secondary
// id index supports deletes by interaction id.
const (
	interactionKeyPrefix   = "interaction:"
	interactionIDKeyPrefix = "interaction_id:"
	interactionSeqKey      = "interaction_seq"
)

// BadgerStore is a durable InteractionStore backed by BadgerDB.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
}

// NewBadgerStore creates a BadgerDB-backed interaction store.
func NewBadgerStore(db *badger.DB) (*BadgerStore, error) {
	seq, err := db.GetSequence([]byte(interactionSeqKey), 128)
	if err != nil {
		return nil, fmt.Errorf("open interaction sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq}, nil
}

// Close releases the sequence lease.
func (s *BadgerStore) Close() error {
	return s.seq.Release()
}

// Put persists a ledger entry.
func (s *BadgerStore) Put(ctx context.Context, in Interaction) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal interaction: %w", err)
	}

	n, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	key := []byte(fmt.Sprintf("%s%016x", interactionKeyPrefix, n))

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set interaction: %w", err)
		}
		if err := txn.Set([]byte(interactionIDKeyPrefix+in.ID), key); err != nil {
			return fmt.Errorf("set id index: %w", err)
		}
		return nil
	})
}

// Delete removes a ledger entry by interaction id. Absent ids are a no-op.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		idxKey := []byte(interactionIDKeyPrefix + id)

		item, err := txn.Get(idxKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get id index: %w", err)
		}

		var key []byte
		if err := item.Value(func(val []byte) error {
			key = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return fmt.Errorf("read id index: %w", err)
		}

		if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete interaction: %w", err)
		}
		if err := txn.Delete(idxKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete id index: %w", err)
		}
		return nil
	})
}

// Load returns all live entries in insertion order.
func (s *BadgerStore) Load(ctx context.Context) ([]Interaction, error) {
	var out []Interaction

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(interactionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var in Interaction
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &in)
			})
			if err != nil {
				return fmt.Errorf("decode interaction: %w", err)
			}
			out = append(out, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
