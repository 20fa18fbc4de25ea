// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package social

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory InteractionStore used by tests and embedded
// deployments that do not need durability.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]Interaction
	order   []string
}

// NewMemoryStore creates an empty in-memory interaction store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]Interaction)}
}

// Put persists a ledger entry.
func (m *MemoryStore) Put(ctx context.Context, in Interaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[in.ID]; !exists {
		m.order = append(m.order, in.ID)
	}
	m.entries[in.ID] = in
	return nil
}

// Delete removes a ledger entry by id.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[id]; !exists {
		return nil
	}
	delete(m.entries, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Load returns all live entries in insertion order.
func (m *MemoryStore) Load(ctx context.Context) ([]Interaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Interaction, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.entries[id])
	}
	return out, nil
}
