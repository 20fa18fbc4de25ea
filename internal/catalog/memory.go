// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package catalog

import (
	"context"
	"sync"
)

// Memory is an in-memory snapshot catalog. It is safe for concurrent use:
// Replace swaps the snapshot atomically while readers see a consistent view.
type Memory struct {
	mu    sync.RWMutex
	items []ContentItem
	byID  map[string]int
}

// NewMemory creates an in-memory catalog holding the given snapshot.
func NewMemory(items []ContentItem) *Memory {
	m := &Memory{}
	m.Replace(items)
	return m
}

// Replace swaps the current snapshot wholesale.
func (m *Memory) Replace(items []ContentItem) {
	byID := make(map[string]int, len(items))
	for i, item := range items {
		byID[item.ID] = i
	}

	m.mu.Lock()
	m.items = items
	m.byID = byID
	m.mu.Unlock()
}

// List returns the current snapshot. The returned slice is a copy so callers
// cannot mutate the snapshot under concurrent readers.
func (m *Memory) List(ctx context.Context) ([]ContentItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ContentItem, len(m.items))
	copy(out, m.items)
	return out, nil
}

// Get resolves a single item by id.
func (m *Memory) Get(ctx context.Context, id string) (ContentItem, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	idx, ok := m.byID[id]
	if !ok {
		return ContentItem{}, false, nil
	}
	return m.items[idx], true, nil
}
