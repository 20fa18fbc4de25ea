// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package experiment

import (
	"context"
	"sync"
)

// MemoryBackend is an in-memory Backend for tests and single-process runs.
type MemoryBackend struct {
	mu     sync.RWMutex
	counts map[Variant]Counts
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{counts: make(map[Variant]Counts)}
}

// Save replaces the stored counters.
func (m *MemoryBackend) Save(_ context.Context, counts map[Variant]Counts) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.counts = make(map[Variant]Counts, len(counts))
	for variant, c := range counts {
		m.counts[variant] = c
	}
	return nil
}

// Load returns a copy of the stored counters.
func (m *MemoryBackend) Load(_ context.Context) (map[Variant]Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[Variant]Counts, len(m.counts))
	for variant, c := range m.counts {
		out[variant] = c
	}
	return out, nil
}
