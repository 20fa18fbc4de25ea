// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package profile

import (
	"context"
	"sync"
)

// MemoryBackend is an in-memory profile Backend used by tests.
type MemoryBackend struct {
	mu       sync.Mutex
	profiles map[string]Profile
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{profiles: make(map[string]Profile)}
}

// Save persists one profile.
func (m *MemoryBackend) Save(ctx context.Context, p Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = p
	return nil
}

// Load returns all persisted profiles.
func (m *MemoryBackend) Load(ctx context.Context) ([]Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		out = append(out, p)
	}
	return out, nil
}
