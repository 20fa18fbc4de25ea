// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package social

import (
	"context"
	"errors"
)

// Sentinel errors for ledger operations.
var (
	// ErrEmptyUserID indicates a missing user id.
	ErrEmptyUserID = errors.New("user id is required")

	// ErrEmptyContentID indicates a missing content id.
	ErrEmptyContentID = errors.New("content id is required")

	// ErrUnknownKind indicates an interaction kind outside the known set.
	ErrUnknownKind = errors.New("unknown interaction kind")

	// ErrNotToggleable indicates a toggle was requested for a kind that is
	// not a toggle (share and view are never toggled).
	ErrNotToggleable = errors.New("interaction kind is not toggleable")

	// ErrStorage indicates the backing store failed to persist or load.
	// The in-memory ledger state is still applied when a mutation returns a
	// wrapped ErrStorage; callers can distinguish persistence failures from
	// logic failures with errors.Is.
	ErrStorage = errors.New("interaction storage failure")
)

// InteractionStore persists ledger entries.
//
// Toggle kinds (like, bookmark) are modeled as a mutable set keyed by
// (user, content, kind): Put inserts, Delete removes outright. View and share
// entries only ever grow. Every mutating call must leave storage consistent
// with the caller's in-memory state before returning.
type InteractionStore interface {
	// Put persists a ledger entry.
	Put(ctx context.Context, in Interaction) error

	// Delete removes a ledger entry by id. Deleting an absent id is a no-op.
	Delete(ctx context.Context, id string) error

	// Load returns all live ledger entries in insertion order.
	Load(ctx context.Context) ([]Interaction, error)
}
