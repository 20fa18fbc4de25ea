// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package social maintains the interaction ledger and the engagement
// statistics derived from it.
//
// The ledger records view, like, bookmark, and share events. Like and
// bookmark are toggles: at most one active entry per (user, content) pair,
// removed outright on toggle-off. Views are recorded at most once per
// (user, content); shares may repeat. Engagement stats are recomputed
// synchronously after every mutation so callers always observe fresh counts.
package social

import (
	"time"

	"github.com/pulsekit/pulse/internal/catalog"
)

// Kind classifies an interaction.
type Kind string

// Interaction kinds.
const (
	KindLike     Kind = "like"
	KindBookmark Kind = "bookmark"
	KindShare    Kind = "share"
	KindView     Kind = "view"
)

// Valid reports whether k is a known interaction kind.
func (k Kind) Valid() bool {
	switch k {
	case KindLike, KindBookmark, KindShare, KindView:
		return true
	default:
		return false
	}
}

// Toggleable reports whether the kind follows toggle semantics.
func (k Kind) Toggleable() bool {
	return k == KindLike || k == KindBookmark
}

// Metadata carries optional, kind-specific interaction detail.
type Metadata struct {
	Platform        string `json:"platform,omitempty"`
	ShareURL        string `json:"share_url,omitempty"`
	ShareText       string `json:"share_text,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
	Completed       bool   `json:"completed,omitempty"`
}

// Interaction is one immutable ledger event.
type Interaction struct {
	ID          string              `json:"id"`
	UserID      string              `json:"user_id"`
	ContentID   string              `json:"content_id"`
	ContentType catalog.ContentType `json:"content_type"`
	Kind        Kind                `json:"kind"`
	Timestamp   time.Time           `json:"timestamp"`
	Metadata    Metadata            `json:"metadata,omitempty"`
}

// Stats holds the engagement counters derived for one content id.
// Engagement is (likes+bookmarks+shares)/views*100, rounded to two decimal
// places, and zero when there are no views.
type Stats struct {
	ContentID  string  `json:"content_id"`
	Likes      int     `json:"likes"`
	Bookmarks  int     `json:"bookmarks"`
	Shares     int     `json:"shares"`
	Views      int     `json:"views"`
	Engagement float64 `json:"engagement"`
}

// TrendingEntry pairs a content id with its stats in trending order.
type TrendingEntry struct {
	ContentID string `json:"content_id"`
	Stats     Stats  `json:"stats"`
}
