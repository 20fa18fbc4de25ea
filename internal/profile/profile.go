// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package profile holds per-user preferences and behavioral history.
//
// Profiles are created lazily with default weights the first time a user id
// is referenced; there is no "not found" error for profile lookup, and the
// engine never deletes a profile. All mutations for one user are serialized
// so history appends and the UpdatedAt bump are observed as one atomic unit.
package profile

import (
	"time"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/social"
)

// WeightSetting is one preference weight with an enabled flag.
type WeightSetting struct {
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// Preferences holds explicit user preference weights.
type Preferences struct {
	ContentTypes map[catalog.ContentType]WeightSetting `json:"content_types"`
	Categories   map[string]WeightSetting              `json:"categories"`
}

// ViewRecord is one entry in a user's view history. There is at most one
// record per content id; repeat views update duration and completion in
// place, and likes/shares may bump Rating.
type ViewRecord struct {
	ContentID       string              `json:"content_id"`
	ContentType     catalog.ContentType `json:"content_type"`
	ViewedAt        time.Time           `json:"viewed_at"`
	DurationSeconds int                 `json:"duration_seconds"`
	Completed       bool                `json:"completed"`
	Rating          float64             `json:"rating,omitempty"`
}

// SearchRecord is one entry in a user's search history.
type SearchRecord struct {
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	SearchedAt  time.Time `json:"searched_at"`
}

// InteractionRecord is the behavioral trace of a ledger interaction.
type InteractionRecord struct {
	InteractionID string              `json:"interaction_id"`
	ContentID     string              `json:"content_id"`
	ContentType   catalog.ContentType `json:"content_type"`
	Kind          social.Kind         `json:"kind"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// Behavior aggregates a user's observed activity.
type Behavior struct {
	ViewHistory   []ViewRecord        `json:"view_history"`
	SearchHistory []SearchRecord      `json:"search_history"`
	Interactions  []InteractionRecord `json:"interactions"`
}

// Profile is one user's preference and behavior state.
type Profile struct {
	ID          string      `json:"id"`
	Preferences Preferences `json:"preferences"`
	Behavior    Behavior    `json:"behavior"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// maxViewRating caps the in-place rating bump applied on likes and shares.
// The bump is otherwise unbounded upstream; clamping keeps the stored value
// inside the documented 0-5 rating scale.
const maxViewRating = 5

// defaultPreferences returns the weights a lazily created profile starts
// with: every known content type enabled at a neutral weight.
func defaultPreferences() Preferences {
	types := []catalog.ContentType{
		catalog.TypeArticle,
		catalog.TypeVideo,
		catalog.TypePodcast,
		catalog.TypeGallery,
		catalog.TypeNewsletter,
	}

	contentTypes := make(map[catalog.ContentType]WeightSetting, len(types))
	for _, t := range types {
		contentTypes[t] = WeightSetting{Weight: 0.5, Enabled: true}
	}

	return Preferences{
		ContentTypes: contentTypes,
		Categories:   make(map[string]WeightSetting),
	}
}

// clone returns a deep copy so callers can read a profile without racing
// concurrent mutations.
func (p *Profile) clone() Profile {
	out := *p

	out.Preferences.ContentTypes = make(map[catalog.ContentType]WeightSetting, len(p.Preferences.ContentTypes))
	for k, v := range p.Preferences.ContentTypes {
		out.Preferences.ContentTypes[k] = v
	}
	out.Preferences.Categories = make(map[string]WeightSetting, len(p.Preferences.Categories))
	for k, v := range p.Preferences.Categories {
		out.Preferences.Categories[k] = v
	}

	out.Behavior.ViewHistory = append([]ViewRecord(nil), p.Behavior.ViewHistory...)
	out.Behavior.SearchHistory = append([]SearchRecord(nil), p.Behavior.SearchHistory...)
	out.Behavior.Interactions = append([]InteractionRecord(nil), p.Behavior.Interactions...)

	return out
}
