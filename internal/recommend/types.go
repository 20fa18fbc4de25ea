// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package recommend blends multiple scoring strategies into a single ranked
// recommendation list.
//
// Four strategies contribute candidate pools with target shares of the
// requested limit: behavior-based (40%), content-similarity (30%), trending
// (20%), and type discovery (10%). Pools are concatenated in strategy order,
// stable-sorted by score descending, and truncated, so ties keep a
// reproducible strategy-then-candidate order.
package recommend

import (
	"context"
	"time"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/profile"
)

// ReasonKind is the closed set of recommendation reason tags. New strategies
// must extend this set explicitly rather than introducing loose strings.
type ReasonKind string

// Reason kinds.
const (
	ReasonCategoryMatch  ReasonKind = "category_match"
	ReasonBehaviorMatch  ReasonKind = "behavior_match"
	ReasonSimilarContent ReasonKind = "similar_content"
	ReasonTrending       ReasonKind = "trending"
	ReasonDiscovery      ReasonKind = "discovery"
)

// Reason explains one rule that contributed to a recommendation score.
type Reason struct {
	Kind        ReasonKind `json:"kind"`
	Explanation string     `json:"explanation"`
	Weight      float64    `json:"weight"`
}

// Metadata annotates a recommendation with provenance and freshness.
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Algorithm   string    `json:"algorithm"`
	Version     string    `json:"version"`
	Confidence  float64   `json:"confidence"`

	// Freshness decays linearly from 1 to 0 over the 30 days after
	// publication.
	Freshness float64 `json:"freshness"`
}

// Recommendation is one ranked output entry. Scores are not bounded to
// [0, 1]: strategies may exceed it, and only the trending strategy pins a
// constant score.
type Recommendation struct {
	ContentID   string              `json:"content_id"`
	ContentType catalog.ContentType `json:"content_type"`
	Score       float64             `json:"score"`
	Reasons     []Reason            `json:"reasons"`
	Metadata    Metadata            `json:"metadata"`
}

// Strategy produces one candidate pool. Implementations must be pure reads
// over the profile and snapshot; limit is a target share, not a guarantee.
type Strategy interface {
	// Name returns the strategy identifier (e.g. "behavior", "trending").
	Name() string

	// Recommend scores candidates for the user. The returned pool holds at
	// most limit entries.
	Recommend(ctx context.Context, prof profile.Profile, items []catalog.ContentItem, limit int) []Recommendation
}

// ProfileProvider supplies user profiles to the engine. Implemented by the
// profile store; an interface here keeps the engine free of store wiring.
type ProfileProvider interface {
	GetOrCreate(ctx context.Context, userID string) (profile.Profile, error)
}

// FeedFilters narrows a personalized feed. Filters apply in declaration
// order: content types, categories, minimum rating, then the inclusive
// publish-date range. Zero values disable a filter.
type FeedFilters struct {
	ContentTypes    []catalog.ContentType `json:"content_types,omitempty"`
	Categories      []string              `json:"categories,omitempty"`
	MinRating       float64               `json:"min_rating,omitempty"`
	PublishedAfter  time.Time             `json:"published_after,omitempty"`
	PublishedBefore time.Time             `json:"published_before,omitempty"`
}

// seenContent indexes a user's view history for exclusion checks.
func seenContent(prof *profile.Profile) map[string]struct{} {
	seen := make(map[string]struct{}, len(prof.Behavior.ViewHistory))
	for _, v := range prof.Behavior.ViewHistory {
		seen[v.ContentID] = struct{}{}
	}
	return seen
}
