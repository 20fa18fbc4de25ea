// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/profile"
)

// behaviorScoreFloor discards candidates whose accumulated score does not
// exceed it.
const behaviorScoreFloor = 0.3

// BehaviorStrategy scores unseen candidates against the categories and
// content types present in the user's view history, plus a capped engagement
// bonus. The engagement bonus contributes to the score but deliberately does
// not emit a reason, so a recommendation surfaced on engagement alone may
// carry an empty reason list.
type BehaviorStrategy struct{}

// NewBehaviorStrategy creates the behavior-based strategy.
func NewBehaviorStrategy() *BehaviorStrategy {
	return &BehaviorStrategy{}
}

// Name returns the strategy identifier.
func (b *BehaviorStrategy) Name() string { return "behavior" }

// Recommend scores candidates the user has not viewed yet.
//
//nolint:gocritic // rangeValCopy: ContentItem passed by value in range for clarity
func (b *BehaviorStrategy) Recommend(ctx context.Context, prof profile.Profile, items []catalog.ContentItem, limit int) []Recommendation {
	if limit <= 0 || len(prof.Behavior.ViewHistory) == 0 {
		return nil
	}

	seen := seenContent(&prof)
	categories := make(map[string]struct{})
	types := make(map[catalog.ContentType]struct{})
	for _, v := range prof.Behavior.ViewHistory {
		types[v.ContentType] = struct{}{}
	}
	for _, item := range items {
		if _, viewed := seen[item.ID]; viewed && item.Category != "" {
			categories[item.Category] = struct{}{}
		}
	}

	pool := make([]Recommendation, 0, limit)
	for _, item := range items {
		if _, viewed := seen[item.ID]; viewed {
			continue
		}

		score := 0.0
		var reasons []Reason

		if _, ok := categories[item.Category]; ok && item.Category != "" {
			score += 0.4
			reasons = append(reasons, Reason{
				Kind:        ReasonCategoryMatch,
				Explanation: fmt.Sprintf("More %s content you have been reading", item.Category),
				Weight:      0.4,
			})
		}

		if _, ok := types[item.Type]; ok {
			score += 0.3
			reasons = append(reasons, Reason{
				Kind:        ReasonBehaviorMatch,
				Explanation: fmt.Sprintf("Matches the %s content you usually view", item.Type),
				Weight:      0.3,
			})
		}

		engagement := item.Metrics.Engagement / 100
		if engagement > 0.3 {
			engagement = 0.3
		}
		score += engagement

		if score <= behaviorScoreFloor {
			continue
		}

		pool = append(pool, Recommendation{
			ContentID:   item.ID,
			ContentType: item.Type,
			Score:       score,
			Reasons:     reasons,
		})
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
