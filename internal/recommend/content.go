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

// similarityFloor discards candidates whose best pairwise similarity does
// not exceed it.
const similarityFloor = 0.3

// ContentStrategy recommends unseen items similar to those the user already
// viewed. Each candidate keeps the maximum Similarity across the view
// history, and the reason names the best-matching viewed title.
type ContentStrategy struct{}

// NewContentStrategy creates the content-similarity strategy.
func NewContentStrategy() *ContentStrategy {
	return &ContentStrategy{}
}

// Name returns the strategy identifier.
func (c *ContentStrategy) Name() string { return "content" }

// Recommend scores unseen candidates by similarity to viewed items.
//
//nolint:gocritic // rangeValCopy: ContentItem passed by value in range for clarity
func (c *ContentStrategy) Recommend(ctx context.Context, prof profile.Profile, items []catalog.ContentItem, limit int) []Recommendation {
	if limit <= 0 || len(prof.Behavior.ViewHistory) == 0 {
		return nil
	}

	seen := seenContent(&prof)

	byID := make(map[string]catalog.ContentItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	viewed := make([]catalog.ContentItem, 0, len(prof.Behavior.ViewHistory))
	for _, v := range prof.Behavior.ViewHistory {
		if item, ok := byID[v.ContentID]; ok {
			viewed = append(viewed, item)
		}
	}
	if len(viewed) == 0 {
		return nil
	}

	pool := make([]Recommendation, 0, limit)
	for _, item := range items {
		if _, already := seen[item.ID]; already {
			continue
		}

		best := 0.0
		var bestMatch catalog.ContentItem
		for _, v := range viewed {
			if sim := Similarity(item, v); sim > best {
				best = sim
				bestMatch = v
			}
		}

		if best <= similarityFloor {
			continue
		}

		pool = append(pool, Recommendation{
			ContentID:   item.ID,
			ContentType: item.Type,
			Score:       best,
			Reasons: []Reason{{
				Kind:        ReasonSimilarContent,
				Explanation: fmt.Sprintf("Similar to %q", bestMatch.Title),
				Weight:      best,
			}},
		})
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool
}
