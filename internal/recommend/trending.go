// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import (
	"context"
	"sort"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/profile"
)

// trendingScore is the fixed score attached to every trending pick.
const trendingScore = 0.7

// TrendingStrategy surfaces the globally most-engaged items by raw
// views+likes+shares. This intentionally uses a different popularity signal
// than the normalized engagement stat the social aggregator ranks by, and it
// does not exclude items the user has already seen.
type TrendingStrategy struct{}

// NewTrendingStrategy creates the trending strategy.
func NewTrendingStrategy() *TrendingStrategy {
	return &TrendingStrategy{}
}

// Name returns the strategy identifier.
func (t *TrendingStrategy) Name() string { return "trending" }

// Recommend returns the top items by raw interaction volume.
func (t *TrendingStrategy) Recommend(ctx context.Context, prof profile.Profile, items []catalog.ContentItem, limit int) []Recommendation {
	if limit <= 0 {
		return nil
	}

	ranked := make([]catalog.ContentItem, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return rawVolume(ranked[i]) > rawVolume(ranked[j])
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	pool := make([]Recommendation, 0, len(ranked))
	for _, item := range ranked {
		pool = append(pool, Recommendation{
			ContentID:   item.ID,
			ContentType: item.Type,
			Score:       trendingScore,
			Reasons: []Reason{{
				Kind:        ReasonTrending,
				Explanation: "Trending now",
				Weight:      trendingScore,
			}},
		})
	}
	return pool
}

// rawVolume is the trending popularity signal.
func rawVolume(item catalog.ContentItem) int {
	return item.Metrics.Views + item.Metrics.Likes + item.Metrics.Shares
}
