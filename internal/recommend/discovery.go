// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import (
	"context"
	"fmt"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/profile"
)

// discoveryScore is the fixed score attached to every discovery pick.
const discoveryScore = 0.5

// underRepresentedBelow is the history occurrence count under which a
// content type counts as under-represented.
const underRepresentedBelow = 2

// DiscoveryStrategy promotes content types the user has barely touched: for
// each type with fewer than two view-history occurrences it picks that
// type's single highest-rated item. Seen items are not re-checked here;
// discovery may legitimately resurface a viewed item.
type DiscoveryStrategy struct{}

// NewDiscoveryStrategy creates the type-discovery strategy.
func NewDiscoveryStrategy() *DiscoveryStrategy {
	return &DiscoveryStrategy{}
}

// Name returns the strategy identifier.
func (d *DiscoveryStrategy) Name() string { return "discovery" }

// Recommend picks one top-rated item per under-represented content type.
//
//nolint:gocritic // rangeValCopy: ContentItem passed by value in range for clarity
func (d *DiscoveryStrategy) Recommend(ctx context.Context, prof profile.Profile, items []catalog.ContentItem, limit int) []Recommendation {
	if limit <= 0 {
		return nil
	}

	typeCounts := make(map[catalog.ContentType]int)
	for _, v := range prof.Behavior.ViewHistory {
		typeCounts[v.ContentType]++
	}

	// Track the best item per type, keeping type discovery order stable by
	// first appearance in the snapshot.
	best := make(map[catalog.ContentType]catalog.ContentItem)
	var typeOrder []catalog.ContentType
	for _, item := range items {
		if typeCounts[item.Type] >= underRepresentedBelow {
			continue
		}
		current, ok := best[item.Type]
		if !ok {
			typeOrder = append(typeOrder, item.Type)
			best[item.Type] = item
			continue
		}
		if item.Metrics.Rating > current.Metrics.Rating {
			best[item.Type] = item
		}
	}

	pool := make([]Recommendation, 0, len(typeOrder))
	for _, t := range typeOrder {
		if len(pool) >= limit {
			break
		}
		item := best[t]
		pool = append(pool, Recommendation{
			ContentID:   item.ID,
			ContentType: item.Type,
			Score:       discoveryScore,
			Reasons: []Reason{{
				Kind:        ReasonDiscovery,
				Explanation: fmt.Sprintf("Discover %s content", item.Type),
				Weight:      discoveryScore,
			}},
		})
	}
	return pool
}
