// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import "github.com/pulsekit/pulse/internal/catalog"

// Similarity weights. Category dominates, then tag overlap, author, type.
const (
	categoryWeight = 0.4
	tagWeight      = 0.3
	authorWeight   = 0.2
	typeWeight     = 0.1
)

// Similarity computes pairwise content similarity in [0, 1].
//
// The score is symmetric by construction: category, author, and type checks
// are equality tests, and tag overlap normalizes by the larger tag set.
func Similarity(a, b catalog.ContentItem) float64 {
	score := 0.0

	if a.Category != "" && a.Category == b.Category {
		score += categoryWeight
	}

	score += tagOverlap(a.Tags, b.Tags) * tagWeight

	if a.Author != "" && a.Author == b.Author {
		score += authorWeight
	}

	if a.Type == b.Type {
		score += typeWeight
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// tagOverlap returns |a ∩ b| / max(|a|, |b|, 1), treating tags as sets.
func tagOverlap(a, b []string) float64 {
	set := make(map[string]struct{}, len(a))
	for _, tag := range a {
		set[tag] = struct{}{}
	}

	shared := 0
	counted := make(map[string]struct{}, len(b))
	for _, tag := range b {
		if _, dup := counted[tag]; dup {
			continue
		}
		counted[tag] = struct{}{}
		if _, ok := set[tag]; ok {
			shared++
		}
	}

	denom := len(set)
	if len(counted) > denom {
		denom = len(counted)
	}
	if denom < 1 {
		denom = 1
	}
	return float64(shared) / float64(denom)
}
