// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import (
	"math"
	"testing"

	"github.com/pulsekit/pulse/internal/catalog"
)

func TestSimilarity(t *testing.T) {
	base := catalog.ContentItem{
		ID:       "a",
		Type:     catalog.TypeArticle,
		Author:   "ada",
		Category: "engineering",
		Tags:     []string{"go", "concurrency"},
	}

	tests := []struct {
		name string
		b    catalog.ContentItem
		want float64
	}{
		{
			name: "identical item caps at one",
			b:    base,
			want: 1.0,
		},
		{
			name: "nothing in common",
			b: catalog.ContentItem{
				ID:       "b",
				Type:     catalog.TypeVideo,
				Author:   "bob",
				Category: "cooking",
				Tags:     []string{"pasta"},
			},
			want: 0,
		},
		{
			name: "category and half tag overlap",
			b: catalog.ContentItem{
				ID:       "b",
				Type:     catalog.TypeVideo,
				Author:   "bob",
				Category: "engineering",
				Tags:     []string{"go", "testing"},
			},
			want: 0.4 + 0.5*0.3, // 0.55
		},
		{
			name: "category half tags and type",
			b: catalog.ContentItem{
				ID:       "b",
				Type:     catalog.TypeArticle,
				Author:   "bob",
				Category: "engineering",
				Tags:     []string{"go", "testing"},
			},
			want: 0.4 + 0.5*0.3 + 0.1, // 0.65
		},
		{
			name: "same author and type only",
			b: catalog.ContentItem{
				ID:     "b",
				Type:   catalog.TypeArticle,
				Author: "ada",
			},
			want: 0.2 + 0.1,
		},
		{
			name: "full tags different category",
			b: catalog.ContentItem{
				ID:       "b",
				Type:     catalog.TypeArticle,
				Category: "ops",
				Tags:     []string{"concurrency", "go"},
			},
			want: 0.3 + 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(base, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Similarity = %v, want %v", got, tt.want)
			}
			// The score must be symmetric.
			if rev := Similarity(tt.b, base); math.Abs(rev-got) > 1e-9 {
				t.Errorf("Similarity not symmetric: %v vs %v", got, rev)
			}
		})
	}
}

func TestSimilarityEmptyCategoryNeverMatches(t *testing.T) {
	a := catalog.ContentItem{ID: "a", Type: catalog.TypeArticle}
	b := catalog.ContentItem{ID: "b", Type: catalog.TypeVideo}

	if got := Similarity(a, b); got != 0 {
		t.Errorf("empty category/author items scored %v, want 0", got)
	}
}

func TestTagOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"one empty", []string{"go"}, nil, 0},
		{"disjoint", []string{"go"}, []string{"rust"}, 0},
		{"identical", []string{"go", "web"}, []string{"go", "web"}, 1},
		{"partial larger denominator", []string{"go"}, []string{"go", "web", "api"}, 1.0 / 3.0},
		{"duplicate tags counted once", []string{"go", "go"}, []string{"go"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tagOverlap(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("tagOverlap = %v, want %v", got, tt.want)
			}
		})
	}
}
