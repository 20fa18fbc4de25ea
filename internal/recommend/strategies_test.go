// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import (
	"context"
	"testing"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/profile"
)

func profileWithViews(views ...profile.ViewRecord) profile.Profile {
	return profile.Profile{
		ID:       "u1",
		Behavior: profile.Behavior{ViewHistory: views},
	}
}

func TestBehaviorStrategyEmptyHistory(t *testing.T) {
	s := NewBehaviorStrategy()
	items := []catalog.ContentItem{{ID: "c1", Type: catalog.TypeArticle}}

	pool := s.Recommend(context.Background(), profile.Profile{ID: "u1"}, items, 10)
	if len(pool) != 0 {
		t.Errorf("pool = %d entries, want 0 for empty history", len(pool))
	}
}

func TestBehaviorStrategyScoresAndFloor(t *testing.T) {
	s := NewBehaviorStrategy()
	prof := profileWithViews(profile.ViewRecord{ContentID: "seen", ContentType: catalog.TypeArticle})

	items := []catalog.ContentItem{
		{ID: "seen", Type: catalog.TypeArticle, Category: "engineering"},
		// Category + type match: 0.4 + 0.3 = 0.7, passes the floor.
		{ID: "match-both", Type: catalog.TypeArticle, Category: "engineering"},
		// Type match only: 0.3 does not exceed the floor.
		{ID: "match-type", Type: catalog.TypeArticle, Category: "cooking"},
		// No match at all.
		{ID: "match-none", Type: catalog.TypeVideo, Category: "cooking"},
	}

	pool := s.Recommend(context.Background(), prof, items, 10)
	if len(pool) != 1 {
		t.Fatalf("pool = %v, want only match-both", pool)
	}
	if pool[0].ContentID != "match-both" || pool[0].Score != 0.7 {
		t.Errorf("pool[0] = %+v, want match-both at 0.7", pool[0])
	}
	if len(pool[0].Reasons) != 2 {
		t.Errorf("reasons = %d, want category and type reasons", len(pool[0].Reasons))
	}
}

func TestBehaviorStrategyEngagementBonusCapped(t *testing.T) {
	s := NewBehaviorStrategy()
	prof := profileWithViews(profile.ViewRecord{ContentID: "seen", ContentType: catalog.TypeArticle})

	items := []catalog.ContentItem{
		{ID: "seen", Type: catalog.TypeArticle, Category: "engineering"},
		{
			ID:       "hot",
			Type:     catalog.TypeArticle,
			Category: "engineering",
			// 250% engagement would add 2.5 uncapped; the bonus is capped
			// at 0.3.
			Metrics: catalog.Metrics{Engagement: 250},
		},
	}

	pool := s.Recommend(context.Background(), prof, items, 10)
	if len(pool) != 1 {
		t.Fatalf("pool length = %d, want 1", len(pool))
	}
	if pool[0].Score != 1.0 {
		t.Errorf("score = %v, want 0.4+0.3+0.3 capped bonus", pool[0].Score)
	}
}

func TestBehaviorStrategyExcludesSeen(t *testing.T) {
	s := NewBehaviorStrategy()
	prof := profileWithViews(profile.ViewRecord{ContentID: "seen", ContentType: catalog.TypeArticle})

	items := []catalog.ContentItem{
		{ID: "seen", Type: catalog.TypeArticle, Category: "engineering"},
	}
	pool := s.Recommend(context.Background(), prof, items, 10)
	if len(pool) != 0 {
		t.Errorf("seen item recommended: %v", pool)
	}
}

func TestContentStrategySimilarityFloor(t *testing.T) {
	s := NewContentStrategy()
	prof := profileWithViews(profile.ViewRecord{ContentID: "v1", ContentType: catalog.TypeArticle})

	items := []catalog.ContentItem{
		{ID: "v1", Type: catalog.TypeArticle, Title: "Viewed", Category: "engineering", Author: "ada"},
		// Category match only: 0.4 + 0.1 type = 0.5, passes.
		{ID: "similar", Type: catalog.TypeArticle, Title: "Similar", Category: "engineering"},
		// Type match only: 0.1, filtered by the floor.
		{ID: "weak", Type: catalog.TypeArticle, Title: "Weak", Category: "cooking"},
	}

	pool := s.Recommend(context.Background(), prof, items, 10)
	if len(pool) != 1 {
		t.Fatalf("pool = %v, want only the similar item", pool)
	}
	if pool[0].ContentID != "similar" {
		t.Errorf("pool[0] = %+v", pool[0])
	}
	if pool[0].Reasons[0].Explanation != `Similar to "Viewed"` {
		t.Errorf("reason = %q", pool[0].Reasons[0].Explanation)
	}
}

func TestContentStrategyKeepsBestMatch(t *testing.T) {
	s := NewContentStrategy()
	prof := profileWithViews(
		profile.ViewRecord{ContentID: "v1", ContentType: catalog.TypeArticle},
		profile.ViewRecord{ContentID: "v2", ContentType: catalog.TypeVideo},
	)

	items := []catalog.ContentItem{
		{ID: "v1", Type: catalog.TypeArticle, Title: "Loose", Category: "ops"},
		{ID: "v2", Type: catalog.TypeArticle, Title: "Tight", Category: "engineering", Author: "ada"},
		{ID: "cand", Type: catalog.TypeArticle, Category: "engineering", Author: "ada"},
	}

	pool := s.Recommend(context.Background(), prof, items, 10)
	if len(pool) != 1 {
		t.Fatalf("pool length = %d, want 1", len(pool))
	}
	// Best match against v2: category 0.4 + author 0.2 + type 0.1 = 0.7.
	if pool[0].Score != 0.7 {
		t.Errorf("score = %v, want max similarity 0.7", pool[0].Score)
	}
	if pool[0].Reasons[0].Explanation != `Similar to "Tight"` {
		t.Errorf("reason names %q, want the best-matching title", pool[0].Reasons[0].Explanation)
	}
}

func TestTrendingStrategyRanksByRawVolume(t *testing.T) {
	s := NewTrendingStrategy()

	items := []catalog.ContentItem{
		{ID: "low", Type: catalog.TypeArticle, Metrics: catalog.Metrics{Views: 5}},
		{ID: "high", Type: catalog.TypeVideo, Metrics: catalog.Metrics{Views: 100, Likes: 20, Shares: 5}},
		{ID: "mid", Type: catalog.TypeArticle, Metrics: catalog.Metrics{Views: 50}},
	}

	pool := s.Recommend(context.Background(), profile.Profile{ID: "u1"}, items, 2)
	if len(pool) != 2 {
		t.Fatalf("pool length = %d, want 2", len(pool))
	}
	if pool[0].ContentID != "high" || pool[1].ContentID != "mid" {
		t.Errorf("order = %s, %s, want high, mid", pool[0].ContentID, pool[1].ContentID)
	}
	for _, rec := range pool {
		if rec.Score != 0.7 {
			t.Errorf("trending score = %v, want fixed 0.7", rec.Score)
		}
	}
}

func TestDiscoveryStrategyUnderRepresentedTypes(t *testing.T) {
	s := NewDiscoveryStrategy()
	// Two article views: articles are represented, videos are not.
	prof := profileWithViews(
		profile.ViewRecord{ContentID: "a1", ContentType: catalog.TypeArticle},
		profile.ViewRecord{ContentID: "a2", ContentType: catalog.TypeArticle},
	)

	items := []catalog.ContentItem{
		{ID: "a3", Type: catalog.TypeArticle, Metrics: catalog.Metrics{Rating: 5}},
		{ID: "v1", Type: catalog.TypeVideo, Metrics: catalog.Metrics{Rating: 3.5}},
		{ID: "v2", Type: catalog.TypeVideo, Metrics: catalog.Metrics{Rating: 4.8}},
	}

	pool := s.Recommend(context.Background(), prof, items, 10)
	if len(pool) != 1 {
		t.Fatalf("pool = %v, want one video pick", pool)
	}
	if pool[0].ContentID != "v2" {
		t.Errorf("pick = %s, want the highest-rated video v2", pool[0].ContentID)
	}
	if pool[0].Score != 0.5 {
		t.Errorf("discovery score = %v, want fixed 0.5", pool[0].Score)
	}
}

func TestDiscoveryStrategyOneViewStillUnderRepresented(t *testing.T) {
	s := NewDiscoveryStrategy()
	prof := profileWithViews(profile.ViewRecord{ContentID: "a1", ContentType: catalog.TypeArticle})

	items := []catalog.ContentItem{
		{ID: "a2", Type: catalog.TypeArticle, Metrics: catalog.Metrics{Rating: 4}},
	}

	// A single occurrence is still under the threshold of two.
	pool := s.Recommend(context.Background(), prof, items, 10)
	if len(pool) != 1 {
		t.Errorf("pool length = %d, want 1", len(pool))
	}
}
