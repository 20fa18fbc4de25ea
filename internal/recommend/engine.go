// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/metrics"
	"github.com/pulsekit/pulse/internal/profile"
)

// Algorithm tag attached to every generated recommendation.
const (
	algorithmTag     = "multi_strategy"
	algorithmVersion = "1.0"
)

// freshnessWindowDays is the linear decay window for the freshness
// annotation; items older than this score zero.
const freshnessWindowDays = 30

// Engine coordinates the scoring strategies and produces the final ranked
// list. Generate is a pure read over the profile and catalog snapshot, so
// calls for different users may run fully in parallel. Rankings may lag an
// in-flight profile update for the same user; that eventual consistency is
// an accepted relaxation.
type Engine struct {
	config   *Config
	logger   zerolog.Logger
	catalog  catalog.Catalog
	profiles ProfileProvider

	strategies []Strategy
	stratMu    sync.RWMutex

	cache   map[string]cacheEntry
	cacheMu sync.RWMutex

	now func() time.Time
}

// cacheEntry holds one cached recommendation list.
type cacheEntry struct {
	recs      []Recommendation
	expiresAt time.Time
}

// NewEngine creates a recommendation engine with the default strategy set
// registered in share order: behavior, content, trending, discovery.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, cat catalog.Catalog, profiles ProfileProvider, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config:   cfg,
		logger:   logger.With().Str("component", "recommend").Logger(),
		catalog:  cat,
		profiles: profiles,
		cache:    make(map[string]cacheEntry),
		now:      time.Now,
	}

	e.RegisterStrategy(NewBehaviorStrategy())
	e.RegisterStrategy(NewContentStrategy())
	e.RegisterStrategy(NewTrendingStrategy())
	e.RegisterStrategy(NewDiscoveryStrategy())

	return e, nil
}

// RegisterStrategy appends a strategy to the pipeline. Registration order is
// the pool concatenation order used for tie-breaks.
func (e *Engine) RegisterStrategy(s Strategy) {
	e.stratMu.Lock()
	defer e.stratMu.Unlock()

	e.strategies = append(e.strategies, s)
	e.logger.Info().Str("strategy", s.Name()).Msg("registered strategy")
}

// Generate produces up to limit ranked recommendations for a user.
func (e *Engine) Generate(ctx context.Context, userID string, limit int) ([]Recommendation, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	limit = e.clampLimit(limit)

	if recs, ok := e.checkCache(userID, limit); ok {
		metrics.RecordCacheLookup(true)
		return recs, nil
	}
	metrics.RecordCacheLookup(false)

	prof, err := e.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	items, err := e.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	recs := e.blend(ctx, prof, items, limit)
	e.annotate(ctx, recs)
	e.storeCache(userID, limit, recs)

	e.logger.Debug().
		Str("user_id", userID).
		Int("limit", limit).
		Int("returned", len(recs)).
		Msg("recommendations generated")

	return recs, nil
}

// blend runs every strategy with its target sub-limit, concatenates the
// pools in registration order, and stable-sorts by score descending so ties
// keep strategy-then-candidate order.
func (e *Engine) blend(ctx context.Context, prof profile.Profile, items []catalog.ContentItem, limit int) []Recommendation {
	e.stratMu.RLock()
	strategies := e.strategies
	e.stratMu.RUnlock()

	merged := make([]Recommendation, 0, limit*2)
	for _, s := range strategies {
		subLimit := int(float64(limit) * e.shareFor(s.Name()))
		pool := s.Recommend(ctx, prof, items, subLimit)
		merged = append(merged, pool...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

// shareFor maps a strategy name to its configured share.
func (e *Engine) shareFor(name string) float64 {
	switch name {
	case "behavior":
		return e.config.Shares.Behavior
	case "content":
		return e.config.Shares.Content
	case "trending":
		return e.config.Shares.Trending
	case "diversity", "discovery":
		return e.config.Shares.Diversity
	default:
		return 0
	}
}

// annotate fills per-recommendation metadata, including the freshness decay,
// just before the list is returned.
func (e *Engine) annotate(ctx context.Context, recs []Recommendation) {
	now := e.now()
	for i := range recs {
		recs[i].Metadata = Metadata{
			GeneratedAt: now,
			Algorithm:   algorithmTag,
			Version:     algorithmVersion,
			Confidence:  recs[i].Score,
			Freshness:   e.freshness(ctx, recs[i].ContentID, now),
		}
	}
}

// freshness computes the linear publish-date decay for one content id.
// Unresolvable ids score zero.
func (e *Engine) freshness(ctx context.Context, contentID string, now time.Time) float64 {
	item, ok, err := e.catalog.Get(ctx, contentID)
	if err != nil || !ok || item.PublishedAt.IsZero() {
		return 0
	}

	days := now.Sub(item.PublishedAt).Hours() / 24
	f := 1 - days/freshnessWindowDays
	if f < 0 {
		return 0
	}
	return f
}

// PersonalizedFeed resolves a larger recommendation set back to content
// items and applies the optional filters in order: content types,
// categories, minimum rating, publish-date range. Ids that no longer
// resolve in the catalog are silently dropped.
func (e *Engine) PersonalizedFeed(ctx context.Context, userID string, filters FeedFilters) ([]catalog.ContentItem, error) {
	recs, err := e.Generate(ctx, userID, e.config.FeedLimit)
	if err != nil {
		return nil, err
	}

	feed := make([]catalog.ContentItem, 0, len(recs))
	for _, rec := range recs {
		item, ok, err := e.catalog.Get(ctx, rec.ContentID)
		if err != nil {
			return nil, fmt.Errorf("resolve content %s: %w", rec.ContentID, err)
		}
		if !ok {
			continue
		}
		if filters.matches(item) {
			feed = append(feed, item)
		}
	}
	return feed, nil
}

// matches applies the feed filters in declaration order.
//
//nolint:gocritic // hugeParam: item passed by value for immutability
func (f FeedFilters) matches(item catalog.ContentItem) bool {
	if len(f.ContentTypes) > 0 && !containsType(f.ContentTypes, item.Type) {
		return false
	}
	if len(f.Categories) > 0 && !containsString(f.Categories, item.Category) {
		return false
	}
	if f.MinRating > 0 && item.Metrics.Rating < f.MinRating {
		return false
	}
	if !f.PublishedAfter.IsZero() && item.PublishedAt.Before(f.PublishedAfter) {
		return false
	}
	if !f.PublishedBefore.IsZero() && item.PublishedAt.After(f.PublishedBefore) {
		return false
	}
	return true
}

func containsType(haystack []catalog.ContentType, needle catalog.ContentType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// InvalidateUser drops cached recommendations for one user. Called by the
// event pipeline after a profile update so the next Generate reflects it.
func (e *Engine) InvalidateUser(userID string) {
	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	for key := range e.cache {
		if keyUser(key) == userID {
			delete(e.cache, key)
		}
	}
}

// clampLimit applies default and maximum limits.
func (e *Engine) clampLimit(limit int) int {
	if limit <= 0 {
		return e.config.DefaultLimit
	}
	if limit > e.config.MaxLimit {
		return e.config.MaxLimit
	}
	return limit
}

// checkCache returns a cached list when fresh. A copy is returned so callers
// cannot mutate the cached slice.
func (e *Engine) checkCache(userID string, limit int) ([]Recommendation, bool) {
	if !e.config.Cache.Enabled {
		return nil, false
	}

	e.cacheMu.RLock()
	defer e.cacheMu.RUnlock()

	entry, ok := e.cache[cacheKey(userID, limit)]
	if !ok || e.now().After(entry.expiresAt) {
		return nil, false
	}

	out := make([]Recommendation, len(entry.recs))
	copy(out, entry.recs)
	return out, true
}

// storeCache caches a generated list, evicting expired entries when full.
func (e *Engine) storeCache(userID string, limit int, recs []Recommendation) {
	if !e.config.Cache.Enabled {
		return
	}

	e.cacheMu.Lock()
	defer e.cacheMu.Unlock()

	if len(e.cache) >= e.config.Cache.MaxEntries {
		now := e.now()
		for key, entry := range e.cache {
			if now.After(entry.expiresAt) {
				delete(e.cache, key)
			}
		}
	}

	e.cache[cacheKey(userID, limit)] = cacheEntry{
		recs:      recs,
		expiresAt: e.now().Add(e.config.Cache.TTL),
	}
}

func cacheKey(userID string, limit int) string {
	return fmt.Sprintf("%s\x00%d", userID, limit)
}

// keyUser extracts the user id from a cache key.
func keyUser(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '\x00' {
			return key[:i]
		}
	}
	return key
}
