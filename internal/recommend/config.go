// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package recommend

import (
	"fmt"
	"time"
)

// StrategyShares are the target fractions of the requested limit allocated
// to each strategy pool. Shares are targets, not hard bounds: after the
// global merge a strategy may contribute more or less than its share.
type StrategyShares struct {
	Behavior  float64 `json:"behavior" koanf:"behavior"`
	Content   float64 `json:"content" koanf:"content"`
	Trending  float64 `json:"trending" koanf:"trending"`
	Diversity float64 `json:"diversity" koanf:"diversity"`
}

// CacheConfig controls the per-user response cache.
type CacheConfig struct {
	Enabled    bool          `json:"enabled" koanf:"enabled"`
	TTL        time.Duration `json:"ttl" koanf:"ttl"`
	MaxEntries int           `json:"max_entries" koanf:"max_entries"`
}

// Config holds engine configuration.
type Config struct {
	// Shares allocates the limit across strategies.
	Shares StrategyShares `json:"shares" koanf:"shares"`

	// DefaultLimit applies when a request leaves the limit unset.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps any requested limit.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// FeedLimit is the internal Generate limit used by PersonalizedFeed
	// before filters are applied.
	FeedLimit int `json:"feed_limit" koanf:"feed_limit"`

	// Cache configures the per-user response cache.
	Cache CacheConfig `json:"cache" koanf:"cache"`
}

// DefaultConfig returns production defaults matching the documented strategy
// allocation: behavior 40%, content 30%, trending 20%, diversity 10%.
func DefaultConfig() *Config {
	return &Config{
		Shares: StrategyShares{
			Behavior:  0.4,
			Content:   0.3,
			Trending:  0.2,
			Diversity: 0.1,
		},
		DefaultLimit: 10,
		MaxLimit:     100,
		FeedLimit:    20,
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        time.Minute,
			MaxEntries: 10000,
		},
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	shares := []struct {
		name  string
		value float64
	}{
		{"behavior", c.Shares.Behavior},
		{"content", c.Shares.Content},
		{"trending", c.Shares.Trending},
		{"diversity", c.Shares.Diversity},
	}
	for _, s := range shares {
		if s.value < 0 || s.value > 1 {
			return fmt.Errorf("share %s = %f, must be in [0, 1]", s.name, s.value)
		}
	}

	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit %d below default_limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.FeedLimit <= 0 {
		return fmt.Errorf("feed_limit must be positive, got %d", c.FeedLimit)
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when cache is enabled")
	}
	return nil
}
