// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/pulsekit/pulse/internal/metrics"
)

// HTTPConfig configures the HTTP catalog adapter.
type HTTPConfig struct {
	// URL is the snapshot endpoint. The endpoint must return a JSON array of
	// content items.
	URL string

	// RefreshInterval is how long a pulled snapshot stays fresh before the
	// next List triggers a refetch. Default: 5m.
	RefreshInterval time.Duration

	// RequestTimeout bounds a single snapshot pull. Default: 15s.
	RequestTimeout time.Duration

	// PullsPerMinute rate-limits snapshot pulls against the upstream.
	// Default: 12.
	PullsPerMinute int

	// FailureThreshold is the number of consecutive pull failures before the
	// circuit opens. Default: 5.
	FailureThreshold uint32
}

// HTTPCatalog pulls content snapshots from an upstream content service.
//
// Pulls are protected by a circuit breaker and a rate limiter so a degraded
// upstream cannot be hammered by recommendation traffic. While the upstream
// is unavailable the last good snapshot keeps serving.
type HTTPCatalog struct {
	cfg     HTTPConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[[]ContentItem]
	limiter *rate.Limiter
	logger  zerolog.Logger

	// mu serializes refreshes and guards fetchedAt. Holding it across the
	// pull keeps concurrent readers from stampeding duplicate fetches.
	mu        sync.Mutex
	snapshot  *Memory
	fetchedAt time.Time
}

// NewHTTPCatalog creates an HTTP catalog adapter.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPCatalog(cfg HTTPConfig, logger zerolog.Logger) (*HTTPCatalog, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("catalog url is required")
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 5 * time.Minute
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	if cfg.PullsPerMinute <= 0 {
		cfg.PullsPerMinute = 12
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]ContentItem](gobreaker.Settings{
		Name:    "catalog-http",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
	})

	return &HTTPCatalog{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		breaker:  breaker,
		limiter:  rate.NewLimiter(rate.Limit(float64(cfg.PullsPerMinute)/60.0), 1),
		logger:   logger.With().Str("component", "catalog").Logger(),
		snapshot: NewMemory(nil),
	}, nil
}

// List returns the current snapshot, refreshing it from the upstream when
// stale. A failed refresh falls back to the last good snapshot.
func (c *HTTPCatalog) List(ctx context.Context) ([]ContentItem, error) {
	c.refreshIfStale(ctx)
	return c.snapshot.List(ctx)
}

// Get resolves a single item from the current snapshot.
func (c *HTTPCatalog) Get(ctx context.Context, id string) (ContentItem, bool, error) {
	c.refreshIfStale(ctx)
	return c.snapshot.Get(ctx, id)
}

// Refresh forces a snapshot pull regardless of freshness.
func (c *HTTPCatalog) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

func (c *HTTPCatalog) refreshLocked(ctx context.Context) error {
	items, err := c.pull(ctx)
	if err != nil {
		metrics.RecordCatalogRefresh("failure", 0)
		return fmt.Errorf("pull catalog snapshot: %w", err)
	}

	c.snapshot.Replace(items)
	c.fetchedAt = time.Now()
	metrics.RecordCatalogRefresh("success", len(items))

	c.logger.Debug().
		Int("items", len(items)).
		Msg("catalog snapshot refreshed")

	return nil
}

// refreshIfStale refreshes the snapshot when past the refresh interval.
// Concurrent callers queue on the mutex; whoever enters first pulls, the
// rest observe the fresh timestamp and return. Refresh failures are logged,
// not propagated: the stale snapshot remains the serving view.
func (c *HTTPCatalog) refreshIfStale(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.fetchedAt) < c.cfg.RefreshInterval {
		return
	}
	if err := c.refreshLocked(ctx); err != nil {
		metrics.RecordCatalogRefresh("stale_served", 0)
		c.logger.Warn().Err(err).Msg("catalog refresh failed, serving stale snapshot")
	}
}

// pull fetches the snapshot through the rate limiter and circuit breaker.
func (c *HTTPCatalog) pull(ctx context.Context) ([]ContentItem, error) {
	if !c.limiter.Allow() {
		return nil, fmt.Errorf("catalog pull rate limited")
	}

	return c.breaker.Execute(func() ([]ContentItem, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch snapshot: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}

		var items []ContentItem
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}

		return items, nil
	})
}
