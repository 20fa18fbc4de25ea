// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package metrics exposes Prometheus instrumentation for the engine:
// API latency and throughput, interaction ledger mutations, engagement
// recomputes, recommendation generation, and experiment assignments.
// Metrics are registered with promauto at package load and served on
// /metrics by the API router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulse_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Interaction ledger metrics
	InteractionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_interactions_recorded_total",
			Help: "Total number of interactions recorded, by kind",
		},
		[]string{"kind"},
	)

	InteractionsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_interactions_removed_total",
			Help: "Total number of interactions removed by toggle-off, by kind",
		},
		[]string{"kind"},
	)

	EngagementRecomputes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_engagement_recomputes_total",
			Help: "Total number of per-content engagement recomputations",
		},
	)

	LedgerEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_ledger_entries",
			Help: "Current number of live interaction ledger entries",
		},
	)

	// Recommendation engine metrics
	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_recommendation_requests_total",
			Help: "Total number of recommendation generations",
		},
		[]string{"source"}, // "generate", "feed"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pulse_recommendation_duration_seconds",
			Help:    "Recommendation generation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_recommendation_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	RecommendationCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_recommendation_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Profile store metrics
	ProfilesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_profiles_created_total",
			Help: "Total number of lazily created user profiles",
		},
	)

	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_profile_updates_total",
			Help: "Total number of profile updates applied, by kind",
		},
		[]string{"kind"},
	)

	// Experiment metrics
	ExperimentAssignments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_experiment_assignments_total",
			Help: "Total number of experiment variant assignments served",
		},
		[]string{"variant"},
	)

	ExperimentConversions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_experiment_conversions_total",
			Help: "Total number of conversion events recorded, by variant",
		},
		[]string{"variant", "converted"},
	)

	// Event bus metrics
	EventsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_events_published_total",
			Help: "Total number of interaction events published to the bus",
		},
	)

	EventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_events_processed_total",
			Help: "Total number of interaction events applied to profiles",
		},
	)

	EventsPoisoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulse_events_poisoned_total",
			Help: "Total number of events routed to the poison topic",
		},
	)

	// Catalog metrics
	CatalogRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulse_catalog_refreshes_total",
			Help: "Total number of catalog refresh attempts",
		},
		[]string{"result"}, // "success", "failure", "stale_served"
	)

	CatalogItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulse_catalog_items",
			Help: "Current number of items in the catalog snapshot",
		},
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordInteraction records a ledger mutation.
func RecordInteraction(kind string, removed bool) {
	if removed {
		InteractionsRemoved.WithLabelValues(kind).Inc()
		return
	}
	InteractionsRecorded.WithLabelValues(kind).Inc()
}

// RecordRecommendation records one generation with its duration.
func RecordRecommendation(source string, duration time.Duration) {
	RecommendationRequests.WithLabelValues(source).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordCacheLookup records a recommendation cache hit or miss.
func RecordCacheLookup(hit bool) {
	if hit {
		RecommendationCacheHits.Inc()
		return
	}
	RecommendationCacheMisses.Inc()
}

// RecordAssignment records a served variant assignment.
func RecordAssignment(variant string) {
	ExperimentAssignments.WithLabelValues(variant).Inc()
}

// RecordConversion records a conversion event.
func RecordConversion(variant string, converted bool) {
	outcome := "false"
	if converted {
		outcome = "true"
	}
	ExperimentConversions.WithLabelValues(variant, outcome).Inc()
}

// RecordCatalogRefresh records one refresh attempt outcome.
func RecordCatalogRefresh(result string, items int) {
	CatalogRefreshes.WithLabelValues(result).Inc()
	if result == "success" {
		CatalogItems.Set(float64(items))
	}
}
