// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/metrics"
	"github.com/pulsekit/pulse/internal/recommend"
)

// Recommendations returns blended recommendations for a user.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	start := time.Now()
	recs, err := h.engine.Generate(r.Context(), userID, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	metrics.RecordRecommendation("generate", time.Since(start))

	respondSuccess(w, http.StatusOK, recs)
}

// PersonalizedFeed returns resolved content items for a user, optionally
// filtered. Recommended ids missing from the catalog are dropped silently.
func (h *Handler) PersonalizedFeed(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}

	filters, apiErr := parseFeedFilters(r)
	if apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	items, err := h.engine.PersonalizedFeed(r.Context(), userID, filters)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	metrics.RecordRecommendation("feed", time.Since(start))

	respondSuccess(w, http.StatusOK, items)
}

// parseFeedFilters reads the optional feed filter query parameters.
func parseFeedFilters(r *http.Request) (recommend.FeedFilters, *APIError) {
	var filters recommend.FeedFilters
	q := r.URL.Query()

	for _, raw := range q["content_type"] {
		filters.ContentTypes = append(filters.ContentTypes, catalog.ContentType(raw))
	}
	filters.Categories = q["category"]

	if raw := q.Get("min_rating"); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil || rating < 0 {
			return filters, &APIError{Code: "VALIDATION_ERROR", Message: "min_rating must be a non-negative number"}
		}
		filters.MinRating = rating
	}

	if raw := q.Get("published_after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, &APIError{Code: "VALIDATION_ERROR", Message: "published_after must be RFC3339"}
		}
		filters.PublishedAfter = t
	}

	if raw := q.Get("published_before"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filters, &APIError{Code: "VALIDATION_ERROR", Message: "published_before must be RFC3339"}
		}
		filters.PublishedBefore = t
	}

	return filters, nil
}
