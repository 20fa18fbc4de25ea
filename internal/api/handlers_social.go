// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/metrics"
	"github.com/pulsekit/pulse/internal/social"
)

// ToggleResponse reports the post-toggle state of one interaction.
type ToggleResponse struct {
	Active bool         `json:"active"`
	Stats  social.Stats `json:"stats"`
}

// ShareResponse pairs the share intent with the refreshed stats.
type ShareResponse struct {
	Intent social.ShareIntent `json:"intent"`
	Stats  social.Stats       `json:"stats"`
}

// SocialLike toggles a like for (user, content).
func (h *Handler) SocialLike(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, social.KindLike)
}

// SocialBookmark toggles a bookmark for (user, content).
func (h *Handler) SocialBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, social.KindBookmark)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, kind social.Kind) {
	var req InteractionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	active, stats, err := h.social.Toggle(r.Context(), req.UserID, req.ContentID, catalog.ContentType(req.ContentType), kind)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	metrics.RecordInteraction(string(kind), !active)
	respondSuccess(w, http.StatusOK, ToggleResponse{Active: active, Stats: stats})
}

// SocialView records a view. Repeat views by the same user leave the view
// count unchanged.
func (h *Handler) SocialView(w http.ResponseWriter, r *http.Request) {
	var req InteractionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	stats, err := h.social.View(r.Context(), req.UserID, req.ContentID, catalog.ContentType(req.ContentType), req.DurationSeconds, req.Completed)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	metrics.RecordInteraction(string(social.KindView), false)
	respondSuccess(w, http.StatusOK, stats)
}

// SocialShare records a share and returns the intent the client should
// execute. Shares are not idempotent; every call appends.
func (h *Handler) SocialShare(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	intent, stats, err := h.social.Share(r.Context(), req.UserID, req.ContentID, catalog.ContentType(req.ContentType), req.Platform, req.ShareURL, req.ShareText)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	metrics.RecordInteraction(string(social.KindShare), false)
	respondSuccess(w, http.StatusOK, ShareResponse{Intent: intent, Stats: stats})
}

// SocialStats returns engagement stats for one content id. Unknown ids
// yield zero stats rather than 404 so dashboards can poll freely.
func (h *Handler) SocialStats(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentID")

	stats, err := h.social.Stats(r.Context(), contentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, stats)
}

// SocialTrending returns content ordered by engagement, ties in first-seen
// order.
func (h *Handler) SocialTrending(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "limit must be a non-negative integer", nil)
			return
		}
		limit = n
	}

	respondSuccess(w, http.StatusOK, h.social.Trending(r.Context(), limit))
}
