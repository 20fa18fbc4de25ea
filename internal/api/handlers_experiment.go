// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pulsekit/pulse/internal/experiment"
	"github.com/pulsekit/pulse/internal/metrics"
)

// VariantResponse reports a user's experiment arm.
type VariantResponse struct {
	UserID  string             `json:"user_id"`
	Variant experiment.Variant `json:"variant"`
}

// ExperimentVariant returns the deterministic variant for a user. The same
// user id always receives the same arm.
func (h *Handler) ExperimentVariant(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "user id is required", nil)
		return
	}

	variant := experiment.Assign(userID)
	metrics.RecordAssignment(string(variant))

	respondSuccess(w, http.StatusOK, VariantResponse{UserID: userID, Variant: variant})
}

// ExperimentConversion records a conversion outcome for a user.
func (h *Handler) ExperimentConversion(w http.ResponseWriter, r *http.Request) {
	var req ConversionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.experiments.RecordConversion(r.Context(), req.UserID, req.Converted); err != nil {
		respondServiceError(w, err)
		return
	}

	metrics.RecordConversion(string(experiment.Assign(req.UserID)), req.Converted)
	respondSuccess(w, http.StatusOK, map[string]string{"recorded": "true"})
}

// ExperimentWinner evaluates the experiment. An insufficient sample is a
// normal 200 response, not an error.
func (h *Handler) ExperimentWinner(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.experiments.Winner())
}
