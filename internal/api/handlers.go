// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package api provides the HTTP surface of the engine using the Chi router.
// Every endpoint responds with the APIResponse envelope; request structs are
// validated before any store is touched, so a validation failure never
// mutates state.
package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pulsekit/pulse/internal/catalog"
	"github.com/pulsekit/pulse/internal/experiment"
	"github.com/pulsekit/pulse/internal/profile"
	"github.com/pulsekit/pulse/internal/recommend"
	"github.com/pulsekit/pulse/internal/social"
)

// maxBodyBytes caps request bodies; interaction payloads are tiny.
const maxBodyBytes = 1 << 20

// Handler carries the services the endpoints dispatch to.
type Handler struct {
	social      *social.Service
	profiles    *profile.Store
	engine      *recommend.Engine
	experiments *experiment.Evaluator
	catalog     catalog.Catalog
	started     time.Time
}

// NewHandler creates the endpoint handler. A nil experiments evaluator
// disables the experiment route group.
func NewHandler(
	socialSvc *social.Service,
	profiles *profile.Store,
	engine *recommend.Engine,
	experiments *experiment.Evaluator,
	cat catalog.Catalog,
) *Handler {
	return &Handler{
		social:      socialSvc,
		profiles:    profiles,
		engine:      engine,
		experiments: experiments,
		catalog:     cat,
		started:     time.Now(),
	}
}

// decodeBody reads and unmarshals a JSON request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "failed to read request body", err)
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return false
	}
	return true
}

// respondServiceError maps service errors onto the API error taxonomy.
// Storage failures surface as 500 but the in-memory state already applied.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, social.ErrEmptyUserID),
		errors.Is(err, social.ErrEmptyContentID),
		errors.Is(err, social.ErrUnknownKind),
		errors.Is(err, social.ErrNotToggleable),
		errors.Is(err, profile.ErrEmptyUserID),
		errors.Is(err, experiment.ErrEmptyUserID):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, social.ErrStorage),
		errors.Is(err, profile.ErrStorage),
		errors.Is(err, experiment.ErrStorage):
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "persistence failed", err)
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", err)
	}
}
