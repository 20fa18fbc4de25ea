// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status       string  `json:"status"`
	UptimeSecs   float64 `json:"uptime_seconds"`
	CatalogItems int     `json:"catalog_items"`
}

// HealthLive reports process liveness. Always 200 while the process serves.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HealthReady reports readiness: the catalog snapshot must be loadable.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := h.catalog.List(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "catalog unavailable", err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Health reports overall status with uptime and catalog size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.List(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "catalog unavailable", err)
		return
	}

	respondSuccess(w, http.StatusOK, HealthStatus{
		Status:       "healthy",
		UptimeSecs:   time.Since(h.started).Seconds(),
		CatalogItems: len(items),
	})
}
