// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

// Package middleware holds HTTP middleware shared by the API router:
// request ids, Prometheus instrumentation, and gzip compression.
package middleware

import (
	"context"
	"net/http"

	"github.com/pulsekit/pulse/internal/logging"
)

type contextKey string

// RequestIDKey is the context key the request id is stored under.
const RequestIDKey contextKey = "request_id"

// RequestID generates a unique id per request, honoring an upstream
// X-Request-ID when present, and threads it through the response header and
// the logging context.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)
		ctx = logging.ContextWithRequestID(ctx, requestID)

		next(w, r.WithContext(ctx))
	}
}

// GetRequestID extracts the request id from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}
