// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsekit/pulse/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so the shared middleware package works
// with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router wires the handler onto the Chi route tree.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for the given handler and middleware factory.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health endpoints: permissive rate limiting for monitoring tools.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealthEndpoints())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// Recommendation endpoints: read-heavy, cached per user.
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitReadEndpoints())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/user/{userID}", router.handler.Recommendations)
		r.Get("/user/{userID}/feed", router.handler.PersonalizedFeed)
	})

	// Social endpoints: interaction writes plus stats reads.
	r.Route("/api/v1/social", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitWriteEndpoints())
			r.Post("/like", router.handler.SocialLike)
			r.Post("/bookmark", router.handler.SocialBookmark)
			r.Post("/view", router.handler.SocialView)
			r.Post("/share", router.handler.SocialShare)
		})

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitReadEndpoints())
			r.Use(chiMiddleware(middleware.Compression))
			r.Get("/stats/{contentID}", router.handler.SocialStats)
			r.Get("/trending", router.handler.SocialTrending)
		})
	})

	// Experiment endpoints. Not registered when experiments are disabled,
	// so the group 404s instead of serving unassigned variants.
	if router.handler.experiments != nil {
		r.Route("/api/v1/experiment", func(r chi.Router) {
			r.Use(APISecurityHeaders())
			r.Use(chiMiddleware(middleware.PrometheusMetrics))

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitReadEndpoints())
				r.Get("/variant/{userID}", router.handler.ExperimentVariant)
				r.Get("/winner", router.handler.ExperimentWinner)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.chiMiddleware.RateLimitWriteEndpoints())
				r.Post("/conversion", router.handler.ExperimentConversion)
			})
		})
	}

	// Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
