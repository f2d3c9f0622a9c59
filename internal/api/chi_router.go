// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/beaconfall/internal/middleware"
)

// RouterConfig selects the optional pieces of the HTTP surface.
type RouterConfig struct {
	// MetricsEnabled exposes Prometheus metrics at MetricsPath.
	MetricsEnabled bool
	MetricsPath    string
}

// Router assembles the Chi routing tree around a Handler.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	config        RouterConfig
}

// NewRouter creates a router over the given handler and middleware factory.
func NewRouter(handler *Handler, mw *ChiMiddleware, cfg RouterConfig) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw, config: cfg}
}

// chiMiddlewareFunc adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
// This allows our existing middleware to work with Chi's r.Use().
func chiMiddlewareFunc(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes using Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(chiMiddlewareFunc(middleware.RequestID)) // X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)                    // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)                 // Recover from panics
	r.Use(router.chiMiddleware.CORS())             // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting for health endpoints: allows frequent
	// monitoring while preventing abuse.
	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Beacon Receiver
	// ========================
	r.Route("/beacon", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddlewareFunc(middleware.PrometheusMetrics))

		r.Post("/", router.handler.PostBeacon)
		r.Get("/", router.handler.GetBeacon)
	})

	// ========================
	// Observability
	// ========================
	if router.config.MetricsEnabled {
		path := router.config.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	return r
}
