// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

// Package metrics provides Prometheus instrumentation for the beacon pipeline:
// receiver throughput, mapping and render latency, forwarder outcomes and
// circuit breaker state. Metrics are exposed at /metrics in Prometheus text
// format via promhttp.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Receiver metrics

	BeaconsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beacons_total",
			Help: "Total beacons received by outcome",
		},
		[]string{"outcome"}, // "mapped", "empty", "invalid", "error"
	)

	BeaconResources = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "beacon_resources",
			Help:    "Resource entries per mapped beacon",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	BeaconProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "beacon_processing_duration_seconds",
			Help:    "End-to-end beacon processing time (map, assemble, render, forward)",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Waterfall metrics

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "waterfall_render_duration_seconds",
			Help:    "SVG template render time",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		},
	)

	GeometryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "waterfall_geometry_errors_total",
			Help: "Resource lists rejected by the chart geometry pass",
		},
	)

	// Forwarder metrics

	ForwardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forwards_total",
			Help: "Forward attempts by forwarder and status",
		},
		[]string{"forwarder", "status"}, // status: "success", "error"
	)

	ForwardedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forwarded_bytes_total",
			Help: "Bytes written per forwarder",
		},
		[]string{"forwarder"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// HTTP metrics

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)
)

// ObserveBeacon records the outcome and duration of one beacon.
func ObserveBeacon(outcome string, resources int, elapsed time.Duration) {
	BeaconsTotal.WithLabelValues(outcome).Inc()
	if resources > 0 {
		BeaconResources.Observe(float64(resources))
	}
	BeaconProcessingDuration.Observe(elapsed.Seconds())
}

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, endpoint, status string, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}
