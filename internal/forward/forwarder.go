// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

// Package forward dispatches rendered waterfall output to configured sinks.
//
// A forwarder transmits already-rendered output; it never inspects or
// transforms it. Every Forward call invokes its callback exactly once:
// with a nil error and the byte count written on success, or with the
// transmission error otherwise.
package forward

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/beaconfall/internal/logging"
	"github.com/tomtom215/beaconfall/internal/metrics"
)

// Callback receives the outcome of one Forward call. It is invoked exactly
// once per call: err is nil on success and n is the byte length written.
type Callback func(err error, n int)

// nopCallback lets implementations invoke the callback unconditionally.
func nopCallback(error, int) {}

// Forwarder is one pipeline sink for rendered output.
type Forwarder interface {
	// Forward transmits data followed by separator. The callback contract
	// is described on Callback.
	Forward(ctx context.Context, data []byte, separator string, cb Callback)

	// Name identifies the forwarder in logs and metrics.
	Name() string

	// Close releases any held resources. Forward must not be called after.
	Close() error
}

// LogForwarder emits rendered output as structured log events.
// It is the default sink when no other forwarder is configured.
type LogForwarder struct {
	logger zerolog.Logger
}

// NewLogForwarder creates a forwarder that writes to the global logger.
func NewLogForwarder() *LogForwarder {
	return &LogForwarder{logger: logging.With().Str("component", "forwarder").Logger()}
}

// NewLogForwarderWithLogger creates a forwarder with a specific logger,
// useful for capturing output in tests.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewLogForwarderWithLogger(logger zerolog.Logger) *LogForwarder {
	return &LogForwarder{logger: logger}
}

// Name implements Forwarder.
func (f *LogForwarder) Name() string { return "log" }

// Forward implements Forwarder. Logging never fails, so the callback always
// reports success with the combined length of data and separator.
func (f *LogForwarder) Forward(ctx context.Context, data []byte, separator string, cb Callback) {
	if cb == nil {
		cb = nopCallback
	}

	f.logger.Info().
		Str("beacon_id", logging.BeaconIDFromContext(ctx)).
		Int("bytes", len(data)).
		Str("output", string(data)).
		Msg("Beacon output forwarded")

	n := len(data) + len(separator)
	metrics.ForwardsTotal.WithLabelValues(f.Name(), "success").Inc()
	metrics.ForwardedBytes.WithLabelValues(f.Name()).Add(float64(n))
	cb(nil, n)
}

// Close implements Forwarder.
func (f *LogForwarder) Close() error { return nil }

// MultiForwarder fans one Forward call out to several sinks sequentially.
// Its own callback fires once after every child has completed, with the
// first child error (if any) and the total bytes written across children.
type MultiForwarder struct {
	mu       sync.Mutex
	children []Forwarder
}

// NewMultiForwarder creates a fan-out forwarder over the given children.
func NewMultiForwarder(children ...Forwarder) *MultiForwarder {
	return &MultiForwarder{children: children}
}

// Name implements Forwarder.
func (m *MultiForwarder) Name() string { return "multi" }

// Forward implements Forwarder.
func (m *MultiForwarder) Forward(ctx context.Context, data []byte, separator string, cb Callback) {
	if cb == nil {
		cb = nopCallback
	}

	m.mu.Lock()
	children := make([]Forwarder, len(m.children))
	copy(children, m.children)
	m.mu.Unlock()

	var firstErr error
	total := 0
	for _, child := range children {
		child.Forward(ctx, data, separator, func(err error, n int) {
			if err != nil && firstErr == nil {
				firstErr = err
			}
			total += n
		})
	}
	cb(firstErr, total)
}

// Close implements Forwarder, closing every child and returning the first error.
func (m *MultiForwarder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for _, child := range m.children {
		if err := child.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
