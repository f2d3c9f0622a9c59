// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

//go:build !nats

package forward

import (
	"context"
)

// NATSForwarder is a stub when NATS dependencies are not available.
// Build with -tags=nats to enable full Watermill publisher support.
type NATSForwarder struct{}

// NewNATSForwarder returns ErrNATSNotEnabled when NATS support is not
// compiled in. Build with -tags=nats to enable it.
func NewNATSForwarder(cfg NATSConfig) (*NATSForwarder, error) {
	return nil, ErrNATSNotEnabled
}

// Forward invokes the callback with ErrNATSNotEnabled.
func (f *NATSForwarder) Forward(ctx context.Context, data []byte, separator string, cb Callback) {
	if cb == nil {
		cb = nopCallback
	}
	cb(ErrNATSNotEnabled, 0)
}

// Name identifies the forwarder in logs and metrics.
func (f *NATSForwarder) Name() string { return "nats" }

// Close is a no-op stub.
func (f *NATSForwarder) Close() error { return nil }
