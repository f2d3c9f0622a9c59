// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package forward

import "errors"

// ErrNATSNotEnabled is returned when the NATS forwarder is used without the
// nats build tag.
var ErrNATSNotEnabled = errors.New("NATS forwarding not enabled (build with -tags nats)")

// ErrClosed is returned when forwarding through a closed forwarder.
var ErrClosed = errors.New("forwarder is closed")
