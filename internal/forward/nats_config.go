// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package forward

import "time"

// NATSConfig holds settings for the NATS forwarder.
// It compiles regardless of the nats build tag so the config layer can
// always unmarshal it.
type NATSConfig struct {
	// URL is the NATS server URL.
	URL string `koanf:"url"`

	// Subject is the subject rendered output is published to.
	Subject string `koanf:"subject"`

	// MaxReconnects limits reconnection attempts. Negative means unlimited.
	MaxReconnects int `koanf:"max_reconnects"`

	// ReconnectWait is the delay between reconnection attempts.
	ReconnectWait time.Duration `koanf:"reconnect_wait"`

	// ReconnectBuffer is the size in bytes of the outgoing buffer used
	// while disconnected.
	ReconnectBuffer int `koanf:"reconnect_buffer"`
}

// DefaultNATSConfig returns production defaults.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:             "nats://127.0.0.1:4222",
		Subject:         "beacons.waterfall",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 << 20, // 8MB
	}
}
