// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/beaconfall/internal/forward"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	API      APIConfig      `koanf:"api"`
	Settings SettingsConfig `koanf:"settings"`
	Forward  ForwardConfig  `koanf:"forward"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address (default 0.0.0.0).
	Host string `koanf:"host"`

	// Port is the listen port.
	Port int `koanf:"port"`

	// Timeout bounds request read/write and graceful shutdown.
	Timeout time.Duration `koanf:"timeout"`
}

// APIConfig holds beacon endpoint settings.
type APIConfig struct {
	// MaxBodyBytes caps the accepted beacon payload size.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// RateLimitReqs is the number of beacon requests allowed per client IP
	// within RateLimitWindow. Zero disables rate limiting.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// CORSOrigins lists allowed CORS origins. Beacons arrive cross-origin
	// from instrumented pages, so the default is permissive.
	CORSOrigins []string `koanf:"cors_origins"`
}

// SettingsConfig locates the chart settings and template files.
// Empty paths fall back to the bundled defaults.
type SettingsConfig struct {
	// SVGSettingsPath points at a JSON chart settings document.
	SVGSettingsPath string `koanf:"svg_settings_path"`

	// SVGTemplatePath points at an SVG template file.
	SVGTemplatePath string `koanf:"svg_template_path"`
}

// ForwardConfig selects the sinks rendered output is dispatched to.
type ForwardConfig struct {
	// Sinks names the enabled forwarders: log, file, nats.
	Sinks []string `koanf:"sinks"`

	// FilePath is the output file for the file sink.
	FilePath string `koanf:"file_path"`

	// Separator terminates each forwarded record.
	Separator string `koanf:"separator"`

	// NATS configures the nats sink.
	NATS forward.NATSConfig `koanf:"nats"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller adds file:line to log events.
	Caller bool `koanf:"caller"`
}

// knownSinks lists forwarder names accepted in forward.sinks.
var knownSinks = map[string]bool{
	"log":  true,
	"file": true,
	"nats": true,
}

// Validate checks the configuration for values that cannot work at runtime.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if c.API.MaxBodyBytes <= 0 {
		return fmt.Errorf("api.max_body_bytes must be positive, got %d", c.API.MaxBodyBytes)
	}
	if c.API.RateLimitReqs < 0 {
		return fmt.Errorf("api.rate_limit_reqs must not be negative, got %d", c.API.RateLimitReqs)
	}
	if c.API.RateLimitReqs > 0 && c.API.RateLimitWindow <= 0 {
		return fmt.Errorf("api.rate_limit_window must be positive when rate limiting is enabled, got %s", c.API.RateLimitWindow)
	}

	for _, sink := range c.Forward.Sinks {
		if !knownSinks[sink] {
			return fmt.Errorf("forward.sinks contains unknown sink %q (known: log, file, nats)", sink)
		}
		if sink == "file" && c.Forward.FilePath == "" {
			return fmt.Errorf("forward.file_path is required when the file sink is enabled")
		}
		if sink == "nats" && c.Forward.NATS.URL == "" {
			return fmt.Errorf("forward.nats.url is required when the nats sink is enabled")
		}
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Path == "" {
		return fmt.Errorf("metrics.path is required when metrics are enabled")
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
