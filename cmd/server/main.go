// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

// Package main is the entry point for the Beaconfall server application.
//
// Beaconfall collects browser Resource Timing beacons, maps them into
// waterfall chart geometry, renders an SVG waterfall per beacon, and
// forwards the raw payloads to configured sinks.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: Load settings from environment variables and config files (Koanf v2)
//  2. Chart settings: Load SVG dimensions, colours, and the waterfall template
//  3. Forwarders: Build the sink chain from FORWARD_SINKS (log, file, nats)
//  4. HTTP Server: Beacon receiver, health endpoints, and Prometheus metrics
//
// Components run under a Suture v4 supervisor tree:
//
//	RootSupervisor ("beaconfall")
//	├── PipelineSupervisor ("pipeline-layer")
//	│   └── Forwarder lifecycle (closed on shutdown)
//	└── APISupervisor ("api-layer")
//	    └── HTTP server (graceful shutdown)
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Build Tags
//
// Optional build tags enable additional functionality:
//
//	go build -tags "nats" ./cmd/server  # Enable the NATS JetStream sink
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete (10s timeout)
//   - Closes forwarder sinks
//
// # Example Usage
//
// Log-only development mode:
//
//	LOG_FORMAT=console ./beaconfall
//
// File sink with custom settings:
//
//	export FORWARD_SINKS=log,file
//	export FORWARD_FILE_PATH=/data/beacons.out
//	export SVG_SETTINGS_PATH=/etc/beaconfall/waterfall.json
//	./beaconfall
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/beaconfall/internal/api"
	"github.com/tomtom215/beaconfall/internal/config"
	"github.com/tomtom215/beaconfall/internal/forward"
	"github.com/tomtom215/beaconfall/internal/logging"
	"github.com/tomtom215/beaconfall/internal/render"
	"github.com/tomtom215/beaconfall/internal/settings"
	"github.com/tomtom215/beaconfall/internal/supervisor"
	"github.com/tomtom215/beaconfall/internal/supervisor/services"
)

func main() {
	// Load configuration first so logging can be set up from it
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Beaconfall with supervisor tree...")

	// Chart settings and the SVG template ship as embedded defaults;
	// either can be overridden by path.
	chartSettings, err := settings.Load(settings.Options{
		SVGSettingsPath: cfg.Settings.SVGSettingsPath,
		SVGTemplatePath: cfg.Settings.SVGTemplatePath,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load chart settings")
	}
	logging.Info().
		Float64("width", chartSettings.Width).
		Int("colours", len(chartSettings.Colours)).
		Msg("Chart settings loaded")

	renderer, err := render.New(chartSettings.TemplateSource)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to compile waterfall template")
	}

	forwarder := buildForwarder(cfg)

	processor := api.NewProcessor(chartSettings, renderer, forwarder, cfg.Forward.Separator)
	handler := api.NewHandler(processor, cfg.API.MaxBodyBytes)

	chiMw := api.NewChiMiddleware(&api.ChiMiddlewareConfig{
		CORSAllowedOrigins:   cfg.API.CORSOrigins,
		CORSAllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders:   []string{"Content-Type"},
		CORSAllowCredentials: false,
		CORSMaxAge:           86400,
		RateLimitRequests:    cfg.API.RateLimitReqs,
		RateLimitWindow:      cfg.API.RateLimitWindow,
		RateLimitDisabled:    cfg.API.RateLimitReqs <= 0,
	})

	router := api.NewRouter(handler, chiMw, api.RouterConfig{
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddPipelineService(services.NewForwarderService(forwarder))
	logging.Info().Str("forwarder", forwarder.Name()).Msg("Forwarder service added")

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Beaconfall stopped gracefully")
}

// buildForwarder constructs the sink chain from cfg.Forward.Sinks.
// Unbuildable sinks are fatal except for NATS when support was not
// compiled in, which downgrades to a warning so log/file sinks still run.
func buildForwarder(cfg *config.Config) forward.Forwarder {
	var sinks []forward.Forwarder

	for _, sink := range cfg.Forward.Sinks {
		switch sink {
		case "log":
			sinks = append(sinks, forward.NewLogForwarder())

		case "file":
			fw, err := forward.NewFileForwarder(cfg.Forward.FilePath)
			if err != nil {
				logging.Fatal().Err(err).Str("path", cfg.Forward.FilePath).Msg("Failed to open file sink")
			}
			sinks = append(sinks, fw)
			logging.Info().Str("path", cfg.Forward.FilePath).Msg("File sink opened")

		case "nats":
			fw, err := forward.NewNATSForwarder(cfg.Forward.NATS)
			if err != nil {
				if errors.Is(err, forward.ErrNATSNotEnabled) {
					logging.Warn().Msg("NATS sink configured but NATS support not compiled (build with -tags nats)")
					continue
				}
				logging.Fatal().Err(err).Str("url", cfg.Forward.NATS.URL).Msg("Failed to connect NATS sink")
			}
			sinks = append(sinks, fw)
			logging.Info().
				Str("url", cfg.Forward.NATS.URL).
				Str("subject", cfg.Forward.NATS.Subject).
				Msg("NATS sink connected")

		default:
			// config.Validate rejects unknown sinks before we get here
			logging.Fatal().Str("sink", sink).Msg("Unknown forward sink")
		}
	}

	switch len(sinks) {
	case 0:
		// Possible when the only configured sink was nats without -tags nats
		logging.Warn().Msg("No forward sinks available, beacons will be rendered but not forwarded")
		return forward.NewLogForwarder()
	case 1:
		return sinks[0]
	default:
		return forward.NewMultiForwarder(sinks...)
	}
}
