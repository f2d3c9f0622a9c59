// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/beaconfall/internal/forward"
	"github.com/tomtom215/beaconfall/internal/logging"
	"github.com/tomtom215/beaconfall/internal/metrics"
	"github.com/tomtom215/beaconfall/internal/models"
	"github.com/tomtom215/beaconfall/internal/render"
	"github.com/tomtom215/beaconfall/internal/settings"
	"github.com/tomtom215/beaconfall/internal/waterfall"
)

// Processor runs one beacon through the full pipeline:
// map resources, assemble the chart model, render SVG, forward the output.
// It holds no per-beacon state; the settings are shared read-only, so a
// single Processor serves concurrent handlers.
type Processor struct {
	settings  *settings.Settings
	renderer  *render.Renderer
	forwarder forward.Forwarder
	separator string
}

// NewProcessor wires the pipeline stages together.
func NewProcessor(s *settings.Settings, r *render.Renderer, f forward.Forwarder, separator string) *Processor {
	return &Processor{
		settings:  s,
		renderer:  r,
		forwarder: f,
		separator: separator,
	}
}

// Process handles a single decoded beacon. A beacon without resource timing
// data is not an error: the result reports zero resources and nothing is
// forwarded. Geometry failures surface as *waterfall.GeometryError.
func (p *Processor) Process(ctx context.Context, referer string, beacon models.BeaconPayload) (*models.BeaconResult, error) {
	start := time.Now()

	beaconID := logging.BeaconIDFromContext(ctx)
	if beaconID == "" {
		beaconID = logging.GenerateBeaconID()
		ctx = logging.ContextWithBeaconID(ctx, beaconID)
	}

	resources := waterfall.MapBeacon(referer, beacon)
	if len(resources) == 0 {
		metrics.ObserveBeacon("empty", 0, time.Since(start))
		logging.Ctx(ctx).Debug().
			Str("page", sanitizeLogValue(referer)).
			Msg("Beacon carried no resource timing data")
		return &models.BeaconResult{BeaconID: beaconID, Resources: 0, Forwarded: false}, nil
	}

	model, err := waterfall.Assemble(p.settings, resources)
	if err != nil {
		var gerr *waterfall.GeometryError
		if errors.As(err, &gerr) {
			metrics.GeometryErrors.Inc()
		}
		metrics.ObserveBeacon("error", len(resources), time.Since(start))
		return nil, err
	}

	renderStart := time.Now()
	output, err := p.renderer.Render(model)
	metrics.RenderDuration.Observe(time.Since(renderStart).Seconds())
	if err != nil {
		metrics.ObserveBeacon("error", len(resources), time.Since(start))
		return nil, err
	}

	p.forwarder.Forward(ctx, []byte(output), p.separator, func(err error, n int) {
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).
				Str("forwarder", p.forwarder.Name()).
				Msg("Forward failed")
			return
		}
		logging.Ctx(ctx).Debug().
			Str("forwarder", p.forwarder.Name()).
			Int("bytes", n).
			Msg("Beacon output forwarded")
	})

	metrics.ObserveBeacon("mapped", len(resources), time.Since(start))
	logging.Ctx(ctx).Info().
		Str("page", sanitizeLogValue(referer)).
		Int("resources", len(resources)).
		Dur("elapsed", time.Since(start)).
		Msg("Beacon processed")

	return &models.BeaconResult{BeaconID: beaconID, Resources: len(resources), Forwarded: true}, nil
}
