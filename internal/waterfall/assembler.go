// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package waterfall

import (
	"github.com/tomtom215/beaconfall/internal/models"
	"github.com/tomtom215/beaconfall/internal/settings"
)

// Assemble composes settings, geometry and the resource list into the final
// RenderModel handed to the rendering collaborator. The SVG model is a copy
// of every settings field plus the three geometry-derived fields; the mapper
// itself performs no markup generation.
func Assemble(s *settings.Settings, resources []models.Resource) (models.RenderModel, error) {
	geom, err := BuildGeometry(s, resources)
	if err != nil {
		return models.RenderModel{}, err
	}

	svg := models.SVGModel{
		Width:          s.Width,
		Offset:         s.Offset,
		BarHeight:      s.BarHeight,
		Padding:        s.Padding,
		Colours:        s.Colours,
		XAxis:          s.XAxis,
		ResourceHeight: s.ResourceHeight,
		BarPadding:     s.BarPadding,

		Height:    geom.Height,
		Ticks:     geom.Ticks,
		Resources: geom.Resources,
	}

	return models.RenderModel{
		SVG:     svg,
		Details: resources,
	}, nil
}
