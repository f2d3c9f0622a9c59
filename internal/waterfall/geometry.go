// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package waterfall

import (
	"math"

	"github.com/tomtom215/beaconfall/internal/models"
	"github.com/tomtom215/beaconfall/internal/settings"
)

// tickDivisions is the target number of axis intervals.
const tickDivisions = 5

// BuildGeometry runs the whole-list aggregate pass: chart height, axis ticks
// and per-resource pixel placement.
//
// Preconditions are enforced explicitly rather than left undefined: an empty
// resource list or a list spanning zero time returns a *GeometryError.
//
// Two quirks of the original chart are kept for output compatibility and
// are not corrections to make silently:
//   - the vertical sizing adds offset.x, not offset.y
//   - the axis minimum consults only the first resource, not a true minimum
func BuildGeometry(s *settings.Settings, resources []models.Resource) (models.ChartGeometry, error) {
	if len(resources) == 0 {
		return models.ChartGeometry{}, geometryErr("requires at least one resource")
	}

	height := float64(len(resources)+1)*s.ResourceHeight + s.Offset.X

	minimum := resources[0].Start
	maximum := minimum
	for _, r := range resources {
		if end := r.End(); end > maximum {
			maximum = end
		}
	}

	step := math.Ceil((maximum - minimum) / tickDivisions)
	if step <= 0 || math.IsNaN(step) {
		return models.ChartGeometry{}, geometryErr("resources span zero time (minimum %v, maximum %v)", minimum, maximum)
	}

	// Snap the plotted range to step multiples.
	maximum = math.Ceil(maximum/step) * step
	minimum = math.Floor(minimum/step) * step

	pixelsPerUnit := (s.Width - s.Offset.X) / (maximum - minimum)
	tickHeight := float64(len(resources)) * s.ResourceHeight

	tickCount := int(math.Round((maximum - minimum) / step))
	ticks := make([]models.Tick, 0, tickCount)
	for i := 0; i < tickCount; i++ {
		value := float64(i) * step
		x := 0.0
		if value != 0 {
			x = (value - minimum) * pixelsPerUnit
		}
		ticks = append(ticks, models.Tick{X: x, Height: tickHeight, Value: value})
	}

	positioned := make([]models.PositionedResource, 0, len(resources))
	for i, r := range resources {
		positioned = append(positioned, placeResource(s, r, i, minimum, pixelsPerUnit))
	}

	return models.ChartGeometry{
		Height:    height,
		Ticks:     ticks,
		Resources: positioned,
	}, nil
}

// placeResource derives the pixel geometry and palette assignment for one
// resource bar: the palette cycles by index, vertical placement stacks bars
// by resourceHeight, and horizontal placement uses the same pixels-per-unit
// transform as the axis ticks.
func placeResource(s *settings.Settings, r models.Resource, index int, minimum, pixelsPerUnit float64) models.PositionedResource {
	segments := make([]models.SegmentRect, 0, len(r.Timings))
	for _, seg := range r.Timings {
		if seg.Blocked {
			// The blocked segment spans the whole bar; the bar rect covers it.
			continue
		}
		if seg.Start == 0 && seg.Duration == 0 {
			// Placeholder for an event that did not occur.
			continue
		}
		segments = append(segments, models.SegmentRect{
			Name:  seg.Name,
			X:     (seg.Start - minimum) * pixelsPerUnit,
			Width: seg.Duration * pixelsPerUnit,
		})
	}

	return models.PositionedResource{
		Resource: r,
		X:        (r.Start - minimum) * pixelsPerUnit,
		Y:        s.Offset.Y + float64(index)*s.ResourceHeight,
		Width:    r.Duration * pixelsPerUnit,
		Colour:   s.Colours[index%settings.PaletteSize],
		Segments: segments,
	}
}
