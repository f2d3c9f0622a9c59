// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package models

// Segment names, in the fixed order they appear in Resource.Timings.
const (
	SegmentBlocked  = "blocked"
	SegmentRedirect = "redirect"
	SegmentDNS      = "dns"
	SegmentConnect  = "connect"
	SegmentRequest  = "request"
	SegmentResponse = "response"
)

// SegmentCount is the number of timing segments every resource carries.
const SegmentCount = 6

// TimingSegment is one labeled slice of a resource's fetch timeline.
// Absent source events are represented as zero-length segments at time 0.
type TimingSegment struct {
	Name     string  `json:"name"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`

	// Blocked marks the synthetic whole-resource segment. Exactly one
	// segment per resource carries it.
	Blocked bool `json:"blocked,omitempty"`
}

// Resource is a normalized resource-timing entry: one horizontal bar of the
// waterfall. It is built fresh per mapping call and discarded after assembly.
type Resource struct {
	Page     string  `json:"page"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`

	// Timings always holds SegmentCount entries in the order
	// blocked, redirect, dns, connect, request, response.
	Timings []TimingSegment `json:"timings"`
}

// End returns the absolute end time of the resource.
func (r Resource) End() float64 {
	return r.Start + r.Duration
}

// Colour is one entry of the six-colour waterfall palette.
type Colour struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	FG    string `json:"fg"`
}

// Tick is one axis gridline of the chart.
type Tick struct {
	X      float64 `json:"x"`
	Height float64 `json:"height"`
	Value  float64 `json:"value"`
}

// SegmentRect is the pixel geometry of one timing segment within a bar.
type SegmentRect struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Width float64 `json:"width"`
}

// PositionedResource pairs a resource with its derived pixel geometry
// and palette assignment.
type PositionedResource struct {
	Resource Resource      `json:"resource"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Colour   Colour        `json:"colour"`
	Segments []SegmentRect `json:"segments"`
}

// ChartGeometry is the whole-chart aggregate pass over the resource list:
// total height, axis ticks and per-resource pixel placement.
type ChartGeometry struct {
	Height    float64              `json:"height"`
	Ticks     []Tick               `json:"ticks"`
	Resources []PositionedResource `json:"resources"`
}

// SVGModel is the customized settings object handed to the renderer:
// every settings field plus the three geometry-derived fields.
type SVGModel struct {
	Width          float64  `json:"width"`
	Offset         Offset   `json:"offset"`
	BarHeight      float64  `json:"barHeight"`
	Padding        float64  `json:"padding"`
	Colours        []Colour `json:"colours"`
	XAxis          XAxis    `json:"xAxis"`
	ResourceHeight float64  `json:"resourceHeight"`
	BarPadding     float64  `json:"barPadding"`

	Height    float64              `json:"height"`
	Ticks     []Tick               `json:"ticks"`
	Resources []PositionedResource `json:"resources"`
}

// Offset is the chart's x/y drawing offset.
type Offset struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// XAxis is the derived axis label placement.
type XAxis struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RenderModel is the complete input handed to the rendering collaborator.
// The mapper performs no markup generation itself.
type RenderModel struct {
	SVG     SVGModel   `json:"svg"`
	Details []Resource `json:"details"`
}
