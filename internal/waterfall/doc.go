// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

/*
Package waterfall converts raw resource-timing beacons into render-ready
waterfall chart data.

The package is the core of the pipeline and is purely computational: one
synchronous pass per beacon, no I/O, no state across calls. It has three
stages:

  - MapResource / MapBeacon: normalize raw timing records into resources
    with a total duration and a fixed six-segment timing breakdown.
  - BuildGeometry: aggregate pass over the resource list producing chart
    height, axis ticks and per-resource pixel placement.
  - Assemble: compose settings, geometry and resources into the RenderModel
    handed to the rendering collaborator.

Mapping is garbage-in/garbage-out by design: inconsistent timestamps produce
negative or zero spans that are passed through for the renderer to deal with.
Geometry, in contrast, fails explicitly with a *GeometryError on inputs it
cannot plot (empty resource list, zero time span).

Thread safety: all functions are stateless and safe for concurrent use; the
*settings.Settings argument is read-only shared configuration.
*/
package waterfall
