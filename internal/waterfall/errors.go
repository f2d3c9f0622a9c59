// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package waterfall

import "fmt"

// GeometryError reports a resource list the chart geometry cannot plot.
// Unlike a missing restiming array (a defined empty result), these inputs
// reached the geometry pass and violated its preconditions.
type GeometryError struct {
	Reason string
}

// Error implements the error interface.
func (e *GeometryError) Error() string {
	return fmt.Sprintf("waterfall geometry: %s", e.Reason)
}

func geometryErr(format string, args ...interface{}) *GeometryError {
	return &GeometryError{Reason: fmt.Sprintf(format, args...)}
}
