// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package models

import (
	"github.com/goccy/go-json"
)

// BeaconPayload is the wire format of an incoming beacon.
//
// Restiming is kept as raw JSON because browsers and older boomerang builds
// send a variety of shapes here: the receiver must tolerate a missing or
// non-array value and treat it as "no data" rather than a decode failure.
type BeaconPayload struct {
	// Page is the page identifier reported by the beacon, if any.
	// The Referer header takes precedence when both are present.
	Page string `json:"page,omitempty"`

	// Restiming is the raw resource timing array. May be absent or malformed.
	Restiming json.RawMessage `json:"restiming,omitempty"`

	// UserAgent is the reporting browser's user agent string, if sent.
	UserAgent string `json:"u,omitempty"`
}

// ResourceTimings holds the absolute time origins of one resource fetch.
// All values share one unit (milliseconds since navigation start).
// A zero RequestStart means the browser did not report one.
type ResourceTimings struct {
	Start        float64 `json:"start"`
	FetchStart   float64 `json:"fetchStart"`
	RequestStart float64 `json:"requestStart,omitempty"`
}

// EventSpan is one named sub-event of a resource fetch, with absolute
// start and end timestamps.
type EventSpan struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns the elapsed span of the event.
// May be negative when timestamps are inconsistent; callers pass that through.
func (e EventSpan) Duration() float64 {
	return e.End - e.Start
}

// ResourceEvents holds the optional sub-events of a resource fetch.
// A nil field means the event did not occur for this resource.
type ResourceEvents struct {
	Redirect *EventSpan `json:"redirect,omitempty"`
	DNS      *EventSpan `json:"dns,omitempty"`
	Connect  *EventSpan `json:"connect,omitempty"`
	Response *EventSpan `json:"response,omitempty"`
}

// NamedSpan pairs an event span with its segment name.
type NamedSpan struct {
	Name string
	Span *EventSpan
}

// Present returns the events that occurred, in the fixed segment order.
func (ev ResourceEvents) Present() []NamedSpan {
	all := []NamedSpan{
		{SegmentRedirect, ev.Redirect},
		{SegmentDNS, ev.DNS},
		{SegmentConnect, ev.Connect},
		{SegmentResponse, ev.Response},
	}
	present := make([]NamedSpan, 0, len(all))
	for _, ns := range all {
		if ns.Span != nil {
			present = append(present, ns)
		}
	}
	return present
}

// RawResourceEvent is one raw resource-timing record from a beacon:
// a single network resource fetched by the reporting page.
type RawResourceEvent struct {
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Timestamps ResourceTimings `json:"timestamps"`
	Events     ResourceEvents  `json:"events"`
}
