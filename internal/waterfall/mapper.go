// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package waterfall

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/beaconfall/internal/models"
)

// MapBeacon normalizes one beacon's worth of resource timing data.
//
// A missing or non-array restiming value is the defined "no data" fast path:
// the result is nil and no error is reported. Callers must treat a nil result
// as "nothing to render", not as a failure.
func MapBeacon(referer string, beacon models.BeaconPayload) []models.Resource {
	if len(beacon.Restiming) == 0 {
		return nil
	}

	var raws []models.RawResourceEvent
	if err := json.Unmarshal(beacon.Restiming, &raws); err != nil {
		// Wrong type, not an error condition.
		return nil
	}

	resources := make([]models.Resource, 0, len(raws))
	for _, raw := range raws {
		resources = append(resources, MapResource(referer, raw))
	}
	return resources
}

// MapResource normalizes one raw resource-timing record.
//
// The total duration starts at fetchStart−start and is extended to cover the
// latest-ending named event, each span measured from the resource's start.
// Inconsistent timestamps are not validated here: negative spans pass through
// and are the renderer's problem.
func MapResource(referer string, raw models.RawResourceEvent) models.Resource {
	ts := raw.Timestamps

	duration := ts.FetchStart - ts.Start
	for _, ns := range raw.Events.Present() {
		if span := ns.Span.End - ts.Start; span > duration {
			duration = span
		}
	}

	timings := make([]models.TimingSegment, 0, models.SegmentCount)
	timings = append(timings, models.TimingSegment{
		Name:     models.SegmentBlocked,
		Start:    ts.Start,
		Duration: duration,
		Blocked:  true,
	})
	timings = append(timings,
		eventSegment(models.SegmentRedirect, raw.Events.Redirect),
		eventSegment(models.SegmentDNS, raw.Events.DNS),
		eventSegment(models.SegmentConnect, raw.Events.Connect),
		requestSegment(ts, raw.Events.Response),
		eventSegment(models.SegmentResponse, raw.Events.Response),
	)

	return models.Resource{
		Page:     referer,
		Name:     raw.Name,
		Type:     raw.Type,
		Start:    ts.Start,
		Duration: duration,
		Timings:  timings,
	}
}

// eventSegment builds the segment for a named sub-event, falling back to the
// zero-length placeholder when the event did not occur.
func eventSegment(name string, span *models.EventSpan) models.TimingSegment {
	if span == nil {
		return placeholderSegment(name)
	}
	return models.TimingSegment{
		Name:     name,
		Start:    span.Start,
		Duration: span.Duration(),
	}
}

// requestSegment builds the request segment. It only materializes when the
// browser reported a requestStart timestamp AND a response event exists; its
// end is the point the response began, not when it ended.
func requestSegment(ts models.ResourceTimings, response *models.EventSpan) models.TimingSegment {
	if ts.RequestStart == 0 || response == nil {
		return placeholderSegment(models.SegmentRequest)
	}
	return models.TimingSegment{
		Name:     models.SegmentRequest,
		Start:    ts.RequestStart,
		Duration: response.Start - ts.RequestStart,
	}
}

// placeholderSegment is the defined fallback for absent events.
func placeholderSegment(name string) models.TimingSegment {
	return models.TimingSegment{Name: name, Start: 0, Duration: 0}
}
