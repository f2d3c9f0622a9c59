// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package api

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/beaconfall/internal/forward"
	"github.com/tomtom215/beaconfall/internal/logging"
	"github.com/tomtom215/beaconfall/internal/models"
	"github.com/tomtom215/beaconfall/internal/render"
	"github.com/tomtom215/beaconfall/internal/settings"
	"github.com/tomtom215/beaconfall/internal/waterfall"
)

// captureForwarder records what the pipeline forwards.
type captureForwarder struct {
	data  [][]byte
	calls int
}

func (c *captureForwarder) Forward(_ context.Context, data []byte, _ string, cb forward.Callback) {
	c.calls++
	c.data = append(c.data, append([]byte(nil), data...))
	cb(nil, len(data))
}

func (c *captureForwarder) Name() string { return "capture" }

func (c *captureForwarder) Close() error { return nil }

func newTestProcessor(t *testing.T) (*Processor, *captureForwarder) {
	t.Helper()

	s, err := settings.Load(settings.Options{})
	if err != nil {
		t.Fatalf("settings.Load: %v", err)
	}
	r, err := render.New(s.TemplateSource)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	fw := &captureForwarder{}
	return NewProcessor(s, r, fw, "\n"), fw
}

// twoResourceBeacon returns a payload whose resources span 100..400ms.
func twoResourceBeacon(t *testing.T) models.BeaconPayload {
	t.Helper()

	restiming := `[
		{"name": "https://example.com/a.js", "type": "script",
		 "timestamps": {"start": 100, "fetchStart": 150},
		 "events": {"dns": {"start": 105, "end": 115}}},
		{"name": "https://example.com/b.css", "type": "css",
		 "timestamps": {"start": 120, "fetchStart": 400}}
	]`
	return models.BeaconPayload{Restiming: json.RawMessage(restiming)}
}

func TestProcessorProcess(t *testing.T) {
	t.Run("renders and forwards mapped beacon", func(t *testing.T) {
		p, fw := newTestProcessor(t)

		result, err := p.Process(context.Background(), "https://example.com/app", twoResourceBeacon(t))
		if err != nil {
			t.Fatalf("Process: %v", err)
		}

		if result.Resources != 2 {
			t.Errorf("Resources = %d, want 2", result.Resources)
		}
		if !result.Forwarded {
			t.Error("Forwarded = false, want true")
		}
		if result.BeaconID == "" {
			t.Error("BeaconID is empty")
		}
		if fw.calls != 1 {
			t.Fatalf("forwarder invoked %d times, want 1", fw.calls)
		}
		svg := string(fw.data[0])
		if !strings.Contains(svg, "<svg") {
			t.Errorf("forwarded output is not SVG: %.80s", svg)
		}
		if !strings.Contains(svg, `class="bars"`) {
			t.Errorf("forwarded output missing bar group: %.200s", svg)
		}
	})

	t.Run("no restiming is an empty success", func(t *testing.T) {
		p, fw := newTestProcessor(t)

		result, err := p.Process(context.Background(), "https://example.com", models.BeaconPayload{})
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if result.Resources != 0 || result.Forwarded {
			t.Errorf("result = %+v, want zero resources and not forwarded", result)
		}
		if fw.calls != 0 {
			t.Errorf("forwarder invoked %d times, want 0", fw.calls)
		}
	})

	t.Run("non-array restiming is an empty success", func(t *testing.T) {
		p, fw := newTestProcessor(t)

		beacon := models.BeaconPayload{Restiming: json.RawMessage(`{"not": "an array"}`)}
		result, err := p.Process(context.Background(), "https://example.com", beacon)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if result.Resources != 0 || fw.calls != 0 {
			t.Errorf("result = %+v with %d forwards, want empty success", result, fw.calls)
		}
	})

	t.Run("zero time span surfaces a geometry error", func(t *testing.T) {
		p, fw := newTestProcessor(t)

		beacon := models.BeaconPayload{Restiming: json.RawMessage(
			`[{"name": "x", "timestamps": {"start": 100, "fetchStart": 100}}]`,
		)}
		_, err := p.Process(context.Background(), "https://example.com", beacon)
		if err == nil {
			t.Fatal("Process = nil error, want geometry error")
		}
		var gerr *waterfall.GeometryError
		if !errors.As(err, &gerr) {
			t.Errorf("error = %v (%T), want *waterfall.GeometryError", err, err)
		}
		if fw.calls != 0 {
			t.Errorf("forwarder invoked %d times after geometry error, want 0", fw.calls)
		}
	})

	t.Run("reuses beacon ID from context", func(t *testing.T) {
		p, _ := newTestProcessor(t)

		ctx := logging.ContextWithBeaconID(context.Background(), "abc12345")
		result, err := p.Process(ctx, "https://example.com", twoResourceBeacon(t))
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if result.BeaconID != "abc12345" {
			t.Errorf("BeaconID = %q, want abc12345", result.BeaconID)
		}
	})
}
