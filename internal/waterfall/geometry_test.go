// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package waterfall

import (
	"errors"
	"math"
	"testing"

	"github.com/tomtom215/beaconfall/internal/models"
	"github.com/tomtom215/beaconfall/internal/settings"
)

// testSettings builds an already-validated settings value with the derived
// fields filled in: width 1000, offset {50,40}, barHeight 10, padding 5.
func testSettings() *settings.Settings {
	palette := make([]models.Colour, settings.PaletteSize)
	names := []string{"blocked", "redirect", "dns", "connect", "request", "response"}
	for i := range palette {
		palette[i] = models.Colour{Name: names[i], Value: "#00000" + names[i][:1], FG: "#fff"}
	}
	return &settings.Settings{
		Width:          1000,
		Offset:         models.Offset{X: 50, Y: 40},
		BarHeight:      10,
		Padding:        5,
		Colours:        palette,
		XAxis:          models.XAxis{X: 1000 / 1.8, Y: 40.0/2 - 5},
		ResourceHeight: 15,
		BarPadding:     2,
	}
}

func resource(start, duration float64) models.Resource {
	return models.Resource{Start: start, Duration: duration}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBuildGeometry_EmptyInput(t *testing.T) {
	_, err := BuildGeometry(testSettings(), nil)
	var geomErr *GeometryError
	if !errors.As(err, &geomErr) {
		t.Fatalf("Expected *GeometryError, got %T: %v", err, err)
	}
}

func TestBuildGeometry_ZeroSpan(t *testing.T) {
	// All resources at the same instant with zero duration: step would be 0.
	_, err := BuildGeometry(testSettings(), []models.Resource{
		resource(100, 0),
		resource(100, 0),
	})
	var geomErr *GeometryError
	if !errors.As(err, &geomErr) {
		t.Fatalf("Expected *GeometryError, got %T: %v", err, err)
	}
}

func TestBuildGeometry_Height(t *testing.T) {
	s := testSettings()

	t.Run("uses offset.x for vertical sizing", func(t *testing.T) {
		geom, err := BuildGeometry(s, []models.Resource{resource(100, 100), resource(150, 250)})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		// (count+1) * (barHeight+padding) + offset.x
		want := 3*15.0 + 50
		if geom.Height != want {
			t.Errorf("Height = %v, want %v", geom.Height, want)
		}
	})

	t.Run("scales linearly with resource count", func(t *testing.T) {
		list := []models.Resource{resource(0, 100)}
		prev := 0.0
		for n := 1; n <= 5; n++ {
			geom, err := BuildGeometry(s, list)
			if err != nil {
				t.Fatalf("n=%d: unexpected error: %v", n, err)
			}
			if n > 1 {
				if diff := geom.Height - prev; diff != s.BarHeight+s.Padding {
					t.Errorf("height(%d)-height(%d) = %v, want %v", n, n-1, diff, s.BarHeight+s.Padding)
				}
			}
			prev = geom.Height
			list = append(list, resource(float64(n)*10, 100))
		}
	})
}

func TestBuildGeometry_Ticks(t *testing.T) {
	s := testSettings()
	// minimum = first resource start = 100 (only the first element is
	// consulted); maximum = max(end) = 400; step = ceil(300/5) = 60;
	// rounded: max 420, min 60.
	geom, err := BuildGeometry(s, []models.Resource{
		resource(100, 100),
		resource(150, 250),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	const (
		step   = 60.0
		minVal = 60.0
		maxVal = 420.0
	)
	ppu := (s.Width - s.Offset.X) / (maxVal - minVal)

	wantCount := int((maxVal - minVal) / step)
	if len(geom.Ticks) != wantCount {
		t.Fatalf("Tick count = %d, want %d", len(geom.Ticks), wantCount)
	}

	for i, tick := range geom.Ticks {
		wantValue := float64(i) * step
		if tick.Value != wantValue {
			t.Errorf("Ticks[%d].Value = %v, want %v", i, tick.Value, wantValue)
		}
		wantX := 0.0
		if wantValue != 0 {
			wantX = (wantValue - minVal) * ppu
		}
		if !almostEqual(tick.X, wantX) {
			t.Errorf("Ticks[%d].X = %v, want %v", i, tick.X, wantX)
		}
		// Constant tick height: total plotted bar height.
		if want := 2 * s.ResourceHeight; tick.Height != want {
			t.Errorf("Ticks[%d].Height = %v, want %v", i, tick.Height, want)
		}
	}

	if geom.Ticks[0].Value != 0 || geom.Ticks[0].X != 0 {
		t.Errorf("Tick at value 0 must have x=0, got {%v %v}", geom.Ticks[0].Value, geom.Ticks[0].X)
	}
}

func TestBuildGeometry_FirstElementMinimumQuirk(t *testing.T) {
	s := testSettings()
	// The second resource starts earlier, but only the first element is
	// consulted for the axis minimum.
	geom, err := BuildGeometry(s, []models.Resource{
		resource(100, 100),
		resource(20, 100),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// minimum = 100, maximum = 200, step = ceil(100/5) = 20,
	// rounded: max 200, min 100.
	wantCount := int((200.0 - 100.0) / 20.0)
	if len(geom.Ticks) != wantCount {
		t.Errorf("Tick count = %d, want %d", len(geom.Ticks), wantCount)
	}
}

func TestBuildGeometry_ResourcePlacement(t *testing.T) {
	s := testSettings()
	resources := []models.Resource{
		MapResource("p", models.RawResourceEvent{
			Name: "a.js", Type: "script",
			Timestamps: models.ResourceTimings{Start: 100, FetchStart: 120, RequestStart: 140},
			Events: models.ResourceEvents{
				DNS:      span(105, 115),
				Response: span(150, 200),
			},
		}),
		MapResource("p", models.RawResourceEvent{
			Name: "b.png", Type: "image",
			Timestamps: models.ResourceTimings{Start: 150, FetchStart: 400},
		}),
	}

	geom, err := BuildGeometry(s, resources)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(geom.Resources) != 2 {
		t.Fatalf("Positioned count = %d, want 2", len(geom.Resources))
	}

	// minimum 100, maximum 400, step 60, rounded min 60 max 420.
	ppu := (s.Width - s.Offset.X) / (420.0 - 60.0)

	first := geom.Resources[0]
	if !almostEqual(first.X, (100-60)*ppu) {
		t.Errorf("Resources[0].X = %v, want %v", first.X, (100-60)*ppu)
	}
	if first.Y != s.Offset.Y {
		t.Errorf("Resources[0].Y = %v, want %v", first.Y, s.Offset.Y)
	}
	if !almostEqual(first.Width, 100*ppu) {
		t.Errorf("Resources[0].Width = %v, want %v", first.Width, 100*ppu)
	}
	if first.Colour != s.Colours[0] {
		t.Errorf("Resources[0].Colour = %+v, want palette[0]", first.Colour)
	}

	second := geom.Resources[1]
	if second.Y != s.Offset.Y+s.ResourceHeight {
		t.Errorf("Resources[1].Y = %v, want %v", second.Y, s.Offset.Y+s.ResourceHeight)
	}
	if second.Colour != s.Colours[1] {
		t.Errorf("Resources[1].Colour = %+v, want palette[1]", second.Colour)
	}

	// Placeholders and the blocked segment are not given pixel rects.
	for _, rect := range first.Segments {
		if rect.Name == models.SegmentBlocked {
			t.Error("blocked segment must not receive a pixel rect")
		}
		if rect.Name == models.SegmentRedirect || rect.Name == models.SegmentConnect {
			t.Errorf("placeholder segment %q must not receive a pixel rect", rect.Name)
		}
	}
	// dns, request and response occurred: three rects.
	if len(first.Segments) != 3 {
		t.Errorf("Segment rect count = %d, want 3", len(first.Segments))
	}
	if len(second.Segments) != 0 {
		t.Errorf("Resources[1] segment rects = %d, want 0", len(second.Segments))
	}
}

func TestBuildGeometry_ColourCycling(t *testing.T) {
	s := testSettings()
	list := make([]models.Resource, 8)
	for i := range list {
		list[i] = resource(float64(i)*10, 50)
	}

	geom, err := BuildGeometry(s, list)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	for i, pr := range geom.Resources {
		if want := s.Colours[i%settings.PaletteSize]; pr.Colour != want {
			t.Errorf("Resources[%d].Colour = %+v, want palette[%d]", i, pr.Colour, i%settings.PaletteSize)
		}
	}
}
