// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

// Package settings loads and validates the visual constants of the waterfall
// chart: bar sizes, colours, offsets and the SVG template consumed by the
// renderer.
//
// Settings are loaded once at process start and are immutable afterwards, so
// concurrent mapping calls may share one *Settings without synchronization.
// Validation is fail-fast: the first violated rule aborts the load with a
// *ConfigurationError naming the offending field, and no partial settings
// object is ever returned.
package settings

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"

	"github.com/tomtom215/beaconfall/internal/models"
)

// PaletteSize is the required number of configured colours.
const PaletteSize = 6

// ConfigurationError reports a violated settings validation rule.
// It is fatal to startup: the pipeline must not process any beacon after one.
type ConfigurationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid svg settings: %s %s", e.Field, e.Reason)
}

// configErr builds a ConfigurationError for the given field.
func configErr(field, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: reason}
}

// Options selects the settings and template sources.
// Zero-value paths fall back to the bundled defaults.
type Options struct {
	// SVGSettingsPath is the path of the settings JSON document.
	SVGSettingsPath string

	// SVGTemplatePath is the path of the SVG template consumed by the renderer.
	SVGTemplatePath string
}

// Settings is the validated, derived set of visual constants.
// All fields are read-only after Load returns.
type Settings struct {
	Width     float64         `json:"width"`
	Offset    models.Offset   `json:"offset"`
	BarHeight float64         `json:"barHeight"`
	Padding   float64         `json:"padding"`
	Colours   []models.Colour `json:"colours"`

	// Derived fields, computed after validation.
	XAxis          models.XAxis `json:"xAxis"`
	ResourceHeight float64      `json:"resourceHeight"`
	BarPadding     float64      `json:"barPadding"`

	// TemplateSource is the raw SVG template text for the renderer.
	TemplateSource string `json:"-"`
}

// rawDocument mirrors the settings file with offset kept opaque, so a
// non-object offset is reported as a validation failure rather than a
// decode failure.
type rawDocument struct {
	Width     float64         `json:"width"`
	Offset    json.RawMessage `json:"offset"`
	BarHeight float64         `json:"barHeight"`
	Padding   float64         `json:"padding"`
	Colours   []models.Colour `json:"colours"`
}

// Load reads, validates and derives the waterfall settings.
// Empty Options fields fall back to the bundled defaults.
func Load(opts Options) (*Settings, error) {
	raw, err := readSource(opts.SVGSettingsPath, defaultSettingsJSON)
	if err != nil {
		return nil, fmt.Errorf("read svg settings: %w", err)
	}

	tmpl, err := readSource(opts.SVGTemplatePath, defaultTemplateSVG)
	if err != nil {
		return nil, fmt.Errorf("read svg template: %w", err)
	}

	s, err := parse(raw)
	if err != nil {
		return nil, err
	}
	s.TemplateSource = string(tmpl)

	return s, nil
}

// readSource returns the file contents at path, or fallback when path is empty.
func readSource(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	return os.ReadFile(path)
}

// parse decodes and validates a settings document, then derives the
// computed fields. It never returns a partial Settings.
func parse(data []byte) (*Settings, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode svg settings: %w", err)
	}

	if doc.Width <= 0 {
		return nil, configErr("width", "must be a positive number")
	}

	var offset models.Offset
	if len(doc.Offset) == 0 {
		return nil, configErr("offset", "must be an object")
	}
	if err := json.Unmarshal(doc.Offset, &offset); err != nil {
		return nil, configErr("offset", "must be an object")
	}
	// The historical loader range-checks offset.x twice and offset.y never.
	// Kept as-is for output compatibility with existing settings files.
	if offset.X <= 0 {
		return nil, configErr("offset.x", "must be a positive number")
	}
	if offset.X <= 0 {
		return nil, configErr("offset.x", "must be a positive number")
	}

	if doc.BarHeight <= 0 {
		return nil, configErr("barHeight", "must be a positive number")
	}
	if doc.Padding <= 0 {
		return nil, configErr("padding", "must be a positive number")
	}

	if len(doc.Colours) != PaletteSize {
		return nil, configErr("colours", fmt.Sprintf("must contain exactly %d entries", PaletteSize))
	}
	for i, c := range doc.Colours {
		if c.Name == "" {
			return nil, configErr(fmt.Sprintf("colours[%d].name", i), "must be a non-empty string")
		}
		if c.Value == "" {
			return nil, configErr(fmt.Sprintf("colours[%d].value", i), "must be a non-empty string")
		}
		if c.FG == "" {
			return nil, configErr(fmt.Sprintf("colours[%d].fg", i), "must be a non-empty string")
		}
	}

	s := &Settings{
		Width:     doc.Width,
		Offset:    offset,
		BarHeight: doc.BarHeight,
		Padding:   doc.Padding,
		Colours:   doc.Colours,
	}
	s.derive()

	return s, nil
}

// derive computes the fields that depend on the validated base values.
func (s *Settings) derive() {
	s.XAxis = models.XAxis{
		X: s.Width / 1.8,
		Y: s.Offset.Y/2 - s.Padding,
	}
	s.ResourceHeight = s.BarHeight + s.Padding
	s.BarPadding = math.Floor(s.Padding / 2)
}
