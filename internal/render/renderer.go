// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

// Package render turns an assembled RenderModel into SVG markup.
//
// The renderer is a plain text/template substitution engine: it accepts the
// {svg, details} model produced by the waterfall assembler and echoes back
// the rendered document. The mapper never inspects the output.
package render

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/tomtom215/beaconfall/internal/models"
)

// Renderer holds a parsed SVG template. The template is parsed once at
// startup and the renderer is safe for concurrent use afterwards.
type Renderer struct {
	tmpl *template.Template
}

// New parses the given template source.
func New(source string) (*Renderer, error) {
	tmpl, err := template.New("waterfall").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse svg template: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render executes the template over the given model.
func (r *Renderer) Render(model models.RenderModel) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, model); err != nil {
		return "", fmt.Errorf("render waterfall: %w", err)
	}
	return buf.String(), nil
}
