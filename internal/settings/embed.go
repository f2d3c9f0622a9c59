// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package settings

import (
	_ "embed"
)

// Bundled defaults used when no explicit paths are configured.
// The binary is self-contained: a bare deployment renders waterfalls
// without any settings files on disk.
var (
	//go:embed defaults/svg-settings.json
	defaultSettingsJSON []byte

	//go:embed defaults/waterfall.svg.tmpl
	defaultTemplateSVG []byte
)
