// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package forward

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tomtom215/beaconfall/internal/metrics"
)

// FileForwarder appends rendered output to a file, each record terminated by
// the separator passed to Forward. Writes are serialized by a mutex so
// concurrent beacon handlers never interleave records.
type FileForwarder struct {
	mu   sync.Mutex
	path string
	file *os.File
}

// NewFileForwarder opens (or creates) the sink file in append mode.
func NewFileForwarder(path string) (*FileForwarder, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open forward sink %s: %w", path, err)
	}
	return &FileForwarder{path: path, file: f}, nil
}

// Name implements Forwarder.
func (f *FileForwarder) Name() string { return "file" }

// Forward implements Forwarder.
func (f *FileForwarder) Forward(_ context.Context, data []byte, separator string, cb Callback) {
	if cb == nil {
		cb = nopCallback
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		err := fmt.Errorf("forward sink %s: %w", f.path, ErrClosed)
		metrics.ForwardsTotal.WithLabelValues(f.Name(), "error").Inc()
		cb(err, 0)
		return
	}

	record := make([]byte, 0, len(data)+len(separator))
	record = append(record, data...)
	record = append(record, separator...)

	n, err := f.file.Write(record)
	if err != nil {
		metrics.ForwardsTotal.WithLabelValues(f.Name(), "error").Inc()
		cb(fmt.Errorf("write forward sink %s: %w", f.path, err), n)
		return
	}

	metrics.ForwardsTotal.WithLabelValues(f.Name(), "success").Inc()
	metrics.ForwardedBytes.WithLabelValues(f.Name()).Add(float64(n))
	cb(nil, n)
}

// Close implements Forwarder.
func (f *FileForwarder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
