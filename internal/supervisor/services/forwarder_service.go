// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/beaconfall/internal/forward"
	"github.com/tomtom215/beaconfall/internal/logging"
)

// ForwarderService ties a forwarder's lifetime to the supervisor tree:
// it holds the forwarder open while the tree runs and closes it on
// shutdown, so file handles and broker connections are released in order.
type ForwarderService struct {
	forwarder forward.Forwarder
}

// NewForwarderService wraps a forwarder as a supervised service.
func NewForwarderService(f forward.Forwarder) *ForwarderService {
	return &ForwarderService{forwarder: f}
}

// Serve implements suture.Service. It blocks until the context is canceled,
// then closes the forwarder.
func (s *ForwarderService) Serve(ctx context.Context) error {
	<-ctx.Done()

	if err := s.forwarder.Close(); err != nil {
		logging.Error().Err(err).
			Str("forwarder", s.forwarder.Name()).
			Msg("Forwarder close failed during shutdown")
		return fmt.Errorf("close forwarder %s: %w", s.forwarder.Name(), err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *ForwarderService) String() string {
	return fmt.Sprintf("forwarder-%s", s.forwarder.Name())
}
