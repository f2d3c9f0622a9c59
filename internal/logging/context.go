// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys for logging.
type contextKey string

const (
	// beaconIDKey is the context key for beacon correlation IDs.
	beaconIDKey contextKey = "beacon_id"

	// requestIDKey is the context key for HTTP request IDs.
	requestIDKey contextKey = "request_id"
)

// GenerateBeaconID creates a new unique beacon correlation ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateBeaconID() string {
	return uuid.New().String()[:8]
}

// GenerateRequestID creates a new unique request ID.
// Returns a full UUID for uniqueness across distributed systems.
func GenerateRequestID() string {
	return uuid.New().String()
}

// ContextWithBeaconID returns a new context carrying the given beacon ID.
//
//	ctx = logging.ContextWithBeaconID(ctx, logging.GenerateBeaconID())
func ContextWithBeaconID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, beaconIDKey, id)
}

// BeaconIDFromContext retrieves the beacon ID from context.
// Returns empty string if not present.
func BeaconIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(beaconIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithRequestID returns a new context carrying the given request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns a logger event builder enriched with IDs found in the context.
// Fields are only added when present, so it is safe to call with any context.
//
//	logging.Ctx(ctx).Info().Msg("Beacon mapped")
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	lctx := l.With()
	if id := BeaconIDFromContext(ctx); id != "" {
		lctx = lctx.Str("beacon_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		lctx = lctx.Str("request_id", id)
	}
	enriched := lctx.Logger()
	return &enriched
}
