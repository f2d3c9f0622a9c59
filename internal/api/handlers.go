// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/beaconfall/internal/logging"
	"github.com/tomtom215/beaconfall/internal/models"
	"github.com/tomtom215/beaconfall/internal/waterfall"
)

// Handler serves the beacon receiver and health endpoints.
type Handler struct {
	processor *Processor
	maxBody   int64
	startTime time.Time
}

// NewHandler creates the HTTP handler set around a pipeline processor.
// maxBody caps the accepted beacon payload size in bytes.
func NewHandler(processor *Processor, maxBody int64) *Handler {
	return &Handler{
		processor: processor,
		maxBody:   maxBody,
		startTime: time.Now(),
	}
}

// beaconRequest carries the validated beacon envelope fields.
type beaconRequest struct {
	Page string `validate:"omitempty,max=2048"`
}

// PostBeacon receives a beacon as a JSON body.
//
// A payload without resource timing data is accepted and acknowledged with
// zero resources; instrumented pages send beacons unconditionally and a
// missing restiming block is normal.
func (h *Handler) PostBeacon(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBody+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "READ_ERROR", "Failed to read request body", err)
		return
	}
	if int64(len(body)) > h.maxBody {
		respondError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Beacon payload exceeds size limit", nil)
		return
	}

	var beacon models.BeaconPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &beacon); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Beacon payload is not valid JSON", err)
			return
		}
	}
	if beacon.UserAgent == "" {
		beacon.UserAgent = r.UserAgent()
	}

	h.handleBeacon(w, r, beacon)
}

// GetBeacon receives a beacon via query parameters. Classic beacon libraries
// fire image requests, so the restiming document arrives URL-encoded in the
// restiming parameter.
func (h *Handler) GetBeacon(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	beacon := models.BeaconPayload{
		Page:      q.Get("page"),
		UserAgent: r.UserAgent(),
	}
	if raw := q.Get("restiming"); raw != "" {
		beacon.Restiming = json.RawMessage(raw)
	}

	h.handleBeacon(w, r, beacon)
}

// handleBeacon resolves the referring page, runs the pipeline, and writes
// the result.
func (h *Handler) handleBeacon(w http.ResponseWriter, r *http.Request, beacon models.BeaconPayload) {
	start := time.Now()

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = r.URL.Query().Get("r")
	}
	if referer == "" {
		referer = beacon.Page
	}

	req := beaconRequest{Page: referer}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ctx := logging.ContextWithBeaconID(r.Context(), logging.GenerateBeaconID())
	result, err := h.processor.Process(ctx, referer, beacon)
	if err != nil {
		var gerr *waterfall.GeometryError
		if errors.As(err, &gerr) {
			respondError(w, http.StatusUnprocessableEntity, "GEOMETRY_ERROR", gerr.Error(), nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "PIPELINE_ERROR", "Failed to process beacon", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:     time.Now(),
			ProcessTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only when the pipeline is wired: settings loaded, renderer
// built, and a forwarder attached.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ready := h.processor != nil &&
		h.processor.settings != nil &&
		h.processor.renderer != nil &&
		h.processor.forwarder != nil

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"ready_to_serve": ready,
			"uptime":         time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
