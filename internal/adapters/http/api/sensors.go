// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"pubcompass/internal/domain/geo"
)

// SensorSink accepts location and orientation readings from HTTP clients.
// Browsers without an MQTT bridge post their geolocation and
// deviceorientation events here.
type SensorSink interface {
	SubmitFix(ctx context.Context, c geo.Coordinate) bool
	SubmitHeading(ctx context.Context, heading float64) bool
}

// SensorsHandler handles sensor ingestion requests.
type SensorsHandler struct {
	sink SensorSink
}

// NewSensorsHandler creates a new sensors handler.
func NewSensorsHandler(sink SensorSink) *SensorsHandler {
	return &SensorsHandler{sink: sink}
}

// HandlePostLocation handles POST /location requests.
func (h *SensorsHandler) HandlePostLocation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_location"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req locationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	if ok := h.sink.SubmitFix(r.Context(), geo.Coordinate{Lat: *req.Lat, Lon: *req.Lon}); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandlePostOrientation handles POST /orientation requests. The alpha value
// follows the deviceorientation convention and is mapped to a compass
// heading before entering the tracker.
func (h *SensorsHandler) HandlePostOrientation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_orientation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req orientationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	heading := geo.HeadingFromAlpha(*req.Alpha)
	if ok := h.sink.SubmitHeading(r.Context(), heading); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
