// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"pubcompass/internal/domain/model"
)

// FrameProvider exposes the latest derived display frame.
type FrameProvider interface {
	LastFrame() (model.Frame, bool)
}

// DisplayHandler serves the current display frame.
type DisplayHandler struct {
	frames FrameProvider
}

// NewDisplayHandler creates a new display handler.
func NewDisplayHandler(frames FrameProvider) *DisplayHandler {
	return &DisplayHandler{frames: frames}
}

// HandleGetDisplay handles GET /display requests. Until the first sensor
// event produces a frame there is nothing to show, which is reported as 503.
func (h *DisplayHandler) HandleGetDisplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	frame, ok := h.frames.LastFrame()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, "no_frame", ErrNoFrame)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}
