// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"pubcompass/internal/domain/model"
)

// PubsHandler serves the candidate list, nearest first.
type PubsHandler struct {
	frames FrameProvider
}

// NewPubsHandler creates a new pubs handler.
func NewPubsHandler(frames FrameProvider) *PubsHandler {
	return &PubsHandler{frames: frames}
}

type pubsResponse struct {
	Pubs []model.Candidate `json:"pubs"`
}

// HandleGetPubs handles GET /pubs requests. An empty list is a valid answer
// before the first fetch or in a pub desert.
func (h *PubsHandler) HandleGetPubs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	resp := pubsResponse{Pubs: []model.Candidate{}}
	if frame, ok := h.frames.LastFrame(); ok && frame.Candidates != nil {
		resp.Pubs = frame.Candidates
	}
	writeJSON(w, http.StatusOK, resp)
}
