// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Selector accepts sticky target selections.
type Selector interface {
	Select(ctx context.Context, id string) bool
}

// SelectHandler handles target selection requests.
type SelectHandler struct {
	selector Selector
}

// NewSelectHandler creates a new select handler.
func NewSelectHandler(selector Selector) *SelectHandler {
	return &SelectHandler{selector: selector}
}

// HandlePostSelect handles POST /select requests. An unknown id is accepted
// as-is: the tracker falls back to the nearest pub until the id resolves.
func (h *SelectHandler) HandlePostSelect(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_select"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	if ok := h.selector.Select(r.Context(), req.ID); !ok {
		writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%s: %w", op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
