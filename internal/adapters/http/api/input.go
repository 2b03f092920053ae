// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// InputDependencies is the input port of the game.
type InputDependencies interface {
	// KeyPressed queues a key press; false means it was dropped.
	KeyPressed(player, slot int) bool
	Players() int
	TableSize() int
}

// InputHandler handles key presses.
type InputHandler struct {
	deps InputDependencies
}

// NewInputHandler creates a new input handler.
func NewInputHandler(deps InputDependencies) *InputHandler {
	return &InputHandler{deps: deps}
}

// HandlePostInput handles POST /input requests.
func (h *InputHandler) HandlePostInput(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req inputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(h.deps.Players(), h.deps.TableSize()); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	if !h.deps.KeyPressed(*req.Player, *req.Slot) {
		writeError(w, http.StatusTooManyRequests, "dropped", ErrDropped)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
