package api

import (
	"net/http"

	"github.com/okian/trio/internal/adapters/display"
)

// StateDependencies exposes what the players currently see.
type StateDependencies interface {
	GameID() string
	State() display.State
}

// StatsProvider reports operational counters for the running game.
type StatsProvider interface {
	GetStats() map[string]any
}

// StateHandler serves the table view and the operator stats.
type StateHandler struct {
	deps  StateDependencies
	stats StatsProvider
}

// NewStateHandler creates a new state handler. stats may be nil, in which
// case /stats answers 404.
func NewStateHandler(deps StateDependencies, stats StatsProvider) *StateHandler {
	return &StateHandler{deps: deps, stats: stats}
}

// HandleGetState handles GET /state requests.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, stateResponse{
		GameID: h.deps.GameID(),
		State:  h.deps.State(),
	})
}

// HandleGetStats handles GET /stats requests.
func (h *StateHandler) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || h.stats == nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
