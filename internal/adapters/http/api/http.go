// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/okian/trio/internal/adapters/display"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	InputDependencies
	StateDependencies
}

// Server wires HTTP routes for the game API.
type Server struct {
	healthHandler *HealthHandler
	inputHandler  *InputHandler
	stateHandler  *StateHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler: NewHealthHandler(),
		inputHandler:  NewInputHandler(deps),
		stateHandler:  NewStateHandler(deps, statsProvider),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", instrument("healthz", s.healthHandler.HandleHealth))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", instrument("stats", s.stateHandler.HandleGetStats))
	mux.HandleFunc("/input", instrument("input", s.inputHandler.HandlePostInput))
	mux.HandleFunc("/state", instrument("state", s.stateHandler.HandleGetState))
}

// inputRequest is the body of POST /input.
type inputRequest struct {
	Player *int `json:"player"`
	Slot   *int `json:"slot"`
}

func (r inputRequest) validate(players, tableSize int) error {
	switch {
	case r.Player == nil:
		return fmt.Errorf("%w: missing player", ErrBadRequest)
	case r.Slot == nil:
		return fmt.Errorf("%w: missing slot", ErrBadRequest)
	case *r.Player < 0 || *r.Player >= players:
		return fmt.Errorf("%w: player %d", ErrUnknownPlayer, *r.Player)
	case *r.Slot < 0 || *r.Slot >= tableSize:
		return fmt.Errorf("%w: slot %d out of range", ErrBadRequest, *r.Slot)
	}
	return nil
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// stateResponse is the body of GET /state.
type stateResponse struct {
	GameID string `json:"game_id"`
	display.State
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
