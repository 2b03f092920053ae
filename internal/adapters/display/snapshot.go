// Package display holds the game.Display implementations: a structured log
// of table events, an in-memory snapshot served over HTTP, and a fan-out.
package display

import (
	"slices"
	"sync"
	"time"

	"github.com/okian/trio/internal/game"
)

const empty = -1

var _ game.Display = (*Snapshot)(nil)

// State is a point-in-time copy of what a player would see.
type State struct {
	// Cards holds the card on every slot, or -1 for an empty slot.
	Cards     []int   `json:"cards"`
	Tokens    [][]int `json:"tokens"`
	Scores    []int   `json:"scores"`
	FreezesMS []int64 `json:"freezes_ms"`
	// CountdownMS is the round time left when last refreshed.
	CountdownMS int64 `json:"countdown_ms"`
	Warn        bool  `json:"warn"`
	Winners     []int `json:"winners,omitempty"`
	Finished    bool  `json:"finished"`
}

// Snapshot keeps the latest displayed state.
type Snapshot struct {
	mu        sync.RWMutex
	cards     []int
	tokens    [][]int
	scores    []int
	freezes   []time.Duration
	countdown time.Duration
	warn      bool
	winners   []int
	finished  bool
}

// NewSnapshot creates an empty snapshot for tableSize slots and players
// players.
func NewSnapshot(tableSize, players int) *Snapshot {
	s := &Snapshot{
		cards:   make([]int, tableSize),
		tokens:  make([][]int, players),
		scores:  make([]int, players),
		freezes: make([]time.Duration, players),
	}
	for i := range s.cards {
		s.cards[i] = empty
	}
	return s
}

func (s *Snapshot) slotOK(slot int) bool     { return slot >= 0 && slot < len(s.cards) }
func (s *Snapshot) playerOK(player int) bool { return player >= 0 && player < len(s.scores) }

// PlaceCard records card on slot.
func (s *Snapshot) PlaceCard(card, slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slotOK(slot) {
		s.cards[slot] = card
	}
}

// RemoveCard empties slot.
func (s *Snapshot) RemoveCard(slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slotOK(slot) {
		s.cards[slot] = empty
	}
}

// PlaceToken records player's token on slot.
func (s *Snapshot) PlaceToken(player, slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playerOK(player) && !slices.Contains(s.tokens[player], slot) {
		s.tokens[player] = append(s.tokens[player], slot)
	}
}

// RemoveToken drops player's token from slot.
func (s *Snapshot) RemoveToken(player, slot int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playerOK(player) {
		s.tokens[player] = slices.DeleteFunc(s.tokens[player], func(v int) bool { return v == slot })
	}
}

// RemoveAllTokens drops every token.
func (s *Snapshot) RemoveAllTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tokens {
		s.tokens[i] = nil
	}
}

// SetCountdown records the round time left.
func (s *Snapshot) SetCountdown(remaining time.Duration, warn bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countdown = remaining
	s.warn = warn
}

// SetScore records player's score.
func (s *Snapshot) SetScore(player, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playerOK(player) {
		s.scores[player] = score
	}
}

// SetFreeze records how long player stays frozen.
func (s *Snapshot) SetFreeze(player int, remaining time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.playerOK(player) {
		s.freezes[player] = remaining
	}
}

// AnnounceWinners records the end of the game.
func (s *Snapshot) AnnounceWinners(players []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.winners = slices.Clone(players)
	s.finished = true
}

// State returns a copy of the current state.
func (s *Snapshot) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := State{
		Cards:       slices.Clone(s.cards),
		Tokens:      make([][]int, len(s.tokens)),
		Scores:      slices.Clone(s.scores),
		FreezesMS:   make([]int64, len(s.freezes)),
		CountdownMS: s.countdown.Milliseconds(),
		Warn:        s.warn,
		Winners:     slices.Clone(s.winners),
		Finished:    s.finished,
	}
	for i, t := range s.tokens {
		st.Tokens[i] = append([]int{}, t...)
	}
	for i, f := range s.freezes {
		st.FreezesMS[i] = f.Milliseconds()
	}
	return st
}
