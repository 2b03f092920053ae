package game

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Verdict is the dealer's answer to a claim.
type Verdict int

const (
	// VerdictStale means the claim no longer held three tokens when the
	// dealer looked at it; nothing changed.
	VerdictStale Verdict = iota
	VerdictPoint
	VerdictPenalty
)

func (v Verdict) String() string {
	switch v {
	case VerdictPoint:
		return "point"
	case VerdictPenalty:
		return "penalty"
	default:
		return "stale"
	}
}

// Claim is one player's request to have its tokens checked.
type Claim struct {
	player    int
	submitted time.Time
	reply     chan Verdict
	once      sync.Once
}

// Player returns the id of the claiming player.
func (c *Claim) Player() int { return c.player }

// Age returns how long ago the claim was submitted.
func (c *Claim) Age() time.Duration { return time.Since(c.submitted) }

// Resolve answers the claim. Only the first call has an effect.
func (c *Claim) Resolve(v Verdict) {
	c.once.Do(func() {
		c.reply <- v
	})
}

// Slot is the single-entry rendezvous between the players and the dealer.
// A counting permit pool sized to the number of players gates access; the
// claim channel holds at most one claim waiting for the dealer.
type Slot struct {
	permits *semaphore.Weighted
	claims  chan *Claim
}

// NewSlot creates a rendezvous for players players.
func NewSlot(players int) *Slot {
	if players < 1 {
		players = 1
	}
	return &Slot{
		permits: semaphore.NewWeighted(int64(players)),
		claims:  make(chan *Claim, 1),
	}
}

// Submit publishes a claim for player and blocks until the dealer answers
// it or ctx is done.
func (s *Slot) Submit(ctx context.Context, player int) (Verdict, error) {
	if err := s.permits.Acquire(ctx, 1); err != nil {
		return VerdictStale, err
	}
	defer s.permits.Release(1)

	c := &Claim{
		player:    player,
		submitted: time.Now(),
		reply:     make(chan Verdict, 1),
	}
	select {
	case s.claims <- c:
	case <-ctx.Done():
		return VerdictStale, ctx.Err()
	}

	select {
	case v := <-c.reply:
		return v, nil
	case <-ctx.Done():
		return VerdictStale, ctx.Err()
	}
}

// Claims is the dealer's side of the rendezvous.
func (s *Slot) Claims() <-chan *Claim {
	return s.claims
}

// Drain answers any waiting claim as stale and returns how many it found.
func (s *Slot) Drain() int {
	n := 0
	for {
		select {
		case c := <-s.claims:
			c.Resolve(VerdictStale)
			n++
		default:
			return n
		}
	}
}
