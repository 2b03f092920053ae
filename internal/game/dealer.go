package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/trio/internal/domain/board"
	"github.com/okian/trio/internal/domain/deck"
	"github.com/okian/trio/internal/domain/rules"
	"github.com/okian/trio/pkg/logger"
	"github.com/okian/trio/pkg/metrics"
)

// Reasons a game finishes.
const (
	FinishExhausted  = "exhausted"
	FinishTerminated = "terminated"
)

// Dealer owns the round lifecycle: dealing, timing, adjudicating claims
// and reshuffling. It is the only mover of cards between deck and board.
type Dealer struct {
	settings

	board   *board.Board
	deck    *deck.Deck
	rule    rules.Rule
	slot    *Slot
	players []*Player
	log     logger.Logger

	mu       sync.Mutex
	deadline time.Time
	finish   string

	rounds atomic.Int64
}

// NewDealer creates a dealer over players. Player ids must match their
// index in players.
func NewDealer(b *board.Board, d *deck.Deck, rule rules.Rule, slot *Slot, players []*Player, opts ...Option) *Dealer {
	st := newSettings(opts)
	return &Dealer{
		settings: st,
		board:    b,
		deck:     d,
		rule:     rule,
		slot:     slot,
		players:  players,
		log:      st.named("dealer"),
	}
}

// Run plays until no match is left or ctx is done, then stops the players
// and returns the winners.
func (d *Dealer) Run(ctx context.Context) []int {
	d.log.Info(ctx, "dealer started",
		logger.Int("players", len(d.players)),
		logger.Int("deck", d.deck.Len()),
		logger.Duration("turn_timeout", d.turnTimeout))
	metrics.UpdatePlayerCount(len(d.players))

	playersCtx, stopPlayers := context.WithCancel(ctx)
	defer stopPlayers()
	for _, p := range d.players {
		go p.Run(playersCtx)
	}

	finish := FinishTerminated
	for ctx.Err() == nil {
		if d.exhausted() {
			finish = FinishExhausted
			break
		}
		if err := d.placeCards(ctx); err != nil {
			break
		}
		d.rounds.Add(1)
		metrics.RecordRoundStarted()
		d.resetCountdown()

		if d.timerLoop(ctx) {
			finish = FinishExhausted
			break
		}
		if ctx.Err() != nil {
			break
		}
		d.removeAllCardsFromTable(ctx)
	}

	stopPlayers()
	for i := len(d.players) - 1; i >= 0; i-- {
		<-d.players[i].Done()
	}
	d.slot.Drain()

	d.mu.Lock()
	d.finish = finish
	d.mu.Unlock()
	metrics.RecordGameFinished(finish)

	winners := d.Winners()
	d.display.AnnounceWinners(winners)
	d.log.Info(ctx, "game finished",
		logger.String("reason", finish),
		logger.Ints("winners", winners),
		logger.Int("rounds", d.Rounds()))
	return winners
}

// Winners returns every player whose score equals the highest score.
func (d *Dealer) Winners() []int {
	best := 0
	for _, p := range d.players {
		best = max(best, p.Score())
	}
	winners := make([]int, 0, len(d.players))
	for _, p := range d.players {
		if p.Score() == best {
			winners = append(winners, p.ID())
		}
	}
	return winners
}

// Rounds returns how many rounds have been dealt.
func (d *Dealer) Rounds() int {
	return int(d.rounds.Load())
}

// Remaining returns the time left in the current round.
func (d *Dealer) Remaining() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deadline.IsZero() {
		return 0
	}
	return max(time.Until(d.deadline), 0)
}

// Finished returns why the game ended, or "" while it is running.
func (d *Dealer) Finished() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.finish
}

// timerLoop waits for claims until the deadline passes or ctx is done. It
// returns true once a match leaves no match in play.
func (d *Dealer) timerLoop(ctx context.Context) bool {
	timer := time.NewTimer(d.tick)
	defer timer.Stop()

	for {
		remaining := d.Remaining()
		if remaining <= 0 {
			return false
		}
		d.display.SetCountdown(remaining, remaining <= d.turnWarning)
		timer.Reset(min(remaining, d.tick))

		select {
		case <-ctx.Done():
			return false
		case c := <-d.slot.Claims():
			if d.adjudicate(ctx, c) {
				return true
			}
		case <-timer.C:
		}
	}
}

// adjudicate answers one claim. It returns true when the game is exhausted
// after a match.
func (d *Dealer) adjudicate(ctx context.Context, c *Claim) bool {
	metrics.RecordClaimLatency(float64(c.Age().Milliseconds()))
	id := c.Player()
	if id < 0 || id >= len(d.players) {
		d.log.Error(ctx, "claim from unknown player", logger.Int("player", id))
		metrics.RecordErrorByComponent("dealer", "unknown_player")
		c.Resolve(VerdictStale)
		return false
	}
	p := d.players[id]

	slots, cards, ok := d.board.Candidate(id)
	if !ok {
		d.log.Debug(ctx, "stale claim", logger.Int("player", id))
		metrics.RecordClaim(VerdictStale.String())
		c.Resolve(VerdictStale)
		return false
	}

	if !d.rule.IsMatch(cards) {
		d.log.Debug(ctx, "claim rejected", logger.Int("player", id), logger.Ints("cards", cards[:]))
		p.Penalty()
		metrics.RecordClaim(VerdictPenalty.String())
		c.Resolve(VerdictPenalty)
		return false
	}

	removed, affected := d.board.RemoveMatch(slots)
	for owner, lost := range affected {
		d.players[owner].DropActions(lost...)
	}
	p.Point()
	metrics.RecordClaim(VerdictPoint.String())
	c.Resolve(VerdictPoint)
	d.log.Debug(ctx, "claim accepted",
		logger.Int("player", id),
		logger.Ints("cards", removed),
		logger.Int("score", p.Score()))

	if err := d.placeCards(ctx); err != nil {
		return false
	}
	d.resetCountdown()
	return d.exhausted()
}

// placeCards fills every empty slot it can from the deck.
func (d *Dealer) placeCards(ctx context.Context) error {
	defer d.updateGauges()

	for _, slot := range d.board.EmptySlots() {
		card, err := d.deck.Draw()
		if err != nil {
			break
		}
		if err := d.board.PlaceCard(card, slot); err != nil {
			d.log.Error(ctx, "failed to place card", logger.Int("card", card), logger.Error(err))
			metrics.RecordErrorByComponent("board", "place_card")
			d.deck.Return(card)
			continue
		}
		metrics.RecordCardDealt()
		if err := sleep(ctx, d.tableDelay); err != nil {
			return err
		}
	}

	if d.hints {
		for _, m := range d.rule.FindMatches(d.board.Cards(), 0) {
			d.log.Info(ctx, "hint", logger.Ints("cards", m[:]))
		}
	}
	return nil
}

// removeAllCardsFromTable ends a round: cards go back to the deck and every
// token, pending press and waiting claim is discarded.
func (d *Dealer) removeAllCardsFromTable(ctx context.Context) {
	cards := d.board.ClearTable()
	d.deck.Return(cards...)
	for _, p := range d.players {
		p.ClearActions()
	}
	stale := d.slot.Drain()
	metrics.RecordReshuffle()
	d.updateGauges()
	d.log.Debug(ctx, "table reshuffled",
		logger.Int("returned", len(cards)),
		logger.Int("drained", stale))
}

func (d *Dealer) resetCountdown() {
	d.mu.Lock()
	d.deadline = time.Now().Add(d.turnTimeout)
	d.mu.Unlock()
	d.display.SetCountdown(d.turnTimeout, false)
}

// exhausted reports whether no match is left among the cards in play.
func (d *Dealer) exhausted() bool {
	inPlay := append(d.board.Cards(), d.deck.Cards()...)
	return len(d.rule.FindMatches(inPlay, 1)) == 0
}

func (d *Dealer) updateGauges() {
	metrics.UpdateCardsOnTable(d.board.CountCards())
	metrics.UpdateDeckSize(d.deck.Len())
}
