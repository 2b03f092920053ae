package game

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/trio/internal/adapters/mq/queue"
	"github.com/okian/trio/internal/domain/board"
	"github.com/okian/trio/pkg/logger"
	"github.com/okian/trio/pkg/metrics"
)

const reasonOutOfRange = "out_of_range"

// Player is one participant. It applies its pending key presses to the
// board as token toggles and claims a match once it holds three tokens.
type Player struct {
	settings

	id    int
	human bool
	board *board.Board
	slot  *Slot
	log   logger.Logger

	actions   *queue.InMemoryQueue
	score     atomic.Int64
	penalties atomic.Int64

	startOnce sync.Once
	done      chan struct{}
}

// NewPlayer creates player id. Non-human players press keys by themselves
// once Run is called.
func NewPlayer(id int, human bool, b *board.Board, s *Slot, opts ...Option) *Player {
	st := newSettings(opts)
	return &Player{
		settings: st,
		id:       id,
		human:    human,
		board:    b,
		slot:     s,
		log:      st.named("player").With(logger.Int("player", id), logger.Bool("human", human)),
		actions:  queue.NewInMemoryQueue(queue.WithCapacity(board.MaxTokens)),
		done:     make(chan struct{}),
	}
}

// ID returns the player id.
func (p *Player) ID() int { return p.id }

// Human reports whether the player is driven by external input.
func (p *Player) Human() bool { return p.human }

// Score returns the number of validated matches.
func (p *Player) Score() int { return int(p.score.Load()) }

// Penalties returns the number of rejected claims.
func (p *Player) Penalties() int { return int(p.penalties.Load()) }

// Pending returns the number of key presses not yet applied.
func (p *Player) Pending() int { return p.actions.Len(context.Background()) }

// Done is closed once Run has returned.
func (p *Player) Done() <-chan struct{} { return p.done }

// KeyPressed queues a key press for slot. It returns false when the press
// was dropped: slot out of range, queue full, or the player is frozen.
func (p *Player) KeyPressed(slot int) bool {
	if slot < 0 || slot >= p.board.Size() {
		metrics.RecordInputDropped(reasonOutOfRange)
		return false
	}
	return p.actions.Enqueue(context.Background(), slot)
}

// Point awards one point. Called by the dealer.
func (p *Player) Point() {
	score := p.score.Add(1)
	metrics.RecordPoint()
	p.display.SetScore(p.id, int(score))
}

// Penalty records a rejected claim. Called by the dealer; the freeze itself
// runs on the player's goroutine.
func (p *Player) Penalty() {
	p.penalties.Add(1)
}

// DropActions forgets pending presses on slots.
func (p *Player) DropActions(slots ...int) int {
	return p.actions.Remove(slots...)
}

// ClearActions forgets every pending press.
func (p *Player) ClearActions() int {
	return p.actions.Clear()
}

// Run processes key presses until ctx is done. Simulated input, if any, is
// started here and joined before Run returns. Run may only be called once.
func (p *Player) Run(ctx context.Context) {
	started := false
	p.startOnce.Do(func() { started = true })
	if !started {
		return
	}
	defer close(p.done)

	var wg sync.WaitGroup
	if !p.human {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.simulate(ctx)
		}()
	}
	defer func() {
		_ = p.actions.Close()
		wg.Wait()
		p.log.Debug(ctx, "player stopped", logger.Int("score", p.Score()))
	}()

	p.log.Debug(ctx, "player started")
	for {
		slot, err := p.actions.Next(ctx)
		if err != nil {
			return
		}
		changed := p.toggle(slot)
		for {
			next, ok := p.actions.TryNext()
			if !ok {
				break
			}
			changed = p.toggle(next) || changed
		}

		if changed && p.board.TokenCount(p.id) == board.MaxTokens {
			if err := p.claim(ctx); err != nil {
				return
			}
		}
	}
}

func (p *Player) toggle(slot int) bool {
	changed, _ := p.board.ToggleToken(p.id, slot)
	if changed {
		metrics.RecordTokenToggle()
	}
	return changed
}

// claim submits the held tokens and waits out the resulting freeze. The
// queue stays paused throughout, so presses made meanwhile are dropped.
func (p *Player) claim(ctx context.Context) error {
	p.actions.Pause()
	defer p.actions.Resume()

	verdict, err := p.slot.Submit(ctx, p.id)
	if err != nil {
		return err
	}
	p.log.Debug(ctx, "claim answered", logger.String("verdict", verdict.String()))

	switch verdict {
	case VerdictPoint:
		return p.freeze(ctx, p.pointFreeze)
	case VerdictPenalty:
		return p.freeze(ctx, p.penaltyFreeze)
	default:
		return nil
	}
}

func (p *Player) freeze(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	until := time.Now().Add(d)
	for remaining := d; remaining > 0; remaining = time.Until(until) {
		p.display.SetFreeze(p.id, remaining)
		if err := sleep(ctx, min(remaining, p.freezeTick)); err != nil {
			return err
		}
	}
	p.display.SetFreeze(p.id, 0)
	return nil
}
