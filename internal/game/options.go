// Package game runs the dealer and the players.
package game

import (
	"context"
	"time"

	"github.com/okian/trio/internal/rng"
	"github.com/okian/trio/pkg/logger"
)

const (
	defaultTurnTimeout   = time.Minute
	defaultTurnWarning   = 5 * time.Second
	defaultTick          = time.Second
	defaultPointFreeze   = time.Second
	defaultPenaltyFreeze = 3 * time.Second
	defaultFreezeTick    = time.Second
)

// Option configures a Dealer or a Player. Each reads the settings it uses.
type Option func(*settings)

type settings struct {
	display Display
	logger  logger.Logger
	rng     rng.Generator

	turnTimeout time.Duration
	turnWarning time.Duration
	tick        time.Duration
	tableDelay  time.Duration
	hints       bool

	pointFreeze   time.Duration
	penaltyFreeze time.Duration
	freezeTick    time.Duration
	computerDelay time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{
		display:       nopDisplay{},
		rng:           rng.Crypto{},
		turnTimeout:   defaultTurnTimeout,
		turnWarning:   defaultTurnWarning,
		tick:          defaultTick,
		pointFreeze:   defaultPointFreeze,
		penaltyFreeze: defaultPenaltyFreeze,
		freezeTick:    defaultFreezeTick,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithDisplay sets the presentation collaborator.
func WithDisplay(d Display) Option {
	return func(s *settings) {
		if d != nil {
			s.display = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGenerator sets the random source for simulated key presses.
func WithGenerator(g rng.Generator) Option {
	return func(s *settings) {
		if g != nil {
			s.rng = g
		}
	}
}

// WithTurnTimeout sets the round length and the countdown warning threshold.
func WithTurnTimeout(timeout, warning time.Duration) Option {
	return func(s *settings) {
		if timeout > 0 {
			s.turnTimeout = timeout
		}
		if warning >= 0 {
			s.turnWarning = warning
		}
	}
}

// WithTick bounds how long the dealer sleeps between countdown refreshes.
func WithTick(tick time.Duration) Option {
	return func(s *settings) {
		if tick > 0 {
			s.tick = tick
		}
	}
}

// WithTableDelay pauses the dealer between card placements.
func WithTableDelay(delay time.Duration) Option {
	return func(s *settings) {
		if delay >= 0 {
			s.tableDelay = delay
		}
	}
}

// WithHints logs the matches on the table after every deal.
func WithHints(enabled bool) Option {
	return func(s *settings) {
		s.hints = enabled
	}
}

// WithFreezes sets how long a player is frozen after a point and a penalty.
func WithFreezes(point, penalty time.Duration) Option {
	return func(s *settings) {
		if point >= 0 {
			s.pointFreeze = point
		}
		if penalty >= 0 {
			s.penaltyFreeze = penalty
		}
	}
}

// WithFreezeTick sets how often a frozen player refreshes its freeze display.
func WithFreezeTick(tick time.Duration) Option {
	return func(s *settings) {
		if tick > 0 {
			s.freezeTick = tick
		}
	}
}

// WithComputerDelay pauses simulated players between key presses.
func WithComputerDelay(delay time.Duration) Option {
	return func(s *settings) {
		if delay >= 0 {
			s.computerDelay = delay
		}
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s settings) named(name string) logger.Logger {
	if s.logger != nil {
		return s.logger.Named(name)
	}
	return logger.Named(name)
}
