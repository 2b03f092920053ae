// Package service runs one game and implements the dependencies required
// by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/okian/trio/internal/adapters/display"
	"github.com/okian/trio/internal/domain/board"
	"github.com/okian/trio/internal/domain/deck"
	"github.com/okian/trio/internal/domain/rules"
	"github.com/okian/trio/internal/game"
	"github.com/okian/trio/internal/rng"
	"github.com/okian/trio/pkg/logger"
	"github.com/okian/trio/pkg/metrics"
)

const reasonUnknownPlayer = "unknown_player"

// Service owns a single game: the table, the players and the dealer.
type Service struct {
	mu sync.RWMutex

	// Configuration
	humanPlayers    int
	computerPlayers int
	tableSize       int
	featureCount    int
	featureSize     int
	deckSize        int
	turnTimeout     time.Duration
	turnWarning     time.Duration
	pointFreeze     time.Duration
	penaltyFreeze   time.Duration
	tableDelay      time.Duration
	tick            time.Duration
	computerDelay   time.Duration
	hints           bool
	generator       rng.Generator
	extraDisplay    game.Display

	// Game components
	gameID   string
	board    *board.Board
	deck     *deck.Deck
	snapshot *display.Snapshot
	players  []*game.Player
	dealer   *game.Dealer

	// State
	started   bool
	stopped   bool
	startedAt time.Time
	cancel    context.CancelFunc
	group     *errgroup.Group
	done      chan struct{}
	winners   []int

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPlayers sets how many human and computer players take part.
func WithPlayers(humans, computers int) Option {
	return func(s *Service) {
		if humans >= 0 && computers >= 0 {
			s.humanPlayers = humans
			s.computerPlayers = computers
		}
	}
}

// WithTableSize sets the number of slots on the table.
func WithTableSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.tableSize = size
		}
	}
}

// WithFeatures sets the card encoding: count features of size values each.
func WithFeatures(count, size int) Option {
	return func(s *Service) {
		if count > 0 && size > 1 {
			s.featureCount = count
			s.featureSize = size
		}
	}
}

// WithDeckSize limits the deck to cards 0..size-1; 0 uses every card.
func WithDeckSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.deckSize = size
		}
	}
}

// WithTurnTimeout sets the round length and the countdown warning threshold.
func WithTurnTimeout(timeout, warning time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 && warning >= 0 {
			s.turnTimeout = timeout
			s.turnWarning = warning
		}
	}
}

// WithFreezes sets how long a player is frozen after a point and a penalty.
func WithFreezes(point, penalty time.Duration) Option {
	return func(s *Service) {
		if point >= 0 && penalty >= 0 {
			s.pointFreeze = point
			s.penaltyFreeze = penalty
		}
	}
}

// WithTableDelay pauses the dealer between card placements.
func WithTableDelay(delay time.Duration) Option {
	return func(s *Service) {
		if delay >= 0 {
			s.tableDelay = delay
		}
	}
}

// WithTick sets how often the countdown is refreshed.
func WithTick(tick time.Duration) Option {
	return func(s *Service) {
		if tick > 0 {
			s.tick = tick
		}
	}
}

// WithComputerDelay pauses computer players between key presses.
func WithComputerDelay(delay time.Duration) Option {
	return func(s *Service) {
		if delay >= 0 {
			s.computerDelay = delay
		}
	}
}

// WithHints logs the matches on the table after every deal.
func WithHints(enabled bool) Option {
	return func(s *Service) {
		s.hints = enabled
	}
}

// WithGenerator sets the random source for dealing and computer players.
func WithGenerator(g rng.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithDisplay adds a display next to the built-in log and snapshot.
func WithDisplay(d game.Display) Option {
	return func(s *Service) {
		s.extraDisplay = d
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		computerPlayers: 2,
		tableSize:       12,
		featureCount:    4,
		featureSize:     3,
		turnTimeout:     time.Minute,
		turnWarning:     5 * time.Second,
		pointFreeze:     time.Second,
		penaltyFreeze:   3 * time.Second,
		tick:            time.Second,
		generator:       rng.Crypto{},
		done:            make(chan struct{}),
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) seats() int {
	return s.humanPlayers + s.computerPlayers
}

func (s *Service) validate(universe int) error {
	switch {
	case s.seats() < 1:
		return fmt.Errorf("%w: at least one player is required", ErrInvalidOption)
	case s.tableSize < 3:
		return fmt.Errorf("%w: table size %d is below 3", ErrInvalidOption, s.tableSize)
	case s.deckSize > universe:
		return fmt.Errorf("%w: deck size %d exceeds %d cards", ErrInvalidOption, s.deckSize, universe)
	}
	return nil
}

// Start deals the table and runs the game in the background until it is
// exhausted, Stop is called, or ctx is done.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	rule := rules.NewSetRule(
		rules.WithFeatureCount(s.featureCount),
		rules.WithFeatureSize(s.featureSize),
	)
	if err := s.validate(rule.Universe()); err != nil {
		return err
	}
	deckSize := s.deckSize
	if deckSize == 0 {
		deckSize = rule.Universe()
	}

	s.gameID = uuid.NewString()
	log := s.logger.With(logger.String("game_id", s.gameID))
	log.Info(ctx, "starting game...")

	s.snapshot = display.NewSnapshot(s.tableSize, s.seats())
	displays := display.Multi{s.snapshot, display.NewLog(log)}
	if s.extraDisplay != nil {
		displays = append(displays, s.extraDisplay)
	}

	s.board = board.New(s.tableSize, s.seats(), board.WithObserver(displays))
	s.deck = deck.New(deckSize, deck.WithGenerator(s.generator))
	slot := game.NewSlot(s.seats())

	opts := []game.Option{
		game.WithDisplay(displays),
		game.WithLogger(log),
		game.WithGenerator(s.generator),
		game.WithTurnTimeout(s.turnTimeout, s.turnWarning),
		game.WithTick(s.tick),
		game.WithTableDelay(s.tableDelay),
		game.WithHints(s.hints),
		game.WithFreezes(s.pointFreeze, s.penaltyFreeze),
		game.WithComputerDelay(s.computerDelay),
	}
	s.players = make([]*game.Player, 0, s.seats())
	for id := 0; id < s.humanPlayers+s.computerPlayers; id++ {
		s.players = append(s.players, game.NewPlayer(id, id < s.humanPlayers, s.board, slot, opts...))
	}
	s.dealer = game.NewDealer(s.board, s.deck, rule, slot, s.players, opts...)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.group, runCtx = errgroup.WithContext(runCtx)
	s.group.Go(func() error {
		winners := s.dealer.Run(runCtx)
		s.mu.Lock()
		s.winners = winners
		s.mu.Unlock()
		close(s.done)
		return nil
	})
	s.group.Go(func() error {
		s.watchBoard(runCtx, log)
		return nil
	})

	s.started = true
	s.startedAt = time.Now()
	log.Info(ctx, "game started",
		logger.Int("humans", s.humanPlayers),
		logger.Int("computers", s.computerPlayers),
		logger.Int("tableSize", s.tableSize),
		logger.Int("deckSize", deckSize),
	)

	return nil
}

// watchBoard checks the board invariants once per tick until the game ends.
func (s *Service) watchBoard(ctx context.Context, log logger.Logger) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.board.Validate(); err != nil {
				log.Error(ctx, "board invariant violated", logger.Error(err))
				metrics.RecordErrorByComponent("board", "invariant")
			}
		}
	}
}

// Stop ends the game and waits for every goroutine to return.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.stopped = true
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel, group := s.cancel, s.group
	s.mu.Unlock()

	s.logger.Info(context.Background(), "stopping game...")
	cancel()
	_ = group.Wait()

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
	s.logger.Info(context.Background(), "game stopped")
}

// Wait blocks until the game has finished and returns the winners.
func (s *Service) Wait(ctx context.Context) ([]int, error) {
	select {
	case <-s.done:
		return s.Winners(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Winners returns the winners once the game has finished.
func (s *Service) Winners() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.winners
}

// KeyPressed is the input port: player pressed the key for slot.
func (s *Service) KeyPressed(player, slot int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started || player < 0 || player >= len(s.players) {
		metrics.RecordInputDropped(reasonUnknownPlayer)
		return false
	}
	return s.players[player].KeyPressed(slot)
}

// Players returns the number of seats.
func (s *Service) Players() int {
	return s.seats()
}

// TableSize returns the number of slots on the table.
func (s *Service) TableSize() int {
	return s.tableSize
}

// GameID returns the id of the running game, or "" before Start.
func (s *Service) GameID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameID
}

// State returns what the players currently see.
func (s *Service) State() display.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return display.State{}
	}
	return s.snapshot.State()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":   s.started,
		"gameId":    s.gameID,
		"humans":    s.humanPlayers,
		"computers": s.computerPlayers,
		"tableSize": s.tableSize,
	}

	if s.dealer != nil {
		players := make([]map[string]any, 0, len(s.players))
		for _, p := range s.players {
			players = append(players, map[string]any{
				"id":        p.ID(),
				"human":     p.Human(),
				"score":     p.Score(),
				"penalties": p.Penalties(),
				"pending":   p.Pending(),
			})
		}
		stats["players"] = players
		stats["rounds"] = s.dealer.Rounds()
		stats["remainingMs"] = s.dealer.Remaining().Milliseconds()
		stats["cardsOnTable"] = s.board.CountCards()
		stats["deckSize"] = s.deck.Len()
		stats["finished"] = s.dealer.Finished()
		stats["winners"] = s.winners
		stats["uptimeMs"] = time.Since(s.startedAt).Milliseconds()

		// Update metrics
		metrics.UpdateCardsOnTable(s.board.CountCards())
		metrics.UpdateDeckSize(s.deck.Len())
	}

	return stats
}
