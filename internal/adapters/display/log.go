package display

import (
	"context"
	"time"

	"github.com/okian/trio/internal/game"
	"github.com/okian/trio/pkg/logger"
)

var _ game.Display = (*Log)(nil)

// Log writes table events to a logger. Card and token changes go to debug
// so a normal run only shows scores, warnings and the result.
type Log struct {
	log  logger.Logger
	warn bool
}

// NewLog creates a Log display writing to l.
func NewLog(l logger.Logger) *Log {
	return &Log{log: l.Named("display")}
}

func (d *Log) PlaceCard(card, slot int) {
	d.log.Debug(context.Background(), "card placed", logger.Int("card", card), logger.Int("slot", slot))
}

func (d *Log) RemoveCard(slot int) {
	d.log.Debug(context.Background(), "card removed", logger.Int("slot", slot))
}

func (d *Log) PlaceToken(player, slot int) {
	d.log.Debug(context.Background(), "token placed", logger.Int("player", player), logger.Int("slot", slot))
}

func (d *Log) RemoveToken(player, slot int) {
	d.log.Debug(context.Background(), "token removed", logger.Int("player", player), logger.Int("slot", slot))
}

func (d *Log) RemoveAllTokens() {
	d.log.Debug(context.Background(), "tokens cleared")
}

// SetCountdown logs once when a round enters its warning period.
// Called from the dealer goroutine only.
func (d *Log) SetCountdown(remaining time.Duration, warn bool) {
	if warn && !d.warn {
		d.log.Info(context.Background(), "round ending soon", logger.Duration("remaining", remaining))
	}
	d.warn = warn
}

func (d *Log) SetScore(player, score int) {
	d.log.Info(context.Background(), "score", logger.Int("player", player), logger.Int("score", score))
}

func (d *Log) SetFreeze(player int, remaining time.Duration) {
	d.log.Debug(context.Background(), "freeze", logger.Int("player", player), logger.Duration("remaining", remaining))
}

func (d *Log) AnnounceWinners(players []int) {
	d.log.Info(context.Background(), "winners", logger.Ints("players", players))
}
