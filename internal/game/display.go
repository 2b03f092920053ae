package game

import (
	"time"

	"github.com/okian/trio/internal/domain/board"
)

// Display is the presentation collaborator. The game calls into it and
// never reads from it.
type Display interface {
	board.Observer

	// SetCountdown shows the time left in the round; warn is set once the
	// remaining time drops under the warning threshold.
	SetCountdown(remaining time.Duration, warn bool)
	SetScore(player, score int)
	// SetFreeze shows how long player stays frozen; zero clears it.
	SetFreeze(player int, remaining time.Duration)
	AnnounceWinners(players []int)
}

type nopDisplay struct{}

func (nopDisplay) PlaceCard(int, int)               {}
func (nopDisplay) RemoveCard(int)                   {}
func (nopDisplay) PlaceToken(int, int)              {}
func (nopDisplay) RemoveToken(int, int)             {}
func (nopDisplay) RemoveAllTokens()                 {}
func (nopDisplay) SetCountdown(time.Duration, bool) {}
func (nopDisplay) SetScore(int, int)                {}
func (nopDisplay) SetFreeze(int, time.Duration)     {}
func (nopDisplay) AnnounceWinners([]int)            {}
