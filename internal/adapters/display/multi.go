package display

import (
	"time"

	"github.com/okian/trio/internal/game"
)

// Multi fans every call out to each display in order.
type Multi []game.Display

var _ game.Display = Multi(nil)

func (m Multi) PlaceCard(card, slot int) {
	for _, d := range m {
		d.PlaceCard(card, slot)
	}
}

func (m Multi) RemoveCard(slot int) {
	for _, d := range m {
		d.RemoveCard(slot)
	}
}

func (m Multi) PlaceToken(player, slot int) {
	for _, d := range m {
		d.PlaceToken(player, slot)
	}
}

func (m Multi) RemoveToken(player, slot int) {
	for _, d := range m {
		d.RemoveToken(player, slot)
	}
}

func (m Multi) RemoveAllTokens() {
	for _, d := range m {
		d.RemoveAllTokens()
	}
}

func (m Multi) SetCountdown(remaining time.Duration, warn bool) {
	for _, d := range m {
		d.SetCountdown(remaining, warn)
	}
}

func (m Multi) SetScore(player, score int) {
	for _, d := range m {
		d.SetScore(player, score)
	}
}

func (m Multi) SetFreeze(player int, remaining time.Duration) {
	for _, d := range m {
		d.SetFreeze(player, remaining)
	}
}

func (m Multi) AnnounceWinners(players []int) {
	for _, d := range m {
		d.AnnounceWinners(players)
	}
}
