// Package board holds the shared table: which card lies on which slot and
// which slots each player has marked with a token.
//
// Every method takes the same mutex, so composite mutations (a card plus
// the tokens on its slot) are never observed half done.
package board

import (
	"fmt"
	"slices"
	"sync"
)

// MaxTokens is the size of a player's token set.
const MaxTokens = 3

const noCard = -1

// Observer is told about every card and token change, in mutation order.
type Observer interface {
	PlaceCard(card, slot int)
	RemoveCard(slot int)
	PlaceToken(player, slot int)
	RemoveToken(player, slot int)
	RemoveAllTokens()
}

type nopObserver struct{}

func (nopObserver) PlaceCard(int, int)   {}
func (nopObserver) RemoveCard(int)       {}
func (nopObserver) PlaceToken(int, int)  {}
func (nopObserver) RemoveToken(int, int) {}
func (nopObserver) RemoveAllTokens()     {}

// Option applies a configuration option to the Board.
type Option func(*Board)

// WithObserver reports changes to o. Calls are made with the board lock held.
func WithObserver(o Observer) Option {
	return func(b *Board) {
		if o != nil {
			b.observer = o
		}
	}
}

// Board is the shared table.
type Board struct {
	mu         sync.Mutex
	slotToCard []int
	cardToSlot map[int]int
	tokens     [][]int
	observer   Observer
}

// New creates an empty board with tableSize slots for players players.
func New(tableSize, players int, opts ...Option) *Board {
	b := &Board{
		slotToCard: make([]int, tableSize),
		cardToSlot: make(map[int]int, tableSize),
		tokens:     make([][]int, players),
		observer:   nopObserver{},
	}
	for i := range b.slotToCard {
		b.slotToCard[i] = noCard
	}
	for i := range b.tokens {
		b.tokens[i] = make([]int, 0, MaxTokens)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Size returns the number of slots.
func (b *Board) Size() int {
	return len(b.slotToCard)
}

// Players returns the number of token sets.
func (b *Board) Players() int {
	return len(b.tokens)
}

// PlaceCard puts card on an empty slot.
func (b *Board) PlaceCard(card, slot int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.inRange(slot) {
		return fmt.Errorf("place card %d: %w: %d", card, ErrSlotOutOfRange, slot)
	}
	if b.slotToCard[slot] != noCard {
		return fmt.Errorf("place card %d: %w: %d", card, ErrSlotOccupied, slot)
	}
	if at, ok := b.cardToSlot[card]; ok {
		return fmt.Errorf("place card %d: %w at slot %d", card, ErrCardOnBoard, at)
	}
	b.slotToCard[slot] = card
	b.cardToSlot[card] = slot
	b.observer.PlaceCard(card, slot)
	return nil
}

// RemoveCard clears slot and returns the card it held. Tokens on the slot
// are left alone; use RemoveMatch or ClearTable to drop both at once.
func (b *Board) RemoveCard(slot int) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeCardLocked(slot)
}

func (b *Board) removeCardLocked(slot int) (int, bool) {
	if !b.inRange(slot) || b.slotToCard[slot] == noCard {
		return 0, false
	}
	card := b.slotToCard[slot]
	b.slotToCard[slot] = noCard
	delete(b.cardToSlot, card)
	b.observer.RemoveCard(slot)
	return card, true
}

// PlaceToken marks slot for player. It fails when the player already holds
// MaxTokens tokens, already marked the slot, or the slot has no card.
func (b *Board) PlaceToken(player, slot int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.placeTokenLocked(player, slot)
}

func (b *Board) placeTokenLocked(player, slot int) bool {
	if !b.validPlayer(player) || !b.inRange(slot) || b.slotToCard[slot] == noCard {
		return false
	}
	set := b.tokens[player]
	if len(set) >= MaxTokens || slices.Contains(set, slot) {
		return false
	}
	b.tokens[player] = append(set, slot)
	b.observer.PlaceToken(player, slot)
	return true
}

// RemoveToken unmarks slot for player and reports whether a token was there.
func (b *Board) RemoveToken(player, slot int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.removeTokenLocked(player, slot)
}

func (b *Board) removeTokenLocked(player, slot int) bool {
	if !b.validPlayer(player) {
		return false
	}
	i := slices.Index(b.tokens[player], slot)
	if i < 0 {
		return false
	}
	b.tokens[player] = slices.Delete(b.tokens[player], i, i+1)
	b.observer.RemoveToken(player, slot)
	return true
}

// ToggleToken removes the player's token from slot if present, otherwise
// places one if the player has room. It returns whether anything changed
// and the player's token count afterwards.
func (b *Board) ToggleToken(player, slot int) (changed bool, count int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.validPlayer(player) {
		return false, 0
	}
	changed = b.removeTokenLocked(player, slot) || b.placeTokenLocked(player, slot)
	return changed, len(b.tokens[player])
}

// Tokens returns a copy of the player's tokens in placement order.
func (b *Board) Tokens(player int) []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.validPlayer(player) {
		return nil
	}
	return slices.Clone(b.tokens[player])
}

// TokenCount returns how many tokens the player holds.
func (b *Board) TokenCount(player int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.validPlayer(player) {
		return 0
	}
	return len(b.tokens[player])
}

// Candidate returns the player's full token set, earliest first, with the
// cards under it. ok is false unless the player holds exactly MaxTokens
// tokens.
func (b *Board) Candidate(player int) (slots, cards [3]int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.validPlayer(player) || len(b.tokens[player]) != MaxTokens {
		return slots, cards, false
	}
	for i, slot := range b.tokens[player] {
		slots[i] = slot
		cards[i] = b.slotToCard[slot]
	}
	return slots, cards, true
}

// RemoveMatch removes the cards on slots and every player's token on those
// slots as one unit. It returns the removed cards and, per affected player,
// the slots that lost that player's token.
func (b *Board) RemoveMatch(slots [3]int) (cards []int, affected map[int][]int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	affected = make(map[int][]int)
	for _, slot := range slots {
		for player := range b.tokens {
			if b.removeTokenLocked(player, slot) {
				affected[player] = append(affected[player], slot)
			}
		}
		if card, ok := b.removeCardLocked(slot); ok {
			cards = append(cards, card)
		}
	}
	return cards, affected
}

// ClearTable removes every card and every token and returns the cards.
func (b *Board) ClearTable() []int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearTokensLocked()
	cards := make([]int, 0, len(b.cardToSlot))
	for slot := range b.slotToCard {
		if card, ok := b.removeCardLocked(slot); ok {
			cards = append(cards, card)
		}
	}
	return cards
}

// ClearAllTokens removes every player's tokens.
func (b *Board) ClearAllTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clearTokensLocked()
}

func (b *Board) clearTokensLocked() {
	for i := range b.tokens {
		b.tokens[i] = b.tokens[i][:0]
	}
	b.observer.RemoveAllTokens()
}

// CountCards returns the number of occupied slots.
func (b *Board) CountCards() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.cardToSlot)
}

// CardAt returns the card on slot, if any.
func (b *Board) CardAt(slot int) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.inRange(slot) || b.slotToCard[slot] == noCard {
		return 0, false
	}
	return b.slotToCard[slot], true
}

// SlotOf returns the slot holding card, if it is on the board.
func (b *Board) SlotOf(card int) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	slot, ok := b.cardToSlot[card]
	return slot, ok
}

// Cards returns the cards on the board in slot order.
func (b *Board) Cards() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]int, 0, len(b.cardToSlot))
	for _, card := range b.slotToCard {
		if card != noCard {
			out = append(out, card)
		}
	}
	return out
}

// EmptySlots returns the unoccupied slots in ascending order.
func (b *Board) EmptySlots() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []int
	for slot, card := range b.slotToCard {
		if card == noCard {
			out = append(out, slot)
		}
	}
	return out
}

// Validate checks the board invariants and reports the first violation.
func (b *Board) Validate() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.cardToSlot) > len(b.slotToCard) {
		return fmt.Errorf("%w: %d cards on %d slots", ErrInvariant, len(b.cardToSlot), len(b.slotToCard))
	}
	seen := make(map[int]bool, len(b.cardToSlot))
	for slot, card := range b.slotToCard {
		if card == noCard {
			continue
		}
		if seen[card] {
			return fmt.Errorf("%w: card %d on two slots", ErrInvariant, card)
		}
		seen[card] = true
		if b.cardToSlot[card] != slot {
			return fmt.Errorf("%w: card %d reverse lookup %d != %d", ErrInvariant, card, b.cardToSlot[card], slot)
		}
	}
	for card := range b.cardToSlot {
		if !seen[card] {
			return fmt.Errorf("%w: card %d indexed but not on a slot", ErrInvariant, card)
		}
	}
	for player, set := range b.tokens {
		if len(set) > MaxTokens {
			return fmt.Errorf("%w: player %d holds %d tokens", ErrInvariant, player, len(set))
		}
		for i, slot := range set {
			if slices.Contains(set[i+1:], slot) {
				return fmt.Errorf("%w: player %d marked slot %d twice", ErrInvariant, player, slot)
			}
			if !b.inRange(slot) || b.slotToCard[slot] == noCard {
				return fmt.Errorf("%w: player %d token on empty slot %d", ErrInvariant, player, slot)
			}
		}
	}
	return nil
}

func (b *Board) inRange(slot int) bool {
	return slot >= 0 && slot < len(b.slotToCard)
}

func (b *Board) validPlayer(player int) bool {
	return player >= 0 && player < len(b.tokens)
}
