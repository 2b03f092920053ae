// Package deck holds the dealer's undealt cards.
package deck

import (
	"errors"
	"sync"

	"github.com/okian/trio/internal/rng"
)

// ErrEndOfDeck is returned by Draw when the deck is empty.
var ErrEndOfDeck = errors.New("end of deck reached")

// Option applies a configuration option to the Deck.
type Option func(*Deck)

// WithGenerator sets the random source used by Draw.
func WithGenerator(g rng.Generator) Option {
	return func(d *Deck) {
		if g != nil {
			d.rng = g
		}
	}
}

// WithCards replaces the initial universe with cards, in order.
func WithCards(cards ...int) Option {
	return func(d *Deck) {
		d.cards = append([]int(nil), cards...)
	}
}

// Deck is a multiset of card ids not currently on the table.
type Deck struct {
	mu    sync.Mutex
	cards []int
	rng   rng.Generator
}

// New returns a deck holding cards 0..size-1.
func New(size int, opts ...Option) *Deck {
	d := &Deck{
		cards: make([]int, 0, size),
		rng:   rng.Crypto{},
	}
	for i := 0; i < size; i++ {
		d.cards = append(d.cards, i)
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Draw removes and returns a uniformly random card.
// If there are no more cards, ErrEndOfDeck is returned.
func (d *Deck) Draw() (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.cards) == 0 {
		return 0, ErrEndOfDeck
	}
	i := d.rng.Intn(len(d.cards))
	card := d.cards[i]
	d.cards = append(d.cards[:i], d.cards[i+1:]...)
	return card, nil
}

// Return puts cards back into the deck.
func (d *Deck) Return(cards ...int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = append(d.cards, cards...)
}

// Len returns the number of cards left.
func (d *Deck) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cards)
}

// Cards returns a copy of the remaining cards.
func (d *Deck) Cards() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.cards...)
}
