// Package rng provides the random sources used for dealing and for
// simulated players.
package rng

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Generator provides a simple random number.
type Generator interface {
	// Intn returns a random number in [0, n).
	Intn(n int) int
}

// Crypto draws from crypto/rand.
type Crypto struct{}

// Intn returns a random number in [0, n).
func (Crypto) Intn(n int) int {
	b, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}
	return int(b.Int64())
}

// Seeded is a deterministic generator safe for concurrent use.
type Seeded struct {
	mu sync.Mutex
	r  *mrand.Rand
}

// NewSeeded returns a deterministic generator for seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewSource(seed))} //nolint:gosec // reproducible games and tests
}

// Intn returns a random number in [0, n).
func (s *Seeded) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// Fixed always returns the same index, clamped to n. Useful to deal a deck
// in order.
type Fixed int

// Intn returns the fixed value clamped to [0, n).
func (f Fixed) Intn(n int) int {
	if int(f) >= n {
		return n - 1
	}
	if f < 0 {
		return 0
	}
	return int(f)
}
