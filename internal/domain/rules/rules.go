// Package rules defines when three cards form a match.
package rules

import "sort"

const (
	defaultFeatureCount = 4
	defaultFeatureSize  = 3
)

// Rule decides which card triples are matches.
type Rule interface {
	// IsMatch reports whether the three cards form a match.
	IsMatch(cards [3]int) bool

	// FindMatches returns up to max matches among cards; max <= 0 means all.
	FindMatches(cards []int, max int) [][3]int
}

// Option applies a configuration option to the SetRule.
type Option func(*SetRule)

// WithFeatureCount sets how many features every card has.
func WithFeatureCount(n int) Option {
	return func(r *SetRule) {
		if n > 0 {
			r.featureCount = n
		}
	}
}

// WithFeatureSize sets how many values every feature takes.
func WithFeatureSize(n int) Option {
	return func(r *SetRule) {
		if n > 1 {
			r.featureSize = n
		}
	}
}

// SetRule is the classic rule: for every feature the three cards share the
// same value or all take different values. Feature f of card c is digit f of
// c written in base featureSize.
type SetRule struct {
	featureCount int
	featureSize  int
}

// NewSetRule creates a SetRule, by default over 4 features of 3 values.
func NewSetRule(opts ...Option) *SetRule {
	r := &SetRule{
		featureCount: defaultFeatureCount,
		featureSize:  defaultFeatureSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Universe returns how many distinct cards the rule can encode.
func (r *SetRule) Universe() int {
	n := 1
	for i := 0; i < r.featureCount; i++ {
		n *= r.featureSize
	}
	return n
}

// Features decodes card into its feature values, least significant first.
func (r *SetRule) Features(card int) []int {
	out := make([]int, r.featureCount)
	for i := range out {
		out[i] = card % r.featureSize
		card /= r.featureSize
	}
	return out
}

// IsMatch reports whether the three cards form a set.
func (r *SetRule) IsMatch(cards [3]int) bool {
	if !distinct(cards) {
		return false
	}
	a, b, c := cards[0], cards[1], cards[2]
	for i := 0; i < r.featureCount; i++ {
		x, y, z := a%r.featureSize, b%r.featureSize, c%r.featureSize
		allSame := x == y && y == z
		allDifferent := x != y && y != z && x != z
		if !allSame && !allDifferent {
			return false
		}
		a, b, c = a/r.featureSize, b/r.featureSize, c/r.featureSize
	}
	return true
}

// FindMatches returns up to max sets among cards; max <= 0 means all.
func (r *SetRule) FindMatches(cards []int, max int) [][3]int {
	return findMatches(cards, max, r.IsMatch)
}

// Func adapts a predicate into a Rule.
type Func func(cards [3]int) bool

// IsMatch calls f.
func (f Func) IsMatch(cards [3]int) bool {
	return distinct(cards) && f(cards)
}

// FindMatches returns up to max matches among cards; max <= 0 means all.
func (f Func) FindMatches(cards []int, max int) [][3]int {
	return findMatches(cards, max, f.IsMatch)
}

// Explicit returns a Rule under which exactly the given triples match,
// regardless of order.
func Explicit(triples ...[3]int) Rule {
	valid := make(map[[3]int]struct{}, len(triples))
	for _, t := range triples {
		valid[sorted(t)] = struct{}{}
	}
	return Func(func(cards [3]int) bool {
		_, ok := valid[sorted(cards)]
		return ok
	})
}

func sorted(t [3]int) [3]int {
	s := t[:]
	sort.Ints(s)
	return [3]int{s[0], s[1], s[2]}
}

func distinct(c [3]int) bool {
	return c[0] != c[1] && c[1] != c[2] && c[0] != c[2]
}

func findMatches(cards []int, max int, match func([3]int) bool) [][3]int {
	var out [][3]int
	for i := 0; i < len(cards); i++ {
		for j := i + 1; j < len(cards); j++ {
			for k := j + 1; k < len(cards); k++ {
				t := [3]int{cards[i], cards[j], cards[k]}
				if !match(t) {
					continue
				}
				out = append(out, t)
				if max > 0 && len(out) >= max {
					return out
				}
			}
		}
	}
	return out
}
