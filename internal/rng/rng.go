// Package rng provides the deterministic random source for the game engine.
// Everything stochastic draws from one seeded generator so a game is
// replayable from its seed plus the event log.
package rng

import (
	"fmt"
	"math/rand"
)

// Source wraps a seeded generator with the small surface the engine needs.
// It is owned by the game service and only touched under its lock.
type Source struct {
	seed int64
	rand *rand.Rand
}

// New creates a deterministic source from the given seed.
func New(seed int64) *Source {
	return &Source{
		seed: seed,
		rand: rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed this source was constructed with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Intn returns a uniform integer in [0, n). Panics if n <= 0, matching math/rand.
func (s *Source) Intn(n int) int {
	return s.rand.Intn(n)
}

// Roll returns a uniform integer in [lo, hi] inclusive.
func (s *Source) Roll(lo, hi int) int {
	if hi < lo {
		panic(fmt.Sprintf("rng: invalid roll range [%d, %d]", lo, hi))
	}
	return lo + s.rand.Intn(hi-lo+1)
}

// Float returns a uniform float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rand.Float64()
}

// Uniform returns a uniform float64 in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + s.rand.Float64()*(hi-lo)
}

// Choice returns a uniform pick from a non-empty slice.
func Choice[T any](s *Source, items []T) T {
	if len(items) == 0 {
		panic("rng: choice from empty slice")
	}
	return items[s.rand.Intn(len(items))]
}

// Sample returns k distinct elements drawn without replacement.
// Panics if k exceeds the slice length.
func Sample[T any](s *Source, items []T, k int) []T {
	if k > len(items) {
		panic(fmt.Sprintf("rng: sample %d from %d items", k, len(items)))
	}
	idx := s.rand.Perm(len(items))
	out := make([]T, k)
	for i := 0; i < k; i++ {
		out[i] = items[idx[i]]
	}
	return out
}

// Shuffle randomises the order of a slice in place.
func Shuffle[T any](s *Source, items []T) {
	s.rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
