// Package rng provides the single random-number stream shared by every
// sampling component. Moves, trackers and geometry sampling all draw from
// one Source so results stay reproducible regardless of how energy
// evaluation is parallelized.
package rng

import "math/rand"

// Source wraps a seeded math/rand stream. It is not safe for concurrent
// use; by contract only the (single-threaded) sampling loop draws from it.
type Source struct {
	r *rand.Rand
}

func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

// Float64 returns a uniform number in [0,1).
func (s *Source) Float64() float64 { return s.r.Float64() }

// Half returns a uniform number in [-0.5,0.5).
func (s *Source) Half() float64 { return s.r.Float64() - 0.5 }

// Intn returns a uniform int in [0,n).
func (s *Source) Intn(n int) int { return s.r.Intn(n) }

// Bool returns true with probability 1/2.
func (s *Source) Bool() bool { return s.r.Int63()&1 == 0 }
