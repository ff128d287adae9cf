// Package random provides the random source shared by persona sampling,
// template rendering and delay computation.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source is the subset of *rand.Rand the engine needs. Implementations
// handed to concurrent components must be safe for concurrent use.
type Source interface {
	IntN(n int) int
	Float64() float64
}

type global struct{}

func (global) IntN(n int) int   { return rand.IntN(n) }
func (global) Float64() float64 { return rand.Float64() }

// Global returns a Source backed by the auto-seeded top-level functions of
// math/rand/v2. It is safe for concurrent use.
func Global() Source {
	return global{}
}

type locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a deterministic, mutex-guarded Source.
func NewSeeded(seed1, seed2 uint64) Source {
	return &locked{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (l *locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Pick returns a uniformly chosen element of items, or the zero value and
// false when items is empty.
func Pick[T any](src Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[src.IntN(len(items))], true
}

// Uniform returns a value in [lo, hi). It returns lo when hi <= lo.
func Uniform(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}
