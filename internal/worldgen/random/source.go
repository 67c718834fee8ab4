// Package random provides the deterministic random streams that drive
// structure generation.
//
// Every draw advances a single sequential stream, so the order of calls is
// part of the output: reordering any roll changes everything after it.
package random

// Source is the randomness provider for world generation.
//
// Implementations are NOT safe for concurrent use; each structure start owns
// its own stream.
type Source interface {
	// NextInt returns a uniformly distributed int in [0, bound).
	//
	// Precondition: 0 < bound <= math.MaxInt32.
	NextInt(bound int) int
	// NextFloat returns a uniformly distributed float32 in [0, 1).
	NextFloat() float32
	// NextBoolean returns true or false with equal probability.
	NextBoolean() bool
	// NextLong returns a uniformly distributed int64.
	NextLong() int64
	// NextDouble returns a uniformly distributed float64 in [0, 1).
	NextDouble() float64
}

// Between returns an int in [lo, hi] drawn from src.
//
// Precondition: lo <= hi.
func Between(src Source, lo, hi int) int {
	return src.NextInt(hi-lo+1) + lo
}
