package random

import "math"

const (
	multiplier int64 = 0x5DEECE66D
	addend     int64 = 0xB
	seedMask   int64 = (1 << 48) - 1
)

// Legacy is the 48-bit linear congruential generator that world seeds were
// historically defined against. Identical seeds and call sequences always
// produce identical streams.
//
// Invariant: 0 <= seed < 2^48.
type Legacy struct {
	seed int64
}

// NewLegacy returns a Legacy stream initialised with seed.
//
// Postcondition: Two streams built from the same seed yield identical draws.
func NewLegacy(seed int64) *Legacy {
	l := &Legacy{}
	l.SetSeed(seed)
	return l
}

// SetSeed scrambles seed into the generator state.
func (l *Legacy) SetSeed(seed int64) {
	l.seed = (seed ^ multiplier) & seedMask
}

// SetLargeFeatureSeed reseeds the stream for the structure start rooted at
// chunk (chunkX, chunkZ) of a world with seed worldSeed.
func (l *Legacy) SetLargeFeatureSeed(worldSeed int64, chunkX, chunkZ int) {
	l.SetSeed(worldSeed)
	a := l.NextLong()
	b := l.NextLong()
	l.SetSeed(int64(chunkX)*a ^ int64(chunkZ)*b ^ worldSeed)
}

// SetDecorationSeed reseeds the stream for decorating the chunk whose minimum
// block corner is (blockX, blockZ).
//
// Postcondition: Returns the derived seed.
func (l *Legacy) SetDecorationSeed(worldSeed int64, blockX, blockZ int) int64 {
	l.SetSeed(worldSeed)
	a := l.NextLong() | 1
	b := l.NextLong() | 1
	s := (int64(blockX)*a + int64(blockZ)*b) ^ worldSeed
	l.SetSeed(s)
	return s
}

// SetFeatureSeed reseeds the stream for feature index within decoration step,
// given a seed returned by SetDecorationSeed.
func (l *Legacy) SetFeatureSeed(decorationSeed int64, index, step int) {
	l.SetSeed(decorationSeed + int64(index) + int64(10000*step))
}

func (l *Legacy) next(bits uint) int32 {
	l.seed = (l.seed*multiplier + addend) & seedMask
	return int32(l.seed >> (48 - bits))
}

// NextInt returns a uniformly distributed int in [0, bound).
//
// Precondition: 0 < bound <= math.MaxInt32. Panics with
// "random: NextInt called with bound <= 0" otherwise.
func (l *Legacy) NextInt(bound int) int {
	if bound <= 0 || bound > math.MaxInt32 {
		panic("random: NextInt called with bound <= 0")
	}
	b := int32(bound)
	if b&(-b) == b {
		return int((int64(b) * int64(l.next(31))) >> 31)
	}
	for {
		bits := l.next(31)
		val := bits % b
		// int32 overflow here marks a draw from the biased tail.
		if bits-val+(b-1) >= 0 {
			return int(val)
		}
	}
}

// NextFloat returns a float32 in [0, 1) with 24 bits of precision.
func (l *Legacy) NextFloat() float32 {
	return float32(l.next(24)) / float32(1<<24)
}

// NextBoolean returns the next single-bit draw.
func (l *Legacy) NextBoolean() bool {
	return l.next(1) != 0
}

// NextDouble returns a float64 in [0, 1) with 53 bits of precision, built
// from a 26-bit and a 27-bit draw.
func (l *Legacy) NextDouble() float64 {
	hi := int64(l.next(26))
	lo := int64(l.next(27))
	return float64((hi<<27)+lo) / float64(int64(1)<<53)
}

// NextLong returns a full 64-bit draw built from two 32-bit draws.
func (l *Legacy) NextLong() int64 {
	hi := int64(l.next(32))
	lo := int64(l.next(32))
	return (hi << 32) + lo
}
