package auth

import "math/rand/v2"

// WordSource produces the random values used for filler, challenge and
// command words. It is satisfied by any [rand.Source].
type WordSource interface {
	Uint64() uint64
}

// NewWordSource returns a freshly seeded pseudo-random source.
func NewWordSource() WordSource {
	return rand.NewPCG(rand.Uint64(), rand.Uint64())
}

// NonZeroWord draws a 16-bit word from src, rejecting zero.
func NonZeroWord(src WordSource) uint16 {
	for {
		if w := uint16(src.Uint64()); w != 0 {
			return w
		}
	}
}

// NonZeroWords draws n non-zero words from src.
func NonZeroWords(src WordSource, n int) []uint16 {
	words := make([]uint16, n)
	for i := range words {
		words[i] = NonZeroWord(src)
	}
	return words
}
