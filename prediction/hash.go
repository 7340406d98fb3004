// Package prediction holds the data structures shared by the lexer and
// parser simulators: persistent prediction contexts, semantic contexts,
// configuration sets, decision DFAs, and the conflict analysis that decides
// when a prediction is finished.
package prediction

// Murmur-style 32-bit mixing. All composite hashes in this package go
// through these three functions so that equal values hash equally across
// processes within one run.

const hashSeed = 0x2E1F

func hashInit() int {
	return hashSeed
}

func hashUpdate(h, value int) int {
	const (
		c1 = 0xCC9E2D51
		c2 = 0x1B873593
	)
	k := uint32(value)
	k *= c1
	k = (k << 15) | (k >> 17)
	k *= c2
	hu := uint32(h)
	hu ^= k
	hu = (hu << 13) | (hu >> 19)
	hu = hu*5 + 0xE6546B64
	return int(hu)
}

func hashFinish(h, count int) int {
	hu := uint32(h)
	hu ^= uint32(count * 4)
	hu ^= hu >> 16
	hu *= 0x85EBCA6B
	hu ^= hu >> 13
	hu *= 0xC2B2AE35
	hu ^= hu >> 16
	return int(hu)
}
