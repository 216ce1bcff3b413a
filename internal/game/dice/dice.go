// Package dice provides the randomness abstraction used for capture checks,
// gacha pulls and drop tables.
package dice

// Source is the randomness provider for all rolls.
//
// Implementations must return values uniformly distributed in [0, n).
type Source interface {
	// Intn returns a value in [0, n). Precondition: n > 0.
	Intn(n int) int
}

// chanceResolution is the granularity of Chance: probabilities are resolved to
// one part in a million.
const chanceResolution = 1_000_000

// Percentile rolls a value in [0, 99].
func Percentile(src Source) int {
	return src.Intn(100)
}

// Between rolls a value in [lo, hi].
//
// Precondition: lo <= hi.
// Postcondition: Returns lo when lo == hi without consuming randomness.
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.Intn(hi-lo+1)
}

// Chance reports true with probability p. p <= 0 is never true and p >= 1 is
// always true; neither extreme consumes randomness.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Intn(chanceResolution) < int(p*chanceResolution)
}

// Pick returns a uniformly chosen index into a collection of length n.
//
// Precondition: n > 0.
func Pick(src Source, n int) int {
	return src.Intn(n)
}
