package grouping

import "slices"

// StringSimilarity scores two plate strings in [0, 1] after canonicalization.
// Identical strings score 1. Otherwise the score is 2*M/(len(a)+len(b)) where
// M counts the characters in the matching blocks found by taking the longest
// common substring and recursing into the unmatched left and right remainders.
//
// Ratcliff/Obershelp can pick different blocks depending on argument order
// when several longest substrings tie, so M is the larger of both directions.
func StringSimilarity(a, b string) float64 {
	return runeSimilarity([]rune(CanonicalPlate(a)), []rune(CanonicalPlate(b)))
}

func runeSimilarity(a, b []rune) float64 {
	if slices.Equal(a, b) {
		return 1
	}
	m := max(matchingChars(a, b), matchingChars(b, a))
	return 2 * float64(m) / float64(len(a)+len(b))
}

// matchingChars sums the sizes of the matching blocks of a and b. The slices
// are views into the caller's buffers; nothing is copied.
func matchingChars(a, b []rune) int {
	i, j, n := longestMatch(a, b)
	if n == 0 {
		return 0
	}
	return n + matchingChars(a[:i], b[:j]) + matchingChars(a[i+n:], b[j+n:])
}

// longestMatch finds the longest common substring of a and b, preferring the
// earliest start in a and then the earliest start in b.
func longestMatch(a, b []rune) (int, int, int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j+1] holds the length of the common suffix of a[:i] and b[:j+1].
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	bestI, bestJ, bestN := 0, 0, 0
	for i := range a {
		for j := range b {
			if a[i] != b[j] {
				cur[j+1] = 0
				continue
			}
			k := prev[j] + 1
			cur[j+1] = k
			if k > bestN {
				bestI, bestJ, bestN = i-k+1, j-k+1, k
			}
		}
		prev, cur = cur, prev
	}
	return bestI, bestJ, bestN
}
