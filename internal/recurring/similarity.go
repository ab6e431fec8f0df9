package recurring

// Similarity scores the textual closeness of two normalized merchant keys
// on a 0-100 scale using the Ratcliff/Obershelp ratio:
//
//	score = 200 * M / (len(a) + len(b))
//
// where M is the total number of characters covered by recursively taking
// the longest common substring and repeating on the unmatched pieces to
// either side. Unlike edit distance, this tolerates the partial substring
// drift typical of merchant strings ("amazon.com*ab" vs "amazon mktplace").
//
// The score is not symmetric in general: when common substrings tie in
// length, the tie-break favors the leftmost match in a, and on some
// inputs swapping the arguments changes which fragments recurse. The
// grouping engine always passes the representative key first, so scores
// are stable for a given group.
//
// Two empty keys are defined as identical (score 100); that keeps fully
// noise-stripped descriptions groupable with each other and guards the
// ratio against dividing by zero.
func Similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	m := matchedChars(a, b)
	return 200 * float64(m) / float64(len(a)+len(b))
}

// matchedChars returns the Ratcliff/Obershelp match count: the length of
// the longest common substring plus, recursively, the match counts of the
// fragments to its left and right.
func matchedChars(a, b string) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size + matchedChars(a[:ai], b[:bi]) + matchedChars(a[ai+size:], b[bi+size:])
}

// longestCommonSubstring finds the longest run of bytes common to a and b
// and returns its start offsets and length. On ties the leftmost match in
// a (then in b) wins; the choice is deterministic for a given argument
// order but is the source of the asymmetry noted on Similarity.
func longestCommonSubstring(a, b string) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}
	// prev[j] is the length of the common suffix of a[:i] and b[:j].
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
				if curr[j] > size {
					size = curr[j]
					ai = i - size
					bi = j - size
				}
			} else {
				curr[j] = 0
			}
		}
		prev, curr = curr, prev
	}
	return ai, bi, size
}
