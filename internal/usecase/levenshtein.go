package usecase

import "unicode/utf8"

// editScratch holds the two dynamic-programming rows of a Levenshtein
// computation against a fixed query, so scoring a whole catalog allocates once.
type editScratch struct {
	prev []int
	curr []int
}

func newEditScratch(queryLen int) *editScratch {
	return &editScratch{
		prev: make([]int, queryLen+1),
		curr: make([]int, queryLen+1),
	}
}

// distance returns the case-sensitive edit distance between query and s,
// counting insertions, deletions and substitutions of code points at cost 1.
func (e *editScratch) distance(query []rune, s string) int {
	n := len(query)
	if n == 0 {
		return utf8.RuneCountInString(s)
	}
	if s == "" {
		return n
	}

	prev, curr := e.prev[:n+1], e.curr[:n+1]
	for i := range prev {
		prev[i] = i
	}

	j := 0
	for _, r := range s {
		j++
		curr[0] = j
		for i := 1; i <= n; i++ {
			cost := 0
			if query[i-1] != r {
				cost = 1
			}
			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// levenshtein calculates the edit distance between two strings
func levenshtein(a, b string) int {
	q := []rune(a)
	return newEditScratch(len(q)).distance(q, b)
}
