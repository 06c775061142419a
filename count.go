package wordsense

import "github.com/unixpickle/essentials"

// MostCommon produces the n terms with the most
// occurrences.
// If there are less than n total terms, then all terms
// are returned.
func (t *TermTable) MostCommon(n int) []string {
	entries := *t.entries.Load()
	counts := make([]int64, len(entries))
	terms := make([]string, len(entries))
	for i, e := range entries {
		counts[i] = e.count.Load()
		terms[i] = e.term
	}

	if len(terms) <= n {
		return terms
	}

	essentials.VoodooSort(counts, func(i, j int) bool {
		return counts[i] > counts[j]
	}, terms)
	return terms[:n]
}
