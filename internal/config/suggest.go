package config

// maxSuggestDistance is the largest edit distance still offered as a
// correction for an unknown field.
const maxSuggestDistance = 2

// suggestField returns the known field closest to name, or "" when none is
// close enough.
func suggestField(name string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, field := range Fields() {
		if d := editDistance(name, field); d < bestDist {
			best, bestDist = field, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance between a and b.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
