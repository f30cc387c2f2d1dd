package config

import "strings"

// suggest returns the recognised option closest to name, or "" when no
// option is close enough to be a plausible typo.
func suggest(name string) string {
	lower := strings.ToLower(name)
	best, bestDist := "", max(2, len(lower)/3)+1
	for _, o := range options {
		if d := distance(lower, o.name); d < bestDist {
			best, bestDist = o.name, d
		}
	}
	return best
}

// distance is the Levenshtein edit distance between a and b.
func distance(a, b string) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
