package render

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DidYouMean returns up to limit keys closest to input by Levenshtein
// distance, nearest first. Keys further than half the input length are dropped.
func DidYouMean(input string, keys []string, limit int) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || limit <= 0 {
		return nil
	}

	threshold := max(1, (len(input)+1)/2)
	dmp := diffmatchpatch.New()

	type scored struct {
		key      string
		distance int
	}
	var matches []scored
	seen := make(map[string]bool, len(keys))
	for _, key := range keys {
		lower := strings.ToLower(key)
		if seen[lower] {
			continue
		}
		seen[lower] = true

		distance := dmp.DiffLevenshtein(dmp.DiffMain(input, lower, false))
		if distance <= threshold {
			matches = append(matches, scored{key: key, distance: distance})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].key < matches[j].key
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.key
	}
	return out
}
