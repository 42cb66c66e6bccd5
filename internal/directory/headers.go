package directory

import (
	"regexp"
	"sort"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// headerKey folds a header for comparison: lower case, ё→е, and every
// run of non letters/digits dropped ("Unit_Price" == "unit price").
func headerKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ", "ё", "е").Replace(s)
	return nonWord.ReplaceAllString(s, "")
}

// typoBudget is how many edits a header may be away from an alias.
// Short aliases must match exactly.
func typoBudget(alias string) int {
	switch n := len([]rune(alias)); {
	case n >= 9:
		return 2
	case n >= 5:
		return 1
	default:
		return 0
	}
}

// editDistance is the optimal string alignment distance: insertions,
// deletions, substitutions and swaps of adjacent runes cost 1.
func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev2 := make([]int, len(rb)+1)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(rb)]
}

// resolve finds, for every mapped field, the header present in the file.
// Exact (folded) matches win; then each unmatched field takes the closest
// unused header within its typo budget. Iteration is sorted so the result
// does not depend on map order.
func (m Mapping) resolve(headers []string) map[string]string {
	byKey := make(map[string]string, len(headers))
	keys := make([]string, 0, len(headers))
	for _, h := range headers {
		k := headerKey(h)
		if _, dup := byKey[k]; dup || k == "" {
			continue
		}
		byKey[k] = h
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make(map[string]string, len(m))
	used := map[string]bool{}
	for _, f := range fields {
		for _, a := range strings.Split(m[f], "|") {
			if h, ok := byKey[headerKey(a)]; ok && !used[h] {
				out[f], used[h] = h, true
				break
			}
		}
	}

	for _, f := range fields {
		if _, ok := out[f]; ok {
			continue
		}
		best, bestD := "", -1
		for _, a := range strings.Split(m[f], "|") {
			ak := headerKey(a)
			budget := typoBudget(ak)
			if budget == 0 {
				continue
			}
			for _, k := range keys {
				h := byKey[k]
				if used[h] {
					continue
				}
				if d := editDistance(ak, k); d <= budget && (bestD < 0 || d < bestD) {
					best, bestD = h, d
				}
			}
		}
		if bestD >= 0 {
			out[f], used[best] = best, true
		}
	}
	return out
}
