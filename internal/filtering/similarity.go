package filtering

import (
	"github.com/pmezard/go-difflib/difflib"
)

// CloseMatchCutoff is the minimal similarity ratio for a close match.
const CloseMatchCutoff = 0.6

// Ratio is the longest-matching-blocks similarity of a and b:
// 2*M/T where M is the matched rune count and T the total rune count.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// IsCloseMatch reports whether query is a close match of candidate. The
// candidate is the first sequence and the query the second, as the junk
// heuristic only looks at the second one.
func IsCloseMatch(query, candidate string) bool {
	m := difflib.NewMatcher(runes(candidate), runes(query))

	return m.RealQuickRatio() >= CloseMatchCutoff &&
		m.QuickRatio() >= CloseMatchCutoff &&
		m.Ratio() >= CloseMatchCutoff
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
