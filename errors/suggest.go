package errors

import (
	"sort"
	"strings"
)

// MaxSuggestionDistance is the maximum edit distance for a suggestion to be considered.
const MaxSuggestionDistance = 3

// MaxSuggestions is the maximum number of suggestions to return.
const MaxSuggestions = 3

// Suggestion is a candidate name close to something the user wrote.
type Suggestion struct {
	Value    string
	Distance int
}

// normalizeName folds case and treats '-' like '_' so that "no-auto-trigger"
// and "No_Auto_Trigger" both compare equal to "no_auto_trigger".
func normalizeName(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "-", "_")
}

// SuggestSimilar returns up to MaxSuggestions candidates close to target,
// closest first. Short targets get a tighter threshold.
func SuggestSimilar(target string, candidates []string) []Suggestion {
	if target == "" || len(candidates) == 0 {
		return nil
	}
	orig := target
	target = normalizeName(target)
	threshold := MaxSuggestionDistance
	switch {
	case len(target) <= 3:
		threshold = 1
	case len(target) <= 5:
		threshold = 2
	}

	seen := map[string]bool{}
	var out []Suggestion
	for _, candidate := range candidates {
		norm := normalizeName(candidate)
		if candidate == "" || seen[candidate] {
			continue
		}
		seen[candidate] = true
		if norm == target {
			// Same name, different spelling.
			if candidate != orig {
				out = append(out, Suggestion{Value: candidate})
			}
			continue
		}
		if d := levenshteinDistance(target, norm); d <= threshold {
			out = append(out, Suggestion{Value: candidate, Distance: d})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}

// FormatSuggestions formats suggestions as a hint. It returns an empty
// string when there are none.
func FormatSuggestions(suggestions []Suggestion) string {
	switch len(suggestions) {
	case 0:
		return ""
	case 1:
		return "Did you mean '" + suggestions[0].Value + "'?"
	}
	quoted := make([]string, len(suggestions))
	for i, s := range suggestions {
		quoted[i] = "'" + s.Value + "'"
	}
	return "Did you mean one of: " + strings.Join(quoted, ", ") + "?"
}

// levenshteinDistance computes the edit distance between two strings using
// two rolling rows.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}
	if len(ra) == 0 {
		return len(rb)
	}
	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)
	for i := range prev {
		prev[i] = i
	}
	for j := 1; j <= len(rb); j++ {
		curr[0] = j
		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[i] = min(prev[i]+1, curr[i-1]+1, prev[i-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(ra)]
}
