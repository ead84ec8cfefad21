package errors

import (
	"testing"

	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/stretchr/testify/require"
)

func TestFormatPlain(t *testing.T) {
	d := Errorf(token.Position{Line: 0, Column: 11, Char: 11, File: "lib.rs"},
		E2001, "unrecognized verifier attribute")
	d.SourceLine = "#[verifier::opaq]"
	d.Suggestions = []Suggestion{{Value: "opaque", Distance: 1}}
	d.Note = "attributes are case sensitive"

	out := NewFormatter(false).Format(d.ToFormatted())
	expected := "error[E2001]: unrecognized verifier attribute\n" +
		"  --> lib.rs:1:12\n" +
		"   |\n" +
		" 1 | #[verifier::opaq]\n" +
		"   |            ^\n" +
		"   |\n" +
		"   = hint: Did you mean 'opaque'?\n" +
		"   = note: attributes are case sensitive\n"
	require.Equal(t, expected, out)
}

func TestFormatWarningHeader(t *testing.T) {
	w := Warningf(token.NoPos, W1001, "#[verifier(spinoff_z3)] is deprecated")
	out := NewFormatter(false).Format(w.ToFormatted())
	require.Equal(t, "warning[W1001]: #[verifier(spinoff_z3)] is deprecated\n", out)
}

func TestFormatMultiple(t *testing.T) {
	f := NewFormatter(false)
	require.Equal(t, "", f.FormatMultiple(nil))

	errs := []*FormattedError{
		{Kind: "error", Message: "one"},
		{Kind: "warning", Message: "two"},
		{Kind: "error", Message: "three"},
	}
	out := f.FormatMultiple(errs)
	require.Contains(t, out, "error[1/3]: one\n")
	require.Contains(t, out, "warning[2/3]: two\n")
	require.Contains(t, out, "found 2 errors and 1 warning\n")
}

func TestSummarize(t *testing.T) {
	require.Equal(t, "found 1 error", summarize(1, 0))
	require.Equal(t, "found 2 warnings", summarize(0, 2))
	require.Equal(t, "found 3 errors and 2 warnings", summarize(3, 2))
}

func TestSuggestSimilar(t *testing.T) {
	candidates := []string{"opaque", "opaque_outside_module", "external_body", "external", "no_auto_trigger"}

	got := SuggestSimilar("opaqe", candidates)
	require.NotEmpty(t, got)
	require.Equal(t, "opaque", got[0].Value)

	got = SuggestSimilar("no-auto-trigger", candidates)
	require.Len(t, got, 1)
	require.Equal(t, "no_auto_trigger", got[0].Value)
	require.Equal(t, 0, got[0].Distance)

	require.Empty(t, SuggestSimilar("opaque", candidates[:1]))
	require.Empty(t, SuggestSimilar("zzzzzzzz", candidates))
	require.Nil(t, SuggestSimilar("", candidates))
}

func TestFormatSuggestions(t *testing.T) {
	require.Equal(t, "", FormatSuggestions(nil))
	require.Equal(t, "Did you mean 'a'?", FormatSuggestions([]Suggestion{{Value: "a"}}))
	require.Equal(t, "Did you mean one of: 'a', 'b'?",
		FormatSuggestions([]Suggestion{{Value: "a"}, {Value: "b"}}))
}

func TestLevenshtein(t *testing.T) {
	require.Equal(t, 0, levenshteinDistance("abc", "abc"))
	require.Equal(t, 3, levenshteinDistance("", "abc"))
	require.Equal(t, 1, levenshteinDistance("opaque", "opaqe"))
	require.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}
