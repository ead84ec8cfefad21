package attrs

import (
	"testing"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/stretchr/testify/require"
)

func TestParseRaw(t *testing.T) {
	raw, err := ParseRaw("lib.rs", "#[verifier::rlimit(10)]")
	require.Nil(t, err)
	require.Equal(t, []string{"verifier", "rlimit"}, raw.Path)
	require.Equal(t, ArgsDelimited, raw.Kind)
	require.Len(t, raw.Args, 1)
	require.Equal(t, token.INT, raw.Args[0].Token.Type)
	require.Equal(t, "lib.rs", raw.Pos.File)

	raw, err = ParseRaw("", "#![verifier::loop_isolation(false)]")
	require.Nil(t, err)
	require.Equal(t, []string{"verifier", "loop_isolation"}, raw.Path)

	raw, err = ParseRaw("", "verifier::opaque")
	require.Nil(t, err)
	require.Equal(t, ArgsEmpty, raw.Kind)

	raw, err = ParseRaw("", `#[doc = "hi"]`)
	require.Nil(t, err)
	require.Equal(t, ArgsEq, raw.Kind)
	require.Equal(t, "hi", raw.Value.Literal)

	raw, err = ParseRaw("", "#[verifier::trigger()]")
	require.Nil(t, err)
	require.Equal(t, ArgsDelimited, raw.Kind)
	require.NotNil(t, raw.Args)
	require.Len(t, raw.Args, 0)
}

func TestParseRawErrors(t *testing.T) {
	tests := []struct {
		input string
		code  errors.ErrorCode
		msg   string
	}{
		{"#[verifier::x(a]", errors.E1001, "unexpected closing delimiter ']'"},
		{"#[verifier::x(a)", errors.E1002, "unclosed delimiter '['"},
		{"#[verifier::x(a)] extra", errors.E1001, "expected '[' after '#' in annotation"},
		{"#[::x]", errors.E1001, "expected identifier in annotation path"},
		{"#[verifier::x y]", errors.E1001, "unexpected 'y' after annotation path"},
		{"", errors.E1001, "empty annotation"},
		{`#[verifier::custom_err("abc)]`, errors.E1006, "unterminated string literal"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseRaw("", tt.input)
			require.NotNil(t, err)
			d, ok := errors.AsDiagnostic(err)
			require.True(t, ok)
			require.Equal(t, tt.code, d.Code)
			require.Equal(t, tt.msg, d.Message)
		})
	}
}

func TestRawAttrString(t *testing.T) {
	tests := []string{
		"#[verifier::trigger(1, 2)]",
		"#[verifier::opaque]",
		"#[verus::internal(prover(integer_ring))]",
		`#[doc = "hi"]`,
	}
	for _, input := range tests {
		raw, err := ParseRaw("", input)
		require.Nil(t, err)
		require.Equal(t, input, raw.String())
	}
}

func TestParseTrees(t *testing.T) {
	raw, err := ParseRaw("", `#[x(a, f(b, "s"), 3, g())]`)
	require.Nil(t, err)
	trees, err := ParseTrees(raw.Args)
	require.Nil(t, err)
	require.Len(t, trees, 4)
	require.True(t, trees[0].IsLeaf())
	require.Equal(t, "f(b, s)", trees[1].String())
	require.Equal(t, "3", trees[2].Name)
	require.False(t, trees[3].IsLeaf())
	require.Len(t, trees[3].Args, 0)

	raw, err = ParseRaw("", `#[x(a + b)]`)
	require.Nil(t, err)
	_, err = ParseTrees(raw.Args)
	require.NotNil(t, err)
	require.Equal(t, "unexpected '+' in annotation arguments", err.Error())

	raw, err = ParseRaw("", `#[x((a))]`)
	require.Nil(t, err)
	_, err = ParseTrees(raw.Args)
	require.NotNil(t, err)
	require.Equal(t, "unexpected '(' in annotation arguments", err.Error())
}

func TestIsVerifierSource(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"#[verifier::x(a]", true},
		{"#[verus::internal(", true},
		{"#![rustc_nounwind(", true},
		{"#[spec]", true},
		{`#[verifier::custom_err("abc)]`, true},
		{"", true},
		{"#[doc(x]", false},
		{"#[derive(Debug)]", false},
		{"#[inline", false},
		{"#[rustc_const_stable(]", false},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			require.Equal(t, tt.want, IsVerifierSource(tt.src))
		})
	}
}
