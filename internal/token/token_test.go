package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPosition(t *testing.T) {
	tok := Token{
		Type:    IDENT,
		Literal: "foo",
		StartPosition: Position{
			Line:   2,
			Column: 0,
		},
	}
	// Switches to 1-indexed
	require.Equal(t, 3, tok.StartPosition.LineNumber())
	require.Equal(t, 1, tok.StartPosition.ColumnNumber())
	require.True(t, tok.StartPosition.IsValid())
	require.False(t, NoPos.IsValid())
}

func TestClosing(t *testing.T) {
	closing, ok := Closing(LPAREN)
	require.True(t, ok)
	require.Equal(t, RPAREN, closing)

	_, ok = Closing(COMMA)
	require.False(t, ok)
}

func TestTreeString(t *testing.T) {
	ident := func(s string) Tree { return Tree{Token: Token{Type: IDENT, Literal: s}} }
	comma := Tree{Token: Token{Type: COMMA, Literal: ","}}
	tree := Tree{
		Delim: LPAREN,
		Trees: []Tree{
			ident("a"), comma, ident("f"),
			{Delim: LPAREN, Trees: []Tree{ident("x")}},
			comma, {Token: Token{Type: STRING, Literal: "msg"}},
		},
	}
	require.Equal(t, `(a, f(x), "msg")`, tree.String())
	require.True(t, tree.IsDelimited())
	require.False(t, comma.IsDelimited())
}
