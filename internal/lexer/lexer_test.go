package lexer

import (
	"testing"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/stretchr/testify/require"
)

func TestNextToken(t *testing.T) {
	input := `#[verifier::rlimit(1.5), "a\"b" 42]`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.HASH, "#"},
		{token.LBRACKET, "["},
		{token.IDENT, "verifier"},
		{token.COLON_COLON, "::"},
		{token.IDENT, "rlimit"},
		{token.LPAREN, "("},
		{token.FLOAT, "1.5"},
		{token.RPAREN, ")"},
		{token.COMMA, ","},
		{token.STRING, `a\"b`},
		{token.INT, "42"},
		{token.RBRACKET, "]"},
		{token.EOF, ""},
	}
	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		require.Nil(t, err)
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong, expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - Literal wrong, expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestPunctuation(t *testing.T) {
	l := New("a = b + : !")
	tokens, err := l.Tokens()
	require.Nil(t, err)
	var types []token.Type
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	require.Equal(t, []token.Type{
		token.IDENT, token.ASSIGN, token.IDENT, token.PUNCT, token.PUNCT, token.BANG,
	}, types)
}

func TestPositions(t *testing.T) {
	l := New("a\n  bc // trailing\n d")
	l.SetFilename("decl.rs")
	tokens, err := l.Tokens()
	require.Nil(t, err)
	require.Len(t, tokens, 3)

	require.Equal(t, 2, tokens[1].StartPosition.LineNumber())
	require.Equal(t, 3, tokens[1].StartPosition.ColumnNumber())
	require.Equal(t, "decl.rs", tokens[1].StartPosition.File)
	require.Equal(t, 3, tokens[2].StartPosition.LineNumber())
}

func TestUnterminatedString(t *testing.T) {
	l := New(`x "abc`)
	l.Next()
	_, err := l.Next()
	require.NotNil(t, err)
	require.Equal(t, "unterminated string literal", err.Error())
	d, ok := errors.AsDiagnostic(err)
	require.True(t, ok)
	require.Equal(t, errors.E1006, d.Code)
	require.Equal(t, 3, d.Pos.ColumnNumber())
}

func TestStringEscapesKept(t *testing.T) {
	tokens, err := New(`"a\"b" "x\\" "\n"`).Tokens()
	require.Nil(t, err)
	require.Len(t, tokens, 3)
	require.Equal(t, `a\"b`, tokens[0].Literal)
	require.Equal(t, `x\\`, tokens[1].Literal)
	require.Equal(t, `\n`, tokens[2].Literal)
}
