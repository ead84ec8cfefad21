// Package token defines the tokens and token trees that make up the argument
// list of a declaration annotation.
package token

import "strings"

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// Note: This assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one token lexed from an annotation.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	ASSIGN      Type = "="
	BANG        Type = "!"
	COLON_COLON Type = "::"
	COMMA       Type = ","
	EOF         Type = "EOF"
	FLOAT       Type = "FLOAT"
	HASH        Type = "#"
	IDENT       Type = "IDENT"
	ILLEGAL     Type = "ILLEGAL"
	INT         Type = "INT"
	LBRACE      Type = "{"
	LBRACKET    Type = "["
	LPAREN      Type = "("
	PUNCT       Type = "PUNCT"
	RBRACE      Type = "}"
	RBRACKET    Type = "]"
	RPAREN      Type = ")"
	STRING      Type = "STRING"
)

// IsLiteral reports whether the token type is a literal value.
func (t Type) IsLiteral() bool {
	return t == INT || t == FLOAT || t == STRING
}

// Closing returns the closing delimiter for an opening delimiter.
func Closing(open Type) (Type, bool) {
	switch open {
	case LPAREN:
		return RPAREN, true
	case LBRACKET:
		return RBRACKET, true
	case LBRACE:
		return RBRACE, true
	}
	return "", false
}

// Tree is a token tree: either a single token, or a delimited group of
// nested trees. Exactly one of Token and Delim is meaningful; Delim is empty
// for single tokens.
type Tree struct {
	Token Token    // the token, for leaf trees
	Delim Type     // opening delimiter, for delimited groups
	Open  Position // position of the opening delimiter
	Trees []Tree   // nested trees, for delimited groups
}

// IsDelimited returns true if the tree is a delimited group.
func (t Tree) IsDelimited() bool {
	return t.Delim != ""
}

// Pos returns the position of the first character of the tree.
func (t Tree) Pos() Position {
	if t.IsDelimited() {
		return t.Open
	}
	return t.Token.StartPosition
}

// String renders the tree roughly as it appeared in the source.
func (t Tree) String() string {
	if !t.IsDelimited() {
		if t.Token.Type == STRING {
			return `"` + t.Token.Literal + `"`
		}
		return t.Token.Literal
	}
	closing, _ := Closing(t.Delim)
	var b strings.Builder
	b.WriteString(string(t.Delim))
	for i, tree := range t.Trees {
		if i > 0 && tree.Token.Type != COMMA &&
			!(tree.IsDelimited() && t.Trees[i-1].Token.Type == IDENT) {
			b.WriteString(" ")
		}
		b.WriteString(tree.String())
	}
	b.WriteString(string(closing))
	return b.String()
}
