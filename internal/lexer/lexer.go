// Package lexer splits annotation source text into tokens.
//
// The lexer understands just enough of the host language's attribute syntax
// to feed the annotation tree parser: identifiers, numeric and string
// literals, path separators, delimiters and a handful of punctuation marks.
// Anything else is surfaced as a PUNCT token so the parser can reject it
// with a precise position.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
)

// Lexer holds our object-state.
type Lexer struct {
	input     string
	position  int // current byte offset
	line      int
	column    int
	lineStart int
	filename  string
}

// New creates a Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// SetFilename sets the filename reported in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the filename reported in token positions.
func (l *Lexer) Filename() string {
	return l.filename
}

func (l *Lexer) pos() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.column,
		File:      l.filename,
	}
}

func (l *Lexer) peek() rune {
	if l.position >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.position:])
	return r
}

func (l *Lexer) peekAt(offset int) byte {
	if l.position+offset >= len(l.input) {
		return 0
	}
	return l.input[l.position+offset]
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.input[l.position:])
	l.position += size
	if r == '\n' {
		l.line++
		l.column = 0
		l.lineStart = l.position
	} else {
		l.column += size
	}
	return r
}

func (l *Lexer) skipWhitespace() {
	for l.position < len(l.input) {
		r := l.peek()
		if r == '/' && l.peekAt(1) == '/' {
			for l.position < len(l.input) && l.peek() != '\n' {
				l.advance()
			}
			continue
		}
		if !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

// Next returns the next token from the input. At the end of the input an
// EOF token is returned indefinitely.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespace()
	start := l.pos()
	if l.position >= len(l.input) {
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	}
	r := l.peek()
	switch {
	case isIdentStart(r):
		return l.readIdent(start), nil
	case isDigit(r):
		return l.readNumber(start), nil
	case r == '"':
		return l.readString(start)
	}
	l.advance()
	var typ token.Type
	switch r {
	case '(':
		typ = token.LPAREN
	case ')':
		typ = token.RPAREN
	case '[':
		typ = token.LBRACKET
	case ']':
		typ = token.RBRACKET
	case '{':
		typ = token.LBRACE
	case '}':
		typ = token.RBRACE
	case ',':
		typ = token.COMMA
	case '#':
		typ = token.HASH
	case '!':
		typ = token.BANG
	case '=':
		typ = token.ASSIGN
	case ':':
		if l.peek() == ':' {
			l.advance()
			return l.makeToken(token.COLON_COLON, "::", start), nil
		}
		typ = token.PUNCT
	default:
		typ = token.PUNCT
	}
	return l.makeToken(typ, string(r), start), nil
}

// Tokens lexes the entire input, stopping at (and excluding) EOF.
func (l *Lexer) Tokens() ([]token.Token, error) {
	var tokens []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Type == token.EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) makeToken(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   l.pos(),
	}
}

func (l *Lexer) readIdent(start token.Position) token.Token {
	begin := l.position
	for l.position < len(l.input) && isIdentPart(l.peek()) {
		l.advance()
	}
	return l.makeToken(token.IDENT, l.input[begin:l.position], start)
}

func (l *Lexer) readNumber(start token.Position) token.Token {
	begin := l.position
	typ := token.INT
	for l.position < len(l.input) {
		r := l.peek()
		if r == '.' && typ == token.INT && isDigit(rune(l.peekAt(1))) {
			typ = token.FLOAT
			l.advance()
			continue
		}
		if !isDigit(r) && r != '_' && !isIdentPart(r) {
			break
		}
		l.advance()
	}
	return l.makeToken(typ, l.input[begin:l.position], start)
}

// readString reads a string literal. The literal keeps the text between the
// quotes as written, escapes included.
func (l *Lexer) readString(start token.Position) (token.Token, error) {
	l.advance() // opening quote
	begin := l.position
	for {
		if l.position >= len(l.input) {
			return token.Token{}, errors.Errorf(start, errors.E1006, "unterminated string literal")
		}
		r := l.advance()
		if r == '"' {
			break
		}
		if r == '\\' && l.position < len(l.input) {
			l.advance()
		}
	}
	return l.makeToken(token.STRING, l.input[begin:l.position-1], start), nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}
