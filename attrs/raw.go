package attrs

import (
	"strings"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/lexer"
	"github.com/deepnoodle-ai/soir/internal/token"
)

// ArgsKind distinguishes the argument forms a raw annotation can carry.
type ArgsKind int

const (
	// ArgsEmpty is a bare path: #[verifier::opaque]
	ArgsEmpty ArgsKind = iota
	// ArgsDelimited is a path followed by a delimited token list:
	// #[verifier::rlimit(10)]
	ArgsDelimited
	// ArgsEq is a path assigned a single value: #[doc = "x"]
	ArgsEq
)

// RawAttr is an annotation as handed over by the host front end: a path of
// one or more segments and its unparsed arguments.
type RawAttr struct {
	Pos   token.Position
	Path  []string
	Kind  ArgsKind
	Args  []token.Tree // contents of the delimited group, for ArgsDelimited
	Value token.Token  // the assigned token, for ArgsEq
}

// String renders the annotation in its source form.
func (r RawAttr) String() string {
	var b strings.Builder
	b.WriteString("#[")
	b.WriteString(strings.Join(r.Path, "::"))
	switch r.Kind {
	case ArgsDelimited:
		b.WriteString(token.Tree{Delim: token.LPAREN, Trees: r.Args}.String())
	case ArgsEq:
		b.WriteString(" = ")
		b.WriteString(token.Tree{Token: r.Value}.String())
	}
	b.WriteString("]")
	return b.String()
}

// NewRaw builds a RawAttr without going through the lexer. It is mostly
// useful for hosts that already hold a parsed path.
func NewRaw(pos token.Position, path []string, args ...token.Tree) RawAttr {
	r := RawAttr{Pos: pos, Path: path}
	if args != nil {
		r.Kind = ArgsDelimited
		r.Args = args
	}
	return r
}

// ParseRaw parses the source text of a single annotation, such as
// `#[verifier::rlimit(10)]`. The surrounding `#[` and `]` are optional and
// an inner `#![...]` form is accepted too.
func ParseRaw(filename, src string) (RawAttr, error) {
	l := lexer.New(src)
	l.SetFilename(filename)
	toks, err := l.Tokens()
	if err != nil {
		return RawAttr{}, err
	}
	trees, err := buildTrees(toks)
	if err != nil {
		return RawAttr{}, err
	}
	if len(trees) == 0 {
		return RawAttr{}, errors.Errorf(token.Position{File: filename}, errors.E1001,
			"empty annotation")
	}
	start := trees[0].Pos()
	if !trees[0].IsDelimited() && trees[0].Token.Type == token.HASH {
		rest := trees[1:]
		if len(rest) > 0 && rest[0].Token.Type == token.BANG {
			rest = rest[1:]
		}
		if len(rest) != 1 || rest[0].Delim != token.LBRACKET {
			return RawAttr{}, errors.Errorf(start, errors.E1001,
				"expected '[' after '#' in annotation")
		}
		trees = rest[0].Trees
	}
	return rawFromTrees(start, trees)
}

// IsVerifierSource reports whether the annotation text src may carry a
// verifier directive, judging by its first path segment alone. It also
// answers for text ParseRaw rejects, which tells malformed annotations of
// other tools apart from malformed directives. Text without a leading path
// counts as a directive.
func IsVerifierSource(src string) bool {
	l := lexer.New(src)
	for {
		tok, err := l.Next()
		if err != nil {
			return true
		}
		switch tok.Type {
		case token.HASH, token.BANG, token.LBRACKET:
			continue
		case token.IDENT:
			return isVerifierSegment(tok.Literal)
		}
		return true
	}
}

func isVerifierSegment(name string) bool {
	switch name {
	case "verifier", "verus", "spec", "proof", "exec":
		return true
	}
	return strings.HasPrefix(name, "rustc_") && !IsIgnoredRustc(name)
}

func rawFromTrees(start token.Position, trees []token.Tree) (RawAttr, error) {
	raw := RawAttr{Pos: start}
	i := 0
	for {
		if i >= len(trees) || trees[i].IsDelimited() || trees[i].Token.Type != token.IDENT {
			return RawAttr{}, errors.Errorf(posAt(trees, i, start), errors.E1001,
				"expected identifier in annotation path")
		}
		raw.Path = append(raw.Path, trees[i].Token.Literal)
		i++
		if i < len(trees) && trees[i].Token.Type == token.COLON_COLON && !trees[i].IsDelimited() {
			i++
			continue
		}
		break
	}
	rest := trees[i:]
	switch {
	case len(rest) == 0:
		raw.Kind = ArgsEmpty
	case len(rest) == 1 && rest[0].IsDelimited():
		raw.Kind = ArgsDelimited
		raw.Args = rest[0].Trees
		if raw.Args == nil {
			raw.Args = []token.Tree{}
		}
	case len(rest) == 2 && rest[0].Token.Type == token.ASSIGN && !rest[1].IsDelimited():
		raw.Kind = ArgsEq
		raw.Value = rest[1].Token
	default:
		return RawAttr{}, errors.Errorf(rest[0].Pos(), errors.E1001,
			"unexpected %s after annotation path", describe(rest[0]))
	}
	return raw, nil
}

func posAt(trees []token.Tree, i int, fallback token.Position) token.Position {
	if i < len(trees) {
		return trees[i].Pos()
	}
	return fallback
}

func describe(t token.Tree) string {
	if t.IsDelimited() {
		return "'" + string(t.Delim) + "'"
	}
	return "'" + t.Token.Literal + "'"
}

// buildTrees groups a flat token list into token trees, matching delimiters.
func buildTrees(toks []token.Token) ([]token.Tree, error) {
	type frame struct {
		open  token.Token
		trees []token.Tree
	}
	stack := []frame{{}}
	for _, tok := range toks {
		switch tok.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			stack = append(stack, frame{open: tok})
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			top := stack[len(stack)-1]
			want, _ := token.Closing(top.open.Type)
			if len(stack) == 1 || want != tok.Type {
				return nil, errors.Errorf(tok.StartPosition, errors.E1001,
					"unexpected closing delimiter '%s'", tok.Literal)
			}
			stack = stack[:len(stack)-1]
			group := token.Tree{Delim: top.open.Type, Open: top.open.StartPosition, Trees: top.trees}
			parent := &stack[len(stack)-1]
			parent.trees = append(parent.trees, group)
		default:
			top := &stack[len(stack)-1]
			top.trees = append(top.trees, token.Tree{Token: tok})
		}
	}
	if len(stack) > 1 {
		open := stack[len(stack)-1].open
		return nil, errors.Errorf(open.StartPosition, errors.E1002,
			"unclosed delimiter '%s'", open.Literal)
	}
	return stack[0].trees, nil
}
