package attrs

import (
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
)

// Tree is a parsed annotation argument: a name with an optional argument
// list. Args is nil for a leaf; an empty group such as `trigger()` yields a
// non-nil empty slice.
type Tree struct {
	Pos  token.Position
	Name string
	Args []Tree
}

// Leaf returns a Tree with no argument list.
func Leaf(pos token.Position, name string) Tree {
	return Tree{Pos: pos, Name: name}
}

// Fun returns a Tree with the given arguments. A nil args slice is replaced
// by an empty one, so the result is never a leaf.
func Fun(pos token.Position, name string, args ...Tree) Tree {
	if args == nil {
		args = []Tree{}
	}
	return Tree{Pos: pos, Name: name, Args: args}
}

// IsLeaf returns true if the tree carries no argument list.
func (t Tree) IsLeaf() bool {
	return t.Args == nil
}

// LeafArgs returns the argument names if every argument is a leaf.
func (t Tree) LeafArgs() ([]string, bool) {
	if t.Args == nil {
		return nil, false
	}
	names := make([]string, len(t.Args))
	for i, arg := range t.Args {
		if !arg.IsLeaf() {
			return nil, false
		}
		names[i] = arg.Name
	}
	return names, true
}

func (t Tree) String() string {
	if t.IsLeaf() {
		return t.Name
	}
	var b strings.Builder
	b.WriteString(t.Name)
	b.WriteString("(")
	for i, arg := range t.Args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.String())
	}
	b.WriteString(")")
	return b.String()
}

// ParseTrees converts a token tree list into annotation trees. Identifiers
// and literals become names; a delimited group directly following a name
// becomes its argument list; commas separate arguments. Any other token, or
// a group that does not follow a name, is a syntax error.
func ParseTrees(trees []token.Tree) ([]Tree, error) {
	out := []Tree{}
	for i := 0; i < len(trees); i++ {
		tt := trees[i]
		if tt.IsDelimited() {
			return nil, errors.Errorf(tt.Open, errors.E1001,
				"unexpected '%s' in annotation arguments", tt.Delim)
		}
		switch tok := tt.Token; {
		case tok.Type == token.COMMA:
			continue
		case tok.Type == token.IDENT || tok.Type.IsLiteral():
			node := Tree{Pos: tok.StartPosition, Name: tok.Literal}
			if i+1 < len(trees) && trees[i+1].IsDelimited() {
				args, err := ParseTrees(trees[i+1].Trees)
				if err != nil {
					return nil, err
				}
				node.Args = args
				i++
			}
			out = append(out, node)
		default:
			return nil, errors.Errorf(tok.StartPosition, errors.E1001,
				"unexpected '%s' in annotation arguments", tok.Literal)
		}
	}
	return out, nil
}

// Prefix identifies which namespace an annotation belongs to.
type Prefix int

const (
	// PrefixNone marks annotations that are not ours and are ignored.
	PrefixNone Prefix = iota
	// PrefixVerifier is #[verifier::name(...)].
	PrefixVerifier
	// PrefixVerus is #[verus::name(...)], the Verus(None) namespace.
	PrefixVerus
	// PrefixInternal is #[verus::internal(tree)], the Verus(Internal) namespace.
	PrefixInternal
	// PrefixRustc is a single-segment host-internal name starting with rustc_.
	PrefixRustc
)

func (p Prefix) String() string {
	switch p {
	case PrefixVerifier:
		return "verifier"
	case PrefixVerus:
		return "verus"
	case PrefixInternal:
		return "verus::internal"
	case PrefixRustc:
		return "rustc"
	default:
		return "none"
	}
}

// rustcAllowed lists host-internal attributes that carry no meaning for
// verification: stability markers, macro plumbing, diagnostics and docs.
var rustcAllowed = map[string]bool{
	"rustc_allow_const_fn_unstable":          true,
	"rustc_const_stable":                     true,
	"rustc_const_unstable":                   true,
	"rustc_allowed_through_unstable_modules": true,
	"rustc_builtin_macro":                    true,
	"rustc_macro_transparency":               true,
	"rustc_coherence_is_core":                true,
	"rustc_diagnostic_item":                  true,
	"rustc_on_unimplemented":                 true,
	"rustc_trivial_field_reads":              true,
	"rustc_doc_primitive":                    true,
	"rustc_paren_sugar":                      true,
	"rustc_insignificant_dtor":               true,
	"rustc_box":                              true,
}

// IsIgnoredRustc reports whether name is an allow-listed host-internal
// attribute.
func IsIgnoredRustc(name string) bool {
	return rustcAllowed[name]
}

const (
	msgInvalidVerifier = "invalid verifier attribute"
	msgInvalidVerus    = "invalid verus attribute"
	msgRetiredModes    = "attributes spec, proof, exec are not supported anymore; use the verus! macro instead"
	msgEqForm          = "annotations of the form `name = value` are not yet implemented"
)

// ToTree derives the prefix of a raw annotation and parses its arguments.
// It returns PrefixNone with a nil error for annotations that belong to
// someone else.
func ToTree(raw RawAttr) (Prefix, Tree, error) {
	switch {
	case len(raw.Path) == 1 && raw.Path[0] == "verifier":
		return PrefixNone, Tree{}, errors.Errorf(raw.Pos, errors.E1003, msgInvalidVerifier)
	case len(raw.Path) == 2 && raw.Path[0] == "verifier":
		t, err := argsToTree(raw, raw.Path[1])
		if err != nil {
			return PrefixNone, Tree{}, wrapSyntax(raw, errors.E1003, msgInvalidVerifier, err)
		}
		return PrefixVerifier, t, nil
	case len(raw.Path) == 2 && raw.Path[0] == "verus" && raw.Path[1] == "internal":
		if raw.Kind != ArgsDelimited {
			return PrefixNone, Tree{}, errors.Errorf(raw.Pos, errors.E1004, msgInvalidVerus)
		}
		trees, err := ParseTrees(raw.Args)
		if err != nil {
			return PrefixNone, Tree{}, wrapSyntax(raw, errors.E1004, msgInvalidVerus, err)
		}
		if len(trees) != 1 {
			return PrefixNone, Tree{}, errors.Errorf(raw.Pos, errors.E1004, msgInvalidVerus)
		}
		t := trees[0]
		t.Pos = raw.Pos
		return PrefixInternal, t, nil
	case len(raw.Path) == 2 && raw.Path[0] == "verus":
		t, err := argsToTree(raw, raw.Path[1])
		if err != nil {
			return PrefixNone, Tree{}, wrapSyntax(raw, errors.E1003, msgInvalidVerifier, err)
		}
		return PrefixVerus, t, nil
	case len(raw.Path) == 1 && (raw.Path[0] == "spec" || raw.Path[0] == "proof" || raw.Path[0] == "exec"):
		return PrefixNone, Tree{}, errors.Errorf(raw.Pos, errors.E2005, msgRetiredModes)
	case len(raw.Path) == 1 && strings.HasPrefix(raw.Path[0], "rustc_"):
		if IsIgnoredRustc(raw.Path[0]) {
			return PrefixNone, Tree{}, nil
		}
		return PrefixRustc, Leaf(raw.Pos, raw.Path[0]), nil
	}
	return PrefixNone, Tree{}, nil
}

func argsToTree(raw RawAttr, name string) (Tree, error) {
	switch raw.Kind {
	case ArgsEmpty:
		return Leaf(raw.Pos, name), nil
	case ArgsDelimited:
		args, err := ParseTrees(raw.Args)
		if err != nil {
			return Tree{}, err
		}
		return Fun(raw.Pos, name, args...), nil
	default:
		return Tree{}, errors.Errorf(raw.Pos, errors.E1005, msgEqForm)
	}
}

// wrapSyntax reports a malformed argument list with the namespace's fixed
// message, keeping the precise cause as a note. The value-assignment form
// is reported as is.
func wrapSyntax(raw RawAttr, code errors.ErrorCode, msg string, cause error) error {
	if d, ok := errors.AsDiagnostic(cause); ok {
		if d.Code == errors.E1005 {
			return d
		}
		note := d.Message
		if d.Pos.IsValid() {
			return errors.Errorf(raw.Pos, code, msg).WithNote(note + " at " + posString(d.Pos))
		}
		return errors.Errorf(raw.Pos, code, msg).WithNote(note)
	}
	return errors.Errorf(raw.Pos, code, msg).WithNote(cause.Error())
}

func posString(p token.Position) string {
	return strconv.Itoa(p.LineNumber()) + ":" + strconv.Itoa(p.ColumnNumber())
}
