// Package attrs classifies declaration annotations into directives and
// folds them into configuration records.
//
// The pipeline for one declaration is RawAttr -> Tree (ToTree) -> Attr
// (Classify) -> ExternalAttrs and VerifierAttrs (FoldExternal, FoldVerifier).
// Inheritable directives are looked up along a ScopeChain with a Resolver.
package attrs

import (
	stderrors "errors"

	"github.com/deepnoodle-ai/soir/errors"
)

// Classify maps one prefixed annotation tree to its directives. Most trees
// yield a single directive; `spec(checked)` yields two and deprecated no-op
// spellings yield none. Deprecated spellings report a warning to sink.
func Classify(p Prefix, t Tree, sink errors.Sink) ([]Attr, error) {
	if sink == nil {
		sink = errors.Discard
	}
	if p == PrefixRustc {
		return []Attr{{Kind: KindUnsupportedRustcAttr, Name: t.Name, Pos: t.Pos}}, nil
	}
	d, ok := lookup(p, t.Name)
	if ok && d.arity.accepts(t) {
		if d.deprecated != "" {
			sink.Report(errors.Warningf(t.Pos, errors.W1001,
				"#[verifier(%s)] is deprecated, %s", d.name, d.deprecated))
		}
		out, err := d.build(t)
		if err == nil {
			for i := range out {
				out[i].Pos = t.Pos
			}
			return out, nil
		}
		if !stderrors.Is(err, errNoMatch) {
			return nil, err
		}
	}
	return nil, unrecognized(p, t)
}

func unrecognized(p Prefix, t Tree) error {
	var d *errors.Diagnostic
	if p == PrefixVerifier {
		d = errors.Errorf(t.Pos, errors.E2001, "unrecognized verifier attribute")
	} else {
		d = errors.Errorf(t.Pos, errors.E2002, "unrecognized internal attribute")
	}
	if _, known := lookup(p, t.Name); known {
		return d.WithNote("unexpected arguments: " + t.String())
	}
	return d.WithSuggestions(errors.SuggestSimilar(t.Name, Names(p)))
}

// ParseAttrs classifies the annotations of one declaration, preserving
// source order. Annotations that belong to other namespaces are skipped.
//
// Every annotation is parsed before any is classified, so all syntax errors
// of a declaration are reported together. Classification then stops at the
// first unrecognized or malformed directive and no partial result is
// returned.
func ParseAttrs(raws []RawAttr, sink errors.Sink) ([]Attr, error) {
	type prefixed struct {
		prefix Prefix
		tree   Tree
	}
	var trees []prefixed
	var syntax []error
	for _, raw := range raws {
		p, t, err := ToTree(raw)
		if err != nil {
			syntax = append(syntax, err)
			continue
		}
		if p != PrefixNone {
			trees = append(trees, prefixed{p, t})
		}
	}
	switch len(syntax) {
	case 0:
	case 1:
		return nil, syntax[0]
	default:
		return nil, errors.Append(nil, syntax...)
	}

	var out []Attr
	for _, pt := range trees {
		attrs, err := Classify(pt.prefix, pt.tree, sink)
		if err != nil {
			return nil, err
		}
		out = append(out, attrs...)
	}
	return out, nil
}

// ParseAttrsOpt is ParseAttrs without diagnostics: any failure yields an
// empty list.
func ParseAttrsOpt(raws []RawAttr) []Attr {
	out, err := ParseAttrs(raws, nil)
	if err != nil {
		return nil
	}
	return out
}
