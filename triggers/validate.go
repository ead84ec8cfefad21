package triggers

import (
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/sst"
)

// Messages reported for invalid trigger groups.
const (
	msgShape    = "trigger must be a function call, a field access, or arithmetic operator"
	msgArith    = "variable '%s' in trigger cannot appear in both arithmetic and non-arithmetic positions"
	msgLetVar   = "let variables in triggers not supported"
	msgCover    = "trigger does not cover variable '%s'"
	msgBoolean  = "triggers cannot contain boolean operators or comparisons"
	msgIf       = "triggers cannot contain if/else"
	msgBinder   = "triggers cannot contain let/forall/exists/lambda/choose"
	msgNoInfer  = "could not infer triggers for this quantifier; use #[trigger] to mark trigger terms"
	msgAutoNote = "automatically chose triggers for this expression: %s"
)

// strip removes the wrappers that are transparent to trigger matching:
// trigger marks, boxing and integer clipping.
func strip(e sst.Exp) sst.Exp {
	for {
		switch x := e.(type) {
		case *sst.Unary:
			if x.Op != sst.Trigger && x.Op != sst.Clip && x.Op != sst.CoerceMode {
				return e
			}
			e = x.X
		case *sst.UnaryOpr:
			if x.Op.Kind != sst.Box && x.Op.Kind != sst.Unbox {
				return e
			}
			e = x.X
		default:
			return e
		}
	}
}

// checkShape checks the top-level form of a trigger term.
func checkShape(term sst.Exp) error {
	switch x := strip(term).(type) {
	case *sst.Call, *sst.CallLambda:
		return nil
	case *sst.UnaryOpr:
		if x.Op.IsFieldAccess() {
			return nil
		}
	case *sst.Binary:
		if x.Op.IsArith() {
			return nil
		}
	}
	return errors.Errorf(term.Pos(), errors.E4001, msgShape)
}

// checkForms rejects constructs that may not appear anywhere inside a
// trigger term.
func checkForms(term sst.Exp) error {
	var err error
	sst.Inspect(term, func(n sst.Node) bool {
		if err != nil {
			return false
		}
		switch x := n.(type) {
		case *sst.Binary:
			if x.Op.IsBoolean() || x.Op.IsComparison() {
				err = errors.Errorf(x.Pos(), errors.E4001, msgBoolean)
			}
		case *sst.If:
			err = errors.Errorf(x.Pos(), errors.E4001, msgIf)
		case *sst.Bind:
			err = errors.Errorf(x.Pos(), errors.E4001, msgBinder)
		}
		return err == nil
	})
	return err
}

// letVars collects the names bound by let expressions inside body.
func letVars(body sst.Exp) map[string]bool {
	names := map[string]bool{}
	for n := range sst.Preorder(body) {
		if b, ok := n.(*sst.Bind); ok {
			if let, ok := b.Bnd.(*sst.Let); ok {
				for _, bd := range let.Binders {
					names[bd.Name] = true
				}
			}
		}
	}
	return names
}

// occurrences records, for each bound variable of a group, whether it
// occurs directly under an arithmetic operator and whether it occurs
// anywhere else.
type occurrences struct {
	arith map[string]bool
	plain map[string]bool
}

func newOccurrences() *occurrences {
	return &occurrences{arith: map[string]bool{}, plain: map[string]bool{}}
}

func (o *occurrences) collect(e sst.Exp, bound map[string]bool, inArith bool) {
	switch x := e.(type) {
	case *sst.Var:
		if x.Ident.Local == nil && bound[x.Ident.Name] {
			if inArith {
				o.arith[x.Ident.Name] = true
			} else {
				o.plain[x.Ident.Name] = true
			}
		}
		return
	case *sst.Unary:
		if x.Op == sst.Trigger || x.Op == sst.Clip || x.Op == sst.CoerceMode {
			o.collect(x.X, bound, inArith)
			return
		}
	case *sst.UnaryOpr:
		if x.Op.Kind == sst.Box || x.Op.Kind == sst.Unbox {
			o.collect(x.X, bound, inArith)
			return
		}
	case *sst.Binary:
		if x.Op.IsArith() {
			o.collect(x.X, bound, true)
			o.collect(x.Y, bound, true)
			return
		}
	}
	for _, child := range expChildren(e) {
		o.collect(child, bound, false)
	}
}

// conflict returns the first bound variable, in binder order, that occurs
// in both positions.
func (o *occurrences) conflict(binders []sst.Binder[sst.Typ]) (string, bool) {
	for _, b := range binders {
		if o.arith[b.Name] && o.plain[b.Name] {
			return b.Name, true
		}
	}
	return "", false
}

func (o *occurrences) covers(name string) bool {
	return o.arith[name] || o.plain[name]
}

// expChildren returns the direct expression children of e.
func expChildren(e sst.Exp) []sst.Exp {
	switch x := e.(type) {
	case *sst.Loc:
		return []sst.Exp{x.X}
	case *sst.Call:
		return x.Args
	case *sst.CallLambda:
		return append([]sst.Exp{x.Fn}, x.Args...)
	case *sst.Ctor:
		out := make([]sst.Exp, len(x.Fields))
		for i, f := range x.Fields {
			out[i] = f.A
		}
		return out
	case *sst.Unary:
		return []sst.Exp{x.X}
	case *sst.UnaryOpr:
		return []sst.Exp{x.X}
	case *sst.Binary:
		return []sst.Exp{x.X, x.Y}
	case *sst.If:
		return []sst.Exp{x.Cond, x.Then, x.Else}
	}
	return nil
}

func boundSet(binders []sst.Binder[sst.Typ]) map[string]bool {
	bound := make(map[string]bool, len(binders))
	for _, b := range binders {
		bound[b.Name] = true
	}
	return bound
}

// ValidateGroup checks one trigger group of a quantifier with the given
// binders and body. Every term must have an admissible shape and may not
// mention a let variable of the body. Together the terms must cover every
// bound variable, and no bound variable may occur both directly under an
// arithmetic operator and elsewhere in the group.
func ValidateGroup(binders []sst.Binder[sst.Typ], body sst.Exp, group sst.Trig) error {
	bound := boundSet(binders)
	lets := letVars(body)
	occ := newOccurrences()
	for _, term := range group {
		if err := checkShape(term); err != nil {
			return err
		}
		if err := checkForms(strip(term)); err != nil {
			return err
		}
		if v, ok := mentionsLet(term, lets, bound); ok {
			return errors.Errorf(v.Pos(), errors.E4003, msgLetVar)
		}
		occ.collect(term, bound, false)
	}
	if name, ok := occ.conflict(binders); ok {
		return errors.Errorf(group[0].Pos(), errors.E4002, msgArith, name)
	}
	for _, b := range binders {
		if !occ.covers(b.Name) {
			pos := body.Pos()
			if len(group) > 0 {
				pos = group[0].Pos()
			}
			return errors.Errorf(pos, errors.E4005, msgCover, b.Name)
		}
	}
	return nil
}

// mentionsLet returns the first variable of term bound by a let in the
// quantifier body. Quantified variables shadow let names.
func mentionsLet(term sst.Exp, lets, bound map[string]bool) (*sst.Var, bool) {
	for n := range sst.Preorder(term) {
		if v, ok := n.(*sst.Var); ok && v.Ident.Local == nil && lets[v.Ident.Name] && !bound[v.Ident.Name] {
			return v, true
		}
	}
	return nil, false
}
