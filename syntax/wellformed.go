package syntax

import (
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/sst"
)

// WellFormed checks the structural rules of a body regardless of how it
// was constructed:
//
//   - DeadEnd is only the last statement of a block;
//   - OpenInvariant has an explicit atomicity;
//   - a loop's modified variables include every variable assigned in it;
//   - assignment targets are places, and with a locals table, declared
//     locals that may be assigned;
//   - quantifiers and choices carry triggers unless they skip triggering.
type WellFormed struct {
	locals *sst.Locals
}

// NewWellFormed returns a validator. locals may be nil, in which case
// assignment targets are only checked for shape.
func NewWellFormed(locals *sst.Locals) *WellFormed {
	return &WellFormed{locals: locals}
}

// Validate implements Validator.
func (w *WellFormed) Validate(body sst.Stm) []ValidationError {
	var errs []ValidationError
	add := func(err *ValidationError) {
		if err != nil {
			errs = append(errs, *err)
		}
	}
	for node := range sst.Preorder(body) {
		switch n := node.(type) {
		case *sst.Block:
			for i, s := range n.Stms {
				if i != len(n.Stms)-1 {
					add(deadEnd(s))
				}
			}
		case *sst.StmIf:
			add(deadEnd(n.Then))
			add(deadEnd(n.Else))
		case *sst.While:
			add(deadEnd(n.Body))
			errs = append(errs, checkFrame(n)...)
		case *sst.OpenInvariant:
			add(deadEnd(n.Body))
			if n.Atomicity != sst.Atomic && n.Atomicity != sst.NonAtomic {
				err := newError(errors.E5005, n, "open invariant requires an explicit atomicity")
				add(&err)
			}
		case *sst.AssertQuery:
			add(deadEnd(n.Body))
		case *sst.Assign:
			add(w.checkDest(n, n.Lhs))
		case *sst.StmCall:
			if n.Dest != nil {
				add(w.checkDest(n, *n.Dest))
			}
		case *sst.Bind:
			add(checkTriggers(n))
		}
	}
	return errs
}

func deadEnd(s sst.Stm) *ValidationError {
	if _, ok := s.(*sst.DeadEnd); !ok {
		return nil
	}
	err := newError(errors.E5004, s, "dead end must be the last statement of a block")
	return &err
}

func checkFrame(loop *sst.While) []ValidationError {
	frame := map[string]bool{}
	for _, id := range loop.ModifiedVars {
		frame[id.Key()] = true
	}
	var errs []ValidationError
	stms := append([]sst.Stm{}, loop.CondStms...)
	if loop.Body != nil {
		stms = append(stms, loop.Body)
	}
	for _, s := range stms {
		for _, id := range sst.AssignedVars(s) {
			if !frame[id.Key()] {
				frame[id.Key()] = true
				errs = append(errs, newError(errors.E5003, loop,
					"loop modifies '%s' but it is missing from the modified variables", id.Name))
			}
		}
	}
	return errs
}

func (w *WellFormed) checkDest(node sst.Node, dest sst.Dest) *ValidationError {
	var err ValidationError
	root, direct, ok := sst.PlaceRoot(dest.Dest)
	switch {
	case !ok:
		err = newError(errors.E5001, node, "invalid assignment target '%s'", dest.Dest)
	case w.locals == nil:
		return nil
	default:
		d, declared := w.locals.Lookup(root)
		switch {
		case !declared:
			err = newError(errors.E5006, node, "undeclared local '%s'", root.Name)
		case d.Mutable || (dest.IsInit && direct):
			return nil
		default:
			err = newError(errors.E5002, node, "cannot assign to immutable local '%s'", root.Name)
		}
	}
	return &err
}

func checkTriggers(b *sst.Bind) *ValidationError {
	var trigs sst.Trigs
	switch bnd := b.Bnd.(type) {
	case *sst.QuantBnd:
		if bnd.SkipTriggers {
			return nil
		}
		trigs = bnd.Trigs
	case *sst.Choose:
		trigs = bnd.Trigs
	default:
		return nil
	}
	if len(trigs) > 0 {
		return nil
	}
	err := newError(errors.E5008, b, "quantifier has no triggers")
	return &err
}
