package sst

import "iter"

// Visitor is called for each node visited by Walk. If Visit returns nil,
// the children of the node are skipped; otherwise the returned Visitor is
// used for them.
type Visitor interface {
	Visit(node Node) (w Visitor)
}

// Walk traverses a tree in depth-first order, calling v.Visit for node and
// then walking each child with the visitor it returned.
//
// The trigger groups stored on a validated quantifier are not walked since
// they repeat terms of the body. Explicit WithTriggers terms are walked.
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}
	for _, child := range children(node) {
		Walk(v, child)
	}
}

// Inspect walks the tree rooted at node, calling f for each node. Children
// are skipped when f returns false.
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Preorder returns an iterator over all nodes of the tree rooted at root in
// depth-first preorder.
func Preorder(root Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		var visit func(Node) bool
		visit = func(n Node) bool {
			if !yield(n) {
				return false
			}
			for _, child := range children(n) {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		visit(root)
	}
}

func children(node Node) []Node {
	var out []Node
	add := func(ns ...Node) {
		for _, n := range ns {
			if n != nil {
				out = append(out, n)
			}
		}
	}
	addExps := func(es []Exp) {
		for _, e := range es {
			add(e)
		}
	}
	addStms := func(ss []Stm) {
		for _, s := range ss {
			add(s)
		}
	}
	switch n := node.(type) {
	// Expressions
	case *Const, *Var, *VarLoc, *VarAt, *Old:
		// No children
	case *Loc:
		add(n.X)
	case *Call:
		addExps(n.Args)
	case *CallLambda:
		add(n.Fn)
		addExps(n.Args)
	case *Ctor:
		for _, f := range n.Fields {
			add(f.A)
		}
	case *Unary:
		add(n.X)
	case *UnaryOpr:
		add(n.X)
	case *Binary:
		add(n.X, n.Y)
	case *If:
		add(n.Cond, n.Then, n.Else)
	case *WithTriggers:
		for _, t := range n.Trigs {
			addExps(t)
		}
		add(n.Body)
	case *Bind:
		switch b := n.Bnd.(type) {
		case *Let:
			for _, bd := range b.Binders {
				add(bd.A)
			}
		case *Choose:
			add(b.Cond)
		}
		add(n.Body)

	// Statements
	case *StmCall:
		addExps(n.Args)
		if n.Dest != nil {
			add(n.Dest.Dest)
		}
	case *Assert:
		add(n.Cond)
	case *AssertBitVector:
		add(n.Cond)
	case *Assume:
		add(n.Cond)
	case *Assign:
		add(n.Lhs.Dest, n.Rhs)
	case *Fuel:
		// No children
	case *DeadEnd:
		add(n.Body)
	case *StmIf:
		add(n.Cond, n.Then, n.Else)
	case *While:
		addStms(n.CondStms)
		add(n.CondExp)
		addExps(n.Invs)
		add(n.Body)
	case *OpenInvariant:
		add(n.Inv, n.Body)
	case *Block:
		addStms(n.Stms)
	case *AssertQuery:
		add(n.Body)
	}
	return out
}
