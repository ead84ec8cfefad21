package sst

import (
	"testing"

	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/stretchr/testify/require"
)

func TestExpString(t *testing.T) {
	b := NewBuilder(nil)
	a := b.Bound(noPos, "a", TypInt)
	c := b.Bound(noPos, "c", TypInt)
	one := b.Int(noPos, TypInt, 1)
	sum := b.Binary(noPos, Add, a, one)

	tests := []struct {
		exp      Exp
		expected string
	}{
		{sum, "a + 1"},
		{b.Bool(noPos, true), "true"},
		{b.Call(noPos, TypBool, "crate::m::f", nil, sum, c), "f(a + 1, c)"},
		{b.Unary(noPos, TypBool, Not, b.Binary(noPos, Le, a, c)), "!(a <= c)"},
		{b.Trigger(sum, nil), "a + 1"},
		{b.Cond(noPos, b.Bool(noPos, false), a, c), "(if false then a else c)"},
		{b.Field(noPos, TypInt, a, "S", "S", "len"), "a.len"},
		{b.UnaryOpr(noPos, TypInt, Opr{Kind: Box, Typ: TypInt}, a), "box(a)"},
		{b.UnaryOpr(noPos, TypBool, Opr{Kind: IsVariant, Variant: "Some"}, a), "a.is_type(Some)"},
		{b.Ctor(noPos, NewTyp("P"), "crate::P", "P", Binder[Exp]{Name: "x", A: a}, Binder[Exp]{Name: "y", A: one}), "P(a, 1)"},
		{b.Let(noPos, []Binder[Exp]{{Name: "x", A: one}}, sum), "let x = 1 in a + 1"},
		{b.Lambda(noPos, NewTyp("FnSpec"), []Binder[Typ]{{Name: "x", A: TypInt}}, sum), "(|x| a + 1)"},
		{b.QuantNoTriggers(noPos, Forall, []Binder[Typ]{{Name: "a", A: TypInt}, {Name: "c", A: TypInt}}, b.Binary(noPos, Ge, sum, c)),
			"Forall a, c, a + 1 >= c"},
		{b.CallLambda(noPos, TypInt, b.Bound(noPos, "g", NewTyp("FnSpec")), a), "g(a)"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.exp.String())
	}
}

func TestStmString(t *testing.T) {
	b := NewBuilder(nil)
	x := b.Declare("x", TypInt, true)
	xv, err := b.Local(noPos, "x")
	require.Nil(t, err)
	zero := b.Int(noPos, TypInt, 0)

	assign, err := b.Assign(noPos, Dest{Dest: b.VarLoc(noPos, x)}, zero)
	require.Nil(t, err)
	require.Equal(t, "&x = 0", assign.String())

	block, err := b.Block(noPos, b.Assert(noPos, b.Binary(noPos, Eq, xv, zero), nil), b.Fuel(noPos, "crate::f", 2))
	require.Nil(t, err)
	require.Equal(t, "{ assert(x == 0); fuel(f, 2) }", block.String())

	ifs, err := b.If(noPos, b.Bool(noPos, true), block, nil)
	require.Nil(t, err)
	require.Equal(t, "if true { assert(x == 0); fuel(f, 2) }", ifs.String())

	empty, err := b.Block(noPos)
	require.Nil(t, err)
	loop, err := b.While(noPos, nil, b.Binary(noPos, Lt, xv, zero), empty, []Exp{b.Bool(noPos, true)}, nil)
	require.Nil(t, err)
	require.Equal(t, "while x < 0 invariant true {}", loop.String())
}

func TestPreorder(t *testing.T) {
	b := NewBuilder(nil)
	a := b.Bound(noPos, "a", TypInt)
	one := b.Int(noPos, TypInt, 1)
	sum := b.Binary(noPos, Add, a, one)
	call := b.Call(noPos, TypBool, "crate::f", nil, sum)
	assume := b.Assume(noPos, call)
	block, err := b.Block(noPos, assume)
	require.Nil(t, err)

	var got []Node
	for n := range Preorder(block) {
		got = append(got, n)
	}
	require.Equal(t, []Node{block, assume, call, sum, a, one}, got)

	// Stop early.
	got = nil
	for n := range Preorder(block) {
		got = append(got, n)
		if n == Node(call) {
			break
		}
	}
	require.Len(t, got, 3)

	// Inspect can prune subtrees.
	var visited int
	Inspect(block, func(n Node) bool {
		visited++
		_, isCall := n.(*Call)
		return !isCall
	})
	require.Equal(t, 3, visited)
}

func TestWalkSkipsSelectedTriggers(t *testing.T) {
	b := NewBuilder(TriggerSelectorFunc(func(_ token.Position, _ []Binder[Typ], body Exp) (Trigs, error) {
		return Trigs{{body}}, nil
	}))
	x := b.Bound(noPos, "x", TypInt)
	call := b.Call(noPos, TypBool, "crate::f", nil, x)
	q, err := b.Quant(noPos, Forall, []Binder[Typ]{{Name: "x", A: TypInt}}, call)
	require.Nil(t, err)

	var calls int
	for n := range Preorder(q) {
		if n == Node(call) {
			calls++
		}
	}
	require.Equal(t, 1, calls)

	manual := b.WithTriggers(noPos, Trigs{{call}}, b.Bool(noPos, true))
	calls = 0
	for n := range Preorder(manual) {
		if n == Node(call) {
			calls++
		}
	}
	require.Equal(t, 1, calls)
}
