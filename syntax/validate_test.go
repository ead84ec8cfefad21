package syntax

import (
	"testing"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/sst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statements returns one statement of each restricted kind, keyed by a
// short name.
func statements(t *testing.T) map[string]sst.Stm {
	t.Helper()
	b := sst.NewBuilder(nil)
	x := b.Declare("x", sst.TypInt, true)
	xv, err := b.Local(noPos, "x")
	require.Nil(t, err)
	empty, err := b.Block(noPos)
	require.Nil(t, err)
	tru := b.Bool(noPos, true)

	loop, err := b.While(noPos, nil, b.Bool(noPos, false), empty, nil, nil)
	require.Nil(t, err)
	open, err := b.OpenInvariant(noPos, b.Bound(noPos, "inv", sst.NewTyp("LocalInvariant")), sst.LocalIdent("v", 0), sst.TypInt, empty, sst.NonAtomic)
	require.Nil(t, err)
	execCall, err := b.CallStm(noPos, "crate::push", sst.Exec, nil, []sst.Exp{xv}, nil)
	require.Nil(t, err)
	proofCall, err := b.CallStm(noPos, "crate::lemma", sst.Proof, nil, []sst.Exp{xv}, nil)
	require.Nil(t, err)
	assign, err := b.Assign(noPos, sst.Dest{Dest: b.VarLoc(noPos, x)}, b.Int(noPos, sst.TypInt, 1))
	require.Nil(t, err)
	query, err := b.AssertQuery(noPos, sst.QueryNonLinear, b.Assert(noPos, tru, nil))
	require.Nil(t, err)

	return map[string]sst.Stm{
		"while":      loop,
		"open":       open,
		"exec call":  execCall,
		"proof call": proofCall,
		"assign":     assign,
		"assume":     b.Assume(noPos, tru),
		"query":      query,
		"fuel":       b.Fuel(noPos, "crate::f", 1),
		"assert":     b.Assert(noPos, tru, nil),
		"bit vector": b.AssertBitVector(noPos, tru),
	}
}

func TestModeValidatorPresets(t *testing.T) {
	tests := []struct {
		mode    sst.Mode
		allowed []string
	}{
		{sst.Spec, []string{"proof call", "assert", "bit vector"}},
		{sst.Proof, []string{"open", "proof call", "assign", "assume", "query", "fuel", "assert", "bit vector"}},
		{sst.Exec, []string{"while", "open", "exec call", "proof call", "assign", "assume", "query", "fuel", "assert", "bit vector"}},
	}
	stms := statements(t)
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			validator := NewModeValidator(ConfigFor(tt.mode))
			allowed := map[string]bool{}
			for _, name := range tt.allowed {
				allowed[name] = true
			}
			for name, s := range stms {
				errs := validator.Validate(s)
				if allowed[name] {
					assert.Len(t, errs, 0, "unexpected error for %s", name)
					continue
				}
				if assert.Len(t, errs, 1, "expected error for %s", name) {
					assert.Equal(t, errors.E5007, errs[0].Code)
					assert.Same(t, s, errs[0].Node)
				}
			}
		})
	}
}

func TestModeValidatorNested(t *testing.T) {
	b := sst.NewBuilder(nil)
	inner, err := b.Block(noPos, b.Assume(noPos, b.Bool(noPos, true)))
	require.Nil(t, err)
	ifs, err := b.If(noPos, b.Bool(noPos, true), inner, nil)
	require.Nil(t, err)
	body, err := b.Block(noPos, ifs)
	require.Nil(t, err)

	errs := NewModeValidator(Config{DisallowAssume: true}).Validate(body)
	require.Len(t, errs, 1)
	assert.Equal(t, "assume is not allowed here", errs[0].Message)
	assert.Len(t, NewModeValidator(Config{}).Validate(body), 0)
}

func TestWellFormedDeadEnd(t *testing.T) {
	assume := &sst.Assume{Cond: &sst.Const{Meta: sst.Meta{Type: sst.TypBool}, Value: sst.BoolConst(false)}}
	dead := &sst.DeadEnd{Body: assume}

	errs := NewWellFormed(nil).Validate(&sst.Block{Stms: []sst.Stm{assume, dead}})
	assert.Len(t, errs, 0)

	errs = NewWellFormed(nil).Validate(&sst.Block{Stms: []sst.Stm{dead, assume}})
	require.Len(t, errs, 1)
	assert.Equal(t, errors.E5004, errs[0].Code)

	errs = NewWellFormed(nil).Validate(&sst.StmIf{Cond: assume.Cond, Then: dead, Else: dead})
	assert.Len(t, errs, 2)

	errs = NewWellFormed(nil).Validate(&sst.While{CondExp: assume.Cond, Body: dead})
	require.Len(t, errs, 1)
	assert.Equal(t, errors.E5004, errs[0].Code)
}

func TestWellFormedOpenInvariant(t *testing.T) {
	body := &sst.Block{}
	errs := NewWellFormed(nil).Validate(&sst.OpenInvariant{Body: body})
	require.Len(t, errs, 1)
	assert.Equal(t, errors.E5005, errs[0].Code)
	assert.Equal(t, "open invariant requires an explicit atomicity", errs[0].Message)

	assert.Len(t, NewWellFormed(nil).Validate(&sst.OpenInvariant{Body: body, Atomicity: sst.Atomic}), 0)
}

func TestWellFormedLoopFrame(t *testing.T) {
	b := sst.NewBuilder(nil)
	i := b.Declare("i", sst.TypInt, true)
	j := b.Declare("j", sst.TypInt, true)
	one := b.Int(noPos, sst.TypInt, 1)
	setI := &sst.Assign{Lhs: sst.Dest{Dest: b.VarLoc(noPos, i)}, Rhs: one}
	setJ := &sst.Assign{Lhs: sst.Dest{Dest: b.VarLoc(noPos, j)}, Rhs: one}
	loop := &sst.While{
		CondStms:     []sst.Stm{setJ},
		CondExp:      b.Bool(noPos, true),
		Body:         &sst.Block{Stms: []sst.Stm{setI, setI}},
		ModifiedVars: []sst.UniqueIdent{i.Ident},
	}

	errs := NewWellFormed(b.Locals()).Validate(loop)
	require.Len(t, errs, 1)
	assert.Equal(t, errors.E5003, errs[0].Code)
	assert.Equal(t, "loop modifies 'j' but it is missing from the modified variables", errs[0].Message)

	loop.ModifiedVars = append(loop.ModifiedVars, j.Ident)
	assert.Len(t, NewWellFormed(b.Locals()).Validate(loop), 0)
}

func TestWellFormedAssignTargets(t *testing.T) {
	b := sst.NewBuilder(nil)
	fixed := b.Declare("fixed", sst.TypInt, false)
	one := b.Int(noPos, sst.TypInt, 1)

	tests := []struct {
		name string
		stm  sst.Stm
		code errors.ErrorCode
	}{
		{"not a place", &sst.Assign{Lhs: sst.Dest{Dest: one}, Rhs: one}, errors.E5001},
		{"undeclared", &sst.Assign{Lhs: sst.Dest{Dest: b.Bound(noPos, "ghost", sst.TypInt)}, Rhs: one}, errors.E5006},
		{"immutable", &sst.Assign{Lhs: sst.Dest{Dest: b.VarLoc(noPos, fixed)}, Rhs: one}, errors.E5002},
		{"call destination", &sst.StmCall{Fun: "crate::f", Dest: &sst.Dest{Dest: b.VarLoc(noPos, fixed)}}, errors.E5002},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := NewWellFormed(b.Locals()).Validate(tt.stm)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
		})
	}

	initAssign := &sst.Assign{Lhs: sst.Dest{Dest: b.VarLoc(noPos, fixed), IsInit: true}, Rhs: one}
	assert.Len(t, NewWellFormed(b.Locals()).Validate(initAssign), 0)

	// Without a locals table only the shape is checked.
	assert.Len(t, NewWellFormed(nil).Validate(tests[2].stm), 0)
	assert.Len(t, NewWellFormed(nil).Validate(tests[0].stm), 1)
}

func TestWellFormedTriggers(t *testing.T) {
	b := sst.NewBuilder(nil)
	x := b.Bound(noPos, "x", sst.TypInt)
	f := b.Call(noPos, sst.TypBool, "crate::f", nil, x)
	binders := []sst.Binder[sst.Typ]{{Name: "x", A: sst.TypInt}}

	missing := &sst.Bind{Meta: sst.Meta{Type: sst.TypBool}, Bnd: &sst.QuantBnd{Quant: sst.Forall, Binders: binders}, Body: f}
	errs := NewWellFormed(nil).Validate(b.Assume(noPos, missing))
	require.Len(t, errs, 1)
	assert.Equal(t, errors.E5008, errs[0].Code)

	chosen := &sst.Bind{Meta: sst.Meta{Type: sst.TypBool}, Bnd: &sst.QuantBnd{Quant: sst.Forall, Binders: binders, Trigs: sst.Trigs{{f}}}, Body: f}
	assert.Len(t, NewWellFormed(nil).Validate(b.Assume(noPos, chosen)), 0)

	skipped := b.QuantNoTriggers(noPos, sst.Exists, binders, f)
	assert.Len(t, NewWellFormed(nil).Validate(b.Assume(noPos, skipped)), 0)

	choose := &sst.Bind{Meta: sst.Meta{Type: sst.TypInt}, Bnd: &sst.Choose{Binders: binders, Cond: f}, Body: x}
	errs = NewWellFormed(nil).Validate(b.Assume(noPos, b.Binary(noPos, sst.Eq, choose, x)))
	require.Len(t, errs, 1)
	assert.Equal(t, errors.E5008, errs[0].Code)
}
