// Package syntax validates function bodies in the intermediate tree: the
// well-formedness rules every body obeys, and per-mode restrictions on
// which statements may appear.
package syntax

import "github.com/deepnoodle-ai/soir/sst"

// Config controls which statements are disallowed in a body.
// Zero value allows all statements.
type Config struct {
	// Control flow
	DisallowLoops         bool // while
	DisallowOpenInvariant bool // open_atomic_invariant, open_local_invariant

	// Effects
	DisallowExecCalls  bool // calls to exec functions
	DisallowAssignment bool // x = value

	// Proof steps
	DisallowAssume      bool // assume(e)
	DisallowAssertQuery bool // assert ... by(nonlinear_arith), by(bit_vector)
	DisallowFuel        bool // reveal, reveal_with_fuel
}

// Presets for the three function modes.
var (
	// SpecBody allows no effects and no proof steps.
	SpecBody = Config{
		DisallowLoops:         true,
		DisallowOpenInvariant: true,
		DisallowExecCalls:     true,
		DisallowAssignment:    true,
		DisallowAssume:        true,
		DisallowAssertQuery:   true,
		DisallowFuel:          true,
	}

	// ProofBody allows proof steps and invariant opening but no loops and
	// no calls to exec functions.
	ProofBody = Config{
		DisallowLoops:     true,
		DisallowExecCalls: true,
	}

	// ExecBody allows everything.
	ExecBody = Config{}
)

// ConfigFor returns the preset for functions of mode m.
func ConfigFor(m sst.Mode) Config {
	switch m {
	case sst.Spec:
		return SpecBody
	case sst.Proof:
		return ProofBody
	default:
		return ExecBody
	}
}
