package syntax

import (
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/sst"
)

// ModeValidator validates a body against a Config.
type ModeValidator struct {
	config Config
}

// NewModeValidator creates a validator for the given configuration.
func NewModeValidator(config Config) *ModeValidator {
	return &ModeValidator{config: config}
}

// Validate checks the body against the configuration.
func (v *ModeValidator) Validate(body sst.Stm) []ValidationError {
	var errs []ValidationError

	for node := range sst.Preorder(body) {
		if err := v.checkNode(node); err != nil {
			errs = append(errs, *err)
		}
	}

	return errs
}

func (v *ModeValidator) checkNode(node sst.Node) *ValidationError {
	var msg string
	switch n := node.(type) {
	case *sst.While:
		if v.config.DisallowLoops {
			msg = "loops are not allowed here"
		}

	case *sst.OpenInvariant:
		if v.config.DisallowOpenInvariant {
			msg = "opening an invariant is not allowed here"
		}

	case *sst.StmCall:
		if v.config.DisallowExecCalls && n.Mode == sst.Exec {
			msg = "cannot call exec function " + n.Fun.Name() + " here"
		}

	case *sst.Assign:
		if v.config.DisallowAssignment {
			msg = "assignment is not allowed here"
		}

	case *sst.Assume:
		if v.config.DisallowAssume {
			msg = "assume is not allowed here"
		}

	case *sst.AssertQuery:
		if v.config.DisallowAssertQuery {
			msg = "assert-by queries are not allowed here"
		}

	case *sst.Fuel:
		if v.config.DisallowFuel {
			msg = "reveal is not allowed here"
		}
	}

	if msg == "" {
		return nil
	}
	err := newError(errors.E5007, node, "%s", msg)
	return &err
}
