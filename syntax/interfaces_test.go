package syntax

import (
	stderrors "errors"
	"testing"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/deepnoodle-ai/soir/sst"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noPos token.Position

// sample returns a small body: assume(f(x)); secret(x)
func sample(t *testing.T) sst.Stm {
	t.Helper()
	b := sst.NewBuilder(nil)
	x := b.Bound(noPos, "x", sst.TypInt)
	call, err := b.CallStm(noPos, "crate::secret", sst.Exec, nil, []sst.Exp{x}, nil)
	require.Nil(t, err)
	body, err := b.Block(noPos, b.Assume(noPos, b.Call(noPos, sst.TypBool, "crate::f", nil, x)), call)
	require.Nil(t, err)
	return body
}

func TestValidatorFunc(t *testing.T) {
	called := false
	validator := ValidatorFunc(func(body sst.Stm) []ValidationError {
		called = true
		return nil
	})

	errs := validator.Validate(sample(t))

	assert.True(t, called)
	assert.Len(t, errs, 0)
}

func TestValidatorFuncReturnsErrors(t *testing.T) {
	validator := ValidatorFunc(func(body sst.Stm) []ValidationError {
		return []ValidationError{
			{Message: "custom error 1"},
			{Message: "custom error 2"},
		}
	})

	errs := validator.Validate(sample(t))

	require.Len(t, errs, 2)
	assert.Equal(t, "custom error 1", errs[0].Message)
	assert.Equal(t, "custom error 2", errs[1].Message)
}

func TestValidatorFuncWithNodeInspection(t *testing.T) {
	noSecrets := ValidatorFunc(func(body sst.Stm) []ValidationError {
		var errs []ValidationError
		for node := range sst.Preorder(body) {
			if call, ok := node.(*sst.StmCall); ok && call.Fun.Name() == "secret" {
				errs = append(errs, newError(errors.E5007, node, "calling 'secret' is not allowed"))
			}
		}
		return errs
	})

	errs := noSecrets.Validate(sample(t))
	require.Len(t, errs, 1)
	assert.Equal(t, "calling 'secret' is not allowed", errs[0].Message)

	b := sst.NewBuilder(nil)
	clean, err := b.Block(noPos, b.Assume(noPos, b.Bool(noPos, true)))
	require.Nil(t, err)
	assert.Len(t, noSecrets.Validate(clean), 0)
}

func TestRun(t *testing.T) {
	body := sample(t)
	require.Nil(t, Run(body, NewModeValidator(ExecBody), NewWellFormed(nil)))

	errs := Run(body, NewModeValidator(SpecBody), NewModeValidator(ProofBody))
	require.NotNil(t, errs)
	// Spec bodies reject the assume and the call; proof bodies the call.
	require.Len(t, errs.Errors, 3)
	assert.Equal(t, "assume is not allowed here", errs.Errors[0].Message)
	assert.Equal(t, "cannot call exec function secret here", errs.Errors[1].Message)
}

func TestValidationErrorFormatting(t *testing.T) {
	e := ValidationError{Message: "loops are not allowed here"}
	assert.Equal(t, "loops are not allowed here at line 1, column 1", e.Error())

	e.Position = token.Position{File: "lib.rs", Line: 2, Column: 4}
	assert.Equal(t, "loops are not allowed here at lib.rs:3:5", e.Error())

	errs := NewValidationErrors(nil)
	assert.Equal(t, "no validation errors", errs.Error())
	assert.Nil(t, errs.Unwrap())

	errs = NewValidationErrors([]ValidationError{e, {Message: "second"}})
	assert.Contains(t, errs.Error(), "2 validation errors:")
	var first *ValidationError
	require.True(t, stderrors.As(errs, &first))
	assert.Equal(t, "loops are not allowed here", first.Message)
}

func TestValidationErrorsDiagnostics(t *testing.T) {
	errs := Run(sample(t), NewModeValidator(SpecBody))
	require.NotNil(t, errs)
	diags := errors.Flatten(errs.Diagnostics())
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, errors.E5007, d.Code)
		assert.True(t, d.IsFatal())
	}
	assert.Equal(t, "assume is not allowed here", diags[0].Message)
}
