// Package extspec checks functions that provide specifications for
// functions defined outside the verified code, and resolves calls to those
// functions to their specifications.
package extspec

import (
	"strings"

	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/deepnoodle-ai/soir/sst"
)

// Visibility is the effective visibility of a function: public, or
// restricted to a module and its descendants.
type Visibility struct {
	Public bool
	Module string
}

// Public returns a public visibility.
func Public() Visibility {
	return Visibility{Public: true}
}

// Restricted returns a visibility limited to module.
func Restricted(module string) Visibility {
	return Visibility{Module: module}
}

// AtLeast reports whether everything that can see other can also see v.
func (v Visibility) AtLeast(other Visibility) bool {
	if v.Public {
		return true
	}
	if other.Public {
		return false
	}
	return other.Module == v.Module || strings.HasPrefix(other.Module, v.Module+"::")
}

func (v Visibility) String() string {
	if v.Public {
		return "pub"
	}
	return "pub(in " + v.Module + ")"
}

// Bound is a trait bound on a type parameter.
type Bound struct {
	Param string
	Trait string
}

func (b Bound) String() string {
	return b.Param + ": " + b.Trait
}

// ItemKind is the kind of item an external_fn_specification directive is
// written on.
type ItemKind int

const (
	ItemFn ItemKind = iota
	ItemConst
	ItemForeignFn
	ItemMethod
	ItemTraitFn
	ItemOther
)

// Function is the signature of a function as the host reports it.
type Function struct {
	Name       sst.Fun
	Pos        token.Position
	Mode       sst.Mode
	Visibility Visibility
	Params     []*sst.Par
	Bounds     []Bound
}

// Proxy is a function marked external_fn_specification. Its body calls
// Target with the proxy's own parameters, in order.
type Proxy struct {
	Function
	Target *Function
	Body   sst.Stm
}
