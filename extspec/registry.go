package extspec

import (
	"sort"
	"sync"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/deepnoodle-ai/soir/sst"
)

const (
	msgDuplicate  = "duplicate specification for '%s'"
	msgVisibility = "a function marked 'external_fn_specification' must be at least as visible as the function it provides a spec for"
	msgParams     = "params do not match"
	msgBound      = "extra trait bound"
	msgDirectCall = "cannot call function marked 'external_fn_specification' directly; call '%s' instead"
	msgMode       = "a function marked 'external_fn_specification' cannot be marked '%s'"
	msgNoCall     = "the body of a function marked 'external_fn_specification' must call the function it provides a spec for"
	msgHere       = "'external_fn_specification' attribute not supported here"
	msgConst      = "'external_fn_specification' attribute not yet supported for const"
	msgForeign    = "'external_fn_specification' attribute not supported on foreign items"
)

// CheckPlacement checks that an external_fn_specification directive is
// written on a free function.
func CheckPlacement(pos token.Position, kind ItemKind) error {
	switch kind {
	case ItemFn:
		return nil
	case ItemConst:
		return errors.Errorf(pos, errors.E3007, msgConst)
	case ItemForeignFn:
		return errors.Errorf(pos, errors.E3007, msgForeign)
	default:
		return errors.Errorf(pos, errors.E3007, msgHere)
	}
}

// Registry records the proxies of a crate. It is safe for concurrent use.
type Registry struct {
	mutex    sync.RWMutex
	byTarget map[sst.Fun]*Proxy
	byProxy  map[sst.Fun]*Proxy
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byTarget: map[sst.Fun]*Proxy{},
		byProxy:  map[sst.Fun]*Proxy{},
	}
}

// Register checks p and records it as the specification of its target.
// A target may have at most one specification.
func (r *Registry) Register(p *Proxy) error {
	if err := Check(p); err != nil {
		return err
	}
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.byTarget[p.Target.Name]; exists {
		return errors.Errorf(p.Pos, errors.E3001, msgDuplicate, p.Target.Name)
	}
	r.byTarget[p.Target.Name] = p
	r.byProxy[p.Name] = p
	return nil
}

// Check validates a proxy on its own: its mode, its body, its trait bounds
// and its visibility.
func Check(p *Proxy) error {
	if p.Mode != sst.Exec {
		return errors.Errorf(p.Pos, errors.E3006, msgMode, p.Mode)
	}
	call, ok := targetCall(p.Body)
	if !ok || call.fun != p.Target.Name {
		return errors.Errorf(p.Pos, errors.E3003, msgNoCall)
	}
	if !paramsMatch(p, call.args) {
		return errors.Errorf(call.pos, errors.E3003, msgParams)
	}
	for _, b := range p.Bounds {
		if !hasBound(p.Target.Bounds, b) {
			return errors.Errorf(p.Pos, errors.E3004, msgBound).WithNote("bound " + b.String() + " is not required by " + string(p.Target.Name))
		}
	}
	if !p.Visibility.AtLeast(p.Target.Visibility) {
		return errors.Errorf(p.Pos, errors.E3002, msgVisibility)
	}
	return nil
}

// Resolve returns the function whose specification is used for calls to
// fun: its proxy when one is registered, otherwise fun itself.
func (r *Registry) Resolve(fun sst.Fun) (sst.Fun, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if p, ok := r.byTarget[fun]; ok {
		return p.Name, true
	}
	return fun, false
}

// Lookup returns the proxy registered for target.
func (r *Registry) Lookup(target sst.Fun) (*Proxy, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	p, ok := r.byTarget[target]
	return p, ok
}

// CheckCall rejects a direct call to a proxy.
func (r *Registry) CheckCall(pos token.Position, fun sst.Fun) error {
	r.mutex.RLock()
	p, ok := r.byProxy[fun]
	r.mutex.RUnlock()
	if !ok {
		return nil
	}
	return errors.Errorf(pos, errors.E3005, msgDirectCall, p.Target.Name)
}

// CheckCalls checks every call in body with CheckCall and returns the
// errors found, in preorder.
func (r *Registry) CheckCalls(body sst.Node) error {
	var result error
	for n := range sst.Preorder(body) {
		var err error
		switch x := n.(type) {
		case *sst.Call:
			err = r.CheckCall(x.Pos(), x.Fun)
		case *sst.StmCall:
			err = r.CheckCall(x.Pos(), x.Fun)
		}
		if err != nil {
			result = errors.Append(result, err)
		}
	}
	return result
}

// Proxies returns the registered proxies ordered by target name.
func (r *Registry) Proxies() []*Proxy {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]*Proxy, 0, len(r.byTarget))
	for _, p := range r.byTarget {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Target.Name < out[j].Target.Name
	})
	return out
}

type call struct {
	pos  token.Position
	fun  sst.Fun
	args []sst.Exp
}

// targetCall finds the single call in a proxy body. The body is a call
// statement or a block holding one, optionally followed by statements that
// make no calls.
func targetCall(body sst.Stm) (call, bool) {
	var found []call
	if body == nil {
		return call{}, false
	}
	for n := range sst.Preorder(body) {
		switch x := n.(type) {
		case *sst.StmCall:
			found = append(found, call{pos: x.Pos(), fun: x.Fun, args: x.Args})
		case *sst.Call:
			found = append(found, call{pos: x.Pos(), fun: x.Fun, args: x.Args})
		}
	}
	if len(found) != 1 {
		return call{}, false
	}
	return found[0], true
}

// paramsMatch reports whether args are exactly the proxy parameters in
// order, and whether their number matches the target's parameters.
func paramsMatch(p *Proxy, args []sst.Exp) bool {
	if len(args) != len(p.Params) {
		return false
	}
	if p.Target.Params != nil && len(p.Target.Params) != len(p.Params) {
		return false
	}
	for i, arg := range args {
		name, ok := argName(arg)
		if !ok || name != p.Params[i].Name {
			return false
		}
	}
	return true
}

func argName(e sst.Exp) (string, bool) {
	switch x := e.(type) {
	case *sst.Var:
		return x.Ident.Name, true
	case *sst.VarLoc:
		return x.Ident.Name, true
	case *sst.Loc:
		return argName(x.X)
	}
	return "", false
}

func hasBound(bounds []Bound, b Bound) bool {
	for _, have := range bounds {
		if have == b {
			return true
		}
	}
	return false
}
