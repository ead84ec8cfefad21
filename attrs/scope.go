package attrs

import "iter"

// ScopeChain gives read access to the definitional ancestry of
// declarations. Implementations must be safe for concurrent reads.
type ScopeChain interface {
	// Parent returns the enclosing declaration of id, if any.
	Parent(id string) (string, bool)
	// Attrs returns the raw annotations written on id.
	Attrs(id string) []RawAttr
}

// Resolver resolves inheritable directives by walking a ScopeChain from a
// declaration outward. The nearest declaration that carries the directive
// wins and shadowed outer values are never reported.
type Resolver struct {
	chain ScopeChain
}

// NewResolver returns a Resolver over chain.
func NewResolver(chain ScopeChain) *Resolver {
	return &Resolver{chain: chain}
}

// Scopes yields id and each of its ancestors with their classified
// directives, nearest first. Declarations whose annotations fail to
// classify contribute no directives. A cycle in the chain ends the walk.
func (r *Resolver) Scopes(id string) iter.Seq2[string, []Attr] {
	return func(yield func(string, []Attr) bool) {
		seen := map[string]bool{}
		for cur, ok := id, true; ok && !seen[cur]; cur, ok = r.chain.Parent(cur) {
			seen[cur] = true
			if !yield(cur, ParseAttrsOpt(r.chain.Attrs(cur))) {
				return
			}
		}
	}
}

// find returns the directive of the given kind from the nearest scope that
// has one. Within one declaration the last occurrence wins, matching the
// folded records.
func (r *Resolver) find(id string, kind Kind) (Attr, bool) {
	for _, attrs := range r.Scopes(id) {
		for i := len(attrs) - 1; i >= 0; i-- {
			if attrs[i].Kind == kind {
				return attrs[i], true
			}
		}
	}
	return Attr{}, false
}

// LoopIsolation returns the loop isolation setting in effect for id.
func (r *Resolver) LoopIsolation(id string) (bool, bool) {
	a, ok := r.find(id, KindLoopIsolation)
	return a.Flag, ok
}

// AutoExtEqual returns the places where == is promoted to extensional
// equality for id. Nothing is promoted by default.
func (r *Resolver) AutoExtEqual(id string) AutoExtEqual {
	a, _ := r.find(id, KindAutoExtEqual)
	return a.ExtEqual
}

// ExecAllowsNoDecreasesClause reports whether id or an enclosing
// declaration allows exec functions without a decreases clause.
func (r *Resolver) ExecAllowsNoDecreasesClause(id string) bool {
	_, ok := r.find(id, KindExecAllowNoDecreasesClause)
	return ok
}

// MapChain is an in-memory ScopeChain. It is safe for concurrent reads once
// populated.
type MapChain struct {
	parents map[string]string
	attrs   map[string][]RawAttr
}

// NewMapChain returns an empty MapChain.
func NewMapChain() *MapChain {
	return &MapChain{
		parents: map[string]string{},
		attrs:   map[string][]RawAttr{},
	}
}

// Add registers a declaration. An empty parent marks a root.
func (c *MapChain) Add(id, parent string, attrs ...RawAttr) {
	if parent != "" {
		c.parents[id] = parent
	}
	c.attrs[id] = attrs
}

// Parent implements ScopeChain.
func (c *MapChain) Parent(id string) (string, bool) {
	p, ok := c.parents[id]
	return p, ok
}

// Attrs implements ScopeChain.
func (c *MapChain) Attrs(id string) []RawAttr {
	return c.attrs[id]
}

// Has reports whether id was registered.
func (c *MapChain) Has(id string) bool {
	_, ok := c.attrs[id]
	return ok
}
