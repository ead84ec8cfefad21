package sst

import "fmt"

// BlankIdentifier is the name of a discarded binding. It is never resolved.
const BlankIdentifier = "_"

// Locals tracks the local variables declared in a function body. A child
// table represents a nested block. All tables of one body share a
// per-name counter, so every declaration gets a distinct UniqueIdent even
// when it shadows an earlier one.
type Locals struct {
	id       string
	parent   *Locals
	children []*Locals
	byName   map[string]*LocalDecl
	body     *bodyLocals
}

// bodyLocals is the state shared by all tables of one body.
type bodyLocals struct {
	decls    []*LocalDecl
	counters map[string]uint64
}

// NewLocals returns the root table of a function body.
func NewLocals() *Locals {
	return &Locals{
		id:     "root",
		byName: map[string]*LocalDecl{},
		body:   &bodyLocals{counters: map[string]uint64{}},
	}
}

// NewBlock returns a table for a block nested in t.
func (t *Locals) NewBlock() *Locals {
	child := &Locals{
		id:     fmt.Sprintf("%s.%d", t.id, len(t.children)),
		parent: t,
		byName: map[string]*LocalDecl{},
		body:   t.body,
	}
	t.children = append(t.children, child)
	return child
}

func (t *Locals) ID() string {
	return t.id
}

// Parent returns the enclosing table, or nil for the root.
func (t *Locals) Parent() *Locals {
	return t.parent
}

// Declare adds a local to this table. A name declared again shadows the
// earlier declaration, which keeps its own identifier.
func (t *Locals) Declare(name string, typ Typ, mutable bool) *LocalDecl {
	n := t.body.counters[name]
	t.body.counters[name] = n + 1
	d := &LocalDecl{Ident: LocalIdent(name, n), Typ: typ, Mutable: mutable}
	t.body.decls = append(t.body.decls, d)
	if name != BlankIdentifier {
		t.byName[name] = d
	}
	return d
}

// Resolve finds the innermost visible declaration of name.
func (t *Locals) Resolve(name string) (*LocalDecl, bool) {
	if name == BlankIdentifier {
		return nil, false
	}
	for cur := t; cur != nil; cur = cur.parent {
		if d, ok := cur.byName[name]; ok {
			return d, true
		}
	}
	return nil, false
}

// Lookup finds a declaration of the body by identifier, whether or not it
// is visible from t.
func (t *Locals) Lookup(id UniqueIdent) (*LocalDecl, bool) {
	if id.Local == nil {
		return nil, false
	}
	for _, d := range t.body.decls {
		if d.Ident.Equal(id) {
			return d, true
		}
	}
	return nil, false
}

// Visible returns the declarations visible from t in declaration order.
// Shadowed declarations are omitted.
func (t *Locals) Visible() []*LocalDecl {
	var out []*LocalDecl
	for _, d := range t.body.decls {
		if vis, ok := t.Resolve(d.Ident.Name); ok && vis == d {
			out = append(out, d)
		}
	}
	return out
}

// Decls returns every declaration of the body in declaration order.
func (t *Locals) Decls() []*LocalDecl {
	return t.body.decls
}

// AllNames returns the names visible from t, for suggestions.
func (t *Locals) AllNames() []string {
	seen := map[string]bool{}
	var names []string
	for cur := t; cur != nil; cur = cur.parent {
		for name := range cur.byName {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
