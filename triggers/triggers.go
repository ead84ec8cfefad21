// Package triggers validates the trigger groups of quantifiers and chooses
// triggers automatically when none are marked.
package triggers

import (
	"strconv"

	"github.com/deepnoodle-ai/soir/attrs"
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/deepnoodle-ai/soir/sst"
)

// Policy controls how a quantifier without manual triggers gets them.
type Policy int

const (
	// Default picks the best automatic group and reports a note when the
	// choice was ambiguous.
	Default Policy = iota
	// Auto accepts the automatically chosen group silently.
	Auto
	// All uses every admissible group of the smallest size.
	All
)

func (p Policy) String() string {
	switch p {
	case Auto:
		return "auto"
	case All:
		return "all"
	default:
		return "default"
	}
}

// PolicyOf derives the policy from the trigger annotations written on a
// quantifier. all_triggers takes precedence over auto_trigger.
func PolicyOf(anns []attrs.TriggerAnnotation) Policy {
	p := Default
	for _, a := range anns {
		switch a.Kind {
		case attrs.TriggerAll:
			p = All
		case attrs.TriggerAuto:
			if p == Default {
				p = Auto
			}
		}
	}
	return p
}

// Selector implements sst.TriggerSelector.
type Selector struct {
	policy   Policy
	noAuto   map[sst.Fun]bool
	sink     errors.Sink
	maxTerms int
}

// Option configures a Selector.
type Option func(*Selector)

// WithPolicy sets the policy for quantifiers without manual triggers.
func WithPolicy(p Policy) Option {
	return func(s *Selector) {
		s.policy = p
	}
}

// WithNoAutoTrigger excludes calls to funs from automatic selection.
func WithNoAutoTrigger(funs ...sst.Fun) Option {
	return func(s *Selector) {
		for _, f := range funs {
			s.noAuto[f] = true
		}
	}
}

// WithSink sets the sink that receives notes about automatic choices.
func WithSink(sink errors.Sink) Option {
	return func(s *Selector) {
		s.sink = sink
	}
}

// WithMaxTerms bounds the number of terms in an automatically chosen
// group. The default is 3.
func WithMaxTerms(n int) Option {
	return func(s *Selector) {
		s.maxTerms = n
	}
}

// New returns a Selector configured with opts.
func New(opts ...Option) *Selector {
	s := &Selector{
		noAuto:   map[sst.Fun]bool{},
		sink:     errors.Discard,
		maxTerms: 3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithPolicy returns a copy of s using policy p.
func (s *Selector) WithPolicy(p Policy) *Selector {
	c := *s
	c.policy = p
	return &c
}

// SelectTriggers returns the trigger groups of a quantifier. Explicit
// groups given with WithTriggers and groups of terms marked with Trigger
// are validated and returned; otherwise groups are chosen automatically
// according to the policy.
func (s *Selector) SelectTriggers(pos token.Position, binders []sst.Binder[sst.Typ], body sst.Exp) (sst.Trigs, error) {
	if manual := Manual(body); len(manual) > 0 {
		for _, g := range manual {
			if err := ValidateGroup(binders, body, g); err != nil {
				return nil, err
			}
		}
		return manual, nil
	}

	found := s.search(binders, body)
	if len(found) == 0 {
		return nil, errors.Errorf(pos, errors.E4004, msgNoInfer)
	}
	switch s.policy {
	case All:
		out := make(sst.Trigs, len(found))
		for i, g := range found {
			out[i] = g.trig()
		}
		return out, nil
	case Default:
		if len(found) > 1 {
			chosen := sst.Trigs{found[0].trig()}
			s.sink.Report(errors.Notef(pos, errors.W1002, msgAutoNote, chosen).
				WithNote(strconv.Itoa(len(found)-1) + " other trigger groups were possible; " +
					"use #[trigger] or #![auto] to make the choice explicit"))
		}
	}
	return sst.Trigs{found[0].trig()}, nil
}

// Manual returns the manual trigger groups of a quantifier body. Explicit
// groups of a WithTriggers body are returned as given. Otherwise terms
// marked with Trigger are grouped by group id in order of first
// appearance, with marks removed. Marks under nested binders belong to the
// nested quantifier and are skipped.
func Manual(body sst.Exp) sst.Trigs {
	if w, ok := body.(*sst.WithTriggers); ok {
		out := make(sst.Trigs, len(w.Trigs))
		for i, g := range w.Trigs {
			out[i] = make(sst.Trig, len(g))
			for j, t := range g {
				out[i][j] = strip(t)
			}
		}
		return out
	}
	type key struct {
		set bool
		id  uint64
	}
	var order []key
	groups := map[key]sst.Trig{}
	sst.Inspect(body, func(n sst.Node) bool {
		switch x := n.(type) {
		case *sst.Bind:
			_, isLet := x.Bnd.(*sst.Let)
			return isLet
		case *sst.Unary:
			if x.Op != sst.Trigger {
				return true
			}
			k := key{}
			if x.Group != nil {
				k = key{set: true, id: *x.Group}
			}
			if _, ok := groups[k]; !ok {
				order = append(order, k)
			}
			groups[k] = append(groups[k], strip(x.X))
		}
		return true
	})
	out := make(sst.Trigs, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}
	return out
}

// Mark wraps e in a trigger mark for each manual trigger annotation
// written on it. Other annotations are ignored.
func Mark(b *sst.Builder, e sst.Exp, anns []attrs.TriggerAnnotation) sst.Exp {
	for _, a := range anns {
		if a.Kind == attrs.TriggerManual {
			e = b.Trigger(e, a.Group)
		}
	}
	return e
}
