// Package soir runs the per-declaration pipeline: it classifies the
// annotations of each declaration into verification configuration,
// resolves inheritable directives along the scope chain, registers
// external specifications and checks intermediate-tree bodies.
//
// Declarations are processed concurrently. A declaration that fails is
// reported in its Result and never stops the others.
package soir

import (
	"context"

	"github.com/deepnoodle-ai/soir/attrs"
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/extspec"
	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/deepnoodle-ai/soir/sst"
	"github.com/deepnoodle-ai/soir/syntax"
	"github.com/deepnoodle-ai/soir/triggers"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Declaration is one surface declaration. ID is the item path, such as
// "crate::m::f", and Parent the path of the enclosing item or module.
type Declaration struct {
	ID     string
	Parent string
	Pos    token.Position
	Kind   extspec.ItemKind
	Attrs  []attrs.RawAttr

	// ParseErr holds the syntax errors met while reading annotations that
	// are missing from Attrs. A non-nil ParseErr rejects the declaration.
	ParseErr error

	// Body is the lowered function body, if any. Locals is the table it
	// was built with and may be nil.
	Body   sst.Stm
	Locals *sst.Locals

	// Proxy is the signature of an external_fn_specification function and
	// of its target, as resolved by the host.
	Proxy *extspec.Proxy
}

// Result is the outcome for one declaration. When Err is a classification
// error only ID and Err are set.
type Result struct {
	ID                          string               `json:"id"`
	Attrs                       []attrs.Attr         `json:"-"`
	Directives                  []string             `json:"directives"`
	Mode                        sst.Mode             `json:"mode"`
	Verified                    bool                 `json:"verified"`
	External                    attrs.ExternalAttrs  `json:"external"`
	Verifier                    attrs.VerifierAttrs  `json:"verifier"`
	LoopIsolation               *bool                `json:"loop_isolation,omitempty"`
	AutoExtEqual                attrs.AutoExtEqual   `json:"auto_ext_equal"`
	ExecAllowsNoDecreasesClause bool                 `json:"exec_allows_no_decreases_clause"`
	Err                         error                `json:"-"`
	Diagnostics                 []*errors.Diagnostic `json:"-"`
}

// OK reports whether the declaration was accepted.
func (r *Result) OK() bool {
	return r.Err == nil
}

// Report is the outcome of a Process run. Diagnostics holds every
// diagnostic of the run grouped by declaration, in input order, each group
// in the order it was reported.
type Report struct {
	RunID       uuid.UUID
	Results     []*Result
	Diagnostics []*errors.Diagnostic
}

// Failed returns the results of rejected declarations, in input order.
func (r *Report) Failed() []*Result {
	var out []*Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// NoAutoTrigger returns the functions marked no_auto_trigger.
func (r *Report) NoAutoTrigger() []sst.Fun {
	var out []sst.Fun
	for _, res := range r.Results {
		if res.OK() && res.Verifier.NoAutoTrigger {
			out = append(out, sst.Fun(res.ID))
		}
	}
	return out
}

// TriggerSelector returns a trigger selector that never chooses the
// functions marked no_auto_trigger in this run.
func (r *Report) TriggerSelector(opts ...triggers.Option) *triggers.Selector {
	all := append([]triggers.Option{triggers.WithNoAutoTrigger(r.NoAutoTrigger()...)}, opts...)
	return triggers.New(all...)
}

// Process runs the pipeline over decls. The returned error is non-nil
// only when ctx is cancelled; declaration failures are reported in the
// Report.
func Process(ctx context.Context, decls []Declaration, opts ...Option) (*Report, error) {
	o := collectOptions(opts...)
	runID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	chain := o.chain
	if chain == nil {
		chain = chainOf(decls)
	}
	p := &pipeline{
		opts:     o,
		logger:   o.logger.With().Str("run", runID.String()).Logger(),
		resolver: attrs.NewResolver(chain),
	}
	p.logger.Debug().Int("declarations", len(decls)).Int("concurrency", o.concurrency).Msg("processing")

	results := make([]*Result, len(decls))
	bufs := make([]*errors.Buffer, len(decls))

	err = p.each(ctx, len(decls), func(i int) {
		bufs[i] = &errors.Buffer{}
		results[i] = p.classify(&decls[i], bufs[i])
	})
	if err != nil {
		return nil, err
	}

	// Proxies are registered in input order, so of two proxies for one
	// target the later is rejected. Every proxy is registered before any
	// body is checked, so direct calls to proxies declared later are found.
	for i, res := range results {
		if !res.OK() || !res.Verifier.ExternalFnSpecification {
			continue
		}
		if err := p.registerProxy(&decls[i], res.Mode); err != nil {
			results[i] = p.reject(&decls[i], err, bufs[i])
		}
	}

	all := errors.NewSyncSink(o.diagnostics)
	err = p.each(ctx, len(decls), func(i int) {
		p.check(&decls[i], results[i], bufs[i])
		results[i].Diagnostics = bufs[i].Diagnostics()
		all.Merge(bufs[i])
	})
	if err != nil {
		return nil, err
	}
	var diags []*errors.Diagnostic
	for _, res := range results {
		diags = append(diags, res.Diagnostics...)
	}
	return &Report{RunID: runID, Results: results, Diagnostics: diags}, nil
}

type pipeline struct {
	opts     *options
	logger   zerolog.Logger
	resolver *attrs.Resolver
}

// each calls f for 0..n-1 with at most the configured number running at
// once.
func (p *pipeline) each(ctx context.Context, n int, f func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.concurrency)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *pipeline) classify(decl *Declaration, buf *errors.Buffer) *Result {
	log := p.logger.With().Str("decl", decl.ID).Logger()
	res := &Result{ID: decl.ID}
	fail := func(err error) *Result {
		return p.reject(decl, err, buf)
	}

	list, err := attrs.ParseAttrs(decl.Attrs, buf)
	if decl.ParseErr != nil {
		return fail(errors.Append(decl.ParseErr, err))
	}
	if err != nil {
		return fail(err)
	}
	vs, err := attrs.FoldVerifier(list)
	if err != nil {
		return fail(err)
	}
	es := attrs.FoldExternal(list)
	if err := checkExternal(decl, es); err != nil {
		return fail(err)
	}
	mode := attrs.ModeOr(sst.Exec, list)
	if vs.ExternalFnSpecification {
		if err := extspec.CheckPlacement(decl.Pos, decl.Kind); err != nil {
			return fail(err)
		}
	}

	res.Attrs = list
	res.Directives = make([]string, len(list))
	for i, a := range list {
		res.Directives[i] = a.String()
	}
	res.Mode = mode
	res.External = es
	res.Verifier = vs
	res.Verified = !es.External && (p.opts.defaultVerify || es.VerusMacro || es.Verify)
	if iso, ok := p.resolver.LoopIsolation(decl.ID); ok {
		res.LoopIsolation = &iso
	}
	res.AutoExtEqual = p.resolver.AutoExtEqual(decl.ID)
	res.ExecAllowsNoDecreasesClause = p.resolver.ExecAllowsNoDecreasesClause(decl.ID)

	log.Debug().
		Int("directives", len(list)).
		Str("mode", mode.String()).
		Bool("verified", res.Verified).
		Msg("classified")
	return res
}

// reject records err as the outcome of decl, discarding any partial
// classification.
func (p *pipeline) reject(decl *Declaration, err error, buf *errors.Buffer) *Result {
	res := &Result{ID: decl.ID, Err: single(err)}
	for _, d := range errors.Flatten(err) {
		buf.Report(d)
	}
	p.logger.Warn().Str("decl", decl.ID).Err(res.Err).Msg("declaration rejected")
	return res
}

// checkExternal rejects an item marked external that also carries
// directives that only apply to verified items.
func checkExternal(decl *Declaration, es attrs.ExternalAttrs) error {
	if es.External && (es.Verify || es.ExternalBody || es.AnyOtherVerusSpecificAttribute) {
		return errors.Errorf(decl.Pos, errors.E3008,
			"an item marked 'external' cannot have other verifier attributes")
	}
	return nil
}

func (p *pipeline) registerProxy(decl *Declaration, mode sst.Mode) error {
	if decl.Proxy == nil {
		return nil
	}
	proxy := *decl.Proxy
	proxy.Mode = mode
	if proxy.Name == "" {
		proxy.Name = sst.Fun(decl.ID)
	}
	if !proxy.Pos.IsValid() {
		proxy.Pos = decl.Pos
	}
	return p.opts.registry.Register(&proxy)
}

// check validates the body of an accepted declaration.
func (p *pipeline) check(decl *Declaration, res *Result, buf *errors.Buffer) {
	if res.Err != nil || decl.Body == nil {
		return
	}
	var err error
	validators := []syntax.Validator{
		syntax.NewWellFormed(decl.Locals),
		syntax.NewModeValidator(syntax.ConfigFor(res.Mode)),
	}
	if verrs := syntax.Run(decl.Body, validators...); verrs != nil {
		err = errors.Append(err, verrs.Diagnostics())
	}
	if !res.Verifier.ExternalFnSpecification {
		err = errors.Append(err, p.opts.registry.CheckCalls(decl.Body))
	}
	if err == nil {
		return
	}
	res.Err = single(err)
	for _, d := range errors.Flatten(err) {
		buf.Report(d)
	}
	p.logger.Warn().Str("decl", decl.ID).Err(res.Err).Msg("body rejected")
}

// single unwraps an aggregate holding exactly one diagnostic.
func single(err error) error {
	if diags := errors.Flatten(err); len(diags) == 1 {
		return diags[0]
	}
	return err
}

func chainOf(decls []Declaration) *attrs.MapChain {
	chain := attrs.NewMapChain()
	for _, d := range decls {
		chain.Add(d.ID, d.Parent, d.Attrs...)
	}
	return chain
}
