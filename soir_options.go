package soir

import (
	"runtime"

	"github.com/deepnoodle-ai/soir/attrs"
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/extspec"
	"github.com/rs/zerolog"
)

// Option configures a Process run.
type Option func(*options)

type options struct {
	logger        zerolog.Logger
	concurrency   int
	diagnostics   errors.Sink
	chain         attrs.ScopeChain
	defaultVerify bool
	registry      *extspec.Registry
}

func collectOptions(opts ...Option) *options {
	o := &options{
		logger:      zerolog.Nop(),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if o.registry == nil {
		o.registry = extspec.NewRegistry()
	}
	return o
}

// WithLogger sets the logger used to trace each declaration. By default
// nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithConcurrency bounds the number of declarations processed at once.
// The default is GOMAXPROCS.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// WithDiagnostics forwards every diagnostic to sink as each declaration
// finishes, in addition to collecting them in the Report. Diagnostics of
// one declaration arrive together and in order. Calls to sink are
// serialized.
func WithDiagnostics(sink errors.Sink) Option {
	return func(o *options) {
		o.diagnostics = sink
	}
}

// WithScopeChain sets the scope chain used to resolve inheritable
// directives. By default the chain is built from the declarations' parent
// ids.
func WithScopeChain(chain attrs.ScopeChain) Option {
	return func(o *options) {
		o.chain = chain
	}
}

// WithDefaultVerify marks declarations for verification unless they are
// marked external. Without it only declarations inside the verifier's
// macro or marked verify are verified.
func WithDefaultVerify(verify bool) Option {
	return func(o *options) {
		o.defaultVerify = verify
	}
}

// WithRegistry sets the registry that receives external specifications.
// Sharing a registry across runs lets later runs see earlier proxies.
func WithRegistry(r *extspec.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}
