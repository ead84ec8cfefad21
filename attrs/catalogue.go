package attrs

import (
	stderrors "errors"
	"sort"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/sst"
)

// scope is the set of prefixes a directive may appear under.
type scope uint8

const (
	inVerifier scope = 1 << iota
	inInternal
	inVerus
)

func scopeOf(p Prefix) scope {
	switch p {
	case PrefixVerifier:
		return inVerifier
	case PrefixInternal:
		return inInternal
	case PrefixVerus:
		return inVerus
	}
	return 0
}

// arity is the set of argument shapes a directive accepts.
type arity uint8

const (
	bare    arity = 1 << iota // name
	oneLeaf                   // name(x)
	leaves                    // name(x, y, ...), at least one, all leaves
	anyArgs                   // checked by the builder
)

func (a arity) accepts(t Tree) bool {
	if a&anyArgs != 0 {
		return true
	}
	if t.IsLeaf() {
		return a&bare != 0
	}
	names, ok := t.LeafArgs()
	if !ok || len(names) == 0 {
		return false
	}
	if len(names) == 1 && a&oneLeaf != 0 {
		return true
	}
	return a&leaves != 0
}

// directive is one catalogue entry.
type directive struct {
	name       string
	scopes     scope
	arity      arity
	deprecated string
	build      func(t Tree) ([]Attr, error)
}

// errNoMatch tells the classifier that a builder did not recognize the
// argument shape, so the annotation is reported as unrecognized.
var errNoMatch = stderrors.New("no match")

func just(kinds ...Kind) func(Tree) ([]Attr, error) {
	return func(Tree) ([]Attr, error) {
		out := make([]Attr, len(kinds))
		for i, k := range kinds {
			out[i] = simple(k)
		}
		return out, nil
	}
}

func one(a Attr) func(Tree) ([]Attr, error) {
	return func(Tree) ([]Attr, error) {
		return []Attr{a}, nil
	}
}

func nothing(Tree) ([]Attr, error) {
	return nil, nil
}

func modeAttr(m sst.Mode) func(Tree) ([]Attr, error) {
	return func(t Tree) ([]Attr, error) {
		if t.IsLeaf() {
			return []Attr{{Kind: KindMode, Mode: m}}, nil
		}
		if m == sst.Spec && t.Args[0].Name == "checked" {
			return []Attr{{Kind: KindMode, Mode: m}, simple(KindCheckRecommends)}, nil
		}
		return nil, errNoMatch
	}
}

func returnMode(t Tree) ([]Attr, error) {
	m, ok := sst.ParseMode(t.Args[0].Name)
	if !ok {
		return nil, errNoMatch
	}
	return []Attr{{Kind: KindReturnMode, Mode: m}}, nil
}

func ghost(g GhostBlock) func(Tree) ([]Attr, error) {
	return one(Attr{Kind: KindGhostBlock, GhostBlock: g})
}

// typeParam builds a recursion-policy directive with an optional type
// parameter name.
func typeParam(kind Kind) func(Tree) ([]Attr, error) {
	return func(t Tree) ([]Attr, error) {
		a := simple(kind)
		if !t.IsLeaf() {
			a.Name = t.Args[0].Name
		}
		return []Attr{a}, nil
	}
}

func withName(kind Kind) func(Tree) ([]Attr, error) {
	return func(t Tree) ([]Attr, error) {
		return []Attr{{Kind: kind, Name: t.Args[0].Name}}, nil
	}
}

func trigger(t Tree) ([]Attr, error) {
	if t.IsLeaf() {
		return []Attr{simple(KindTrigger)}, nil
	}
	groups := []uint64{}
	for _, arg := range t.Args {
		if !arg.IsLeaf() {
			return nil, errors.Errorf(t.Pos, errors.E2003, "expected integer constant, found %s", arg)
		}
		id, err := strconv.ParseUint(arg.Name, 10, 64)
		if err != nil {
			return nil, errors.Errorf(t.Pos, errors.E2003, "expected integer constant, found %s", arg)
		}
		groups = append(groups, id)
	}
	if len(groups) == 0 {
		return nil, errors.Errorf(t.Pos, errors.E2003,
			"expected either #[trigger] or non-empty #[trigger(...)]")
	}
	return []Attr{{Kind: KindTrigger, Groups: groups}}, nil
}

func loopIsolation(t Tree) ([]Attr, error) {
	if t.IsLeaf() {
		return []Attr{{Kind: KindLoopIsolation, Flag: true}}, nil
	}
	switch t.Args[0].Name {
	case "true":
		return []Attr{{Kind: KindLoopIsolation, Flag: true}}, nil
	case "false":
		return []Attr{{Kind: KindLoopIsolation, Flag: false}}, nil
	}
	return nil, errNoMatch
}

func autoExtEqual(t Tree) ([]Attr, error) {
	if t.IsLeaf() {
		return nil, errNoMatch
	}
	var places AutoExtEqual
	for _, arg := range t.Args {
		if !arg.IsLeaf() {
			return nil, errAutoExtEqual(t)
		}
		switch arg.Name {
		case "assert":
			places.Assert = true
		case "assert_by":
			places.AssertBy = true
		case "ensures":
			places.Ensures = true
		case "invariant":
			places.Invariant = true
		default:
			return nil, errAutoExtEqual(t)
		}
	}
	return []Attr{{Kind: KindAutoExtEqual, ExtEqual: places}}, nil
}

func errAutoExtEqual(t Tree) error {
	return errors.Errorf(t.Pos, errors.E2003,
		"expected `assert`, `assert_by`, and/or `ensures` for auto_ext_equal")
}

func rlimit(t Tree) ([]Attr, error) {
	r, err := strconv.ParseFloat(t.Args[0].Name, 32)
	if err != nil {
		return nil, errors.Errorf(t.Pos, errors.E2003, "expected number, or `infinity` for rlimit")
	}
	return []Attr{{Kind: KindRLimit, RLimit: r}}, nil
}

func externalDerive(t Tree) ([]Attr, error) {
	if t.IsLeaf() {
		return []Attr{simple(KindExternalAutoDerives)}, nil
	}
	seen := map[string]bool{}
	derives := []string{}
	for _, arg := range t.Args {
		for _, name := range strings.Split(arg.Name, ",") {
			name = strings.TrimSpace(name)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			derives = append(derives, name)
		}
	}
	return []Attr{{Kind: KindExternalAutoDerives, Derives: derives}}, nil
}

func externalTraitSpecification(t Tree) ([]Attr, error) {
	assoc := "ExternalTraitSpecificationFor"
	if !t.IsLeaf() {
		assoc = t.Args[0].Name
	}
	return []Attr{{Kind: KindExternalTraitSpecification, Name: assoc}}, nil
}

func externalTraitExtension(t Tree) ([]Attr, error) {
	if len(t.Args) != 3 || t.Args[1].Name != "via" {
		return nil, errNoMatch
	}
	return []Attr{{Kind: KindExternalTraitExtension, Name: t.Args[0].Name, Via: t.Args[2].Name}}, nil
}

func prover(t Tree) ([]Attr, error) {
	switch t.Args[0].Name {
	case "nonlinear_arith":
		return []Attr{simple(KindNonLinear)}, nil
	case "bit_vector":
		return []Attr{simple(KindBitVector)}, nil
	case "integer_ring":
		return []Attr{simple(KindIntegerRing)}, nil
	}
	return nil, errors.Errorf(t.Pos, errors.E2003, "invalid prover")
}

func invalidTrigger(t Tree) ([]Attr, error) {
	return nil, errors.Errorf(t.Pos, errors.E2003,
		"invalid trigger attribute: to provide a trigger expression, use the #![trigger <expr>] attribute")
}

const both = inVerifier | inInternal

var directives = []directive{
	// Modes and triggers are accepted under both prefixes.
	{name: "spec", scopes: both, arity: bare | oneLeaf, build: modeAttr(sst.Spec)},
	{name: "proof", scopes: both, arity: bare, build: modeAttr(sst.Proof)},
	{name: "exec", scopes: both, arity: bare, build: modeAttr(sst.Exec)},
	{name: "trigger", scopes: both, arity: anyArgs, build: trigger},
	{name: "auto_trigger", scopes: both, arity: bare, build: just(KindAutoTrigger)},
	{name: "all_triggers", scopes: both, arity: bare, build: just(KindAllTriggers)},
	{name: "verus_macro", scopes: both, arity: bare, build: just(KindVerusMacro)},
	{name: "proof_block", scopes: both, arity: bare, build: ghost(GhostProof)},
	{name: "external_body", scopes: both, arity: bare, build: just(KindExternalBody)},
	{name: "returns", scopes: both, arity: oneLeaf, build: returnMode},
	{name: "external_fn_specification", scopes: both, arity: bare, build: just(KindExternalFnSpecification)},

	{name: "external", scopes: inVerifier, arity: bare, build: just(KindExternal)},
	{name: "verify", scopes: inVerifier, arity: bare, build: just(KindVerify)},
	{name: "opaque", scopes: inVerifier, arity: bare, build: just(KindOpaque)},
	{name: "opaque_outside_module", scopes: inVerifier, arity: bare, build: just(KindOpaqueOutsideModule)},
	{name: "inline", scopes: inVerifier, arity: bare, build: just(KindInline)},
	{name: "ext_equal", scopes: inVerifier, arity: bare, build: just(KindExtEqual)},
	{name: "ghost_block_wrapped", scopes: inVerifier, arity: bare, build: ghost(GhostWrapped)},
	{name: "tracked_block_wrapped", scopes: inVerifier, arity: bare, build: ghost(GhostTrackedWrapped)},
	{name: "tracked_block", scopes: inVerifier, arity: bare, build: ghost(GhostTracked)},
	{name: "ghost_wrapper", scopes: inVerifier, arity: bare, build: ghost(GhostWrapper)},
	{name: "proof_in_spec", scopes: inVerifier, arity: bare, build: just(KindProofInSpec)},
	{name: "reject_recursive_types", scopes: inVerifier, arity: bare | oneLeaf, build: typeParam(KindRejectRecursiveTypes)},
	{name: "maybe_negative", scopes: inVerifier, arity: bare, build: typeParam(KindRejectRecursiveTypes),
		deprecated: "use #[verifier::reject_recursive_types] instead"},
	{name: "reject_recursive_types_in_ground_variants", scopes: inVerifier, arity: bare | oneLeaf,
		build: typeParam(KindRejectGroundRecursiveTypes)},
	{name: "accept_recursive_types", scopes: inVerifier, arity: bare | oneLeaf, build: typeParam(KindAcceptRecursiveTypes)},
	{name: "strictly_positive", scopes: inVerifier, arity: bare, build: typeParam(KindAcceptRecursiveTypes),
		deprecated: "use #[verifier::accept_recursive_types] instead"},
	{name: "broadcast_forall", scopes: inVerifier, arity: bare, build: just(KindBroadcastForall),
		deprecated: "use `broadcast proof fn` instead"},
	{name: "prune_unless_this_module_is_used", scopes: inVerifier, arity: bare, build: nothing,
		deprecated: "this has no effect"},
	{name: "broadcast_use_by_default_when_this_crate_is_imported", scopes: inVerifier, arity: bare,
		build: just(KindRevealedByDefaultWhenThisCrateIsImported)},
	{name: "no_auto_trigger", scopes: inVerifier, arity: bare, build: just(KindNoAutoTrigger)},
	{name: "when_used_as_spec", scopes: inVerifier, arity: oneLeaf, build: withName(KindAutospec)},
	{name: "allow_in_spec", scopes: inVerifier, arity: bare, build: just(KindAllowInSpec)},
	{name: "atomic", scopes: inVerifier, arity: bare, build: just(KindAtomic)},
	{name: "invariant_block", scopes: inVerifier, arity: bare, build: just(KindInvariantBlock)},
	{name: "custom_req_err", scopes: inVerifier, arity: oneLeaf, build: withName(KindCustomReqErr)},
	{name: "custom_err", scopes: inVerifier, arity: oneLeaf, build: withName(KindCustomErr)},
	{name: "bit_vector", scopes: inVerifier, arity: bare, build: just(KindBitVector)},
	{name: "decreases_by", scopes: inVerifier, arity: bare, build: just(KindDecreasesBy)},
	{name: "recommends_by", scopes: inVerifier, arity: bare, build: just(KindDecreasesBy)},
	{name: "integer_ring", scopes: inVerifier, arity: bare, build: just(KindIntegerRing)},
	{name: "nonlinear", scopes: inVerifier, arity: bare, build: just(KindNonLinear)},
	{name: "spinoff_prover", scopes: inVerifier, arity: bare, build: just(KindSpinoffProver)},
	{name: "loop_isolation", scopes: inVerifier, arity: bare | oneLeaf, build: loopIsolation},
	{name: "auto_ext_equal", scopes: inVerifier, arity: anyArgs, build: autoExtEqual},
	{name: "memoize", scopes: inVerifier, arity: bare, build: just(KindMemoize)},
	{name: "rlimit", scopes: inVerifier, arity: oneLeaf, build: rlimit},
	{name: "truncate", scopes: inVerifier, arity: bare, build: just(KindTruncate)},
	{name: "external_type_specification", scopes: inVerifier, arity: bare, build: just(KindExternalTypeSpecification)},
	{name: "external_derive", scopes: inVerifier, arity: bare | leaves, build: externalDerive},
	{name: "external_trait_specification", scopes: inVerifier, arity: bare | oneLeaf, build: externalTraitSpecification},
	{name: "external_trait_extension", scopes: inVerifier, arity: leaves, build: externalTraitExtension},
	{name: "sealed", scopes: inVerifier, arity: bare, build: just(KindSealed)},
	{name: "prophetic", scopes: inVerifier, arity: bare, build: just(KindProphecyDependent)},
	{name: "type_invariant", scopes: inVerifier, arity: bare, build: just(KindTypeInvariantFn)},
	{name: "invalid_trigger_attribute", scopes: inVerifier, arity: bare, build: invalidTrigger},
	{name: "assume_termination", scopes: inVerifier, arity: bare, build: just(KindAssumeTermination)},
	{name: "exec_allows_no_decreases_clause", scopes: inVerifier, arity: bare, build: just(KindExecAllowNoDecreasesClause)},

	{name: "infer_mode", scopes: inInternal, arity: bare, build: just(KindInferMode)},
	{name: "external_trait_blanket", scopes: inInternal, arity: bare, build: just(KindExternalTraitBlanket)},
	{name: "open", scopes: inInternal, arity: bare, build: one(Attr{Kind: KindPublish, Publish: PublishOpen})},
	{name: "closed", scopes: inInternal, arity: bare, build: one(Attr{Kind: KindPublish, Publish: PublishClosed})},
	{name: "uninterp", scopes: inInternal, arity: bare, build: one(Attr{Kind: KindPublish, Publish: PublishUninterp})},
	{name: "reveal_group", scopes: inInternal, arity: bare, build: just(KindRevealGroup)},
	{name: "header_unwrap_parameter", scopes: inInternal, arity: bare, build: just(KindUnwrapParameter)},
	{name: "reveal_fn", scopes: inInternal, arity: bare, build: just(KindInternalRevealFn)},
	{name: "const_body", scopes: inInternal, arity: bare, build: just(KindInternalConstBody)},
	{name: "const_header_wrapper", scopes: inInternal, arity: bare, build: just(KindInternalEnsuresWrapper)},
	{name: "broadcast_use_reveal", scopes: inInternal, arity: bare, build: just(KindBroadcastUseReveal)},
	{name: "broadcast_forall", scopes: inInternal, arity: bare, build: just(KindBroadcastForall)},
	{name: "for_loop", scopes: inInternal, arity: bare, build: just(KindForLoop)},
	{name: "auto_decreases", scopes: inInternal, arity: bare, build: just(KindAutoDecreases)},
	{name: "prover", scopes: inInternal, arity: oneLeaf, build: prover},
	{name: "via", scopes: inInternal, arity: bare, build: just(KindDecreasesBy)},
	{name: "unwrapped_binding", scopes: inInternal, arity: bare, build: just(KindUnwrappedBinding)},
	{name: "size_of", scopes: inInternal, arity: bare, build: just(KindSizeOfGlobal)},
	{name: "item_broadcast_use", scopes: inInternal, arity: bare, build: just(KindItemBroadcastUse)},
	{name: "get_field_many_variants", scopes: inInternal, arity: bare, build: just(KindInternalGetFieldManyVariants)},
	{name: "size_of_broadcast_proof", scopes: inInternal, arity: bare, build: just(KindSizeOfBroadcastProof)},
	{name: "open_visibility_qualifier", scopes: inInternal, arity: bare, build: just(KindOpenVisibilityQualifier)},
	{name: "unerased_proxy", scopes: inInternal, arity: bare, build: just(KindUnerasedProxy)},
	{name: "uses_unerased_proxy", scopes: inInternal, arity: bare, build: just(KindUsesUnerasedProxy)},
	{name: "encoded_const", scopes: inInternal, arity: bare, build: just(KindEncodedConst)},
	{name: "encoded_static", scopes: inInternal, arity: bare, build: just(KindEncodedStatic)},

	{name: "trusted", scopes: inVerus, arity: bare, build: just(KindTrusted)},
}

// catalogue indexes directives by prefix scope and name.
var catalogue = func() map[scope]map[string]*directive {
	idx := map[scope]map[string]*directive{}
	for i := range directives {
		d := &directives[i]
		for _, s := range []scope{inVerifier, inInternal, inVerus} {
			if d.scopes&s == 0 {
				continue
			}
			if idx[s] == nil {
				idx[s] = map[string]*directive{}
			}
			idx[s][d.name] = d
		}
	}
	return idx
}()

func lookup(p Prefix, name string) (*directive, bool) {
	d, ok := catalogue[scopeOf(p)][name]
	return d, ok
}

// Names returns the directive names accepted under a prefix, sorted.
func Names(p Prefix) []string {
	entries := catalogue[scopeOf(p)]
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
