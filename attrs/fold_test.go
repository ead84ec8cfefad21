package attrs

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/sst"
	"github.com/stretchr/testify/require"
)

func TestFoldVerifier(t *testing.T) {
	attrs, err := ParseAttrs(raws(t,
		"#[verifier::opaque]",
		"#[verus::internal(open)]",
		"#[verifier::rlimit(10)]",
		"#[verifier::loop_isolation(false)]",
		"#[verifier::when_used_as_spec(len_spec)]",
		"#[verifier::external_trait_extension(Spec via Impl)]",
		"#[verifier::spec(checked)]",
	), nil)
	require.Nil(t, err)

	vs, err := FoldVerifier(attrs)
	require.Nil(t, err)
	require.True(t, vs.Opaque)
	require.Equal(t, PublishOpen, *vs.Publish)
	require.Equal(t, RLimit(10), *vs.RLimit)
	require.False(t, *vs.LoopIsolation)
	require.Equal(t, "len_spec", *vs.Autospec)
	require.Equal(t, &TraitExtension{Spec: "Spec", Impl: "Impl"}, vs.ExternalTraitExtension)
	require.True(t, vs.SetsMode)
	require.True(t, vs.CheckRecommends)
	require.False(t, vs.Inline)
	require.Nil(t, vs.CustomReqErr)
}

func TestFoldLastWins(t *testing.T) {
	attrs, err := ParseAttrs(raws(t,
		"#[verus::internal(open)]",
		"#[verifier::rlimit(5)]",
		"#[verus::internal(closed)]",
		"#[verifier::rlimit(infinity)]",
	), nil)
	require.Nil(t, err)
	vs := FoldVerifierNoCheck(attrs)
	require.Equal(t, PublishClosed, *vs.Publish)
	require.True(t, math.IsInf(float64(*vs.RLimit), 1))
}

func TestFoldIdempotent(t *testing.T) {
	attrs, err := ParseAttrs(raws(t,
		"#[verifier::external_body]",
		"#[verifier::memoize]",
		"#[verifier::accept_recursive_types(T)]",
	), nil)
	require.Nil(t, err)
	doubled := append(append([]Attr{}, attrs...), attrs[:2]...)
	require.Equal(t, FoldVerifierNoCheck(attrs), FoldVerifierNoCheck(doubled))
	require.Equal(t, FoldExternal(attrs), FoldExternal(doubled))
}

func TestFoldRecursiveTypes(t *testing.T) {
	attrs, err := ParseAttrs(raws(t,
		"#[verifier::reject_recursive_types(A)]",
		"#[verifier::accept_recursive_types(B)]",
		"#[verifier::reject_recursive_types_in_ground_variants(C)]",
		"#[verifier::accept_recursive_types]",
	), nil)
	require.Nil(t, err)
	vs := FoldVerifierNoCheck(attrs)
	require.Equal(t, []RecursiveType{
		{Param: "A", Policy: RecursionReject},
		{Param: "B", Policy: RecursionAccept},
		{Param: "C", Policy: RecursionRejectInGround},
	}, vs.AcceptRecursiveTypeList)
	require.True(t, vs.AcceptRecursiveTypes)
	require.False(t, vs.RejectRecursiveTypes)
	require.False(t, vs.RejectRecursiveTypesInGroundVariants)
}

func TestFoldUnsupportedRustc(t *testing.T) {
	attrs, err := ParseAttrs(raws(t, "#[rustc_nounwind]", "#[verifier::opaque]", "#[rustc_legacy]"), nil)
	require.Nil(t, err)
	require.Len(t, attrs, 3)

	_, err = FoldVerifier(attrs)
	require.NotNil(t, err)
	d, ok := errors.AsDiagnostic(err)
	require.True(t, ok)
	require.Equal(t, errors.E2004, d.Code)
	require.Equal(t, "The attribute `rustc_legacy` is not supported", d.Message)

	vs := FoldVerifierNoCheck(attrs)
	require.True(t, vs.Opaque)
}

func TestFoldExternal(t *testing.T) {
	tests := []struct {
		input    []string
		expected ExternalAttrs
	}{
		{nil, ExternalAttrs{}},
		{[]string{"#[verifier::external]"}, ExternalAttrs{External: true}},
		{[]string{"#[verifier::external_body]", "#[verifier::spec]"},
			ExternalAttrs{ExternalBody: true, SetsMode: true}},
		{[]string{"#[verus::trusted]", "#[rustc_nounwind]"}, ExternalAttrs{}},
		{[]string{"#[verifier::opaque]"}, ExternalAttrs{AnyOtherVerusSpecificAttribute: true}},
		{[]string{"#[verifier::external_derive]"},
			ExternalAttrs{ExternalAutoDerives: AutoDerives{Policy: AutoDerivesAllExternal}}},
		{[]string{"#[verifier::external_derive(Clone)]"},
			ExternalAttrs{ExternalAutoDerives: AutoDerives{Policy: AutoDerivesSomeExternal, Names: []string{"Clone"}}}},
		{[]string{"#[verus::internal(uses_unerased_proxy)]", "#[verus::internal(external_trait_blanket)]"},
			ExternalAttrs{UsesUnerasedProxy: true, ExternalTraitBlanket: true}},
	}
	for _, tt := range tests {
		attrs, err := ParseAttrs(raws(t, tt.input...), nil)
		require.Nil(t, err)
		require.Equal(t, tt.expected, FoldExternal(attrs), tt.input)
	}
}

func TestVerifierAttrsJSON(t *testing.T) {
	attrs, err := ParseAttrs(raws(t, "#[verifier::rlimit(infinity)]", "#[verus::internal(uninterp)]"), nil)
	require.Nil(t, err)
	data, err := json.Marshal(FoldVerifierNoCheck(attrs))
	require.Nil(t, err)

	var out map[string]any
	require.Nil(t, json.Unmarshal(data, &out))
	require.Equal(t, "infinity", out["rlimit"])
	require.Equal(t, "uninterp", out["publish"])
	require.Nil(t, out["autospec"])
	require.Equal(t, false, out["opaque"])

	attrs, err = ParseAttrs(raws(t, "#[verifier::rlimit(2.5)]"), nil)
	require.Nil(t, err)
	data, err = json.Marshal(FoldVerifierNoCheck(attrs))
	require.Nil(t, err)
	require.Nil(t, json.Unmarshal(data, &out))
	require.Equal(t, 2.5, out["rlimit"])
}

func TestQueries(t *testing.T) {
	attrs, err := ParseAttrs(raws(t,
		"#[verifier::proof]",
		"#[verifier::returns(spec)]",
		"#[verifier::returns(exec)]",
		"#[verifier::custom_err(\"first\")]",
		"#[verifier::custom_err(\"second\")]",
		"#[verifier::sealed]",
	), nil)
	require.Nil(t, err)

	m, ok := ModeOf(attrs)
	require.True(t, ok)
	require.Equal(t, sst.Proof, m)
	require.Equal(t, sst.Exec, RetMode(sst.Proof, attrs))
	require.Equal(t, sst.Spec, RetMode(sst.Proof, nil))
	require.Equal(t, sst.Exec, RetMode(sst.Exec, nil))
	require.Equal(t, sst.Spec, VarMode(sst.Proof, nil))
	require.Equal(t, sst.Proof, VarMode(sst.Exec, attrs))
	require.Equal(t, sst.Exec, ModeOr(sst.Exec, nil))
	require.Equal(t, []string{"first", "second"}, CustomErrors(attrs))
	require.True(t, IsSealed(attrs))
	require.False(t, IsProofInSpec(attrs))
	_, ok = GhostBlockOf(attrs)
	require.False(t, ok)

	blocks, err := ParseAttrs(raws(t, "#[verifier::ghost_block_wrapped]", "#[verifier::proof_in_spec]"), nil)
	require.Nil(t, err)
	g, ok := GhostBlockOf(blocks)
	require.True(t, ok)
	require.Equal(t, GhostWrapped, g)
	require.True(t, IsProofInSpec(blocks))
}

func TestTriggerAnnotations(t *testing.T) {
	attrs, err := ParseAttrs(raws(t,
		"#[verifier::trigger]",
		"#[verifier::trigger(3, 1)]",
		"#[verifier::auto_trigger]",
		"#[verifier::all_triggers]",
	), nil)
	require.Nil(t, err)
	got := Triggers(attrs)
	require.Len(t, got, 5)
	require.Equal(t, TriggerAnnotation{Kind: TriggerManual}, got[0])
	require.Equal(t, uint64(3), *got[1].Group)
	require.Equal(t, uint64(1), *got[2].Group)
	require.Equal(t, TriggerAuto, got[3].Kind)
	require.Equal(t, TriggerAll, got[4].Kind)
}
