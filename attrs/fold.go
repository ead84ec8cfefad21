package attrs

import (
	"encoding/json"
	"math"

	"github.com/deepnoodle-ai/soir/errors"
)

// AutoDerivesPolicy says which auto-derived impls of a type are external.
type AutoDerivesPolicy int

const (
	AutoDerivesRegular AutoDerivesPolicy = iota
	AutoDerivesAllExternal
	AutoDerivesSomeExternal
)

func (p AutoDerivesPolicy) MarshalText() ([]byte, error) {
	switch p {
	case AutoDerivesAllExternal:
		return []byte("all_external"), nil
	case AutoDerivesSomeExternal:
		return []byte("some_external"), nil
	default:
		return []byte("regular"), nil
	}
}

// AutoDerives is the folded form of external_derive.
type AutoDerives struct {
	Policy AutoDerivesPolicy `json:"policy"`
	Names  []string          `json:"names,omitempty"`
}

// ExternalAttrs holds what is needed to decide whether a declaration is
// verified at all. The zero value is the default.
type ExternalAttrs struct {
	External                       bool        `json:"external"`
	ExternalBody                   bool        `json:"external_body"`
	ExternalFnSpecification        bool        `json:"external_fn_specification"`
	ExternalTypeSpecification      bool        `json:"external_type_specification"`
	ExternalTraitSpecification     bool        `json:"external_trait_specification"`
	ExternalTraitBlanket           bool        `json:"external_trait_blanket"`
	SetsMode                       bool        `json:"sets_mode"`
	Verify                         bool        `json:"verify"`
	VerusMacro                     bool        `json:"verus_macro"`
	SizeOfGlobal                   bool        `json:"size_of_global"`
	AnyOtherVerusSpecificAttribute bool        `json:"any_other_verus_specific_attribute"`
	InternalGetFieldManyVariants   bool        `json:"internal_get_field_many_variants"`
	ExternalAutoDerives            AutoDerives `json:"external_auto_derives"`
	UsesUnerasedProxy              bool        `json:"uses_unerased_proxy"`
}

// FoldExternal reduces directives into an ExternalAttrs record.
func FoldExternal(attrs []Attr) ExternalAttrs {
	var es ExternalAttrs
	for _, a := range attrs {
		switch a.Kind {
		case KindExternalBody:
			es.ExternalBody = true
		case KindExternalFnSpecification:
			es.ExternalFnSpecification = true
		case KindExternalTypeSpecification:
			es.ExternalTypeSpecification = true
		case KindExternalTraitSpecification:
			es.ExternalTraitSpecification = true
		case KindExternal:
			es.External = true
		case KindVerify:
			es.Verify = true
		case KindMode:
			es.SetsMode = true
		case KindVerusMacro:
			es.VerusMacro = true
		case KindSizeOfGlobal:
			es.SizeOfGlobal = true
		case KindInternalGetFieldManyVariants:
			es.InternalGetFieldManyVariants = true
		case KindExternalTraitBlanket:
			es.ExternalTraitBlanket = true
		case KindExternalAutoDerives:
			if a.Derives == nil {
				es.ExternalAutoDerives = AutoDerives{Policy: AutoDerivesAllExternal}
			} else {
				es.ExternalAutoDerives = AutoDerives{Policy: AutoDerivesSomeExternal, Names: a.Derives}
			}
		case KindUsesUnerasedProxy:
			es.UsesUnerasedProxy = true
		case KindTrusted, KindUnsupportedRustcAttr:
		default:
			es.AnyOtherVerusSpecificAttribute = true
		}
	}
	return es
}

// RecursionPolicy is the per-type-parameter recursion acceptance policy.
type RecursionPolicy int

const (
	RecursionReject RecursionPolicy = iota
	RecursionRejectInGround
	RecursionAccept
)

func (p RecursionPolicy) MarshalText() ([]byte, error) {
	switch p {
	case RecursionRejectInGround:
		return []byte("reject_in_ground"), nil
	case RecursionAccept:
		return []byte("accept"), nil
	default:
		return []byte("reject"), nil
	}
}

// RecursiveType is one entry of VerifierAttrs.AcceptRecursiveTypeList.
type RecursiveType struct {
	Param  string          `json:"param"`
	Policy RecursionPolicy `json:"policy"`
}

// TraitExtension names the spec trait and its implementing trait.
type TraitExtension struct {
	Spec string `json:"spec"`
	Impl string `json:"impl"`
}

// RLimit is a resource limit override. Positive infinity means no limit.
type RLimit float64

func (r RLimit) MarshalJSON() ([]byte, error) {
	if math.IsInf(float64(r), 1) {
		return []byte(`"infinity"`), nil
	}
	return json.Marshal(float64(r))
}

// VerifierAttrs is the full verification configuration of a declaration.
// The zero value is the default; optional settings are nil until set.
type VerifierAttrs struct {
	VerusMacro                                   bool            `json:"verus_macro"`
	ExternalBody                                 bool            `json:"external_body"`
	Opaque                                       bool            `json:"opaque"`
	Publish                                      *Publish        `json:"publish"`
	OpaqueOutsideModule                          bool            `json:"opaque_outside_module"`
	Inline                                       bool            `json:"inline"`
	ExtEqual                                     bool            `json:"ext_equal"`
	RejectRecursiveTypesInGroundVariants         bool            `json:"reject_recursive_types_in_ground_variants"`
	RejectRecursiveTypes                         bool            `json:"reject_recursive_types"`
	AcceptRecursiveTypes                         bool            `json:"accept_recursive_types"`
	AcceptRecursiveTypeList                      []RecursiveType `json:"accept_recursive_type_list"`
	BroadcastForall                              bool            `json:"broadcast_forall"`
	RevealGroup                                  bool            `json:"reveal_group"`
	BroadcastUseByDefaultWhenThisCrateIsImported bool            `json:"broadcast_use_by_default_when_this_crate_is_imported"`
	NoAutoTrigger                                bool            `json:"no_auto_trigger"`
	Autospec                                     *string         `json:"autospec"`
	AllowInSpec                                  bool            `json:"allow_in_spec"`
	CustomReqErr                                 *string         `json:"custom_req_err"`
	BitVector                                    bool            `json:"bit_vector"`
	ForLoop                                      bool            `json:"for_loop"`
	AutoDecreases                                bool            `json:"auto_decreases"`
	Atomic                                       bool            `json:"atomic"`
	IntegerRing                                  bool            `json:"integer_ring"`
	DecreasesBy                                  bool            `json:"decreases_by"`
	CheckRecommends                              bool            `json:"check_recommends"`
	NonLinear                                    bool            `json:"nonlinear"`
	SpinoffProver                                bool            `json:"spinoff_prover"`
	LoopIsolation                                *bool           `json:"loop_isolation"`
	Memoize                                      bool            `json:"memoize"`
	RLimit                                       *RLimit         `json:"rlimit"`
	Truncate                                     bool            `json:"truncate"`
	ExternalFnSpecification                      bool            `json:"external_fn_specification"`
	ExternalTypeSpecification                    bool            `json:"external_type_specification"`
	ExternalTraitSpecification                   *string         `json:"external_trait_specification"`
	ExternalTraitExtension                       *TraitExtension `json:"external_trait_extension"`
	ExternalTraitBlanket                         bool            `json:"external_trait_blanket"`
	UnwrappedBinding                             bool            `json:"unwrapped_binding"`
	SetsMode                                     bool            `json:"sets_mode"`
	InternalRevealFn                             bool            `json:"internal_reveal_fn"`
	InternalConstBody                            bool            `json:"internal_const_body"`
	InternalConstHeaderWrapper                   bool            `json:"internal_const_header_wrapper"`
	BroadcastUseReveal                           bool            `json:"broadcast_use_reveal"`
	Trusted                                      bool            `json:"trusted"`
	InternalGetFieldManyVariants                 bool            `json:"internal_get_field_many_variants"`
	SizeOfGlobal                                 bool            `json:"size_of_global"`
	Sealed                                       bool            `json:"sealed"`
	ProphecyDependent                            bool            `json:"prophecy_dependent"`
	ItemBroadcastUse                             bool            `json:"item_broadcast_use"`
	SizeOfBroadcastProof                         bool            `json:"size_of_broadcast_proof"`
	TypeInvariantFn                              bool            `json:"type_invariant_fn"`
	OpenVisibilityQualifier                      bool            `json:"open_visibility_qualifier"`
	AssumeTermination                            bool            `json:"assume_termination"`
	ExecAllowsNoDecreasesClause                  bool            `json:"exec_allows_no_decreases_clause"`
	UnerasedProxy                                bool            `json:"unerased_proxy"`
	EncodedConst                                 bool            `json:"encoded_const"`
	EncodedStatic                                bool            `json:"encoded_static"`
}

// FoldVerifier reduces directives into a VerifierAttrs record and rejects
// host-internal attributes that have no verification support.
func FoldVerifier(attrs []Attr) (VerifierAttrs, error) {
	vs, unsupported := foldVerifier(attrs)
	if unsupported != nil {
		return VerifierAttrs{}, errors.Errorf(unsupported.Pos, errors.E2004,
			"The attribute `%s` is not supported", unsupported.Name)
	}
	return vs, nil
}

// FoldVerifierNoCheck is FoldVerifier without the host-internal attribute
// check.
func FoldVerifierNoCheck(attrs []Attr) VerifierAttrs {
	vs, _ := foldVerifier(attrs)
	return vs
}

func foldVerifier(attrs []Attr) (VerifierAttrs, *Attr) {
	var vs VerifierAttrs
	var unsupported *Attr
	for i, a := range attrs {
		switch a.Kind {
		case KindVerusMacro:
			vs.VerusMacro = true
		case KindExternalBody:
			vs.ExternalBody = true
		case KindExternalFnSpecification:
			vs.ExternalFnSpecification = true
		case KindExternalTypeSpecification:
			vs.ExternalTypeSpecification = true
		case KindExternalTraitSpecification:
			vs.ExternalTraitSpecification = ptr(a.Name)
		case KindExternalTraitExtension:
			vs.ExternalTraitExtension = &TraitExtension{Spec: a.Name, Impl: a.Via}
		case KindExternalTraitBlanket:
			vs.ExternalTraitBlanket = true
		case KindOpaque:
			vs.Opaque = true
		case KindPublish:
			vs.Publish = ptr(a.Publish)
		case KindOpaqueOutsideModule:
			vs.OpaqueOutsideModule = true
		case KindInline:
			vs.Inline = true
		case KindExtEqual:
			vs.ExtEqual = true
		case KindRejectRecursiveTypes:
			vs.recursive(a.Name, RecursionReject, &vs.RejectRecursiveTypes)
		case KindRejectGroundRecursiveTypes:
			vs.recursive(a.Name, RecursionRejectInGround, &vs.RejectRecursiveTypesInGroundVariants)
		case KindAcceptRecursiveTypes:
			vs.recursive(a.Name, RecursionAccept, &vs.AcceptRecursiveTypes)
		case KindBroadcastForall:
			vs.BroadcastForall = true
		case KindRevealGroup:
			vs.RevealGroup = true
		case KindRevealedByDefaultWhenThisCrateIsImported:
			vs.BroadcastUseByDefaultWhenThisCrateIsImported = true
		case KindNoAutoTrigger:
			vs.NoAutoTrigger = true
		case KindAutospec:
			vs.Autospec = ptr(a.Name)
		case KindAllowInSpec:
			vs.AllowInSpec = true
		case KindCustomReqErr:
			vs.CustomReqErr = ptr(a.Name)
		case KindBitVector:
			vs.BitVector = true
		case KindForLoop:
			vs.ForLoop = true
		case KindAutoDecreases:
			vs.AutoDecreases = true
		case KindAtomic:
			vs.Atomic = true
		case KindIntegerRing:
			vs.IntegerRing = true
		case KindDecreasesBy:
			vs.DecreasesBy = true
		case KindCheckRecommends:
			vs.CheckRecommends = true
		case KindNonLinear:
			vs.NonLinear = true
		case KindSpinoffProver:
			vs.SpinoffProver = true
		case KindLoopIsolation:
			vs.LoopIsolation = ptr(a.Flag)
		case KindMemoize:
			vs.Memoize = true
		case KindRLimit:
			vs.RLimit = ptr(RLimit(a.RLimit))
		case KindTruncate:
			vs.Truncate = true
		case KindUnwrappedBinding:
			vs.UnwrappedBinding = true
		case KindMode:
			vs.SetsMode = true
		case KindInternalRevealFn:
			vs.InternalRevealFn = true
		case KindInternalConstBody:
			vs.InternalConstBody = true
		case KindInternalEnsuresWrapper:
			vs.InternalConstHeaderWrapper = true
		case KindBroadcastUseReveal:
			vs.BroadcastUseReveal = true
		case KindTrusted:
			vs.Trusted = true
		case KindSizeOfGlobal:
			vs.SizeOfGlobal = true
		case KindItemBroadcastUse:
			vs.ItemBroadcastUse = true
		case KindInternalGetFieldManyVariants:
			vs.InternalGetFieldManyVariants = true
		case KindSealed:
			vs.Sealed = true
		case KindProphecyDependent:
			vs.ProphecyDependent = true
		case KindUnsupportedRustcAttr:
			unsupported = &attrs[i]
		case KindSizeOfBroadcastProof:
			vs.SizeOfBroadcastProof = true
		case KindTypeInvariantFn:
			vs.TypeInvariantFn = true
		case KindOpenVisibilityQualifier:
			vs.OpenVisibilityQualifier = true
		case KindAssumeTermination:
			vs.AssumeTermination = true
		case KindExecAllowNoDecreasesClause:
			vs.ExecAllowsNoDecreasesClause = true
		case KindUnerasedProxy:
			vs.UnerasedProxy = true
		case KindEncodedConst:
			vs.EncodedConst = true
		case KindEncodedStatic:
			vs.EncodedStatic = true
		}
	}
	return vs, unsupported
}

// recursive records a recursion policy: for the whole type when param is
// empty, otherwise as a list entry for that type parameter.
func (vs *VerifierAttrs) recursive(param string, policy RecursionPolicy, whole *bool) {
	if param == "" {
		*whole = true
		return
	}
	vs.AcceptRecursiveTypeList = append(vs.AcceptRecursiveTypeList, RecursiveType{Param: param, Policy: policy})
}

func ptr[T any](v T) *T {
	return &v
}
