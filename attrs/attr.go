package attrs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/deepnoodle-ai/soir/sst"
)

// Kind identifies a directive.
type Kind int

const (
	KindMode Kind = iota
	KindInferMode
	KindReturnMode
	KindVerusMacro
	KindExternalBody
	KindExternal
	KindVerify
	KindOpaque
	KindPublish
	KindOpaqueOutsideModule
	KindInline
	KindExtEqual
	KindGhostBlock
	KindProofInSpec
	KindUnwrapParameter
	KindRejectRecursiveTypes
	KindRejectGroundRecursiveTypes
	KindAcceptRecursiveTypes
	KindBroadcastForall
	KindRevealGroup
	KindRevealedByDefaultWhenThisCrateIsImported
	KindAutoTrigger
	KindAllTriggers
	KindNoAutoTrigger
	KindAutospec
	KindAllowInSpec
	KindAutoExtEqual
	KindTrigger
	KindCustomReqErr
	KindCustomErr
	KindBitVector
	KindAtomic
	KindInvariantBlock
	KindForLoop
	KindAutoDecreases
	KindDecreasesBy
	KindCheckRecommends
	KindNonLinear
	KindIntegerRing
	KindSpinoffProver
	KindLoopIsolation
	KindMemoize
	KindRLimit
	KindTruncate
	KindExternalFnSpecification
	KindExternalTypeSpecification
	KindExternalTraitSpecification
	KindExternalTraitExtension
	KindExternalTraitBlanket
	KindExternalAutoDerives
	KindUnwrappedBinding
	KindInternalRevealFn
	KindInternalConstBody
	KindInternalEnsuresWrapper
	KindTrusted
	KindSizeOfGlobal
	KindItemBroadcastUse
	KindBroadcastUseReveal
	KindInternalGetFieldManyVariants
	KindSealed
	KindProphecyDependent
	KindUnsupportedRustcAttr
	KindSizeOfBroadcastProof
	KindTypeInvariantFn
	KindOpenVisibilityQualifier
	KindExecAllowNoDecreasesClause
	KindAssumeTermination
	KindUnerasedProxy
	KindUsesUnerasedProxy
	KindEncodedConst
	KindEncodedStatic

	numKinds
)

var kindNames = [numKinds]string{
	"Mode",
	"InferMode",
	"ReturnMode",
	"VerusMacro",
	"ExternalBody",
	"External",
	"Verify",
	"Opaque",
	"Publish",
	"OpaqueOutsideModule",
	"Inline",
	"ExtEqual",
	"GhostBlock",
	"ProofInSpec",
	"UnwrapParameter",
	"RejectRecursiveTypes",
	"RejectGroundRecursiveTypes",
	"AcceptRecursiveTypes",
	"BroadcastForall",
	"RevealGroup",
	"RevealedByDefaultWhenThisCrateIsImported",
	"AutoTrigger",
	"AllTriggers",
	"NoAutoTrigger",
	"Autospec",
	"AllowInSpec",
	"AutoExtEqual",
	"Trigger",
	"CustomReqErr",
	"CustomErr",
	"BitVector",
	"Atomic",
	"InvariantBlock",
	"ForLoop",
	"AutoDecreases",
	"DecreasesBy",
	"CheckRecommends",
	"NonLinear",
	"IntegerRing",
	"SpinoffProver",
	"LoopIsolation",
	"Memoize",
	"RLimit",
	"Truncate",
	"ExternalFnSpecification",
	"ExternalTypeSpecification",
	"ExternalTraitSpecification",
	"ExternalTraitExtension",
	"ExternalTraitBlanket",
	"ExternalAutoDerives",
	"UnwrappedBinding",
	"InternalRevealFn",
	"InternalConstBody",
	"InternalEnsuresWrapper",
	"Trusted",
	"SizeOfGlobal",
	"ItemBroadcastUse",
	"BroadcastUseReveal",
	"InternalGetFieldManyVariants",
	"Sealed",
	"ProphecyDependent",
	"UnsupportedRustcAttr",
	"SizeOfBroadcastProof",
	"TypeInvariantFn",
	"OpenVisibilityQualifier",
	"ExecAllowNoDecreasesClause",
	"AssumeTermination",
	"UnerasedProxy",
	"UsesUnerasedProxy",
	"EncodedConst",
	"EncodedStatic",
}

func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Publish controls whether a spec function body is visible outside its
// module.
type Publish int

const (
	PublishOpen Publish = iota
	PublishClosed
	PublishUninterp
)

func (p Publish) String() string {
	switch p {
	case PublishClosed:
		return "closed"
	case PublishUninterp:
		return "uninterp"
	default:
		return "open"
	}
}

func (p Publish) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// GhostBlock tags blocks the syntax macro produced for ghost code.
type GhostBlock int

const (
	GhostProof GhostBlock = iota
	GhostWrapped
	GhostTrackedWrapped
	GhostTracked
	GhostWrapper
)

func (g GhostBlock) String() string {
	switch g {
	case GhostWrapped:
		return "GhostWrapped"
	case GhostTrackedWrapped:
		return "TrackedWrapped"
	case GhostTracked:
		return "Tracked"
	case GhostWrapper:
		return "Wrapper"
	default:
		return "Proof"
	}
}

// AutoExtEqual lists the places where == is promoted to extensional
// equality.
type AutoExtEqual struct {
	Assert    bool `json:"assert"`
	AssertBy  bool `json:"assert_by"`
	Ensures   bool `json:"ensures"`
	Invariant bool `json:"invariant"`
}

func (a AutoExtEqual) String() string {
	var places []string
	if a.Assert {
		places = append(places, "assert")
	}
	if a.AssertBy {
		places = append(places, "assert_by")
	}
	if a.Ensures {
		places = append(places, "ensures")
	}
	if a.Invariant {
		places = append(places, "invariant")
	}
	return strings.Join(places, ", ")
}

// Attr is one classified directive. Kind selects the variant; the payload
// fields used by each variant are noted beside them and are zero otherwise.
type Attr struct {
	Kind Kind
	Pos  token.Position

	Mode       sst.Mode     // Mode, ReturnMode
	Publish    Publish      // Publish
	GhostBlock GhostBlock   // GhostBlock
	Name       string       // recursion-policy type parameter, Autospec, custom errors, trait names, rustc name
	Via        string       // ExternalTraitExtension
	Flag       bool         // LoopIsolation
	RLimit     float64      // RLimit
	Groups     []uint64     // Trigger; nil for a bare #[trigger]
	Derives    []string     // ExternalAutoDerives; nil when all derives are external
	ExtEqual   AutoExtEqual // AutoExtEqual
}

// String renders the directive as Variant(payload).
func (a Attr) String() string {
	k := a.Kind.String()
	switch a.Kind {
	case KindMode, KindReturnMode:
		return k + "(" + a.Mode.String() + ")"
	case KindPublish:
		return k + "(" + a.Publish.String() + ")"
	case KindGhostBlock:
		return k + "(" + a.GhostBlock.String() + ")"
	case KindRejectRecursiveTypes, KindRejectGroundRecursiveTypes, KindAcceptRecursiveTypes:
		if a.Name == "" {
			return k + "(None)"
		}
		return k + "(" + a.Name + ")"
	case KindAutospec, KindCustomReqErr, KindCustomErr, KindExternalTraitSpecification, KindUnsupportedRustcAttr:
		return k + "(" + strconv.Quote(a.Name) + ")"
	case KindExternalTraitExtension:
		return k + "(" + a.Name + " via " + a.Via + ")"
	case KindLoopIsolation:
		return k + "(" + strconv.FormatBool(a.Flag) + ")"
	case KindRLimit:
		return k + "(" + strconv.FormatFloat(a.RLimit, 'g', -1, 32) + ")"
	case KindTrigger:
		if a.Groups == nil {
			return k + "(None)"
		}
		ids := make([]string, len(a.Groups))
		for i, g := range a.Groups {
			ids[i] = strconv.FormatUint(g, 10)
		}
		return k + "(" + strings.Join(ids, ", ") + ")"
	case KindExternalAutoDerives:
		if a.Derives == nil {
			return k + "(None)"
		}
		return k + "(" + strings.Join(a.Derives, ", ") + ")"
	case KindAutoExtEqual:
		return k + "(" + a.ExtEqual.String() + ")"
	}
	return k
}

func simple(kind Kind) Attr {
	return Attr{Kind: kind}
}
