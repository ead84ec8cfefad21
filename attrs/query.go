package attrs

import "github.com/deepnoodle-ai/soir/sst"

// GhostBlockOf returns the ghost block tag of a block, if any.
func GhostBlockOf(attrs []Attr) (GhostBlock, bool) {
	for _, a := range attrs {
		if a.Kind == KindGhostBlock {
			return a.GhostBlock, true
		}
	}
	return 0, false
}

// IsProofInSpec reports whether a block is a proof block inside spec code.
func IsProofInSpec(attrs []Attr) bool {
	return has(attrs, KindProofInSpec)
}

// IsSealed reports whether a trait is marked sealed.
func IsSealed(attrs []Attr) bool {
	return has(attrs, KindSealed)
}

// IsGetFieldManyVariants reports whether an item is a generated field
// accessor for a field that appears in several variants.
func IsGetFieldManyVariants(attrs []Attr) bool {
	return has(attrs, KindInternalGetFieldManyVariants)
}

func has(attrs []Attr, kind Kind) bool {
	for _, a := range attrs {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

// ModeOf returns the first mode directive.
func ModeOf(attrs []Attr) (sst.Mode, bool) {
	for _, a := range attrs {
		if a.Kind == KindMode {
			return a.Mode, true
		}
	}
	return 0, false
}

// ModeOr returns the declared mode, or def when none is declared.
func ModeOr(def sst.Mode, attrs []Attr) sst.Mode {
	if m, ok := ModeOf(attrs); ok {
		return m
	}
	return def
}

// VarMode returns the mode of a variable declared in a function of mode
// fnMode: the declared mode if any, otherwise the function's variable
// default.
func VarMode(fnMode sst.Mode, attrs []Attr) sst.Mode {
	return ModeOr(fnMode.VarDefault(), attrs)
}

// RetMode returns the mode of a function's return value. The last returns
// directive wins.
func RetMode(fnMode sst.Mode, attrs []Attr) sst.Mode {
	mode := fnMode.VarDefault()
	for _, a := range attrs {
		if a.Kind == KindReturnMode {
			mode = a.Mode
		}
	}
	return mode
}

// TriggerAnnotationKind tags a TriggerAnnotation.
type TriggerAnnotationKind int

const (
	TriggerAuto TriggerAnnotationKind = iota
	TriggerAll
	TriggerManual
)

// TriggerAnnotation is one trigger directive on an expression. For manual
// triggers Group is nil for the default group.
type TriggerAnnotation struct {
	Kind  TriggerAnnotationKind
	Group *uint64
}

// Triggers expands the trigger directives of an expression, one entry per
// group id.
func Triggers(attrs []Attr) []TriggerAnnotation {
	var out []TriggerAnnotation
	for _, a := range attrs {
		switch a.Kind {
		case KindAutoTrigger:
			out = append(out, TriggerAnnotation{Kind: TriggerAuto})
		case KindAllTriggers:
			out = append(out, TriggerAnnotation{Kind: TriggerAll})
		case KindTrigger:
			if a.Groups == nil {
				out = append(out, TriggerAnnotation{Kind: TriggerManual})
				continue
			}
			for _, id := range a.Groups {
				out = append(out, TriggerAnnotation{Kind: TriggerManual, Group: ptr(id)})
			}
		}
	}
	return out
}

// CustomErrors returns the custom error messages attached to an assertion,
// in order.
func CustomErrors(attrs []Attr) []string {
	var out []string
	for _, a := range attrs {
		if a.Kind == KindCustomErr {
			out = append(out, a.Name)
		}
	}
	return out
}
