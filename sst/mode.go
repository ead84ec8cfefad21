package sst

import (
	"encoding/json"
	"fmt"
)

// Mode is the purity classification of a declaration or variable. Modes are
// ordered Spec < Proof < Exec.
type Mode int

const (
	Spec Mode = iota
	Proof
	Exec
)

var modeNames = [...]string{Spec: "spec", Proof: "proof", Exec: "exec"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode parses "spec", "proof" or "exec".
func ParseMode(s string) (Mode, bool) {
	for i, name := range modeNames {
		if name == s {
			return Mode(i), true
		}
	}
	return 0, false
}

// AtLeast reports whether m is at least as permissive as other.
func (m Mode) AtLeast(other Mode) bool {
	return m >= other
}

// VarDefault returns the default mode of a variable declared inside a
// function of mode m. Proof functions default their variables to Spec.
func (m Mode) VarDefault() Mode {
	if m == Proof {
		return Spec
	}
	return m
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}
