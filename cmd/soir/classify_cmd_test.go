package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const crateYAML = `
declarations:
  - id: crate::m
    annotations:
      - "#![verifier::loop_isolation(false)]"
  - id: crate::m::f
    parent: crate::m
    annotations:
      - "#[verus::internal(verus_macro)]"
      - "#[verus::internal(spec)]"
      - "#[verifier::opaque]"
  - id: crate::m::g
    parent: crate::m
    annotations:
      - "#[verifier::external]"
`

// writeFile writes content to name in a fresh directory.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

type jsonResult struct {
	ID            string   `json:"id"`
	Mode          string   `json:"mode"`
	Verified      bool     `json:"verified"`
	Directives    []string `json:"directives"`
	LoopIsolation *bool    `json:"loop_isolation"`
	Error         string   `json:"error"`
}

type jsonReport struct {
	RunID       string       `json:"run_id"`
	Results     []jsonResult `json:"results"`
	Diagnostics []diagnostic `json:"diagnostics"`
}

func TestClassifyCommandJSON(t *testing.T) {
	path := writeFile(t, "crate.yaml", crateYAML)
	stdout, _, err := execute(t, "classify", path)
	require.Nil(t, err)

	var report jsonReport
	require.Nil(t, json.Unmarshal([]byte(stdout), &report))
	_, err = uuid.FromString(report.RunID)
	require.Nil(t, err)
	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Diagnostics)

	f := report.Results[1]
	assert.Equal(t, "crate::m::f", f.ID)
	assert.Equal(t, "spec", f.Mode)
	assert.True(t, f.Verified)
	assert.Equal(t, []string{"VerusMacro", "Mode(spec)", "Opaque"}, f.Directives)
	require.NotNil(t, f.LoopIsolation)
	assert.False(t, *f.LoopIsolation)

	g := report.Results[2]
	assert.Equal(t, "exec", g.Mode)
	assert.False(t, g.Verified)
}

func TestClassifyCommandText(t *testing.T) {
	path := writeFile(t, "crate.yaml", crateYAML)
	stdout, _, err := execute(t, "classify", "-o", "text", "--default-verify", path)
	require.Nil(t, err)
	assert.Contains(t, stdout, "crate::m::f  spec  verified   VerusMacro Mode(spec) Opaque")
	assert.Contains(t, stdout, "crate::m     exec  verified   LoopIsolation(false)")
	assert.Contains(t, stdout, "crate::m::g  exec  unverified External")
}

func TestClassifyCommandRejects(t *testing.T) {
	path := writeFile(t, "crate.hujson", `{
		// Comments and trailing commas are accepted.
		"declarations": [
			{"id": "crate::a", "annotations": ["#[verifier::opaqe]"]},
			{"id": "crate::b", "annotations": ["#[verifier::maybe_negative]"]},
			{"id": "crate::c", "kind": "const", "annotations": ["#[verifier::external_fn_specification]"]},
		],
	}`)
	stdout, stderr, err := execute(t, "classify", "-j", "2", path)
	require.NotNil(t, err)
	assert.Equal(t, "2 of 3 declarations rejected", err.Error())

	var report jsonReport
	require.Nil(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, "unrecognized verifier attribute", report.Results[0].Error)
	assert.Empty(t, report.Results[1].Error)
	assert.Contains(t, report.Results[2].Error, "not yet supported for const")
	require.Len(t, report.Diagnostics, 3)

	assert.Contains(t, stderr, "error[E2001]: unrecognized verifier attribute")
	assert.Contains(t, stderr, "hint:")
	assert.Contains(t, stderr, "warning[W1001]")
	assert.Contains(t, stderr, "found 2 errors and 1 warning")
	assert.Contains(t, stderr, "declaration rejected")
}

func TestClassifyCommandInvalidAnnotations(t *testing.T) {
	path := writeFile(t, "crate.json", `{"declarations": [
		{"id": "crate::a", "annotations": ["#[verifier::x(a]", "#[verifier::opaque]"]},
		{"id": "crate::b", "annotations": ["#[verifier::custom_err(\"abc)]"]},
		{"id": "crate::c", "annotations": ["#[verifier::opaque]"]},
		{"id": "crate::d", "annotations": ["#[doc(x]", "#[verifier::opaque]"]}
	]}`)
	stdout, stderr, err := execute(t, "classify", path)
	require.NotNil(t, err)
	assert.Equal(t, "2 of 4 declarations rejected", err.Error())

	var report jsonReport
	require.Nil(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Results, 4)
	assert.Equal(t, "unexpected closing delimiter ']'", report.Results[0].Error)
	assert.Equal(t, "unterminated string literal", report.Results[1].Error)
	assert.Empty(t, report.Results[2].Error)
	assert.Equal(t, []string{"Opaque"}, report.Results[2].Directives)
	assert.Empty(t, report.Results[3].Error)
	assert.Equal(t, []string{"Opaque"}, report.Results[3].Directives)
	require.Len(t, report.Diagnostics, 2)

	assert.Contains(t, stderr, "error[E1001]: unexpected closing delimiter")
	assert.Contains(t, stderr, "error[E1006]")
	assert.Contains(t, stderr, "#[verifier::x(a]")
	assert.NotContains(t, stderr, "#[doc(x]")
}

func TestClassifyCommandVerbose(t *testing.T) {
	path := writeFile(t, "crate.yaml", crateYAML)
	_, stderr, err := execute(t, "classify", "--verbose", path)
	require.Nil(t, err)
	assert.Contains(t, stderr, "classified")
	assert.Contains(t, stderr, "decl=crate::m::f")
}

func TestClassifyCommandFiles(t *testing.T) {
	_, _, err := execute(t, "classify", filepath.Join(t.TempDir(), "missing.yaml"))
	require.NotNil(t, err)

	path := writeFile(t, "crate.toml", "")
	_, _, err = execute(t, "classify", path)
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), `unsupported file type ".toml"`)
}
