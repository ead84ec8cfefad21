package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodesCommand(t *testing.T) {
	stdout, _, err := execute(t, "codes")
	require.Nil(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, len(errors.Codes())+4)
	assert.Contains(t, lines[3], "| E1001 | syntax ")
	assert.Contains(t, stdout, "| W1002 | warning ")

	stdout, _, err = execute(t, "codes", "e3005", "W1002")
	require.Nil(t, err)
	expected := `
+-------+---------------+------------------------------+
| CODE  | CATEGORY      | DESCRIPTION                  |
+-------+---------------+------------------------------+
| E3005 | configuration | direct call to proxy         |
| W1002 | warning       | automatically chosen trigger |
+-------+---------------+------------------------------+
`
	assert.Equal(t, strings.TrimPrefix(expected, "\n"), stdout)

	_, _, err = execute(t, "codes", "E9999")
	require.NotNil(t, err)
	assert.Equal(t, "unknown diagnostic code: E9999", err.Error())
}

func TestCodesCommandJSON(t *testing.T) {
	stdout, _, err := execute(t, "codes", "--output", "json", "E4004")
	require.Nil(t, err)
	var out []codeOutput
	require.Nil(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, []codeOutput{{Code: errors.E4004, Category: "trigger", Description: "no trigger found"}}, out)
}
