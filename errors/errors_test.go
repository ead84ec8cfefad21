package errors

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/stretchr/testify/require"
)

func pos(line, col int) token.Position {
	return token.Position{Line: line - 1, Column: col - 1, Char: line*100 + col}
}

func TestDiagnosticError(t *testing.T) {
	d := Errorf(pos(1, 3), E2001, "unrecognized verifier attribute")
	require.Equal(t, "unrecognized verifier attribute", d.Error())
	require.True(t, d.IsFatal())
	require.Equal(t, "1:3: error[E2001]: unrecognized verifier attribute", d.String())

	w := Warningf(token.NoPos, W1001, "#[verifier(%s)] is deprecated", "x")
	require.False(t, w.IsFatal())
	require.Equal(t, "warning[W1001]: #[verifier(x)] is deprecated", w.String())
}

func TestAsDiagnostic(t *testing.T) {
	d := Errorf(pos(2, 1), E4004, "Could not infer triggers")
	wrapped := fmt.Errorf("decl f: %w", d)
	got, ok := AsDiagnostic(wrapped)
	require.True(t, ok)
	require.Same(t, d, got)

	_, ok = AsDiagnostic(fmt.Errorf("plain"))
	require.False(t, ok)
}

func TestAppendAndFlatten(t *testing.T) {
	require.Nil(t, Append(nil))

	a := Errorf(pos(1, 1), E1001, "a")
	b := Errorf(pos(1, 5), E1001, "b")
	err := Append(nil, a)
	err = Append(err, b, fmt.Errorf("not a diagnostic"))
	require.NotNil(t, err)

	diags := Flatten(err)
	require.Len(t, diags, 2)
	require.Same(t, a, diags[0])
	require.Same(t, b, diags[1])

	require.Equal(t, []*Diagnostic{a}, Flatten(a))
	require.Nil(t, Flatten(nil))
}

func TestBuffer(t *testing.T) {
	var buf Buffer
	buf.Report(Errorf(pos(1, 1), E2001, "e"))
	buf.Report(Warningf(pos(1, 2), W1001, "w"))
	buf.Report(Notef(pos(1, 3), W1002, "n"))
	require.Equal(t, 3, buf.Len())
	require.Len(t, buf.Warnings(), 2)

	var dst Buffer
	buf.Flush(&dst)
	require.Equal(t, 0, buf.Len())
	require.Equal(t, 3, dst.Len())
	require.Equal(t, "e", dst.Diagnostics()[0].Message)
}

func TestSyncSinkConcurrent(t *testing.T) {
	var sink SyncSink
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var buf Buffer
			buf.Report(Warningf(pos(i+1, 1), W1001, "first %d", i))
			buf.Report(Warningf(pos(i+1, 2), W1001, "second %d", i))
			sink.Merge(&buf)
		}(i)
	}
	wg.Wait()

	diags := sink.Diagnostics()
	require.Len(t, diags, 40)
	// Each buffer lands as one contiguous run.
	for i := 0; i < len(diags); i += 2 {
		require.True(t, strings.HasPrefix(diags[i].Message, "first "))
		require.Equal(t, strings.TrimPrefix(diags[i].Message, "first "),
			strings.TrimPrefix(diags[i+1].Message, "second "))
	}

	sorted := sink.Sorted()
	for i := 1; i < len(sorted); i++ {
		require.LessOrEqual(t, sorted[i-1].Pos.Char, sorted[i].Pos.Char)
	}
}

func TestSyncSinkForwards(t *testing.T) {
	var got []string
	sink := NewSyncSink(SinkFunc(func(d *Diagnostic) { got = append(got, d.Message) }))
	var buf Buffer
	buf.Report(Warningf(pos(1, 1), W1001, "a"))
	buf.Report(Warningf(pos(1, 2), W1001, "b"))
	sink.Merge(&buf)
	sink.Report(Notef(token.NoPos, W1002, "c"))

	require.Equal(t, []string{"a", "b", "c"}, got)
	require.Len(t, sink.Diagnostics(), 3)
	require.Len(t, NewSyncSink(nil).Diagnostics(), 0)
}

func TestSinkFunc(t *testing.T) {
	var got []string
	s := SinkFunc(func(d *Diagnostic) { got = append(got, d.Message) })
	s.Report(Notef(token.NoPos, W1002, "hello"))
	Discard.Report(Notef(token.NoPos, W1002, "dropped"))
	require.Equal(t, []string{"hello"}, got)
}

func TestErrorCodeCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{E1001, "syntax"},
		{E2004, "classification"},
		{E3002, "configuration"},
		{E4002, "trigger"},
		{E5003, "well-formedness"},
		{W1001, "warning"},
		{ErrorCode("X"), "unknown"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.category, tt.code.Category(), tt.code)
	}
	require.Equal(t, "params do not match", E3003.Description())
	require.Equal(t, "unknown error", ErrorCode("E9999").Description())
}

func TestCodes(t *testing.T) {
	codes := Codes()
	require.Len(t, codes, len(codeDescriptions))
	require.Equal(t, E1001, codes[0])
	require.Equal(t, W1002, codes[len(codes)-1])
	for _, c := range codes {
		require.NotEqual(t, "unknown error", c.Description(), c)
	}
}
