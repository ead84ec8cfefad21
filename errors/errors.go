// Package errors defines located diagnostics, the sinks that collect them,
// and a formatter that renders them for a terminal.
package errors

import (
	"sort"
	"sync"
)

// FormattableError is an error that can be rendered by the Formatter.
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// FatalError is an error that may or may not stop processing.
type FatalError interface {
	Error() string
	IsFatal() bool
}

var (
	_ FormattableError = (*Diagnostic)(nil)
	_ FatalError       = (*Diagnostic)(nil)
)

// Sink receives diagnostics. Implementations decide whether to buffer,
// print or discard them.
type Sink interface {
	Report(d *Diagnostic)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(d *Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d *Diagnostic) { f(d) }

// Discard is a Sink that drops everything.
var Discard Sink = SinkFunc(func(*Diagnostic) {})

// Buffer is a Sink that keeps diagnostics in arrival order. It is not safe
// for concurrent use; give each task its own Buffer and merge them into a
// SyncSink afterwards.
type Buffer struct {
	diags []*Diagnostic
}

// Report appends d to the buffer.
func (b *Buffer) Report(d *Diagnostic) {
	b.diags = append(b.diags, d)
}

// Diagnostics returns the buffered diagnostics.
func (b *Buffer) Diagnostics() []*Diagnostic {
	return b.diags
}

// Len returns the number of buffered diagnostics.
func (b *Buffer) Len() int {
	return len(b.diags)
}

// Warnings returns the non-fatal diagnostics in the buffer.
func (b *Buffer) Warnings() []*Diagnostic {
	var out []*Diagnostic
	for _, d := range b.diags {
		if !d.IsFatal() {
			out = append(out, d)
		}
	}
	return out
}

// Flush forwards every buffered diagnostic to dst and empties the buffer.
func (b *Buffer) Flush(dst Sink) {
	for _, d := range b.diags {
		dst.Report(d)
	}
	b.diags = nil
}

// SyncSink is a Sink safe for concurrent use. When it has a destination,
// every diagnostic is forwarded to it under the same lock, so dst need not
// be safe for concurrent use.
type SyncSink struct {
	mu    sync.Mutex
	dst   Sink
	diags []*Diagnostic
}

// NewSyncSink returns a SyncSink forwarding to dst, which may be nil.
func NewSyncSink(dst Sink) *SyncSink {
	return &SyncSink{dst: dst}
}

// Report appends d under the lock.
func (s *SyncSink) Report(d *Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, d)
	if s.dst != nil {
		s.dst.Report(d)
	}
}

// Merge appends all of b's diagnostics as one contiguous run.
func (s *SyncSink) Merge(b *Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, b.diags...)
	if s.dst != nil {
		for _, d := range b.diags {
			s.dst.Report(d)
		}
	}
}

// Diagnostics returns a copy of the collected diagnostics.
func (s *SyncSink) Diagnostics() []*Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Diagnostic, len(s.diags))
	copy(out, s.diags)
	return out
}

// Sorted returns the collected diagnostics ordered by file, then offset.
// Diagnostics at the same position keep their arrival order. Offsets only
// order diagnostics that come from one source text.
func (s *SyncSink) Sorted() []*Diagnostic {
	out := s.Diagnostics()
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Char < b.Char
	})
	return out
}
