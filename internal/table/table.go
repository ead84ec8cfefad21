// Package table renders bordered text tables for the command line.
package table

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// width is the display width of s, ignoring color escapes.
func width(s string) int {
	return runewidth.StringWidth(stripAnsi(s))
}

// Table accumulates rows and writes them on Render.
type Table struct {
	out         io.Writer
	header      []string
	rows        [][]string
	columnAlign []Alignment
	headerAlign []Alignment
}

func NewTable(out io.Writer) *Table {
	return &Table{out: out}
}

func (t *Table) WithHeader(header []string) *Table {
	t.header = header
	return t
}

func (t *Table) WithColumnAlignment(align []Alignment) *Table {
	t.columnAlign = align
	return t
}

func (t *Table) WithHeaderAlignment(align []Alignment) *Table {
	t.headerAlign = align
	return t
}

// Append adds a row. Rows shorter than the header are padded with empty
// cells.
func (t *Table) Append(row []string) *Table {
	t.rows = append(t.rows, row)
	return t
}

func (t *Table) columns() int {
	n := len(t.header)
	for _, row := range t.rows {
		n = max(n, len(row))
	}
	return n
}

func (t *Table) widths(n int) []int {
	widths := make([]int, n)
	for i, cell := range t.header {
		widths[i] = width(cell)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], width(cell))
		}
	}
	return widths
}

// Render writes the table.
func (t *Table) Render() {
	n := t.columns()
	if n == 0 {
		return
	}
	widths := t.widths(n)
	var sep strings.Builder
	sep.WriteString("+")
	for _, w := range widths {
		sep.WriteString(strings.Repeat("-", w+2))
		sep.WriteString("+")
	}
	border := sep.String()

	fmt.Fprintln(t.out, border)
	if len(t.header) > 0 {
		t.writeRow(t.header, widths, t.headerAlign)
		fmt.Fprintln(t.out, border)
	}
	for _, row := range t.rows {
		t.writeRow(row, widths, t.columnAlign)
	}
	fmt.Fprintln(t.out, border)
}

func (t *Table) writeRow(row []string, widths []int, align []Alignment) {
	var b strings.Builder
	b.WriteString("|")
	for i, w := range widths {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		a := AlignLeft
		if i < len(align) {
			a = align[i]
		}
		b.WriteString(" ")
		b.WriteString(pad(cell, w, a))
		b.WriteString(" |")
	}
	fmt.Fprintln(t.out, b.String())
}

func pad(s string, w int, a Alignment) string {
	gap := w - width(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
