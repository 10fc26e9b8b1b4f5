// Package diag renders the expander's compile-time rejections in the
// file:line:col form the rest of the Go toolchain uses.
package diag

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mattn/go-isatty"
)

type Diagnostic struct {
	Path string
	Line int
	Col  int
	Msg  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s", d.Path, d.Line, d.Col, d.Msg)
}

// Printer writes diagnostics to a sink, colorized when it is a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(f *os.File) *Printer {
	return &Printer{
		w:     f,
		color: isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()),
	}
}

// Print writes diagnostics sorted by path, line, col.
func (p *Printer) Print(ds []Diagnostic) {
	sorted := make([]Diagnostic, len(ds))
	copy(sorted, ds)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
	for _, d := range sorted {
		if p.color {
			fmt.Fprintf(p.w, "\x1b[1m%s:%d:%d:\x1b[0m \x1b[31m%s\x1b[0m\n", d.Path, d.Line, d.Col, d.Msg)
			continue
		}
		fmt.Fprintln(p.w, d.String())
	}
}
