// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/luthersystems/drl/parser/position"
)

// Renderer formats diagnostics as Rust-style annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)

	cache map[string]*position.Index
}

// Render writes a single diagnostic reported against file to w.
func (r *Renderer) Render(w io.Writer, file string, d Diagnostic) error {
	p := choosePalette(r.Color, fileFromWriter(w))
	bw := bufio.NewWriter(w)
	ew := &errWriter{w: bw}

	// Header: "error[code]: message" or "warning[code]: message"
	r.writeHeader(ew, d, p)

	if file != "" {
		r.writeSpan(ew, file, d, p)
	}

	for _, note := range d.Notes {
		ew.printf("   %s=%s note: %s\n", p.boldCyan, p.reset, note)
	}

	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

// RenderAll writes all diagnostics of file to w separated by blank lines.
func (r *Renderer) RenderAll(w io.Writer, file string, diags []Diagnostic) error {
	for i, d := range diags {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := r.Render(w, file, d); err != nil {
			return err
		}
	}
	return nil
}

// errWriter wraps a writer and captures the first error, short-circuiting
// subsequent writes. This avoids checking every fmt.Fprintf return value.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, a ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, a...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (r *Renderer) writeHeader(ew *errWriter, d Diagnostic, p palette) {
	var sevColor string
	switch d.Severity {
	case SeverityError:
		sevColor = p.boldRed
	case SeverityWarning:
		sevColor = p.yellow
	default:
		sevColor = p.boldCyan
	}
	sevText := d.Severity.String()
	if d.Code != "" {
		sevText += "[" + d.Code + "]"
	}
	ew.printf("%s%s%s%s:%s %s%s%s\n",
		sevColor, p.bold, sevText, p.reset,
		p.reset,
		p.bold, d.Message, p.reset)
}

func (r *Renderer) writeSpan(ew *errWriter, file string, d Diagnostic, p palette) {
	start := d.Range.Start
	// Location line: "  --> file:line:col"
	ew.printf("  %s-->%s %s:%d:%d\n", p.boldBlue, p.reset, file, start.Line+1, start.Column+1)

	idx := r.index(file)
	if idx == nil || start.Line >= idx.LineCount() {
		// No source available, just show the location line with a gutter
		ew.printf("   %s|%s\n", p.boldBlue, p.reset)
		return
	}
	source := strings.TrimRight(idx.Line(start.Line), "\r\n")

	lineStr := fmt.Sprintf("%d", start.Line+1)
	pad := strings.Repeat(" ", len(lineStr))

	// Empty gutter line
	ew.printf(" %s%s |%s\n", p.boldBlue, pad, p.reset)

	// Replace tabs with spaces for consistent alignment
	displaySource := strings.ReplaceAll(source, "\t", "    ")
	ew.printf(" %s%s |%s  %s\n", p.boldBlue, lineStr, p.reset, displaySource)

	// Underline the part of the range on the first line.  Ranges spanning
	// lines are underlined to the end of the first line.
	lineStart := idx.LineStart(start.Line)
	col := clamp(idx.Offset(start)-lineStart, 0, len(source))
	endCol := len(source)
	if d.Range.End.Line == start.Line {
		endCol = clamp(idx.Offset(d.Range.End)-lineStart, col, len(source))
	}
	underLen := displayWidth(source[col:endCol])
	if underLen == 0 {
		underLen = 1
	}

	underPad := strings.Repeat(" ", displayWidth(source[:col]))
	underline := strings.Repeat("^", underLen)

	ew.printf(" %s%s |%s  %s%s%s%s", p.boldBlue, pad, p.reset, underPad, p.boldRed, underline, p.reset)
	if d.Source != "" {
		ew.printf(" %s%s%s", p.boldRed, d.Source, p.reset)
	}
	ew.print("\n")

	// Trailing gutter
	ew.printf(" %s%s |%s\n", p.boldBlue, pad, p.reset)
}

// index returns a position index over the contents of file, or nil when the
// file cannot be read.  Indexes are cached for the life of the Renderer.
func (r *Renderer) index(file string) *position.Index {
	if idx, ok := r.cache[file]; ok {
		return idx
	}
	reader := r.SourceReader
	if reader == nil {
		reader = func(name string) ([]byte, error) {
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		}
	}
	var idx *position.Index
	if data, err := reader(file); err == nil {
		idx = position.NewIndex(string(data))
	}
	if r.cache == nil {
		r.cache = make(map[string]*position.Index)
	}
	r.cache[file] = idx
	return idx
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// displayWidth returns the display width of a string, expanding tabs to 4 spaces.
func displayWidth(s string) int {
	w := 0
	for _, ch := range s {
		if ch == '\t' {
			w += 4
		} else {
			w++
		}
	}
	return w
}

// fileFromWriter attempts to extract an *os.File from a writer for terminal
// detection. Returns nil if the writer is not backed by a file.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
