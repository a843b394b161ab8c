// Copyright © 2024 The ELPS authors

package position

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// Index is a line-start table over an immutable text snapshot.
type Index struct {
	text       string
	lineStarts []int  // byte offset of the first byte of each line
	ascii      []bool // line contains only single-byte runes
}

// NewIndex builds an Index for text in a single pass.
func NewIndex(text string) *Index {
	idx := &Index{
		text:       text,
		lineStarts: []int{0},
	}
	ascii := true
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= utf8.RuneSelf {
			ascii = false
		}
		if c == '\n' {
			idx.ascii = append(idx.ascii, ascii)
			idx.lineStarts = append(idx.lineStarts, i+1)
			ascii = true
		}
	}
	idx.ascii = append(idx.ascii, ascii)
	return idx
}

// Text returns the indexed text.
func (idx *Index) Text() string {
	return idx.text
}

// LineCount returns the number of lines. An empty document has one line.
func (idx *Index) LineCount() int {
	return len(idx.lineStarts)
}

// LineStart returns the byte offset of the first byte of line.
func (idx *Index) LineStart(line int) int {
	line = idx.clampLine(line)
	return idx.lineStarts[line]
}

// lineEnd returns the offset of the line terminator (or the end of text).
func (idx *Index) lineEnd(line int) int {
	if line+1 < len(idx.lineStarts) {
		end := idx.lineStarts[line+1] - 1
		if end > idx.lineStarts[line] && idx.text[end-1] == '\r' {
			end--
		}
		return end
	}
	return len(idx.text)
}

// Line returns the text of line without its terminator.
func (idx *Index) Line(line int) string {
	if line < 0 || line >= len(idx.lineStarts) {
		return ""
	}
	return idx.text[idx.lineStarts[line]:idx.lineEnd(line)]
}

// Lines returns every line of the document without terminators.
func (idx *Index) Lines() []string {
	lines := make([]string, len(idx.lineStarts))
	for i := range lines {
		lines[i] = idx.Line(i)
	}
	return lines
}

func (idx *Index) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(idx.lineStarts) {
		return len(idx.lineStarts) - 1
	}
	return line
}

// LineOf returns the line containing offset.
func (idx *Index) LineOf(offset int) int {
	offset = idx.clampOffset(offset)
	// first line start greater than offset, minus one
	return sort.SearchInts(idx.lineStarts, offset+1) - 1
}

func (idx *Index) clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(idx.text) {
		return len(idx.text)
	}
	return offset
}

// Position converts a byte offset to a Position. Offsets outside the
// document clamp to its bounds.
func (idx *Index) Position(offset int) Position {
	offset = idx.clampOffset(offset)
	line := idx.LineOf(offset)
	start := idx.lineStarts[line]
	if idx.ascii[line] {
		return Position{Line: line, Column: offset - start}
	}
	col := 0
	for i := start; i < offset; {
		r, size := utf8.DecodeRuneInString(idx.text[i:])
		if r >= 0x10000 {
			col += 2
		} else {
			col++
		}
		i += size
	}
	return Position{Line: line, Column: col}
}

// Offset converts a Position to a byte offset. Lines past the end clamp to
// the end of the document and columns past the end of a line clamp to the
// end of that line.
func (idx *Index) Offset(pos Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(idx.lineStarts) {
		return len(idx.text)
	}
	start := idx.lineStarts[pos.Line]
	end := idx.lineEnd(pos.Line)
	if pos.Column <= 0 {
		return start
	}
	if idx.ascii[pos.Line] {
		if start+pos.Column > end {
			return end
		}
		return start + pos.Column
	}
	units := 0
	i := start
	for i < end {
		r, size := utf8.DecodeRuneInString(idx.text[i:end])
		need := 1
		if r >= 0x10000 {
			need = 2
		}
		if units+need > pos.Column {
			break
		}
		units += need
		i += size
		if units == pos.Column {
			break
		}
	}
	return i
}

// Range converts a byte span [start, end) to a Range.
func (idx *Index) Range(start, end int) Range {
	if end < start {
		end = start
	}
	return Range{Start: idx.Position(start), End: idx.Position(end)}
}

// Slice returns the text covered by r.
func (idx *Index) Slice(r Range) string {
	start, end := idx.Offset(r.Start), idx.Offset(r.End)
	if end < start {
		return ""
	}
	return idx.text[start:end]
}

// Find locates the first occurrence of target within window and returns its
// exact range, excluding any whitespace surrounding target itself.
func (idx *Index) Find(window Range, target string) (Range, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return Range{}, false
	}
	start, end := idx.Offset(window.Start), idx.Offset(window.End)
	if end < start {
		return Range{}, false
	}
	i := strings.Index(idx.text[start:end], target)
	if i < 0 {
		return Range{}, false
	}
	return idx.Range(start+i, start+i+len(target)), true
}
