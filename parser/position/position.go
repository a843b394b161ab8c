// Copyright © 2024 The ELPS authors

// Package position converts between byte offsets and editor positions in a
// DRL source snapshot.
//
// Positions use the editor convention: 0-based lines and columns counted in
// UTF-16 code units. Ranges are half-open, the End position is just past
// the last character covered.
package position

import "fmt"

// Position is a location in a document.
type Position struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Before reports whether p comes strictly before q.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

// Compare returns -1, 0 or 1 as p is before, equal to, or after q.
func (p Position) Compare(q Position) int {
	switch {
	case p.Before(q):
		return -1
	case q.Before(p):
		return 1
	default:
		return 0
	}
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Column+1)
}

// Range is a half-open span [Start, End) of a document.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// IsZero reports whether r is the zero Range.
func (r Range) IsZero() bool {
	return r == Range{}
}

// Empty reports whether r covers no characters.
func (r Range) Empty() bool {
	return !r.Start.Before(r.End)
}

// Contains reports whether pos lies inside r. The end position is
// included so that a cursor placed right after a token still hits it.
func (r Range) Contains(pos Position) bool {
	return !pos.Before(r.Start) && !r.End.Before(pos)
}

// ContainsRange reports whether inner lies entirely within r.
func (r Range) ContainsRange(inner Range) bool {
	return !inner.Start.Before(r.Start) && !r.End.Before(inner.End)
}

// Union returns the smallest range covering both r and other. A zero range
// is treated as absent.
func (r Range) Union(other Range) Range {
	if r.IsZero() {
		return other
	}
	if other.IsZero() {
		return r
	}
	out := r
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if out.End.Before(other.End) {
		out.End = other.End
	}
	return out
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
