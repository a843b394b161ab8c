// Copyright © 2024 The ELPS authors

package token

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/drl/parser/position"
)

// Scanner facilitates construction of tokens from an immutable text
// snapshot.  Runes are accepted one at a time into the current token, which
// is then emitted with EmitToken or discarded with Ignore.
type Scanner struct {
	idx   *position.Index
	text  string
	start int  // byte offset of the current token
	next  int  // byte offset of the rune following c
	c     rune // last rune accepted
}

// NewScanner returns a Scanner over the text of idx.
func NewScanner(idx *position.Index) *Scanner {
	return &Scanner{
		idx:  idx,
		text: idx.Text(),
	}
}

// Index returns the position index of the scanned text.
func (s *Scanner) Index() *position.Index {
	return s.idx
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Offset: s.start,
		End:    s.next,
		Range:  s.idx.Range(s.start, s.next),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return s.text[s.start:s.next]
}

// Start returns the byte offset of the current token.
func (s *Scanner) Start() int {
	return s.start
}

// Offset returns the byte offset of the next rune to be scanned.
func (s *Scanner) Offset() int {
	return s.next
}

// Rune returns the last rune accepted.  The rune returned by Rune is the
// last rune in a token returned by EmitToken.
func (s *Scanner) Rune() rune {
	return s.c
}

// EOF reports whether all input has been scanned.
func (s *Scanner) EOF() bool {
	return s.next >= len(s.text)
}

// Peek returns the next rune to be scanned.  At the end of input Peek
// returns a false second value.  Invalid utf-8 is returned as
// utf8.RuneError and may be accepted like any other rune.
func (s *Scanner) Peek() (rune, bool) {
	if s.EOF() {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s.text[s.next:])
	return c, true
}

// PeekAt returns the rune n runes past the next one, n >= 0.
func (s *Scanner) PeekAt(n int) (rune, bool) {
	i := s.next
	for ; n > 0 && i < len(s.text); n-- {
		_, size := utf8.DecodeRuneInString(s.text[i:])
		i += size
	}
	if i >= len(s.text) {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s.text[i:])
	return c, true
}

// ScanRune accepts the next rune into the current token.  ScanRune returns
// false at the end of input.
func (s *Scanner) ScanRune() bool {
	if s.EOF() {
		return false
	}
	c, n := utf8.DecodeRuneInString(s.text[s.next:])
	s.c = c
	s.next += n
	return true
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok || !fn(peek) {
		return false
	}
	return s.ScanRune()
}

func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

func (s *Scanner) AcceptDigit() bool {
	return s.Accept(func(c rune) bool { return '0' <= c && c <= '9' })
}

func (s *Scanner) AcceptSpace() bool {
	return s.Accept(unicode.IsSpace)
}

func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(c rune) bool { return strings.ContainsRune(charset, c) })
}

func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqAny(charset string) int {
	var n int
	for s.AcceptAny(charset) {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqDigit() int {
	var n int
	for s.AcceptDigit() {
		n++
	}
	return n
}

func (s *Scanner) AcceptSeqSpace() int {
	var n int
	for s.AcceptSpace() {
		n++
	}
	return n
}

// AcceptString accepts literal only if the input continues with the entire
// literal.  Unlike a sequence of AcceptRune calls nothing is consumed on a
// partial match.
func (s *Scanner) AcceptString(literal string) bool {
	if !strings.HasPrefix(s.text[s.next:], literal) {
		return false
	}
	for range literal {
		s.ScanRune()
	}
	return true
}

// AcceptLine accepts every rune up to, but not including, the next newline.
func (s *Scanner) AcceptLine() int {
	return s.AcceptSeq(func(c rune) bool { return c != '\n' })
}

// Rewind moves the scanner back so that the current token ends at offset.
// Offsets outside the current token are ignored.
func (s *Scanner) Rewind(offset int) {
	if offset < s.start || offset > s.next {
		return
	}
	s.next = offset
	s.c = 0
	if offset > s.start {
		s.c, _ = utf8.DecodeLastRuneInString(s.text[s.start:offset])
	}
}
