// Copyright © 2024 The ELPS authors

package token

import (
	"testing"

	"github.com/luthersystems/drl/parser/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScanner(text string) *Scanner {
	return NewScanner(position.NewIndex(text))
}

func TestScannerEOF(t *testing.T) {
	s := newTestScanner("xxxxxxxxxx")
	n := s.AcceptSeq(func(c rune) bool { return true })
	assert.Equal(t, 10, n)
	s.Ignore()
	assert.False(t, s.Accept(func(c rune) bool { return true }))
	assert.True(t, s.EOF())
	tok := s.EmitToken(EOF)
	assert.Equal(t, "", tok.Text)
	assert.Equal(t, 10, tok.Offset)
}

func TestScanner(t *testing.T) {
	s := newTestScanner("rule\n  no-loop")

	s.AcceptSeq(func(c rune) bool { return c != '\n' })
	tok := s.EmitToken(KEYWORD)
	assert.Equal(t, "rule", tok.Text)
	assert.Equal(t, position.Range{End: position.Position{Line: 0, Column: 4}}, tok.Range)

	assert.Equal(t, 3, s.AcceptSeqSpace())
	s.Ignore()
	s.AcceptSeq(func(c rune) bool { return c != ' ' })
	tok = s.EmitToken(HYPHENATED)
	assert.Equal(t, "no-loop", tok.Text)
	assert.Equal(t, 7, tok.Offset)
	assert.Equal(t, 14, tok.End)
	assert.Equal(t, "2:3", tok.Range.Start.String())
	assert.Equal(t, "2:10", tok.Range.End.String())
	assert.Equal(t, 'p', s.Rune())
}

func TestScannerUTF16Range(t *testing.T) {
	s := newTestScanner(`"𝒳" x`)
	require.True(t, s.AcceptRune('"'))
	s.AcceptSeq(func(c rune) bool { return c != '"' })
	require.True(t, s.AcceptRune('"'))
	tok := s.EmitToken(STRING)
	assert.Equal(t, 4, tok.Range.End.Column)
	assert.Equal(t, 6, tok.End)
}

func TestScannerAcceptString(t *testing.T) {
	s := newTestScanner("/*x")
	assert.False(t, s.AcceptString("/**"))
	assert.Equal(t, 0, s.Offset())
	assert.True(t, s.AcceptString("/*"))
	assert.Equal(t, "/*", s.Text())
}

func TestScannerPeekAt(t *testing.T) {
	s := newTestScanner("a-b")
	c, ok := s.PeekAt(2)
	require.True(t, ok)
	assert.Equal(t, 'b', c)
	_, ok = s.PeekAt(3)
	assert.False(t, ok)
}

func TestScannerInvalidUTF8(t *testing.T) {
	s := newTestScanner("a\xffb")
	assert.Equal(t, 3, s.AcceptSeq(func(c rune) bool { return true }))
	assert.True(t, s.EOF())
}
