// Copyright © 2024 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/drl/parser/token"
)

// TokenSource adds memory and lookahead to a lexed token slice.  Comment
// tokens are dropped on construction; the parser never sees them.
type TokenSource struct {
	toks  []*token.Token
	pos   int          // index of the next token
	Token *token.Token // the most recently scanned token
}

// NewTokenSource returns a TokenSource over toks.  A missing trailing EOF
// token is synthesized.
func NewTokenSource(toks []*token.Token) *TokenSource {
	s := &TokenSource{toks: make([]*token.Token, 0, len(toks)+1)}
	for _, tok := range toks {
		if tok.Type == token.COMMENT {
			continue
		}
		s.toks = append(s.toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	if n := len(s.toks); n == 0 || s.toks[n-1].Type != token.EOF {
		eof := &token.Token{Type: token.EOF, PrecedingNewlines: 1}
		if n > 0 {
			last := s.toks[n-1]
			eof.Offset, eof.End = last.End, last.End
			eof.Range.Start, eof.Range.End = last.Range.End, last.Range.End
		}
		s.toks = append(s.toks, eof)
	}
	return s
}

// Peek returns the next token without consuming it.
func (s *TokenSource) Peek() *token.Token {
	return s.toks[s.pos]
}

// PeekN returns the token n positions past the next one.  Lookahead past
// the end returns the EOF token.
func (s *TokenSource) PeekN(n int) *token.Token {
	i := s.pos + n
	if i >= len(s.toks) {
		return s.toks[len(s.toks)-1]
	}
	return s.toks[i]
}

// Prev returns the most recently scanned token or nil.
func (s *TokenSource) Prev() *token.Token {
	return s.Token
}

func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if fn(s.Peek()) {
		s.scan()
		return true
	}
	return false
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

// AcceptKeyword consumes the next token if it is the keyword kw.
func (s *TokenSource) AcceptKeyword(kw string) bool {
	return s.Accept(func(tok *token.Token) bool { return tok.IsKeyword(kw) })
}

func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	if s.pos < len(s.toks)-1 {
		s.pos++
	}
}
