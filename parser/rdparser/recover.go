// Copyright © 2024 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// Error recovery skips a contiguous span of tokens and reports it with a
// single diagnostic, so a malformed construct never produces one error per
// token.

// recoverTopLevel skips to the next top-level declaration.
func (p *Parser) recoverTopLevel() {
	start := p.scanToken()
	for !p.atDeclBoundary() {
		p.src.Scan()
	}
	p.errorf(p.span(start), CodeUnexpectedToken, "unexpected %s outside of a declaration", describe(start))
}

// recoverDecl abandons the declaration started by kw and skips to the next
// top-level declaration.
func (p *Parser) recoverDecl(kw *token.Token, format string, v ...interface{}) {
	for !p.atDeclBoundary() {
		p.src.Scan()
	}
	p.errorf(p.span(kw), CodeUnexpectedToken, format, v...)
}

// recoverLine skips the rest of the current line, brackets balanced, and
// reports the skipped span.
func (p *Parser) recoverLine(format string, v ...interface{}) {
	start := p.scanToken()
	if start.Type.IsOpen() {
		p.scanBalanced(start, noBracket, p.atSectionBoundary, nil)
	}
	for {
		tok := p.src.Peek()
		if tok.PrecedingNewlines > 0 || p.atSectionBoundary() {
			break
		}
		p.src.Scan()
		if tok.Type.IsOpen() {
			p.scanBalanced(tok, noBracket, p.atSectionBoundary, nil)
		}
	}
	p.errorf(p.span(start), CodeUnexpectedToken, format, v...)
}

// recoverHeader skips unexpected tokens in a rule header up to when, then or
// end.
func (p *Parser) recoverHeader(name string) {
	start := p.scanToken()
	for {
		tok := p.src.Peek()
		if tok.IsKeyword("when") || p.atSectionBoundary() {
			break
		}
		p.src.Scan()
	}
	p.errorf(p.span(start), CodeUnexpectedToken, "unexpected %s in header of rule %s", describe(start), name)
}

// recoverCondition skips a malformed condition.  Skipping stops at a
// section boundary, at the closer of the enclosing list, or at a token that
// starts a new condition on a fresh line.
func (p *Parser) recoverCondition(c closer) {
	start := p.src.Peek()
	depth := 0
	consumed := false
	for !p.atSectionBoundary() {
		tok := p.src.Peek()
		if depth == 0 && consumed {
			if c.stops(tok) || tok.IsKeyword("and") || tok.IsKeyword("or") {
				break
			}
			if tok.StartsLine() && startsCondition(tok) {
				break
			}
		}
		p.src.Scan()
		consumed = true
		switch {
		case tok.Type.IsOpen():
			depth++
		case tok.Type.IsClose() && depth > 0:
			depth--
		}
	}
	if !consumed {
		return
	}
	r := position.Range{Start: start.Range.Start, End: p.lastEnd()}
	p.errorf(r, CodeUnexpectedToken, "unexpected %s in condition", describe(start))
}

// enter records the start of a bracketed construct.
func (p *Parser) enter() {
	p.open++
}

// leave records the end of a bracketed construct.  An unterminated
// construct is reported only when it is the outermost open one; the
// constructs it encloses were terminated by the same missing bracket.
func (p *Parser) leave(ok bool, opener position.Range, what string) {
	p.open--
	if !ok && p.open == 0 {
		p.errorf(opener, CodeUnterminatedPattern, "unterminated %s: missing ')'", what)
	}
}
