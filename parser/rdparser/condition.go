// Copyright © 2024 The ELPS authors

package rdparser

import (
	"fmt"
	"strings"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// closer identifies what terminates a condition list besides a section
// boundary.
type closer int

const (
	closeNone closer = iota
	closeParen
	// closeSource ends at the separator after an accumulate source pattern.
	closeSource
)

func (c closer) stops(tok *token.Token) bool {
	switch c {
	case closeParen:
		return tok.Type == token.PAREN_R
	case closeSource:
		return tok.Type == token.PAREN_R || tok.Type == token.COMMA || tok.Type == token.SEMICOLON
	}
	return false
}

// startsCondition reports whether tok can begin a condition.
func startsCondition(tok *token.Token) bool {
	switch tok.Type {
	case token.VARIABLE, token.IDENT, token.PAREN_L:
		return true
	case token.KEYWORD:
		return token.Combinators[tok.Text]
	}
	return false
}

// parseConditionList parses conditions joined by and, or, commas or plain
// juxtaposition until a section boundary or the list's closer.
func (p *Parser) parseConditionList(c closer) []*ast.Condition {
	var conds []*ast.Condition
	connective := ""
	for {
		if p.atSectionBoundary() {
			return conds
		}
		tok := p.src.Peek()
		if c.stops(tok) {
			return conds
		}
		switch {
		case tok.IsKeyword("and"), tok.IsKeyword("or"):
			p.src.Scan()
			connective = tok.Text
			continue
		case tok.Type == token.COMMA:
			p.src.Scan()
			connective = "and"
			continue
		case tok.Type == token.SEMICOLON:
			p.src.Scan()
			continue
		}
		cond := p.parseCondition()
		if cond == nil {
			p.recoverCondition(c)
			connective = ""
			continue
		}
		cond.Connective = connective
		connective = ""
		conds = append(conds, cond)
	}
}

// parseCondition parses a single condition.  It returns nil, having
// consumed nothing, when the next token cannot start a condition.
func (p *Parser) parseCondition() *ast.Condition {
	start := p.src.Peek()
	cond := &ast.Condition{}
	if start.Type == token.VARIABLE {
		next := p.src.PeekN(1)
		if next.Type != token.COLON && !next.Is(token.OPERATOR, ":=") {
			return nil
		}
		p.src.Scan()
		p.src.Scan()
		cond.Binding = ident(start)
		cond.Binding.Unify = next.Text == ":="
	}
	tok := p.src.Peek()
	switch {
	case tok.Type == token.KEYWORD && token.Combinators[tok.Text]:
		cond.Pattern = p.parseCombinator()
	case tok.Type == token.PAREN_L:
		p.parseGroup(cond)
	case tok.Type == token.IDENT:
		p.parseFactPattern(cond)
	case cond.Binding != nil:
		p.errorf(cond.Binding.Range, CodeMissingPattern, "expected a pattern after binding %s", cond.Binding.Name)
	default:
		return nil
	}
	cond.Range = p.span(start)
	return cond
}

// parseGroup parses a parenthesised group of conditions.
func (p *Parser) parseGroup(cond *ast.Condition) {
	open := p.scanToken()
	ref := p.openBracket(open)
	p.enter()
	cond.Nested = p.parseConditionList(closeParen)
	ok := p.src.AcceptType(token.PAREN_R)
	if ok {
		p.closeBracket(ref, p.src.Token, false)
	}
	p.leave(ok, open.Range, "condition group")
}

// parseFactPattern parses FactType(constraints) and an optional from
// clause.  Variables bound inside the constraints become field bindings and
// all other variables become references.
func (p *Parser) parseFactPattern(cond *ast.Condition) {
	typ, _ := p.parseType()
	cond.FactType = typ
	open := p.src.Peek()
	if open.Type != token.PAREN_L {
		p.errorf(typ.Range, CodeUnexpectedToken, "expected '(' after fact type %s", typ.Name)
		return
	}
	p.src.Scan()
	p.enter()
	prev := open
	visit := func(tok *token.Token, depth int) {
		switch {
		case tok.Type == token.VARIABLE:
			next := p.src.Peek()
			if (next.Type == token.COLON || next.Is(token.OPERATOR, ":=")) && startsElement(prev) {
				id := ident(tok)
				id.Unify = next.Text == ":="
				cond.FieldBindings = append(cond.FieldBindings, id)
			} else {
				cond.Refs = append(cond.Refs, ident(tok))
			}
		case isName(tok, prev):
			cond.Names = append(cond.Names, ident(tok))
		}
		prev = tok
	}
	closeTok, ok := p.scanBalanced(open, p.openBracket(open), p.atSectionBoundary, visit)
	end := p.lastEnd()
	if ok {
		end = closeTok.Range.Start
	}
	cond.ConstraintsRange = position.Range{Start: open.Range.End, End: end}
	cond.Constraints = strings.TrimSpace(p.slice(cond.ConstraintsRange))
	p.leave(ok, position.Range{Start: typ.Range.Start, End: open.Range.End}, fmt.Sprintf("pattern %s(", typ.Name))
	if !ok {
		return
	}
	if tok := p.src.Peek(); tok.Is(token.IDENT, "over") && tok.PrecedingNewlines == 0 {
		p.skipWindow()
	}
	if p.src.Peek().IsKeyword("from") {
		p.parseFrom(cond)
	}
}

// startsElement reports whether a token following prev begins a new
// constraint element, where a binding may appear.
func startsElement(prev *token.Token) bool {
	switch prev.Type {
	case token.PAREN_L, token.COMMA:
		return true
	case token.OPERATOR:
		return prev.Text == "&&" || prev.Text == "||"
	}
	return false
}

// skipWindow consumes a sliding window declaration, over window:time(...).
func (p *Parser) skipWindow() {
	for {
		tok := p.src.Peek()
		if tok.Type == token.EOF || tok.PrecedingNewlines > 0 || tok.IsKeyword("from") || p.atSectionBoundary() {
			return
		}
		p.src.Scan()
		if tok.Type == token.PAREN_L {
			p.scanBalanced(tok, p.openBracket(tok), p.atSectionBoundary, nil)
			return
		}
	}
}

// parseFrom parses the from clause of a fact pattern: a collect or
// accumulate combinator, an entry point, or an arbitrary expression that
// ends with the line.
func (p *Parser) parseFrom(cond *ast.Condition) {
	kw := p.scanToken()
	tok := p.src.Peek()
	if tok.IsKeyword("collect") || tok.IsKeyword("accumulate") {
		cond.Source = p.parseCombinator()
		cond.FromRange = cond.Source.Range
		return
	}
	var first, prev *token.Token
	collect := func(t *token.Token, _ int) {
		switch {
		case t.Type == token.VARIABLE:
			cond.Refs = append(cond.Refs, ident(t))
		case isName(t, prev):
			cond.Names = append(cond.Names, ident(t))
		}
		prev = t
	}
	for {
		tok := p.src.Peek()
		if p.atSectionBoundary() || tok.Type == token.PAREN_R || tok.Type == token.COMMA ||
			tok.Type == token.SEMICOLON || tok.IsKeyword("and") || tok.IsKeyword("or") {
			break
		}
		if first != nil && tok.PrecedingNewlines > 0 {
			break
		}
		p.src.Scan()
		if first == nil {
			first = tok
		}
		collect(tok, 0)
		if tok.Type.IsOpen() {
			p.enter()
			_, ok := p.scanBalanced(tok, p.openBracket(tok), p.atSectionBoundary, collect)
			p.leave(ok, tok.Range, "from expression")
			if !ok {
				break
			}
		}
	}
	if first == nil {
		p.errorf(kw.Range, CodeUnexpectedToken, "from has no source expression")
		return
	}
	cond.FromRange = position.Range{Start: first.Range.Start, End: p.lastEnd()}
	cond.From = p.slice(cond.FromRange)
}
