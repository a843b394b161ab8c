// Copyright © 2024 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// bracketRef locates a BracketPair recorded in a pattern under
// construction.  The zero pattern means the bracket is not recorded.
type bracketRef struct {
	pat *ast.MultiLinePattern
	i   int
}

var noBracket = bracketRef{i: -1}

// parseCombinator parses a combinator keyword and its body into a
// MultiLinePattern.  The body may span any number of lines.  Bracket depth
// is tracked over tokens, so brackets inside literals and comments never
// count.
func (p *Parser) parseCombinator() *ast.MultiLinePattern {
	kw := p.scanToken()
	pat := &ast.MultiLinePattern{
		Keyword:      ast.PatternType(kw.Text),
		KeywordRange: kw.Range,
		Depth:        p.depth,
	}
	p.pats = append(p.pats, pat)
	p.depth++
	defer func() {
		p.depth--
		p.pats = p.pats[:len(p.pats)-1]
	}()

	open := p.src.Peek()
	switch {
	case open.Type == token.PAREN_L:
		p.src.Scan()
		pat.HasBody = true
		p.parseCombinatorBody(pat, kw, open)
	case (kw.Text == "not" || kw.Text == "exists") && open.PrecedingNewlines == 0 && startsCondition(open):
		// paren-less form: not Person()
		pat.HasBody = true
		if cond := p.parseCondition(); cond != nil {
			pat.Conditions = []*ast.Condition{cond}
			pat.BodyRange = cond.Range
			pat.Body = p.slice(pat.BodyRange)
		}
	default:
		pat.BodyRange = position.Range{Start: kw.Range.End, End: kw.Range.End}
	}
	pat.Complete = bracketsClosed(pat.Brackets)
	pat.Range = p.span(kw)
	return pat
}

func (p *Parser) parseCombinatorBody(pat *ast.MultiLinePattern, kw, open *token.Token) {
	ref := p.openBracket(open)
	p.enter()
	var closeTok *token.Token
	ok := false
	switch pat.Keyword {
	case ast.PatternEval:
		closeTok, ok = p.scanBalanced(open, ref, p.atSectionBoundary, p.rawVisitor(pat, false))
	case ast.PatternAccumulate:
		pat.Conditions = p.parseConditionList(closeSource)
		switch tok := p.src.Peek(); tok.Type {
		case token.COMMA, token.SEMICOLON:
			p.src.Scan()
			closeTok, ok = p.scanBalanced(open, ref, p.atSectionBoundary, p.rawVisitor(pat, true))
		case token.PAREN_R:
			closeTok, ok = p.closeCombinator(ref)
		}
	default:
		pat.Conditions = p.parseConditionList(closeParen)
		if p.src.Peek().Type == token.PAREN_R {
			closeTok, ok = p.closeCombinator(ref)
		}
	}
	end := p.lastEnd()
	if ok {
		end = closeTok.Range.Start
	}
	pat.BodyRange = position.Range{Start: open.Range.End, End: end}
	pat.Body = p.slice(pat.BodyRange)
	p.leave(ok, position.Range{Start: kw.Range.Start, End: open.Range.End}, string(pat.Keyword)+" pattern")
}

func (p *Parser) closeCombinator(ref bracketRef) (*token.Token, bool) {
	tok := p.scanToken()
	p.closeBracket(ref, tok, false)
	return tok, true
}

// rawVisitor returns a scanBalanced visitor for raw body regions such as
// eval expressions and accumulate functions.  Variables followed by a colon
// directly inside an accumulate body bind function results; anywhere else
// the binding has no clear owning scope and is flagged as unscoped.
func (p *Parser) rawVisitor(pat *ast.MultiLinePattern, accumulate bool) func(*token.Token, int) {
	var prev *token.Token
	return func(tok *token.Token, depth int) {
		defer func() { prev = tok }()
		if isName(tok, prev) {
			pat.Names = append(pat.Names, ident(tok))
			return
		}
		if tok.Type != token.VARIABLE {
			return
		}
		next := p.src.Peek()
		binds := next.Type == token.COLON || next.Is(token.OPERATOR, ":=")
		ternary := prev != nil && prev.Is(token.OPERATOR, "?")
		switch {
		case binds && !ternary && accumulate && depth == 1:
			pat.Bindings = append(pat.Bindings, ident(tok))
		case binds && !ternary:
			pat.Unscoped = append(pat.Unscoped, ident(tok))
		default:
			pat.Refs = append(pat.Refs, ident(tok))
		}
	}
}

// scanBalanced consumes tokens up to and including the bracket closing
// open, which has already been consumed.  visit, if not nil, is called for
// every token in between with the current bracket depth (1 directly inside
// open).  A closer of the wrong kind closes the innermost open bracket it
// matches, marking the brackets it skips as mismatched; a closer that
// matches nothing is recorded as a stray mismatched pair.  scanBalanced
// returns false if boundary reports true before open is closed.
func (p *Parser) scanBalanced(open *token.Token, ref bracketRef, boundary func() bool, visit func(*token.Token, int)) (*token.Token, bool) {
	type entry struct {
		typ token.Type
		ref bracketRef
	}
	stack := []entry{{open.Type, ref}}
	for {
		if boundary() {
			return nil, false
		}
		tok := p.scanToken()
		switch {
		case tok.Type.IsOpen():
			if visit != nil {
				visit(tok, len(stack))
			}
			stack = append(stack, entry{tok.Type, p.openBracket(tok)})
		case tok.Type.IsClose():
			match := -1
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].typ.Closer() == tok.Type {
					match = i
					break
				}
			}
			if match < 0 {
				p.strayBracket(tok)
				if visit != nil {
					visit(tok, len(stack))
				}
				continue
			}
			for i := len(stack) - 1; i > match; i-- {
				p.closeBracket(stack[i].ref, tok, true)
			}
			p.closeBracket(stack[match].ref, tok, false)
			stack = stack[:match]
			if len(stack) == 0 {
				return tok, true
			}
			if visit != nil {
				visit(tok, len(stack))
			}
		default:
			if visit != nil {
				visit(tok, len(stack))
			}
		}
	}
}

// openBracket records an opening bracket in the innermost pattern under
// construction.
func (p *Parser) openBracket(tok *token.Token) bracketRef {
	if len(p.pats) == 0 {
		return noBracket
	}
	pat := p.pats[len(p.pats)-1]
	pat.Brackets = append(pat.Brackets, ast.BracketPair{Kind: pairKind(tok.Type), Open: tok.Range})
	return bracketRef{pat: pat, i: len(pat.Brackets) - 1}
}

func (p *Parser) closeBracket(ref bracketRef, tok *token.Token, mismatched bool) {
	if ref.pat == nil {
		return
	}
	b := &ref.pat.Brackets[ref.i]
	b.Close = tok.Range
	b.Mismatched = mismatched
}

// strayBracket records a closing bracket that closes nothing.
func (p *Parser) strayBracket(tok *token.Token) {
	if len(p.pats) == 0 {
		return
	}
	pat := p.pats[len(p.pats)-1]
	pat.Brackets = append(pat.Brackets, ast.BracketPair{
		Kind:       pairKind(tok.Type),
		Close:      tok.Range,
		Mismatched: true,
	})
}

func pairKind(typ token.Type) string {
	switch typ {
	case token.PAREN_L, token.PAREN_R:
		return "()"
	case token.BRACE_L, token.BRACE_R:
		return "{}"
	default:
		return "[]"
	}
}

func bracketsClosed(pairs []ast.BracketPair) bool {
	for _, b := range pairs {
		if !b.Closed() {
			return false
		}
	}
	return true
}
