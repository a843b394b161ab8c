// Copyright © 2024 The ELPS authors

package rdparser

import (
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// ParseRule parses
//
//	rule name [extends name] attribute* [when conditions] then action end
func (p *Parser) ParseRule() *ast.Rule {
	kw := p.scanToken()
	r := &ast.Rule{}
	errs := len(p.errs)
	r.Name, r.Quoted = p.parseRuleName()
	if p.src.AcceptKeyword("extends") {
		r.Extends, _ = p.parseRuleName()
	}
	r.Attributes = p.parseAttributes(r.Name.String())
	if p.src.Peek().IsKeyword("when") {
		r.When = p.parseWhen()
	}
	if p.src.Peek().IsKeyword("then") {
		r.Then = p.parseThen()
	}
	header := position.Range{Start: kw.Range.Start, End: kw.Range.End}
	if r.Name != nil {
		header.End = r.Name.Range.End
	}
	if p.isEnd() {
		p.src.Scan()
		r.Terminated = true
		if r.Then == nil && len(p.errs) == errs {
			p.errorf(header, CodeMissingThen, "rule %s has no then section", r.Name.String())
		}
	} else if len(p.errs) == errs {
		p.errorf(header, CodeMissingEnd, "rule %s is missing end", r.Name.String())
	}
	r.Range = p.span(kw)
	return r
}

// parseRuleName parses a quoted rule name or an unquoted name made of
// adjacent tokens on the header line.  A missing name yields nil; the
// validator reports it.
func (p *Parser) parseRuleName() (*ast.Ident, bool) {
	first := p.src.Peek()
	if first.PrecedingNewlines > 0 {
		return nil, false
	}
	switch first.Type {
	case token.STRING, token.CHAR:
		p.src.Scan()
		return &ast.Ident{Name: unquote(first.Text), Range: first.Range}, true
	case token.IDENT, token.HYPHENATED, token.NUMBER:
	case token.KEYWORD:
		if first.Text == "when" || first.Text == "then" || first.Text == "end" || first.Text == "extends" {
			return nil, false
		}
	default:
		return nil, false
	}
	p.src.Scan()
	for {
		tok := p.src.Peek()
		if tok.Offset != p.src.Token.End || tok.Type == token.EOF {
			break
		}
		switch tok.Type {
		case token.IDENT, token.HYPHENATED, token.NUMBER, token.KEYWORD, token.DOT, token.OPERATOR:
			p.src.Scan()
			continue
		}
		break
	}
	r := p.span(first)
	return &ast.Ident{Name: p.slice(r), Range: r}, false
}

// parseAttributes parses rule attributes up to when or then.  Attributes
// may be separated by newlines, commas or just whitespace.
func (p *Parser) parseAttributes(rule string) []*ast.Attribute {
	var attrs []*ast.Attribute
	for {
		tok := p.src.Peek()
		switch {
		case tok.IsKeyword("when") || p.atSectionBoundary():
			return attrs
		case tok.Type == token.COMMA:
			p.src.Scan()
		case tok.Type == token.IDENT || tok.Type == token.HYPHENATED:
			attrs = append(attrs, p.parseAttribute())
		default:
			p.recoverHeader(rule)
		}
	}
}

// parseAttribute parses an attribute name and its value.  The value is the
// rest of the line, with brackets balanced, up to a comma or the next known
// attribute name.
func (p *Parser) parseAttribute() *ast.Attribute {
	name := p.scanToken()
	a := &ast.Attribute{Name: ident(name)}
	_, a.Known = ast.LookupAttribute(name.Text)
	var first, last *token.Token
	depth := 0
	for {
		tok := p.src.Peek()
		if tok.Type == token.EOF || tok.IsKeyword("when") || p.atSectionBoundary() {
			break
		}
		if depth == 0 && (tok.PrecedingNewlines > 0 || tok.Type == token.COMMA || isAttributeName(tok)) {
			break
		}
		switch {
		case tok.Type.IsOpen():
			depth++
		case tok.Type.IsClose() && depth > 0:
			depth--
		}
		p.src.Scan()
		if first == nil {
			first = tok
		}
		last = tok
	}
	if first != nil {
		a.ValueRange = position.Range{Start: first.Range.Start, End: last.Range.End}
		a.Value = p.slice(a.ValueRange)
	} else {
		a.ValueRange = position.Range{Start: name.Range.End, End: name.Range.End}
	}
	a.Range = p.span(name)
	return a
}

func (p *Parser) parseWhen() *ast.When {
	kw := p.scanToken()
	w := &ast.When{}
	w.Conditions = p.parseConditionList(closeNone)
	w.Range = p.span(kw)
	return w
}

// parseThen parses the action section.  The action is kept as raw text up
// to the end keyword; variable tokens in it are collected as references.
func (p *Parser) parseThen() *ast.Then {
	kw := p.scanToken()
	th := &ast.Then{}
	var first, last *token.Token
	for !p.src.IsEOF() && !p.isEnd() && !startsDecl(p.src.Peek()) {
		tok := p.scanToken()
		switch {
		case tok.Type == token.VARIABLE:
			th.Refs = append(th.Refs, ident(tok))
		case isName(tok, last):
			th.Names = append(th.Names, ident(tok))
		}
		if first == nil {
			first = tok
		}
		last = tok
	}
	if first != nil {
		th.TextRange = position.Range{Start: first.Range.Start, End: last.Range.End}
		th.Text = p.slice(th.TextRange)
	} else {
		th.TextRange = position.Range{Start: kw.Range.End, End: kw.Range.End}
	}
	th.Range = p.span(kw)
	return th
}
