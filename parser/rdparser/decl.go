// Copyright © 2024 The ELPS authors

package rdparser

import (
	"strings"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// ParsePackage parses `package a.b.c;`.  The name is kept verbatim so that
// malformed names can be reported by validation.
func (p *Parser) ParsePackage() *ast.Package {
	kw := p.scanToken()
	pkg := &ast.Package{Name: p.parseStatementText()}
	p.src.AcceptType(token.SEMICOLON)
	if pkg.Name == nil {
		p.errorf(kw.Range, CodeMissingName, "package declaration has no name")
	}
	pkg.Range = p.span(kw)
	return pkg
}

// ParseImport parses `import [function|static|accumulate] a.b.C[.*];`.
func (p *Parser) ParseImport() *ast.Import {
	kw := p.scanToken()
	imp := &ast.Import{}
	if tok, next := p.src.Peek(), p.src.PeekN(1); tok.PrecedingNewlines == 0 &&
		next.PrecedingNewlines == 0 && next.Type != token.SEMICOLON && next.Type != token.DOT &&
		(tok.IsKeyword("function") || tok.Is(token.IDENT, "static") || tok.IsKeyword("accumulate")) {
		p.src.Scan()
		imp.Form = tok.Text
	}
	if imp.Form == "accumulate" {
		imp.Path = p.parseQualifiedName()
		if tok := p.src.Peek(); tok.PrecedingNewlines == 0 && tok.Type == token.IDENT {
			p.src.Scan()
			imp.Alias = ident(tok)
		}
	} else {
		imp.Path = p.parseStatementText()
	}
	p.src.AcceptType(token.SEMICOLON)
	if imp.Path == nil {
		p.errorf(kw.Range, CodeMissingName, "import declaration has no name")
	} else {
		imp.Wildcard = strings.HasSuffix(imp.Path.Name, ".*")
	}
	imp.Range = p.span(kw)
	return imp
}

// ParseGlobal parses `global Type name;`.
func (p *Parser) ParseGlobal() *ast.Global {
	kw := p.scanToken()
	g := &ast.Global{}
	if typ, ok := p.parseType(); ok {
		g.Type = typ.Name
		if tok := p.src.Peek(); tok.PrecedingNewlines == 0 && (tok.Type == token.IDENT || tok.Type == token.VARIABLE) {
			p.src.Scan()
			g.Name = ident(tok)
		}
	}
	p.src.AcceptType(token.SEMICOLON)
	if g.Name == nil {
		p.errorf(p.span(kw), CodeMissingName, "global declaration needs a type and a name")
		p.skipLine()
	}
	g.Range = p.span(kw)
	return g
}

// ParseFunction parses `function Type name(Type p, ...) { body }`.
func (p *Parser) ParseFunction() *ast.Function {
	kw := p.scanToken()
	fn := &ast.Function{}
	typ, ok := p.parseType()
	if !ok {
		p.recoverDecl(kw, "function declaration needs a return type and a name")
		return nil
	}
	fn.ReturnType = typ.Name
	if tok := p.src.Peek(); tok.Type == token.IDENT {
		p.src.Scan()
		fn.Name = ident(tok)
	} else if p.src.Peek().Type == token.PAREN_L {
		// `function name(...)` without a return type
		fn.Name, fn.ReturnType = typ, ""
	} else {
		p.recoverDecl(kw, "function declaration needs a return type and a name")
		return nil
	}
	if p.src.Peek().Type == token.PAREN_L {
		fn.Params = p.parseParams()
	}
	open := p.src.Peek()
	if open.Type != token.BRACE_L {
		p.errorf(p.span(kw), CodeUnexpectedToken, "function %s has no body", fn.Name.Name)
		fn.Range = p.span(kw)
		return fn
	}
	p.src.Scan()
	prev := open
	closer, ok := p.scanBalanced(open, p.openBracket(open), p.atDeclBoundary, func(tok *token.Token, _ int) {
		if isName(tok, prev) {
			fn.Names = append(fn.Names, ident(tok))
		}
		prev = tok
	})
	if ok {
		fn.BodyRange = position.Range{Start: open.Range.End, End: closer.Range.Start}
	} else {
		fn.BodyRange = position.Range{Start: open.Range.End, End: p.lastEnd()}
		p.errorf(position.Range{Start: kw.Range.Start, End: open.Range.End}, CodeUnterminatedBlock,
			"unterminated body of function %s: missing '}'", fn.Name.Name)
	}
	fn.Body = p.slice(fn.BodyRange)
	fn.Range = p.span(kw)
	return fn
}

// parseParams parses a parenthesised parameter list.  Parameter types are
// optional as in query declarations.
func (p *Parser) parseParams() []*ast.Parameter {
	open := p.scanToken()
	var params []*ast.Parameter
	for {
		tok := p.src.Peek()
		switch {
		case tok.Type == token.PAREN_R:
			p.src.Scan()
			return params
		case tok.Type == token.COMMA:
			p.src.Scan()
			continue
		case p.atSectionBoundary() || tok.Type == token.BRACE_L:
			p.errorf(open.Range, CodeUnexpectedToken, "unterminated parameter list: missing ')'")
			return params
		}
		start := tok
		param := &ast.Parameter{}
		if tok.Type == token.VARIABLE {
			p.src.Scan()
			param.Name = ident(tok)
		} else if typ, ok := p.parseType(); ok {
			param.Type = typ.Name
			if name := p.src.Peek(); name.Type == token.IDENT || name.Type == token.VARIABLE {
				p.src.Scan()
				param.Name = ident(name)
			} else {
				// an untyped parameter
				param.Name, param.Type = typ, ""
			}
		} else {
			p.src.Scan()
			p.errorf(tok.Range, CodeUnexpectedToken, "unexpected %s in parameter list", describe(tok))
			continue
		}
		param.Range = p.span(start)
		params = append(params, param)
	}
}

// ParseDeclare parses a type declaration terminated by end.
func (p *Parser) ParseDeclare() *ast.Declare {
	kw := p.scanToken()
	d := &ast.Declare{}
	errs := len(p.errs)
	if tok, next := p.src.Peek(), p.src.PeekN(1); (tok.Is(token.IDENT, "trait") || tok.Is(token.IDENT, "enum")) &&
		next.Type == token.IDENT && next.PrecedingNewlines == 0 {
		p.src.Scan()
		d.Form = tok.Text
	}
	if name, ok := p.parseType(); ok {
		d.Name = name
	} else {
		p.errorf(kw.Range, CodeMissingName, "declare has no type name")
	}
	if p.src.AcceptKeyword("extends") {
		if parent, ok := p.parseType(); ok {
			d.Extends = parent
		}
	}
	d.Annotations = p.parseAnnotations()
	if d.Form == "enum" {
		p.skipEnumConstants()
	}
	for !p.isEnd() && !p.atDeclBoundary() {
		tok := p.src.Peek()
		if tok.Type == token.IDENT && p.src.PeekN(1).Type == token.COLON {
			d.Fields = append(d.Fields, p.parseDeclareField())
			continue
		}
		p.recoverLine("unexpected %s in declare %s", describe(tok), d.Name.String())
	}
	if p.isEnd() {
		p.src.Scan()
		d.Terminated = true
	} else if len(p.errs) == errs {
		p.errorf(p.span(kw), CodeMissingEnd, "declare %s is missing end", d.Name.String())
	}
	d.Range = p.span(kw)
	return d
}

func (p *Parser) parseDeclareField() *ast.DeclareField {
	name := p.scanToken()
	p.src.Scan() // colon
	field := &ast.DeclareField{Name: ident(name)}
	if typ, ok := p.parseType(); ok {
		field.Type = typ.Name
	}
	field.Annotations = p.parseAnnotations()
	if tok := p.src.Peek(); tok.Is(token.OPERATOR, "=") && tok.PrecedingNewlines == 0 {
		// default value
		p.skipLine()
	}
	p.src.AcceptType(token.SEMICOLON)
	field.Range = p.span(name)
	return field
}

// parseAnnotations parses a sequence of @name or @name(...) annotations.
func (p *Parser) parseAnnotations() []string {
	var anns []string
	for p.src.Peek().Is(token.OPERATOR, "@") && p.src.PeekN(1).Type == token.IDENT {
		at := p.scanToken()
		p.src.Scan()
		if open := p.src.Peek(); open.Type == token.PAREN_L && open.PrecedingSpaces == 0 && open.PrecedingNewlines == 0 {
			p.src.Scan()
			p.scanBalanced(open, noBracket, p.atDeclBoundary, nil)
		}
		anns = append(anns, p.slice(p.span(at)))
	}
	return anns
}

func (p *Parser) skipEnumConstants() {
	for !p.isEnd() && !p.atDeclBoundary() {
		tok := p.src.Peek()
		if tok.Type == token.IDENT && p.src.PeekN(1).Type == token.COLON {
			return
		}
		p.src.Scan()
		if tok.Type == token.SEMICOLON {
			return
		}
		if tok.Type.IsOpen() {
			p.scanBalanced(tok, noBracket, p.atDeclBoundary, nil)
		}
	}
}

// ParseQuery parses `query "name" (params) conditions end`.
func (p *Parser) ParseQuery() *ast.Query {
	kw := p.scanToken()
	q := &ast.Query{}
	errs := len(p.errs)
	if tok := p.src.Peek(); tok.PrecedingNewlines == 0 && (tok.Type == token.STRING || tok.Type == token.CHAR) {
		p.src.Scan()
		q.Name = &ast.Ident{Name: unquote(tok.Text), Range: tok.Range}
	} else if tok.PrecedingNewlines == 0 && tok.Type == token.IDENT {
		p.src.Scan()
		q.Name = ident(tok)
	} else {
		p.errorf(kw.Range, CodeMissingName, "query has no name")
	}
	if tok := p.src.Peek(); tok.Type == token.PAREN_L && tok.PrecedingNewlines == 0 {
		q.Params = p.parseParams()
	}
	header := p.lastEnd()
	q.When = &ast.When{Range: position.Range{Start: header, End: header}}
	q.When.Conditions = p.parseConditionList(closeNone)
	for p.src.Peek().IsKeyword("then") {
		p.recoverLine("unexpected then in query %s", q.Name.String())
		q.When.Conditions = append(q.When.Conditions, p.parseConditionList(closeNone)...)
	}
	if n := len(q.When.Conditions); n > 0 {
		q.When.Range = position.Range{
			Start: q.When.Conditions[0].Range.Start,
			End:   q.When.Conditions[n-1].Range.End,
		}
	}
	if p.isEnd() {
		p.src.Scan()
		q.Terminated = true
	} else if len(p.errs) == errs {
		p.errorf(p.span(kw), CodeMissingEnd, "query %s is missing end", q.Name.String())
	}
	q.Range = p.span(kw)
	return q
}

// parseType parses a possibly qualified, generic or array type name.
func (p *Parser) parseType() (*ast.Ident, bool) {
	first := p.src.Peek()
	if first.Type != token.IDENT {
		return nil, false
	}
	p.src.Scan()
	for {
		tok, next := p.src.Peek(), p.src.PeekN(1)
		switch {
		case tok.Type == token.DOT && next.Type == token.IDENT:
			p.src.Scan()
			p.src.Scan()
		case tok.Is(token.OPERATOR, "<") && tok.PrecedingNewlines == 0:
			p.skipTypeArgs()
		case tok.Type == token.BRACKET_L && next.Type == token.BRACKET_R:
			p.src.Scan()
			p.src.Scan()
		default:
			r := p.span(first)
			return &ast.Ident{Name: p.slice(r), Range: r}, true
		}
	}
}

// skipTypeArgs consumes a balanced <...> type argument list.
func (p *Parser) skipTypeArgs() {
	depth := 0
	for !p.atSectionBoundary() {
		tok := p.scanToken()
		switch {
		case tok.Is(token.OPERATOR, "<"):
			depth++
		case tok.Is(token.OPERATOR, ">"):
			depth--
		case tok.Is(token.OPERATOR, ">>"):
			depth -= 2
		}
		if depth <= 0 {
			return
		}
		if tok.Type == token.SEMICOLON || tok.Type == token.BRACE_L {
			return
		}
	}
}

// parseQualifiedName parses adjacent name tokens such as a.b.C.
func (p *Parser) parseQualifiedName() *ast.Ident {
	first := p.src.Peek()
	if first.PrecedingNewlines > 0 || (first.Type != token.IDENT && first.Type != token.KEYWORD) {
		return nil
	}
	p.src.Scan()
	for {
		tok := p.src.Peek()
		if tok.Offset != p.src.Token.End || tok.Type == token.SEMICOLON || tok.Type == token.EOF {
			break
		}
		p.src.Scan()
	}
	r := p.span(first)
	return &ast.Ident{Name: p.slice(r), Range: r}
}

// parseStatementText consumes the remaining tokens of a one-line statement
// up to an optional semicolon and returns their text verbatim.
func (p *Parser) parseStatementText() *ast.Ident {
	first := p.src.Peek()
	if first.PrecedingNewlines > 0 || first.Type == token.SEMICOLON || first.Type == token.EOF {
		return nil
	}
	for {
		tok := p.src.Peek()
		if tok.Type == token.EOF || tok.Type == token.SEMICOLON || tok.PrecedingNewlines > 0 {
			break
		}
		p.src.Scan()
	}
	r := p.span(first)
	return &ast.Ident{Name: p.slice(r), Range: r}
}

// scanToken consumes and returns the next token.
func (p *Parser) scanToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

// skipLine consumes the remaining tokens on the current line.
func (p *Parser) skipLine() {
	for {
		tok := p.src.Peek()
		if tok.Type == token.EOF || tok.PrecedingNewlines > 0 {
			return
		}
		p.src.Scan()
	}
}
