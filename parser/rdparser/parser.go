// Copyright © 2024 The ELPS authors

// Package rdparser implements a recursive descent parser for DRL.
//
// The parser never fails.  Problems are recorded as diagnostics with source
// "parser" and parsing resumes at the next recognizable boundary, so any
// input, however malformed, yields a (possibly partial) syntax tree.
package rdparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// Diagnostic codes reported by the parser.
const (
	CodeUnexpectedToken     = "unexpected-token"
	CodeUnterminatedPattern = "unterminated-pattern"
	CodeUnterminatedBlock   = "unterminated-block"
	CodeMissingEnd          = "missing-end"
	CodeMissingThen         = "missing-then"
	CodeMissingName         = "missing-name"
	CodeMissingPattern      = "missing-pattern"
)

// declKeywords start top-level declarations.
var declKeywords = map[string]bool{
	"package":  true,
	"import":   true,
	"global":   true,
	"function": true,
	"declare":  true,
	"query":    true,
	"rule":     true,
}

// Parser is a DRL parser.
type Parser struct {
	src   *TokenSource
	idx   *position.Index
	errs  []diagnostic.Diagnostic
	depth int // combinator nesting depth
	// open counts bracketed constructs entered but not yet closed.  Only
	// the outermost unterminated construct is reported.
	open int
	pats []*ast.MultiLinePattern // patterns under construction, innermost last
}

// New initializes and returns a Parser over tokens lexed from the text of
// idx.
func New(tokens []*token.Token, idx *position.Index) *Parser {
	return &Parser{
		src: NewTokenSource(tokens),
		idx: idx,
	}
}

// ParseFile parses a complete DRL document.
func (p *Parser) ParseFile() (*ast.File, []diagnostic.Diagnostic) {
	f := &ast.File{}
	for !p.src.IsEOF() {
		tok := p.src.Peek()
		switch {
		case tok.IsKeyword("package"):
			pkg := p.ParsePackage()
			if f.Package != nil {
				p.errorf(pkg.Range, CodeUnexpectedToken, "duplicate package declaration")
				continue
			}
			f.Package = pkg
		case tok.IsKeyword("import"):
			f.Imports = append(f.Imports, p.ParseImport())
		case tok.IsKeyword("global"):
			f.Globals = append(f.Globals, p.ParseGlobal())
		case tok.IsKeyword("function"):
			if fn := p.ParseFunction(); fn != nil {
				f.Functions = append(f.Functions, fn)
			}
		case tok.IsKeyword("declare"):
			f.Declares = append(f.Declares, p.ParseDeclare())
		case tok.IsKeyword("query"):
			f.Queries = append(f.Queries, p.ParseQuery())
		case tok.IsKeyword("rule"):
			f.Rules = append(f.Rules, p.ParseRule())
		case isAttributeName(tok) && tok.StartsLine():
			f.Attributes = append(f.Attributes, p.parseAttribute())
		default:
			p.recoverTopLevel()
		}
	}
	text := p.idx.Text()
	f.Range = p.idx.Range(0, len(text))
	return f, p.errs
}

// ParseConditions parses a bare condition list, such as the body of a when
// section, up to the end of input.
func (p *Parser) ParseConditions() ([]*ast.Condition, []diagnostic.Diagnostic) {
	var conds []*ast.Condition
	for {
		conds = append(conds, p.parseConditionList(closeNone)...)
		if p.src.IsEOF() {
			return conds, p.errs
		}
		p.recoverTopLevel()
	}
}

// ParseConditions parses tokens lexed from the text of idx as a bare
// condition list.
func ParseConditions(tokens []*token.Token, idx *position.Index) ([]*ast.Condition, []diagnostic.Diagnostic) {
	return New(tokens, idx).ParseConditions()
}

func (p *Parser) errorf(r position.Range, code string, format string, v ...interface{}) {
	p.errs = append(p.errs, diagnostic.Errorf(r, diagnostic.SourceParser, code, format, v...))
}

// lastEnd returns the end of the most recently consumed token.
func (p *Parser) lastEnd() position.Position {
	if p.src.Token == nil {
		return position.Position{}
	}
	return p.src.Token.Range.End
}

// span returns the range from the start of tok to the end of the most
// recently consumed token.
func (p *Parser) span(tok *token.Token) position.Range {
	end := p.lastEnd()
	if end.Before(tok.Range.End) {
		end = tok.Range.End
	}
	return position.Range{Start: tok.Range.Start, End: end}
}

func (p *Parser) slice(r position.Range) string {
	return p.idx.Slice(r)
}

func ident(tok *token.Token) *ast.Ident {
	return &ast.Ident{Name: tok.Text, Range: tok.Range}
}

// startsDecl reports whether tok begins a top-level declaration.
func startsDecl(tok *token.Token) bool {
	return tok.Type == token.KEYWORD && declKeywords[tok.Text] && tok.StartsLine()
}

// isName reports whether tok is an unqualified identifier, one not
// following a dot.
func isName(tok, prev *token.Token) bool {
	return tok.Type == token.IDENT && (prev == nil || (prev.Type != token.DOT && !prev.Is(token.OPERATOR, "::")))
}

func isAttributeName(tok *token.Token) bool {
	if tok.Type != token.IDENT && tok.Type != token.HYPHENATED {
		return false
	}
	_, ok := ast.LookupAttribute(tok.Text)
	return ok
}

// isEnd reports whether the next token is an end keyword that closes a
// rule, query or declare, as opposed to an identifier spelled end in
// action code.
func (p *Parser) isEnd() bool {
	tok := p.src.Peek()
	if !tok.IsKeyword("end") {
		return false
	}
	if next := p.src.PeekN(1); next.Type != token.EOF && next.PrecedingNewlines == 0 {
		switch next.Type {
		case token.OPERATOR, token.DOT, token.PAREN_L, token.BRACKET_L:
			return false
		}
	}
	prev := p.src.Prev()
	if tok.StartsLine() || prev == nil {
		return true
	}
	switch prev.Type {
	case token.SEMICOLON, token.BRACE_R, token.PAREN_R, token.STRING, token.CHAR:
		return true
	case token.KEYWORD:
		return prev.Text == "then" || prev.Text == "when"
	}
	return false
}

// atSectionBoundary reports whether the next token ends the current rule
// section.
func (p *Parser) atSectionBoundary() bool {
	tok := p.src.Peek()
	return tok.Type == token.EOF || tok.IsKeyword("then") || p.isEnd() || startsDecl(tok)
}

// atDeclBoundary reports whether the next token begins a new top-level
// declaration or ends input.
func (p *Parser) atDeclBoundary() bool {
	tok := p.src.Peek()
	return tok.Type == token.EOF || startsDecl(tok)
}

func describe(tok *token.Token) string {
	if tok.Type == token.EOF {
		return "end of file"
	}
	text := tok.Text
	if len(text) > 32 {
		text = text[:32] + "..."
	}
	return fmt.Sprintf("%s %q", tok.Type, text)
}

// unquote strips the quotes of a string or char literal.  Unterminated
// literals lose only their opening quote.
func unquote(text string) string {
	if s, err := strconv.Unquote(text); err == nil {
		return s
	}
	if len(text) >= 2 && (text[0] == '"' || text[0] == '\'') && text[len(text)-1] == text[0] {
		return text[1 : len(text)-1]
	}
	return strings.TrimLeft(text, `"'`)
}
