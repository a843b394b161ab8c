// Copyright © 2024 The ELPS authors

// Package parser bundles lexing and parsing of DRL documents.
package parser

import (
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/lexer"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/rdparser"
	"github.com/luthersystems/drl/parser/token"
)

// Result is the outcome of parsing one text snapshot.  A Result is never
// modified after Parse returns it.
type Result struct {
	Name   string
	File   *ast.File
	Tokens []*token.Token
	Index  *position.Index
	// Errors holds lexer and parser diagnostics in source order.
	Errors []diagnostic.Diagnostic
}

// HasErrors reports whether the document failed to lex or parse cleanly.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Parse lexes and parses text.  Parse always returns a syntax tree; problems
// are reported in Result.Errors.
func Parse(name, text string) *Result {
	idx := position.NewIndex(text)
	toks, lexErrs := lexer.TokenizeIndex(idx)
	file, parseErrs := rdparser.New(toks, idx).ParseFile()
	file.Name = name
	errs := make([]diagnostic.Diagnostic, 0, len(lexErrs)+len(parseErrs))
	errs = append(errs, lexErrs...)
	errs = append(errs, parseErrs...)
	diagnostic.Sort(errs)
	return &Result{
		Name:   name,
		File:   file,
		Tokens: toks,
		Index:  idx,
		Errors: errs,
	}
}

// Comments returns the comment tokens of the document in source order.
func (r *Result) Comments() []*token.Token {
	var comments []*token.Token
	for _, tok := range r.Tokens {
		if tok.Type == token.COMMENT {
			comments = append(comments, tok)
		}
	}
	return comments
}
