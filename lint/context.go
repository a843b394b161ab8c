// Copyright © 2024 The ELPS authors

package lint

import (
	"sort"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// Context is the state of one validation.  A fresh Context is created by
// every call to Linter.Validate and is never shared between calls.
type Context struct {
	// Result is the parsed document.
	Result *parser.Result
	// File is the syntax tree of the document.
	File *ast.File
	// Lines are the lines of the document without line terminators.
	Lines    []string
	Index    *position.Index
	Settings Settings

	cfg       analysis.Config
	semantics *analysis.Result
	completed map[Phase]bool
}

func newContext(res *parser.Result, settings Settings, cfg *analysis.Config) *Context {
	c := &Context{
		Result:    res,
		File:      res.File,
		Lines:     res.Index.Lines(),
		Index:     res.Index,
		Settings:  settings,
		completed: make(map[Phase]bool),
	}
	if cfg != nil {
		c.cfg = *cfg
	}
	c.cfg.Filename = res.Name
	return c
}

// Semantics returns the result of semantic analysis.  The analysis runs
// once per Context, on first use.
func (c *Context) Semantics() *analysis.Result {
	if c.semantics == nil {
		cfg := c.cfg
		c.semantics = analysis.Analyze(c.File, &cfg)
	}
	return c.semantics
}

// Completed reports whether phase ph has run.
func (c *Context) Completed(ph Phase) bool {
	return c.completed[ph]
}

// Tokens returns the tokens starting inside r, in source order.
func (c *Context) Tokens(r position.Range) []*token.Token {
	toks := c.Result.Tokens
	i := sort.Search(len(toks), func(i int) bool {
		return !toks[i].Range.Start.Before(r.Start)
	})
	j := i
	for j < len(toks) && toks[j].Type != token.EOF && toks[j].Range.Start.Before(r.End) {
		j++
	}
	return toks[i:j]
}

// ParserReported reports whether a lexer or parser diagnostic covers pos.
func (c *Context) ParserReported(pos position.Position) bool {
	for _, d := range c.Result.Errors {
		if d.Source == diagnostic.SourceParser && d.Range.Contains(pos) {
			return true
		}
	}
	return false
}
