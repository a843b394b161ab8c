// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/astutil"
	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns folding ranges for multi-line declarations, combinator
// patterns and comment blocks.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	return foldingRanges(doc.Result()), nil
}

func foldingRanges(res *parser.Result) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	region := func(r position.Range) {
		if r.End.Line > r.Start.Line {
			ranges = append(ranges, foldingRange(r.Start.Line, r.End.Line, protocol.FoldingRangeKindRegion))
		}
	}

	// Fold multi-line declarations and patterns from the AST.
	astutil.Walk(res.File, func(n ast.Node, _ ast.Node, _ int) {
		switch n := n.(type) {
		case *ast.Rule, *ast.Query, *ast.Function, *ast.Declare, *ast.When, *ast.Then, *ast.MultiLinePattern:
			region(n.Span())
		}
	})

	// Fold consecutive line comments and multi-line block comments.
	ranges = append(ranges, commentFoldingRanges(res.Comments())...)
	return ranges
}

// commentFoldingRanges folds block comments spanning several lines and
// runs of two or more line comments on consecutive lines.
func commentFoldingRanges(comments []*token.Token) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	start, end := -1, -1
	flush := func() {
		if start >= 0 && end > start {
			ranges = append(ranges, foldingRange(start, end, protocol.FoldingRangeKindComment))
		}
		start, end = -1, -1
	}
	for _, c := range comments {
		r := c.Range
		if r.End.Line > r.Start.Line {
			flush()
			ranges = append(ranges, foldingRange(r.Start.Line, r.End.Line, protocol.FoldingRangeKindComment))
			continue
		}
		if !c.StartsLine() || r.Start.Line != end+1 {
			flush()
		}
		if !c.StartsLine() {
			continue
		}
		if start < 0 {
			start = r.Start.Line
		}
		end = r.Start.Line
	}
	flush()
	return ranges
}

func foldingRange(start, end int, kind protocol.FoldingRangeKind) protocol.FoldingRange {
	k := string(kind)
	return protocol.FoldingRange{
		StartLine: safeUint(start),
		EndLine:   safeUint(end),
		Kind:      &k,
	}
}
