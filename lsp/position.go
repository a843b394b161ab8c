// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/parser/position"
)

// toLSPPosition converts a document position to an LSP position.  Both are
// 0-based with UTF-16 columns.
func toLSPPosition(p position.Position) protocol.Position {
	return protocol.Position{
		Line:      safeUint(p.Line),
		Character: safeUint(p.Column),
	}
}

// toLSPRange converts a half-open document range to an LSP range.
func toLSPRange(r position.Range) protocol.Range {
	return protocol.Range{Start: toLSPPosition(r.Start), End: toLSPPosition(r.End)}
}

// fromLSPPosition converts an LSP position to a document position.
func fromLSPPosition(p protocol.Position) position.Position {
	return position.Position{Line: int(p.Line), Column: int(p.Character)}
}

// safeUint converts a line or column to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	u, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0
	}
	return protocol.UInteger(u)
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
