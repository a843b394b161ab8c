// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"

	"github.com/luthersystems/drl/diagnostic"
)

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(colorFlag)
	if err != nil {
		return diagnostic.ColorAuto
	}
	return mode
}

// newRenderer returns a renderer reading sources through the given
// function, so diagnostics for stdin can be annotated too.
func newRenderer(read func(string) ([]byte, error)) *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode(), SourceReader: read}
}

// withSuppressHint appends a note telling how to silence a validation
// diagnostic.  Parser diagnostics cannot be suppressed.
func withSuppressHint(d diagnostic.Diagnostic) diagnostic.Diagnostic {
	if d.Source == diagnostic.SourceParser || d.Code == "" {
		return d
	}
	d.Notes = append(append([]string(nil), d.Notes...),
		"to suppress: add \"// nolint:"+d.Code+"\" as a comment on this line")
	return d
}

// renderDiagnostics renders the diagnostics of file to w with annotated
// source snippets.
func renderDiagnostics(w io.Writer, r *diagnostic.Renderer, file string, diags []diagnostic.Diagnostic) error {
	ds := make([]diagnostic.Diagnostic, len(diags))
	for i, d := range diags {
		ds[i] = withSuppressHint(d)
	}
	return r.RenderAll(w, file, ds)
}
