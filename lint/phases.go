// Copyright © 2024 The ELPS authors

package lint

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/token"
)

// CodeAnalyzerFailure is the code of the diagnostic reported in place of
// an analyzer that failed.
const CodeAnalyzerFailure = "analyzer-failure"

// runPhase runs the analyzers of phase ph unless the phase is disabled or
// has already run in c.
func (l *Linter) runPhase(ctx context.Context, c *Context, ph Phase) []diagnostic.Diagnostic {
	if !c.Settings.Enabled(ph) || c.completed[ph] {
		return nil
	}
	c.completed[ph] = true

	_, span := l.tracer().Start(ctx, "drl.validate/"+string(ph),
		trace.WithAttributes(semconv.CodeFilepath(c.Result.Name)))
	defer span.End()

	var out []diagnostic.Diagnostic
	failures := 0
	for _, a := range l.Analyzers {
		if a.Phase != ph {
			continue
		}
		diags, err := c.run(a)
		out = append(out, diags...)
		if err != nil {
			failures++
			span.RecordError(err)
			out = append(out, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityInformation,
				Message:  fmt.Sprintf("check %s failed: %v", a.Name, err),
				Source:   string(ph),
				Code:     CodeAnalyzerFailure,
			})
		}
	}
	if failures > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d checks failed", failures))
	}
	out = filterSuppressed(out, c.Result.Comments())
	span.SetAttributes(attribute.Int("drl.diagnostics", len(out)))
	return out
}

// run executes a single analyzer.  A panicking analyzer is converted to an
// error and the diagnostics it reported before panicking are kept.
func (c *Context) run(a *Analyzer) (diags []diagnostic.Diagnostic, err error) {
	pass := &Pass{Context: c, Analyzer: a}
	defer func() {
		if r := recover(); r != nil {
			diags = pass.diagnostics
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	err = a.Run(pass)
	return pass.diagnostics, err
}

// filterSuppressed removes diagnostics on lines with nolint comments.  A
// bare "// nolint" suppresses every check on its line and
// "// nolint:code1,code2" suppresses only the named checks.
func filterSuppressed(diags []diagnostic.Diagnostic, comments []*token.Token) []diagnostic.Diagnostic {
	nolintLines := make(map[int]string) // line -> "" (all) or "code1,code2"
	for _, tok := range comments {
		checkNolintToken(tok, nolintLines)
	}
	if len(nolintLines) == 0 {
		return diags
	}

	var filtered []diagnostic.Diagnostic
	for _, d := range diags {
		directive, ok := nolintLines[d.Range.Start.Line]
		if !ok {
			filtered = append(filtered, d)
			continue
		}
		if directive == "" {
			continue
		}
		suppressed := false
		for _, name := range strings.Split(directive, ",") {
			if strings.TrimSpace(name) == d.Code {
				suppressed = true
				break
			}
		}
		if !suppressed {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

func checkNolintToken(tok *token.Token, lines map[int]string) {
	text := strings.TrimSpace(tok.Text)
	switch {
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	case strings.HasPrefix(text, "#"):
		text = strings.TrimPrefix(text, "#")
	}
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "nolint") {
		return
	}
	rest := strings.TrimPrefix(text, "nolint")
	line := tok.Range.End.Line
	if rest == "" {
		lines[line] = ""
		return
	}
	if strings.HasPrefix(rest, ":") {
		lines[line] = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
}
