// Copyright © 2024 The ELPS authors

// Package lint validates parsed DRL documents.
//
// The validator is modeled after go vet: each check is an independent
// Analyzer that receives a parsed document and reports diagnostics.  Checks
// are grouped into four phases (syntax, semantic, best-practice and
// multiline-pattern) which run at most once per validation.  The framework
// handles running analyzers, collecting results, suppression comments,
// deduplication and formatting output.
//
// Analyzers are composable and extensible; embedders can define custom
// checks alongside the built-in set.
package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/position"
)

const tracerName = "github.com/luthersystems/drl/lint"

// Phase is a group of analyzers that run together.  The phase name is the
// Source of every diagnostic its analyzers report.
type Phase string

const (
	PhaseSyntax       Phase = diagnostic.SourceSyntax
	PhaseSemantic     Phase = diagnostic.SourceSemantic
	PhaseBestPractice Phase = diagnostic.SourceBestPractice
	PhaseMultiline    Phase = diagnostic.SourceMultiline
)

// Phases returns the phases in the order they run.
func Phases() []Phase {
	return []Phase{PhaseSyntax, PhaseSemantic, PhaseBestPractice, PhaseMultiline}
}

// Analyzer defines a single check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "rule-name").  It is
	// the Code of every diagnostic the check reports.
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Phase is the phase the check belongs to.
	Phase Phase

	// Severity is the default severity for diagnostics from this analyzer.
	Severity diagnostic.Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	*Context

	// Analyzer is the currently running check.
	Analyzer *Analyzer

	diagnostics []diagnostic.Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d diagnostic.Diagnostic) {
	if d.Code == "" {
		d.Code = p.Analyzer.Name
	}
	d.Source = string(p.Analyzer.Phase)
	if d.Severity == 0 {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d diagnostic.Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}

// Reportf is a convenience for reporting a diagnostic covering r.
func (p *Pass) Reportf(r position.Range, format string, args ...interface{}) {
	p.Report(diagnostic.Diagnostic{
		Range:   r,
		Message: fmt.Sprintf(format, args...),
	})
}

// Settings select the phases that run and bound the output.  The
// multiline-pattern phase runs whenever syntax validation is enabled.
type Settings struct {
	EnableSyntaxValidation     bool `mapstructure:"enableSyntaxValidation" json:"enableSyntaxValidation" yaml:"enableSyntaxValidation"`
	EnableSemanticValidation   bool `mapstructure:"enableSemanticValidation" json:"enableSemanticValidation" yaml:"enableSemanticValidation"`
	EnableBestPracticeWarnings bool `mapstructure:"enableBestPracticeWarnings" json:"enableBestPracticeWarnings" yaml:"enableBestPracticeWarnings"`
	// MaxDiagnostics caps the number of diagnostics returned.  Zero means
	// no limit.
	MaxDiagnostics uint `mapstructure:"maxDiagnostics" json:"maxDiagnostics" yaml:"maxDiagnostics"`
}

// DefaultSettings enables every phase and keeps at most 100 diagnostics.
func DefaultSettings() Settings {
	return Settings{
		EnableSyntaxValidation:     true,
		EnableSemanticValidation:   true,
		EnableBestPracticeWarnings: true,
		MaxDiagnostics:             100,
	}
}

// Enabled reports whether phase ph runs under s.
func (s Settings) Enabled(ph Phase) bool {
	switch ph {
	case PhaseSyntax, PhaseMultiline:
		return s.EnableSyntaxValidation
	case PhaseSemantic:
		return s.EnableSemanticValidation
	case PhaseBestPractice:
		return s.EnableBestPracticeWarnings
	}
	return false
}

// Linter runs a set of analyzers over documents.  A Linter holds no
// per-document state and may be used from several goroutines at once.
type Linter struct {
	Analyzers []*Analyzer

	// Analysis configures semantic analysis, e.g. with declarations from
	// other files of the workspace.  Filename is set per document.
	Analysis *analysis.Config

	// Tracer records one span per phase.  The global tracer provider is
	// used when Tracer is nil.
	Tracer trace.Tracer
}

// New returns a Linter running the default analyzers.
func New() *Linter {
	return &Linter{Analyzers: DefaultAnalyzers()}
}

func (l *Linter) tracer() trace.Tracer {
	if l.Tracer != nil {
		return l.Tracer
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

// Validate runs every enabled phase over a parsed document and returns the
// parse diagnostics together with the validation diagnostics, deduplicated,
// capped at settings.MaxDiagnostics and sorted by position.
//
// Validate never fails.  An analyzer that returns an error or panics is
// reported as an information diagnostic and the remaining analyzers run.
func (l *Linter) Validate(ctx context.Context, res *parser.Result, settings Settings) []diagnostic.Diagnostic {
	c := newContext(res, settings, l.Analysis)
	ctx, span := l.tracer().Start(ctx, "drl.validate")
	defer span.End()

	all := append([]diagnostic.Diagnostic(nil), res.Errors...)
	for _, ph := range Phases() {
		all = append(all, l.runPhase(ctx, c, ph)...)
	}
	all = dedupe(all)
	all = capDiagnostics(all, settings.MaxDiagnostics)
	diagnostic.Sort(all)
	return all
}

// ValidateSource parses and validates source in one call.
func (l *Linter) ValidateSource(ctx context.Context, filename string, source []byte, settings Settings) (*parser.Result, []diagnostic.Diagnostic) {
	res := parser.Parse(filename, string(source))
	return res, l.Validate(ctx, res, settings)
}

// dedupe removes diagnostics repeating the message, source and start
// position of an earlier one.
func dedupe(diags []diagnostic.Diagnostic) []diagnostic.Diagnostic {
	type key struct {
		message string
		source  string
		start   position.Position
	}
	seen := make(map[key]bool, len(diags))
	out := diags[:0]
	for _, d := range diags {
		k := key{d.Message, d.Source, d.Range.Start}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, d)
	}
	return out
}

// capDiagnostics keeps at most limit diagnostics, preferring errors over
// warnings over information and otherwise keeping the earliest.
func capDiagnostics(diags []diagnostic.Diagnostic, limit uint) []diagnostic.Diagnostic {
	if limit == 0 || uint(len(diags)) <= limit {
		return diags
	}
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Severity != diags[j].Severity {
			return diags[i].Severity < diags[j].Severity
		}
		return diags[i].Range.Start.Before(diags[j].Range.Start)
	})
	return diags[:limit]
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, filename string, diags []diagnostic.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "%s:%d:%d: %s: %s (%s)\n", //nolint:errcheck // best-effort output to writer
			filename, d.Range.Start.Line+1, d.Range.Start.Column+1, d.Severity, d.Message, d.Code)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  = note: %s\n", n) //nolint:errcheck // best-effort output to writer
		}
	}
}

// FileDiagnostics are the diagnostics of one file, as written by FormatJSON.
type FileDiagnostics struct {
	File        string                  `json:"file"`
	Diagnostics []diagnostic.Diagnostic `json:"diagnostics"`
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, files []FileDiagnostics) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(files)
}

// DefaultAnalyzers returns the built-in set of checks in phase order.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		// syntax
		AnalyzerBracketBalance,
		AnalyzerRuleName,
		AnalyzerAttributeValue,
		AnalyzerKeywordCase,
		// semantic
		AnalyzerDuplicateName,
		AnalyzerDuplicateVariable,
		AnalyzerUndefinedVariable,
		AnalyzerUnusedVariable,
		AnalyzerUnscopedBinding,
		AnalyzerUnknownParent,
		AnalyzerUnknownAttribute,
		AnalyzerDuplicateAttribute,
		AnalyzerMalformedIdentifier,
		// best-practice
		AnalyzerLoopGuard,
		AnalyzerUnusedGlobal,
		AnalyzerEvalUsage,
		AnalyzerEmptyAction,
		// multiline-pattern
		AnalyzerEmptyPattern,
		AnalyzerTruncatedPattern,
		AnalyzerPatternBracketMismatch,
	}
}

// AnalyzerNames returns a sorted list of all default analyzer names.
func AnalyzerNames() []string {
	analyzers := DefaultAnalyzers()
	names := make([]string, len(analyzers))
	for i, a := range analyzers {
		names[i] = a.Name
	}
	sort.Strings(names)
	return names
}

// LookupAnalyzer returns the default analyzer with the given name.
func LookupAnalyzer(name string) *Analyzer {
	for _, a := range DefaultAnalyzers() {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AnalyzerDoc returns a formatted documentation string for all analyzers.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		fmt.Fprintf(&b, "  %s (%s)\n", a.Name, a.Phase)
		lines := strings.Split(a.Doc, "\n")
		fmt.Fprintf(&b, "    %s\n\n", lines[0])
	}
	return b.String()
}
