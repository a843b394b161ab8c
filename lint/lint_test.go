// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/drltest"
	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/position"
)

// validate runs the default analyzers with default settings.
func validate(t *testing.T, source string) []diagnostic.Diagnostic {
	t.Helper()
	_, diags := New().ValidateSource(context.Background(), "test.drl", []byte(source), DefaultSettings())
	return diags
}

// validateWith runs a single analyzer over source and returns its
// diagnostics without the parse errors.
func validateWith(t *testing.T, a *Analyzer, source string) []diagnostic.Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: []*Analyzer{a}}
	res := parser.Parse("test.drl", source)
	var out []diagnostic.Diagnostic
	for _, d := range l.Validate(context.Background(), res, DefaultSettings()) {
		if d.Source != diagnostic.SourceParser {
			out = append(out, d)
		}
	}
	return out
}

func withCode(diags []diagnostic.Diagnostic, code string) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, d := range diags {
		if d.Code == code {
			out = append(out, d)
		}
	}
	return out
}

func TestValidate_CleanRule(t *testing.T) {
	diags := validate(t, `rule "R" when $p : Person(age > 18) then System.out.println($p); end`)
	assert.Empty(t, diags)
}

func TestValidate_UndefinedVariable(t *testing.T) {
	diags := validate(t, `rule "R" when $p : Person(age > 18) then System.out.println($q); end`)
	assert.Equal(t, 1, diagnostic.Count(diags, diagnostic.SeverityError))
	undefined := withCode(diags, "undefined-variable")
	require.Len(t, undefined, 1)
	d := undefined[0]
	assert.Contains(t, d.Message, "$q")
	assert.Equal(t, diagnostic.SourceSemantic, d.Source)
	assert.Equal(t, position.Range{
		Start: position.Position{Line: 0, Column: 60},
		End:   position.Position{Line: 0, Column: 62},
	}, d.Range)
	assert.Equal(t, []string{"did you mean $p?"}, d.Notes)

	// $p is now unused, which is informational only.
	assert.Len(t, withCode(diags, "unused-variable"), 1)
}

func TestValidate_KnownAttribute(t *testing.T) {
	diags := validate(t, `rule "R" no-loop true when Person() then end`)
	assert.Empty(t, withCode(diags, "unknown-attribute"))
	assert.Empty(t, withCode(diags, "attribute-value"))
	assert.False(t, diagnostic.HasErrors(diags))
}

func TestValidate_Idempotent(t *testing.T) {
	res := parser.Parse("test.drl", `rule "R"
    salience high
when
    $p : Person()
    $p : Account()
    exists()
then
    update($x);
end
`)
	l := New()
	first := l.Validate(context.Background(), res, DefaultSettings())
	second := l.Validate(context.Background(), res, DefaultSettings())
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestValidate_ParserErrorsIncluded(t *testing.T) {
	diags := validate(t, "rule \"R\"\nwhen\n    not(\n        Account(balance < 0)\nthen\nend\n")
	var parse []diagnostic.Diagnostic
	for _, d := range diags {
		if d.Source == diagnostic.SourceParser {
			parse = append(parse, d)
		}
	}
	require.Len(t, parse, 1)
	assert.Equal(t, "unterminated-pattern", parse[0].Code)
	// The parser already reported the open bracket.
	assert.Empty(t, withCode(diags, "bracket-balance"))
	assert.Empty(t, withCode(diags, "truncated-pattern"))
}

func TestValidate_PhaseSpans(t *testing.T) {
	const src = `rule "R" when $p : Person() then update($p); end`
	for mask := 0; mask < 8; mask++ {
		settings := Settings{
			EnableSyntaxValidation:     mask&1 != 0,
			EnableSemanticValidation:   mask&2 != 0,
			EnableBestPracticeWarnings: mask&4 != 0,
		}
		t.Run(fmt.Sprintf("%03b", mask), func(t *testing.T) {
			sr := tracetest.NewSpanRecorder()
			tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
			l := &Linter{Analyzers: DefaultAnalyzers(), Tracer: tp.Tracer("test")}
			l.Validate(context.Background(), parser.Parse("test.drl", src), settings)

			counts := make(map[string]int)
			for _, span := range sr.Ended() {
				counts[span.Name()]++
			}
			assert.Equal(t, 1, counts["drl.validate"])
			for _, ph := range Phases() {
				want := 0
				if settings.Enabled(ph) {
					want = 1
				}
				assert.Equal(t, want, counts["drl.validate/"+string(ph)], "phase %s", ph)
			}
		})
	}
}

func TestValidate_DisabledPhasesReportNothing(t *testing.T) {
	const src = `rule "R" no-lop true when $p : Person() then update($q); end`
	settings := DefaultSettings()
	settings.EnableSemanticValidation = false
	settings.EnableBestPracticeWarnings = false
	_, diags := New().ValidateSource(context.Background(), "test.drl", []byte(src), settings)
	for _, d := range diags {
		assert.NotEqual(t, diagnostic.SourceSemantic, d.Source, d.String())
		assert.NotEqual(t, diagnostic.SourceBestPractice, d.Source, d.String())
	}
}

func TestRunPhase_OncePerContext(t *testing.T) {
	res := parser.Parse("test.drl", `rule "R" when then update($p); end`)
	l := New()
	c := newContext(res, DefaultSettings(), nil)
	first := l.runPhase(context.Background(), c, PhaseBestPractice)
	assert.NotEmpty(t, first)
	assert.True(t, c.Completed(PhaseBestPractice))
	assert.Nil(t, l.runPhase(context.Background(), c, PhaseBestPractice))
}

// genCondition returns a random well formed condition nested up to depth
// levels deep.
func genCondition(rng *rand.Rand, depth int, n *int) string {
	*n++
	id := *n
	if depth == 0 {
		switch rng.Intn(3) {
		case 0:
			return fmt.Sprintf("Person(age > %d)", id)
		case 1:
			return fmt.Sprintf("$v%d : Account(balance < %d)", id, id)
		default:
			return fmt.Sprintf("eval(%d > 0)", id)
		}
	}
	inner := genCondition(rng, depth-1, n)
	pad := strings.Repeat("    ", depth)
	switch rng.Intn(5) {
	case 0:
		return "not(\n" + pad + inner + "\n" + pad + ")"
	case 1:
		return "exists(\n" + pad + inner + "\n" + pad + ")"
	case 2:
		return "forall(\n" + pad + inner + "\n" + pad + genCondition(rng, depth-1, n) + "\n" + pad + ")"
	case 3:
		return "(" + inner + " or " + genCondition(rng, depth-1, n) + ")"
	default:
		return fmt.Sprintf("Number() from accumulate(\n%sOrder($a%d : amount),\n%ssum($a%d)\n%s)", pad, id, pad, id, pad)
	}
}

func TestValidate_BalancedCombinators(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		n := 0
		var conds []string
		for j := 0; j < 3; j++ {
			conds = append(conds, "    "+genCondition(rng, rng.Intn(4), &n))
		}
		src := "rule \"R\"\nwhen\n" + strings.Join(conds, "\n") + "\nthen\n    System.out.println(1);\nend\n"
		diags := validate(t, src)
		assert.False(t, diagnostic.HasErrors(diags), "%s\n%v", src, diags)
		for _, code := range []string{"truncated-pattern", "empty-pattern", "pattern-bracket-mismatch", "bracket-balance"} {
			assert.Empty(t, withCode(diags, code), src)
		}
	}
}

func TestValidate_MaxDiagnosticsKeepsErrors(t *testing.T) {
	src := `rule "R"
when
    $a : Person()
    $b : Person()
    eval(true)
then
    foo($x, $y, $z);
end
`
	settings := DefaultSettings()
	settings.MaxDiagnostics = 2
	_, diags := New().ValidateSource(context.Background(), "test.drl", []byte(src), settings)
	require.Len(t, diags, 2)
	for _, d := range diags {
		assert.Equal(t, diagnostic.SeverityError, d.Severity)
	}
	assert.True(t, diags[0].Range.Start.Before(diags[1].Range.Start))

	settings.MaxDiagnostics = 0
	_, diags = New().ValidateSource(context.Background(), "test.drl", []byte(src), settings)
	assert.Greater(t, len(diags), 5)
}

func TestDedupe(t *testing.T) {
	at := func(col int) position.Range {
		return position.Range{Start: position.Position{Column: col}, End: position.Position{Column: col + 1}}
	}
	diags := []diagnostic.Diagnostic{
		{Range: at(1), Message: "a", Source: "syntax"},
		{Range: at(1), Message: "a", Source: "syntax", Code: "other"},
		{Range: at(1), Message: "a", Source: "semantic"},
		{Range: at(2), Message: "a", Source: "syntax"},
	}
	out := dedupe(diags)
	assert.Len(t, out, 3)
}

func TestSuppression(t *testing.T) {
	src := `rule "R"
when
    $p : Person()
then
    System.out.println($q); // nolint:undefined-variable
    System.out.println($r); # nolint
    System.out.println($p, $s); // nolint:unused-variable
end
`
	diags := validate(t, src)
	undefined := withCode(diags, "undefined-variable")
	require.Len(t, undefined, 1)
	assert.Contains(t, undefined[0].Message, "$s")
}

func TestAnalyzerFailure(t *testing.T) {
	failing := &Analyzer{
		Name:  "failing",
		Phase: PhaseSyntax,
		Run: func(pass *Pass) error {
			return errors.New("boom")
		},
	}
	panicking := &Analyzer{
		Name:     "panicking",
		Phase:    PhaseSemantic,
		Severity: diagnostic.SeverityWarning,
		Run: func(pass *Pass) error {
			pass.Reportf(position.Range{}, "before panic")
			var m map[string]int
			m["x"]++
			return nil
		},
	}
	l := &Linter{Analyzers: []*Analyzer{failing, panicking, AnalyzerEmptyAction}}
	res := parser.Parse("test.drl", `rule "R" when then end`)
	diags := l.Validate(context.Background(), res, DefaultSettings())

	failures := withCode(diags, CodeAnalyzerFailure)
	require.Len(t, failures, 2)
	var messages []string
	for _, d := range failures {
		assert.Equal(t, diagnostic.SeverityInformation, d.Severity)
		messages = append(messages, d.Message)
	}
	assert.Contains(t, messages, "check failing failed: boom")
	assert.Contains(t, strings.Join(messages, "\n"), "check panicking failed: panic:")
	assert.Len(t, withCode(diags, "panicking"), 1)
	assert.Len(t, withCode(diags, "empty-action"), 1)
}

func TestBracketBalance(t *testing.T) {
	diags := validateWith(t, AnalyzerBracketBalance, `rule "R" when Person() then foo(]; end`)
	require.NotEmpty(t, diags)
	assert.Equal(t, "bracket-balance", diags[0].Code)
	assert.Contains(t, diags[0].Message, "']' does not match '('")
	assert.Equal(t, []string{"opened at 1:32"}, diags[0].Notes)

	diags = validateWith(t, AnalyzerBracketBalance, `rule "R" when Person() then foo(); bar]; end`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "unexpected ']'")

	diags = validateWith(t, AnalyzerBracketBalance, `rule "R" when Person() then s = "(("; end`)
	assert.Empty(t, diags)
}

func TestBracketBalance_AfterParserError(t *testing.T) {
	src := `rule "A"
when
    $p : Person(age > max(1
then
    foo($p);
end
rule "B"
when
    $q : Person()
then
    System.out.println($q;
end
`
	res := parser.Parse("test.drl", src)
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, 2, res.Errors[0].Range.Start.Line)

	diags := validateWith(t, AnalyzerBracketBalance, src)
	require.Len(t, diags, 1)
	assert.Equal(t, "unclosed '('", diags[0].Message)
	assert.Equal(t, position.Position{Line: 10, Column: 22}, diags[0].Range.Start)
}

func TestRuleName(t *testing.T) {
	src := "rule \"1st\" when then foo(); end\nrule \"\" when then foo(); end\nrule \"ok\" when then foo(); end\nrule when then foo(); end\n"
	diags := validateWith(t, AnalyzerRuleName, src)
	require.Len(t, diags, 3)
	assert.Contains(t, diags[0].Message, "starts with a digit")
	assert.Contains(t, diags[1].Message, "empty")
	assert.Equal(t, "rule has no name", diags[2].Message)
	assert.Equal(t, "4:1-4:5", diags[2].Range.String())
}

func TestAttributeValue(t *testing.T) {
	src := `rule "R"
    salience high
    no-loop maybe
    agenda-group main
    enabled
    salience (10 + 1)
when
then
    foo();
end
`
	diags := validateWith(t, AnalyzerAttributeValue, src)
	require.Len(t, diags, 3)
	assert.Contains(t, diags[0].Message, "salience")
	assert.Contains(t, diags[1].Message, "no-loop")
	assert.Contains(t, diags[2].Message, "agenda-group")
	assert.Equal(t, 1, diags[0].Range.Start.Line)
}

func TestCheckAttributeValue(t *testing.T) {
	tests := []struct {
		attr  string
		value string
		ok    bool
	}{
		{"no-loop", "", true},
		{"no-loop", "true", true},
		{"no-loop", "yes", false},
		{"salience", "-5", true},
		{"salience", "($p.getPriority())", true},
		{"salience", "", false},
		{"dialect", `"mvel"`, true},
		{"dialect", `'java'`, true},
		{"dialect", `"java'`, false},
		{"dialect", "java", false},
	}
	for _, test := range tests {
		t.Run(test.attr+"="+test.value, func(t *testing.T) {
			spec, ok := ast.LookupAttribute(test.attr)
			require.True(t, ok)
			assert.Equal(t, test.ok, checkAttributeValue(spec, test.value) == "")
		})
	}
}

func TestKeywordCase(t *testing.T) {
	diags := validateWith(t, AnalyzerKeywordCase, "rule \"R\"\nWHEN\n    Person()\nthen\n    foo();\nEnd\n")
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "keyword when")
	assert.Equal(t, diagnostic.SeverityWarning, diags[0].Severity)
	assert.Contains(t, diags[1].Message, "found End")
}

func TestDuplicateName(t *testing.T) {
	diags := validateWith(t, AnalyzerDuplicateName, "rule \"A\" when then foo(); end\nquery \"A\" Person() end\n")
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `"A"`)
	assert.Equal(t, 1, diags[0].Range.Start.Line)
	assert.Equal(t, []string{"first declared at 1:6 as a rule"}, diags[0].Notes)
}

func TestDuplicateVariable(t *testing.T) {
	src := `rule "R"
when
    $p : Person()
    exists($p : Account())
then
    foo($p);
end
`
	diags := validateWith(t, AnalyzerDuplicateVariable, src)
	require.Len(t, diags, 1)
	assert.Equal(t, "4:12-4:14", diags[0].Range.String())
	assert.Equal(t, []string{"first declared at 3:5"}, diags[0].Notes)
}

func TestDuplicateVariable_Inherited(t *testing.T) {
	src := `rule "Base"
when
    $p : Person()
then
    foo($p);
end
rule "Child" extends "Base"
when
    $p : Account()
then
    foo($p);
end
`
	diags := validateWith(t, AnalyzerDuplicateVariable, src)
	require.Len(t, diags, 1)
	assert.Equal(t, []string{`inherited from rule "Base"`}, diags[0].Notes)
}

func TestUnknownParent(t *testing.T) {
	src := "rule \"Base\" when then foo(); end\nrule \"Child\" extends \"Bsae\" when then foo(); end\n"
	diags := validateWith(t, AnalyzerUnknownParent, src)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, `"Bsae"`)
	assert.Equal(t, []string{`did you mean "Base"?`}, diags[0].Notes)
}

func TestUnknownAttribute(t *testing.T) {
	diags := validateWith(t, AnalyzerUnknownAttribute, `rule "R" no-lop true when then foo(); end`)
	require.Len(t, diags, 1)
	assert.Equal(t, `unknown rule attribute "no-lop"`, diags[0].Message)
	assert.Equal(t, []string{`did you mean "no-loop"?`}, diags[0].Notes)
	assert.Equal(t, diagnostic.SeverityError, diags[0].Severity)
}

func TestDuplicateAttribute(t *testing.T) {
	diags := validateWith(t, AnalyzerDuplicateAttribute, "rule \"R\"\n    salience 1\n    salience 2\nwhen\nthen\n    foo();\nend\n")
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Range.Start.Line)
	assert.Equal(t, []string{"first set at 2:5"}, diags[0].Notes)
}

func TestMalformedIdentifier(t *testing.T) {
	src := "package com.1acme;\nimport com.example.*;\nimport com..Person;\n"
	diags := validateWith(t, AnalyzerMalformedIdentifier, src)
	require.Len(t, diags, 2)
	assert.Contains(t, diags[0].Message, "com.1acme")
	assert.Contains(t, diags[1].Message, "com..Person")
}

func TestUnscopedBinding(t *testing.T) {
	diags := validateWith(t, AnalyzerUnscopedBinding, `rule "R" when eval($x : 1) then foo(); end`)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "$x")
	assert.Equal(t, diagnostic.SeverityInformation, diags[0].Severity)
}

func TestLoopGuard(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		fires bool
	}{
		{"update", `rule "R" when $p : Person() then update($p); end`, true},
		{"modify", `rule "R" when $p : Person() then modify($p) { setAge(1) }; end`, true},
		{"drools", `rule "R" when $p : Person() then drools.update($p); end`, true},
		{"method", `rule "R" when $p : Person() then cache.update($p); end`, false},
		{"insert", `rule "R" when $p : Person() then insert(new Person()); end`, true},
		{"insertLogical", `rule "R" when $p : Person() then insertLogical(new Alert($p)); end`, true},
		{"drools insert", `rule "R" when $p : Person() then drools.insert(new Person()); end`, true},
		{"retract", `rule "R" when $p : Person() then retract($p); end`, false},
		{"no-loop", `rule "R" no-loop true when $p : Person() then update($p); end`, false},
		{"bare no-loop", `rule "R" no-loop when $p : Person() then update($p); end`, false},
		{"lock-on-active", `rule "R" lock-on-active true when $p : Person() then update($p); end`, false},
		{"no-loop false", `rule "R" no-loop false when $p : Person() then update($p); end`, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			diags := validateWith(t, AnalyzerLoopGuard, test.src)
			if !test.fires {
				assert.Empty(t, diags)
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, "1:6-1:9", diags[0].Range.String())
			assert.Equal(t, diagnostic.SourceBestPractice, diags[0].Source)
		})
	}
}

func TestUnusedGlobal(t *testing.T) {
	src := `global java.util.List audit;
global java.util.List unused;

rule "R" when then audit.add(1); end
`
	diags := validateWith(t, AnalyzerUnusedGlobal, src)
	require.Len(t, diags, 1)
	assert.Equal(t, "global unused is never used", diags[0].Message)
}

func TestEvalUsage(t *testing.T) {
	diags := validateWith(t, AnalyzerEvalUsage, `rule "R" when eval(1 > 0) then foo(); end`)
	require.Len(t, diags, 1)
	assert.Equal(t, "1:15-1:19", diags[0].Range.String())
}

func TestEmptyAction(t *testing.T) {
	diags := validateWith(t, AnalyzerEmptyAction, "rule \"R\" when then end\nrule \"S\" when then foo(); end\n")
	require.Len(t, diags, 1)
	assert.Equal(t, `rule "R" has an empty action`, diags[0].Message)
}

func TestEmptyPattern(t *testing.T) {
	diags := validateWith(t, AnalyzerEmptyPattern, `rule "R" when exists() then foo(); end`)
	require.Len(t, diags, 1)
	assert.Equal(t, "empty exists pattern", diags[0].Message)
	assert.Equal(t, diagnostic.SourceMultiline, diags[0].Source)
}

func TestTruncatedPattern(t *testing.T) {
	diags := validateWith(t, AnalyzerTruncatedPattern, "rule \"R\"\nwhen\n    exists(Person(),\n    )\nthen\n    foo();\nend\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "exists pattern body ends with ','", diags[0].Message)
	assert.Equal(t, "3:20-3:21", diags[0].Range.String())
}

func TestPatternBracketMismatch(t *testing.T) {
	diags := validateWith(t, AnalyzerPatternBracketMismatch, `rule "R" when exists(Person(age > 3])) then foo(); end`)
	require.Len(t, diags, 1)
	assert.Equal(t, "unexpected ']' in exists pattern", diags[0].Message)

	diags = validateWith(t, AnalyzerPatternBracketMismatch, `rule "R" when exists(Person(a[1)) then foo(); end`)
	require.Len(t, diags, 1)
	assert.Equal(t, "mismatched bracket in exists pattern: '[' closed by ')'", diags[0].Message)
}

func TestFormatText(t *testing.T) {
	diags := validate(t, `rule "R" when $p : Person(age > 18) then System.out.println($q); end`)
	var buf bytes.Buffer
	FormatText(&buf, "rules.drl", withCode(diags, "undefined-variable"))
	assert.Equal(t, "rules.drl:1:61: error: undefined variable $q in rule \"R\" (undefined-variable)\n  = note: did you mean $p?\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	diags := validate(t, `rule "R" when $p : Person() then System.out.println($q); end`)
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, []FileDiagnostics{{File: "rules.drl", Diagnostics: diags}}))

	var out []struct {
		File        string `json:"file"`
		Diagnostics []struct {
			Severity string `json:"severity"`
			Code     string `json:"code"`
			Source   string `json:"source"`
		} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "rules.drl", out[0].File)
	require.NotEmpty(t, out[0].Diagnostics)
	found := false
	for _, d := range out[0].Diagnostics {
		if d.Code == "undefined-variable" {
			found = true
			assert.Equal(t, "error", d.Severity)
			assert.Equal(t, "semantic", d.Source)
		}
	}
	assert.True(t, found)
}

func TestAnalyzerNames(t *testing.T) {
	names := AnalyzerNames()
	assert.Len(t, names, len(DefaultAnalyzers()))
	assert.Contains(t, names, "loop-guard")
	assert.NotNil(t, LookupAnalyzer("undefined-variable"))
	assert.Nil(t, LookupAnalyzer("nope"))
	assert.Contains(t, AnalyzerDoc(), "truncated-pattern (multiline-pattern)")
	for _, a := range DefaultAnalyzers() {
		assert.NotEmpty(t, a.Doc, a.Name)
		assert.NotZero(t, a.Severity, a.Name)
	}
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, "no-loop", suggest("no-lop", []string{"salience", "no-loop", "enabled"}))
	assert.Equal(t, "$person", suggest("$persn", []string{"$person", "$order"}))
	assert.Equal(t, "", suggest("$zzz", []string{"$person"}))
}

func TestTestdata(t *testing.T) {
	runner := &drltest.Runner{Validate: func(res *parser.Result) []diagnostic.Diagnostic {
		return New().Validate(context.Background(), res, DefaultSettings())
	}}
	runner.RunDir(t, "testdata")
}
