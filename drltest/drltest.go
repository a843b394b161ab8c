// Copyright © 2024 The ELPS authors

// Package drltest provides helpers for testing DRL tooling.
//
// Test files annotate the diagnostics they expect with want comments.  A
// comment "// want code1 code2" expects one diagnostic with each code to
// start on the line the comment ends on:
//
//	rule "R"
//	when
//	    $p : Person()
//	    $p : Account()    // want duplicate-variable
//	then
//	    foo($p);
//	end
package drltest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/token"
)

// Validator validates a parsed document.
type Validator func(res *parser.Result) []diagnostic.Diagnostic

// Parse parses src and fails the test if the parser reports errors.
func Parse(t testing.TB, name, src string) *parser.Result {
	t.Helper()
	res := parser.Parse(name, src)
	for _, d := range res.Errors {
		t.Errorf("%s:%s: unexpected parse error: %s", name, d.Range.Start, d.Message)
	}
	return res
}

// Codes returns the codes of diags in order.
func Codes(diags []diagnostic.Diagnostic) []string {
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}

// Expectation is a diagnostic expected by a want comment.  Line is
// 0-based.
type Expectation struct {
	Line int
	Code string
}

func (e Expectation) String() string {
	return fmt.Sprintf("%d: %s", e.Line+1, e.Code)
}

// Expectations returns the expectations of the want comments in res.
func Expectations(res *parser.Result) []Expectation {
	var out []Expectation
	for _, tok := range res.Comments() {
		codes, ok := wantCodes(tok)
		if !ok {
			continue
		}
		for _, code := range codes {
			out = append(out, Expectation{Line: tok.Range.End.Line, Code: code})
		}
	}
	return out
}

func wantCodes(tok *token.Token) ([]string, bool) {
	text := strings.TrimSpace(tok.Text)
	switch {
	case strings.HasPrefix(text, "//"):
		text = strings.TrimPrefix(text, "//")
	case strings.HasPrefix(text, "/*"):
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	case strings.HasPrefix(text, "#"):
		text = strings.TrimPrefix(text, "#")
	}
	fields := strings.Fields(text)
	if len(fields) < 2 || fields[0] != "want" {
		return nil, false
	}
	return fields[1:], true
}

// Runner checks annotated test files against a validator.
type Runner struct {
	Validate Validator
}

// RunDir runs every .drl file in dir as a subtest.
func (r *Runner) RunDir(t *testing.T, dir string) {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(dir, "*.drl"))
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) == 0 {
		t.Fatalf("no .drl files in %s", dir)
	}
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			r.RunFile(t, path)
		})
	}
}

// RunFile validates the file at path and reports every diagnostic that
// no want comment expects and every expectation no diagnostic meets.
func (r *Runner) RunFile(t testing.TB, path string) {
	t.Helper()
	src, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		t.Fatalf("Unable to read source file %v: %v", path, err)
	}
	res := parser.Parse(path, string(src))
	missing, unexpected := Compare(Expectations(res), r.Validate(res))
	for _, e := range missing {
		t.Errorf("%s:%s: expected diagnostic was not reported", path, e)
	}
	for _, d := range unexpected {
		t.Errorf("%s:%d: unexpected diagnostic: %s (%s)", path, d.Range.Start.Line+1, d.Message, d.Code)
	}
}

// Compare matches diagnostics to expectations by line and code.
func Compare(want []Expectation, got []diagnostic.Diagnostic) (missing []Expectation, unexpected []diagnostic.Diagnostic) {
	pending := make(map[Expectation]int)
	for _, e := range want {
		pending[e]++
	}
	for _, d := range got {
		e := Expectation{Line: d.Range.Start.Line, Code: d.Code}
		if pending[e] > 0 {
			pending[e]--
			continue
		}
		unexpected = append(unexpected, d)
	}
	for e, n := range pending {
		for ; n > 0; n-- {
			missing = append(missing, e)
		}
	}
	sort.Slice(missing, func(i, j int) bool {
		if missing[i].Line != missing[j].Line {
			return missing[i].Line < missing[j].Line
		}
		return missing[i].Code < missing[j].Code
	})
	return missing, unexpected
}
