// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/luthersystems/drl/parser/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRenderer returns a Renderer with colors disabled and a fake source reader.
func testRenderer(sources map[string]string) *Renderer {
	return &Renderer{
		Color: ColorNever,
		SourceReader: func(name string) ([]byte, error) {
			s, ok := sources[name]
			if !ok {
				return nil, &fakeErr{name}
			}
			return []byte(s), nil
		},
	}
}

type fakeErr struct{ name string }

func (e *fakeErr) Error() string { return "not found: " + e.name }

func span(line, col, endLine, endCol int) position.Range {
	return position.Range{
		Start: position.Position{Line: line, Column: col},
		End:   position.Position{Line: endLine, Column: endCol},
	}
}

func TestRenderError(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.drl": "rule \"R\" when then\n    System.out.println($q);\nend",
	})

	d := Diagnostic{
		Range:    span(1, 23, 1, 25),
		Severity: SeverityError,
		Message:  "undefined variable $q",
		Source:   SourceSemantic,
		Code:     "undefined-variable",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "test.drl", d))

	got := buf.String()
	assert.Contains(t, got, "error[undefined-variable]: undefined variable $q")
	assert.Contains(t, got, "--> test.drl:2:24")
	assert.Contains(t, got, "System.out.println($q);")
	assert.Contains(t, got, strings.Repeat(" ", 23)+"^^ semantic")
	assert.NotContains(t, got, "^^^")
}

func TestRenderWarning(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.drl": "rule \"A\"\nrule \"A\"",
	})

	d := Diagnostic{
		Range:    span(1, 5, 1, 8),
		Severity: SeverityWarning,
		Message:  "duplicate rule name \"A\"",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "test.drl", d))

	got := buf.String()
	assert.Contains(t, got, "warning: duplicate rule name \"A\"")
	assert.Contains(t, got, "--> test.drl:2:6")
	assert.Contains(t, got, "^^^")
}

func TestRenderMultiLineRange(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.drl": "not(\n  Person()\n",
	})

	d := Diagnostic{
		Range:    span(0, 0, 2, 0),
		Severity: SeverityError,
		Message:  "unterminated not pattern",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "test.drl", d))
	assert.Contains(t, buf.String(), "  ^^^^\n")
}

func TestRenderNoSource(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Range:    span(4, 2, 4, 3),
		Severity: SeverityError,
		Message:  "some error",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "<stdin>", d))

	got := buf.String()
	assert.Contains(t, got, "error: some error")
	assert.Contains(t, got, "--> <stdin>:5:3")
	// Should have a gutter but no source line
	assert.Contains(t, got, "|")
	assert.NotContains(t, got, "^")
}

func TestRenderNotes(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.drl": "rule \"R\" no-lop true",
	})

	d := Diagnostic{
		Range:    span(0, 9, 0, 15),
		Severity: SeverityError,
		Message:  "unknown attribute no-lop",
		Notes:    []string{"did you mean no-loop?"},
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "test.drl", d))
	assert.Contains(t, buf.String(), "= note: did you mean no-loop?")
}

func TestRenderTabsAndUnicode(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.drl": "\t\"é\" $x",
	})

	d := Diagnostic{
		Range:    span(0, 5, 0, 7),
		Severity: SeverityInformation,
		Message:  "unused variable $x",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "test.drl", d))
	got := buf.String()
	assert.Contains(t, got, "info: unused variable $x")
	assert.Contains(t, got, "    \"é\" $x")
	assert.Contains(t, got, "|  "+strings.Repeat(" ", 8)+"^^")
}

func TestRenderMultipleDiagnostics(t *testing.T) {
	r := testRenderer(map[string]string{
		"test.drl": "global A a;\nglobal A a;\nglobal B b;",
	})

	diags := []Diagnostic{
		{Range: span(1, 9, 1, 10), Severity: SeverityError, Message: "duplicate global a"},
		{Range: span(2, 9, 2, 10), Severity: SeverityWarning, Message: "unused global b"},
	}

	var buf bytes.Buffer
	require.NoError(t, r.RenderAll(&buf, "test.drl", diags))

	got := buf.String()
	// Should have both diagnostics separated by blank line
	assert.GreaterOrEqual(t, len(strings.Split(got, "\n\n")), 2)
	assert.Contains(t, got, "duplicate global a")
	assert.Contains(t, got, "unused global b")
}

func TestRenderNoFile(t *testing.T) {
	r := testRenderer(nil)

	d := Diagnostic{
		Severity: SeverityError,
		Message:  "cannot read rules: file not found",
	}

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "", d))

	got := buf.String()
	assert.Contains(t, got, "error: cannot read rules: file not found")
	// Should be just the header, no arrows or source
	assert.NotContains(t, got, "-->")
}

func TestSeverityJSON(t *testing.T) {
	b, err := json.Marshal(Diagnostic{Severity: SeverityInformation, Message: "m", Source: SourceSyntax})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"severity":"info"`)

	var d Diagnostic
	require.NoError(t, json.Unmarshal(b, &d))
	assert.Equal(t, SeverityInformation, d.Severity)

	var sev Severity
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &sev))
}

func TestSort(t *testing.T) {
	diags := []Diagnostic{
		{Range: span(2, 0, 2, 1), Severity: SeverityError, Message: "c"},
		{Range: span(0, 4, 0, 5), Severity: SeverityWarning, Message: "b"},
		{Range: span(0, 4, 0, 5), Severity: SeverityError, Message: "a"},
	}
	Sort(diags)
	assert.Equal(t, "a", diags[0].Message)
	assert.Equal(t, "b", diags[1].Message)
	assert.Equal(t, "c", diags[2].Message)
	assert.True(t, HasErrors(diags))
	assert.Equal(t, 2, Count(diags, SeverityError))
}

func TestParseColorMode(t *testing.T) {
	m, err := ParseColorMode("always")
	require.NoError(t, err)
	assert.Equal(t, ColorAlways, m)
	_, err = ParseColorMode("sometimes")
	assert.Error(t, err)
}
