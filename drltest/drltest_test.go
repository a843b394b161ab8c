// Copyright © 2024 The ELPS authors

package drltest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser"
	"github.com/luthersystems/drl/parser/position"
)

func TestExpectations(t *testing.T) {
	res := parser.Parse("t.drl", "rule \"R\" // want rule-name\nwhen\n    $p : Person() /* want a b */\n    # wanted\nthen\n    foo(); // nothing\nend\n")
	want := []Expectation{
		{Line: 0, Code: "rule-name"},
		{Line: 2, Code: "a"},
		{Line: 2, Code: "b"},
	}
	if diff := cmp.Diff(want, Expectations(res)); diff != "" {
		t.Errorf("Expectations() mismatch (-want +got):\n%s", diff)
	}
}

func diagAt(line int, code string) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Range: position.Range{Start: position.Position{Line: line}, End: position.Position{Line: line, Column: 1}},
		Code:  code,
	}
}

func TestCompare(t *testing.T) {
	want := []Expectation{{1, "x"}, {1, "x"}, {2, "y"}, {3, "z"}}
	got := []diagnostic.Diagnostic{diagAt(1, "x"), diagAt(2, "y"), diagAt(2, "q")}
	missing, unexpected := Compare(want, got)
	if diff := cmp.Diff([]Expectation{{1, "x"}, {3, "z"}}, missing); diff != "" {
		t.Errorf("missing mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, unexpected, 1)
	assert.Equal(t, "q", unexpected[0].Code)
}

func TestCodes(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Codes([]diagnostic.Diagnostic{diagAt(0, "a"), diagAt(1, "b")}))
	assert.Empty(t, Codes(nil))
}

type recordingTB struct {
	testing.TB
	logs []string
}

func (r *recordingTB) Log(args ...any) {
	r.logs = append(r.logs, args[0].(string))
}

func TestLogger(t *testing.T) {
	rec := &recordingTB{TB: t}
	log := NewLogger(rec)
	_, _ = log.Write([]byte("one\ntw"))
	_, _ = log.Write([]byte("o\nthree\nfour"))
	assert.Equal(t, []string{"one", "two", "three"}, rec.logs)
	log.Flush()
	assert.Equal(t, []string{"one", "two", "three", "four"}, rec.logs)
}
