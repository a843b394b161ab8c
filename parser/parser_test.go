// Copyright © 2024 The ELPS authors

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	res := Parse("a.drl", "// header\nrule \"R\" when $p : Person() then end\n")
	require.NotNil(t, res.File)
	assert.Equal(t, "a.drl", res.File.Name)
	assert.False(t, res.HasErrors())
	assert.Len(t, res.File.Rules, 1)
	require.Len(t, res.Comments(), 1)
	assert.Equal(t, "// header", res.Comments()[0].Text)
	assert.Equal(t, 3, res.Index.LineCount())
}

func TestParse_ErrorsMerged(t *testing.T) {
	res := Parse("b.drl", "rule \"R\" when not(Person() then \"open\nend\n")
	require.True(t, res.HasErrors())
	var sources, codes []string
	for _, d := range res.Errors {
		sources = append(sources, d.Source)
		codes = append(codes, d.Code)
	}
	assert.Equal(t, []string{"parser", "parser"}, sources)
	assert.ElementsMatch(t, []string{"unterminated-pattern", "unterminated-string"}, codes)
	assert.NotNil(t, res.File)
}

func TestParse_Empty(t *testing.T) {
	res := Parse("empty.drl", "")
	assert.False(t, res.HasErrors())
	assert.Empty(t, res.File.Rules)
}
