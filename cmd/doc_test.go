// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/drl/ast"
)

func TestDocCommand_DefaultFlags(t *testing.T) {
	cmd := DocCommand()
	assert.Equal(t, "doc [flags] [ATTRIBUTE|CHECK]", cmd.Use)

	for _, name := range []string{"attributes", "checks", "guide"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestWriteDoc_Attribute(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDoc(&buf, "no-loop"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "attribute no-loop (boolean)\n\n  Prevents the rule"), out)
}

func TestWriteDoc_Check(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeDoc(&buf, "undefined-variable"))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "check undefined-variable (semantic, error)\n"), out)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n")[1:] {
		assert.LessOrEqual(t, len(line), docWidth+2, "line not wrapped: %q", line)
	}
}

func TestWriteDoc_Unknown(t *testing.T) {
	var buf bytes.Buffer
	err := writeDoc(&buf, "no-such-thing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"no-such-thing"`)
}

func TestWriteAttributeList(t *testing.T) {
	var buf bytes.Buffer
	writeAttributeList(&buf)
	for _, name := range ast.AttributeNames() {
		assert.Contains(t, buf.String(), name+" (")
	}
}

func TestFormatDoc(t *testing.T) {
	doc := "First paragraph.\n\nSecond " + strings.Repeat("word ", 30)
	out := formatDoc(doc)
	assert.True(t, strings.HasPrefix(out, "  First paragraph.\n"), out)
	assert.Contains(t, out, "  Second word")
	assert.False(t, strings.HasSuffix(out, "\n"))
	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), docWidth+2)
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "One.", summary("One.\n\nTwo."))
	assert.Equal(t, "Only", summary("Only"))
}
