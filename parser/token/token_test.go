// Copyright © 2024 The ELPS authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		str := tok.String()
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
}

func TestTypeBrackets(t *testing.T) {
	for _, typ := range []Type{PAREN_L, BRACE_L, BRACKET_L} {
		assert.True(t, typ.IsOpen())
		assert.True(t, typ.Closer().IsClose())
	}
	assert.Equal(t, INVALID, COMMA.Closer())
}

func TestCombinatorsAreKeywords(t *testing.T) {
	for kw := range Combinators {
		assert.True(t, Keywords[kw], kw)
	}
}
