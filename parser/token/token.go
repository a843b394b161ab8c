// Copyright © 2024 The ELPS authors

package token

import (
	"fmt"

	"github.com/luthersystems/drl/parser/position"
)

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

// Token is a lexeme together with its location in the source snapshot.
// Offset and End are byte offsets, Range is the same span in editor
// coordinates.
type Token struct {
	Type   Type
	Text   string
	Range  position.Range
	Offset int
	End    int

	// PrecedingNewlines is the number of newlines between the previous
	// token and this one. PrecedingSpaces counts spaces when no newline
	// intervenes.
	PrecedingNewlines int
	PrecedingSpaces   int
}

func (tok *Token) String() string {
	return fmt.Sprintf("%s %s %q", tok.Range.Start, tok.Type, tok.Text)
}

// Is reports whether tok has type typ and text text.
func (tok *Token) Is(typ Type, text string) bool {
	return tok != nil && tok.Type == typ && tok.Text == text
}

// IsKeyword reports whether tok is the keyword kw.
func (tok *Token) IsKeyword(kw string) bool {
	return tok.Is(KEYWORD, kw)
}

// StartsLine reports whether tok is the first token on its line.
func (tok *Token) StartsLine() bool {
	return tok.PrecedingNewlines > 0 || tok.Offset == 0
}

// Type classifies a token.
type Type uint

// Type constants used for the DRL lexer/parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	KEYWORD
	IDENT
	HYPHENATED // letter runs joined by '-', e.g. no-loop
	VARIABLE   // $name

	OPERATOR

	STRING
	CHAR
	NUMBER

	COMMENT

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	BRACKET_L
	BRACKET_R
	COMMA
	SEMICOLON
	DOT
	COLON

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:    "invalid",
		ERROR:      "error",
		EOF:        "EOF",
		KEYWORD:    "keyword",
		IDENT:      "identifier",
		HYPHENATED: "hyphenated",
		VARIABLE:   "variable",
		OPERATOR:   "operator",
		STRING:     "string",
		CHAR:       "char",
		NUMBER:     "number",
		COMMENT:    "comment",
		PAREN_L:    "(",
		PAREN_R:    ")",
		BRACE_L:    "{",
		BRACE_R:    "}",
		BRACKET_L:  "[",
		BRACKET_R:  "]",
		COMMA:      ",",
		SEMICOLON:  ";",
		DOT:        ".",
		COLON:      ":",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsOpen reports whether typ opens a bracket pair.
func (typ Type) IsOpen() bool {
	return typ == PAREN_L || typ == BRACE_L || typ == BRACKET_L
}

// IsClose reports whether typ closes a bracket pair.
func (typ Type) IsClose() bool {
	return typ == PAREN_R || typ == BRACE_R || typ == BRACKET_R
}

// Closer returns the closing type matching an opening bracket type, or
// INVALID.
func (typ Type) Closer() Type {
	switch typ {
	case PAREN_L:
		return PAREN_R
	case BRACE_L:
		return BRACE_R
	case BRACKET_L:
		return BRACKET_R
	}
	return INVALID
}

// Keywords are the reserved words of DRL that the lexer emits as KEYWORD
// tokens. Attribute names are not keywords, they lex as IDENT or
// HYPHENATED tokens.
var Keywords = map[string]bool{
	"package":    true,
	"import":     true,
	"global":     true,
	"function":   true,
	"declare":    true,
	"query":      true,
	"rule":       true,
	"extends":    true,
	"when":       true,
	"then":       true,
	"end":        true,
	"and":        true,
	"or":         true,
	"not":        true,
	"exists":     true,
	"eval":       true,
	"forall":     true,
	"collect":    true,
	"accumulate": true,
	"from":       true,
}

// Combinators are the keywords that wrap a nested condition body.
var Combinators = map[string]bool{
	"exists":     true,
	"not":        true,
	"eval":       true,
	"forall":     true,
	"collect":    true,
	"accumulate": true,
}
