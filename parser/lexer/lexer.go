// Copyright © 2024 The ELPS authors

// Package lexer converts DRL source text into a token stream.
package lexer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// operators are matched longest first.
var operators = []string{
	"==", "!=", "<=", ">=", "&&", "||", ":=", "->", "::",
	"++", "--", "+=", "-=", "*=", "/=", "%=", "<<", ">>",
	"+", "-", "*", "/", "%", "<", ">", "=", "!", "&", "|", "^", "~", "?", "@",
}

// Lexer produces tokens from a Scanner.  Lexing never fails, problems are
// recorded as diagnostics and the offending text becomes a best-effort
// token.
type Lexer struct {
	scanner           *token.Scanner
	precedingNewlines int
	precedingSpaces   int
	errs              []diagnostic.Diagnostic
}

func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// Tokenize lexes text completely.  The returned slice always ends with an
// EOF token.
func Tokenize(text string) ([]*token.Token, []diagnostic.Diagnostic) {
	return TokenizeIndex(position.NewIndex(text))
}

// TokenizeIndex is like Tokenize but reuses an existing position index.
func TokenizeIndex(idx *position.Index) ([]*token.Token, []diagnostic.Diagnostic) {
	lex := New(token.NewScanner(idx))
	var toks []*token.Token
	for {
		tok := lex.ReadToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks, lex.Errors()
		}
	}
}

// Errors returns the diagnostics recorded so far.
func (lex *Lexer) Errors() []diagnostic.Diagnostic {
	return lex.errs
}

// ReadToken returns the next token in the input.  At the end of input
// ReadToken returns an EOF token, repeatedly.
func (lex *Lexer) ReadToken() *token.Token {
	lex.skipWhitespace()
	c, ok := lex.scanner.Peek()
	if !ok {
		return lex.emitText(token.EOF)
	}
	switch {
	case c == '/' && lex.peekAt(1) == '/', c == '#':
		lex.scanner.AcceptLine()
		return lex.emitText(token.COMMENT)
	case c == '/' && lex.peekAt(1) == '*':
		return lex.readBlockComment()
	case c == '"':
		return lex.readQuoted('"', token.STRING, "unterminated-string", "string literal")
	case c == '\'':
		return lex.readQuoted('\'', token.CHAR, "unterminated-char", "character literal")
	case c == '$':
		lex.scanner.ScanRune()
		if lex.scanner.AcceptSeq(isWord) == 0 {
			return lex.emitText(token.OPERATOR)
		}
		return lex.emitText(token.VARIABLE)
	case isDigit(c):
		return lex.readNumber()
	case isWordStart(c):
		return lex.readWord()
	}
	if typ, ok := punctuation[c]; ok {
		if c == ':' && (lex.peekAt(1) == '=' || lex.peekAt(1) == ':') {
			return lex.readOperator()
		}
		lex.scanner.ScanRune()
		return lex.emitText(typ)
	}
	if tok := lex.readOperator(); tok != nil {
		return tok
	}
	lex.scanner.ScanRune()
	tok := lex.emitText(token.INVALID)
	lex.errorf(tok.Range, "invalid-character", "unexpected character %q", c)
	return tok
}

var punctuation = map[rune]token.Type{
	'(': token.PAREN_L,
	')': token.PAREN_R,
	'{': token.BRACE_L,
	'}': token.BRACE_R,
	'[': token.BRACKET_L,
	']': token.BRACKET_R,
	',': token.COMMA,
	';': token.SEMICOLON,
	'.': token.DOT,
	':': token.COLON,
}

func (lex *Lexer) readOperator() *token.Token {
	for _, op := range operators {
		if lex.scanner.AcceptString(op) {
			return lex.emitText(token.OPERATOR)
		}
	}
	return nil
}

// readWord reads an identifier or keyword.  Letter runs joined by single
// hyphens form one HYPHENATED atom so that attribute names like
// lock-on-active are never split.
func (lex *Lexer) readWord() *token.Token {
	lex.scanner.AcceptSeq(isWord)
	hyphenated := false
	for unicode.IsLetter(lex.scanner.Rune()) && lex.peekAt(0) == '-' && unicode.IsLetter(lex.peekAt(1)) {
		lex.scanner.ScanRune()
		lex.scanner.AcceptSeq(isWord)
		hyphenated = true
	}
	if hyphenated {
		return lex.emitText(token.HYPHENATED)
	}
	if token.Keywords[lex.scanner.Text()] {
		return lex.emitText(token.KEYWORD)
	}
	return lex.emitText(token.IDENT)
}

func (lex *Lexer) readQuoted(quote rune, typ token.Type, code, what string) *token.Token {
	lex.scanner.ScanRune() // opening quote
	for {
		c, ok := lex.scanner.Peek()
		if !ok || c == '\n' {
			tok := lex.emitText(typ)
			lex.errorf(tok.Range, code, "unterminated %s", what)
			return tok
		}
		lex.scanner.ScanRune()
		switch c {
		case '\\':
			lex.scanner.Accept(func(c rune) bool { return c != '\n' })
		case quote:
			return lex.emitText(typ)
		}
	}
}

func (lex *Lexer) readBlockComment() *token.Token {
	start := lex.scanner.Start()
	lex.scanner.AcceptString("/*")
	for !lex.scanner.EOF() {
		if lex.scanner.AcceptString("*/") {
			return lex.emitText(token.COMMENT)
		}
		lex.scanner.ScanRune()
	}
	// Unterminated: the token covers the rest of the opening line and
	// scanning resumes on the line after it.
	idx := lex.scanner.Index()
	line := idx.LineOf(start)
	end := idx.LineStart(line) + len(idx.Line(line))
	lex.scanner.Rewind(end)
	tok := lex.emitText(token.COMMENT)
	lex.errorf(tok.Range, "unterminated-comment", "unterminated block comment")
	return tok
}

func (lex *Lexer) readNumber() *token.Token {
	if lex.scanner.AcceptRune('0') && lex.scanner.AcceptAny("xX") {
		lex.scanner.AcceptSeq(isHexDigit)
		lex.scanner.AcceptAny("lL")
		return lex.emitText(token.NUMBER)
	}
	lex.scanner.AcceptSeqDigit()
	if lex.peekAt(0) == '.' && isDigit(lex.peekAt(1)) {
		lex.scanner.ScanRune()
		lex.scanner.AcceptSeqDigit()
	}
	if c := lex.peekAt(0); (c == 'e' || c == 'E') && (isDigit(lex.peekAt(1)) ||
		((lex.peekAt(1) == '+' || lex.peekAt(1) == '-') && isDigit(lex.peekAt(2)))) {
		lex.scanner.ScanRune()
		lex.scanner.AcceptAny("+-")
		lex.scanner.AcceptSeqDigit()
	}
	if lex.scanner.AcceptAny("lLdDfFbBiI") && isWord(lex.peekAt(0)) {
		lex.scanner.AcceptSeq(isWord)
		tok := lex.emitText(token.NUMBER)
		lex.errorf(tok.Range, "invalid-number", "invalid numeric literal %s", tok.Text)
		return tok
	}
	return lex.emitText(token.NUMBER)
}

func (lex *Lexer) emitText(typ token.Type) *token.Token {
	tok := lex.scanner.EmitToken(typ)
	tok.PrecedingNewlines = lex.precedingNewlines
	tok.PrecedingSpaces = lex.precedingSpaces
	return tok
}

func (lex *Lexer) errorf(r position.Range, code string, format string, v ...interface{}) {
	lex.errs = append(lex.errs, diagnostic.Diagnostic{
		Range:    r,
		Severity: diagnostic.SeverityError,
		Message:  fmt.Sprintf(format, v...),
		Source:   diagnostic.SourceParser,
		Code:     code,
	})
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		text := lex.scanner.Text()
		lex.precedingNewlines = strings.Count(text, "\n")
		if lex.precedingNewlines == 0 {
			lex.precedingSpaces = len(text)
		} else {
			lex.precedingSpaces = 0
		}
		lex.scanner.Ignore()
	} else {
		lex.precedingNewlines = 0
		lex.precedingSpaces = 0
	}
}

// peekAt returns the rune n runes ahead of the scanner, or 0.
func (lex *Lexer) peekAt(n int) rune {
	r, _ := lex.scanner.PeekAt(n)
	return r
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || c == '_'
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c rune) bool {
	return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
