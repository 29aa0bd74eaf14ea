// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"unicode/utf8"
)

// utf8BOM is the three-byte UTF-8 byte-order mark that must be
// silently stripped from the front of a source file.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Lexer is a character-level state machine over a byte slice. It never
// fails: malformed input becomes an INVALID token carrying the
// offending bytes, and the caller (the parser) decides whether to
// recover or report a diagnostic.
type Lexer struct {
	src    []byte
	source string
	pos    int // byte offset
	line   int
	col    int
}

// NewLexer creates a Lexer over src, labelling tokens with sourceName
// for diagnostics (typically a relpath).
func NewLexer(src []byte, sourceName string) *Lexer {
	if len(src) >= 3 && src[0] == utf8BOM[0] && src[1] == utf8BOM[1] && src[2] == utf8BOM[2] {
		src = src[3:]
	}
	return &Lexer{src: src, source: sourceName, line: 1, col: 1}
}

// Tokenize runs the lexer to completion and returns the full token
// sequence, terminated by a single TokenEOF.
func Tokenize(src []byte, sourceName string) []Token {
	lx := NewLexer(src, sourceName)
	var toks []Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == TokenEOF {
			return toks
		}
	}
}

func (l *Lexer) at(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) cur() byte { return l.at(0) }

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

// advance consumes one byte, tracking line/column. CR bytes are
// consumed silently as part of CRLF handling by the newline case in
// Next; advance itself only updates position bookkeeping.
func (l *Lexer) advance() byte {
	b := l.src[l.pos]
	l.pos++
	if b == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return b
}

func (l *Lexer) position() Position {
	return Position{Line: l.line, Column: l.col, Offset: l.pos}
}

// Next returns the next token in the stream.
func (l *Lexer) Next() Token {
	l.skipInsignificantWhitespace()

	start := l.position()

	if l.eof() {
		return Token{Kind: TokenEOF, Pos: start, Source: l.source}
	}

	b := l.cur()

	switch {
	case b == '\n':
		l.advance()
		return Token{Kind: TokenNewline, Raw: "\n", Pos: start, Source: l.source}
	case b == '\r':
		// CR, alone or as the first byte of CRLF: a following LF is
		// consumed too, and both forms yield one NEWLINE token with
		// Raw "\r\n".
		l.advance()
		if l.cur() == '\n' {
			l.advance()
		}
		return Token{Kind: TokenNewline, Raw: "\r\n", Pos: start, Source: l.source}
	case b == '#':
		return l.lexComment(start)
	case b == '"':
		return l.lexString(start)
	case b == '{':
		l.advance()
		return Token{Kind: TokenBraceOpen, Raw: "{", Pos: start, Source: l.source}
	case b == '}':
		l.advance()
		return Token{Kind: TokenBraceClose, Raw: "}", Pos: start, Source: l.source}
	case b == '$':
		return l.lexVariable(start, false)
	case b == '-' && l.at(1) == '$':
		l.advance() // consume '-'
		return l.lexVariable(start, true)
	case isOperatorStart(b):
		return l.lexOperatorOrValue(start)
	case isDigit(b) || ((b == '-' || b == '+') && isDigit(l.at(1))):
		return l.lexNumber(start)
	case isIdentStart(b):
		return l.lexIdentifierLike(start)
	default:
		// Unrecognized byte: consume one rune's worth and emit INVALID.
		n := runeLen(l.src[l.pos:])
		raw := string(l.src[l.pos : l.pos+n])
		for i := 0; i < n; i++ {
			l.advance()
		}
		return Token{Kind: TokenInvalid, Raw: raw, Pos: start, Source: l.source}
	}
}

// skipInsignificantWhitespace consumes spaces and tabs. Newlines are
// significant (retained as tokens) even though they carry no
// grammatical weight, per spec.
func (l *Lexer) skipInsignificantWhitespace() {
	for !l.eof() {
		b := l.cur()
		if b == ' ' || b == '\t' || b == '\v' || b == '\f' {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) lexComment(start Position) Token {
	begin := l.pos
	for !l.eof() && l.cur() != '\n' && l.cur() != '\r' {
		l.advance()
	}
	return Token{Kind: TokenComment, Raw: string(l.src[begin:l.pos]), Pos: start, Source: l.source}
}

// lexString lexes a double-quoted string. A single quote inside is a
// literal character, never a delimiter; the string ends at the next
// double quote, at a newline, or at end-of-input. There are no escape
// sequences.
func (l *Lexer) lexString(start Position) Token {
	l.advance() // opening quote
	begin := l.pos
	for !l.eof() && l.cur() != '"' {
		if l.cur() == '\n' {
			break
		}
		l.advance()
	}
	text := string(l.src[begin:l.pos])
	raw := "\"" + text
	if !l.eof() && l.cur() == '"' {
		l.advance()
		raw += "\""
	}
	return Token{Kind: TokenString, Raw: raw, Text: text, Pos: start, Source: l.source}
}

// lexVariable lexes $NAME$, optionally sign-prefixed. negate is true
// when a '-' immediately preceded the opening '$', in which case the
// whole construct (sign included) is a single token value.
func (l *Lexer) lexVariable(start Position, negate bool) Token {
	rawStart := l.pos
	if negate {
		rawStart-- // include the already-consumed '-'
	}
	l.advance() // opening '$'
	nameStart := l.pos
	for !l.eof() && l.cur() != '$' && l.cur() != '\n' {
		l.advance()
	}
	name := string(l.src[nameStart:l.pos])
	if !l.eof() && l.cur() == '$' {
		l.advance()
	}
	raw := string(l.src[rawStart:l.pos])
	return Token{Kind: TokenVariable, Raw: raw, Text: name, Pos: start, Negate: negate, Source: l.source}
}

// isOperatorStart reports whether b can begin one of the operator
// lexemes: = == < <= > >= ?=
func isOperatorStart(b byte) bool {
	switch b {
	case '=', '<', '>', '?':
		return true
	default:
		return false
	}
}

// lexOperatorOrValue lexes the operators = == < <= > >= ?= (a bare
// `?` is INVALID). The lexer cannot see grammatical position, so `<=`
// always lexes as the two-byte operator token, whatever follows it
// (`<=5` is the operator `<=` then the integer 5). The parser
// reinterprets a `<=` that stands where a value is expected (e.g.
// `trigger = <=`) as a scalar; see parseValue. This keeps the lexer
// total and context-free.
func (l *Lexer) lexOperatorOrValue(start Position) Token {
	b := l.cur()
	switch b {
	case '=':
		l.advance()
		if l.cur() == '=' {
			l.advance()
			return Token{Kind: TokenOperator, Raw: "==", Pos: start, Source: l.source}
		}
		return Token{Kind: TokenOperator, Raw: "=", Pos: start, Source: l.source}
	case '?':
		l.advance()
		if l.cur() == '=' {
			l.advance()
			return Token{Kind: TokenOperator, Raw: "?=", Pos: start, Source: l.source}
		}
		// Bare '?' is not part of the grammar; treat as invalid.
		return Token{Kind: TokenInvalid, Raw: "?", Pos: start, Source: l.source}
	case '<':
		l.advance()
		if l.cur() == '=' {
			l.advance()
			return Token{Kind: TokenOperator, Raw: "<=", Pos: start, Source: l.source}
		}
		return Token{Kind: TokenOperator, Raw: "<", Pos: start, Source: l.source}
	case '>':
		l.advance()
		if l.cur() == '=' {
			l.advance()
			return Token{Kind: TokenOperator, Raw: ">=", Pos: start, Source: l.source}
		}
		return Token{Kind: TokenOperator, Raw: ">", Pos: start, Source: l.source}
	default:
		l.advance()
		return Token{Kind: TokenInvalid, Raw: string(b), Pos: start, Source: l.source}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// lexNumber lexes integers, decimals, and percentage literals, with an
// optional leading sign.
func (l *Lexer) lexNumber(start Position) Token {
	begin := l.pos
	if l.cur() == '-' || l.cur() == '+' {
		l.advance()
	}
	for !l.eof() && isDigit(l.cur()) {
		l.advance()
	}
	isDecimal := false
	if l.cur() == '.' && isDigit(l.at(1)) {
		isDecimal = true
		l.advance()
		for !l.eof() && isDigit(l.cur()) {
			l.advance()
		}
	}
	isPercent := false
	if l.cur() == '%' {
		isPercent = true
		l.advance()
	}
	raw := string(l.src[begin:l.pos])
	switch {
	case isPercent:
		return Token{Kind: TokenPercentage, Raw: raw, Text: raw[:len(raw)-1], Pos: start, Source: l.source}
	case isDecimal:
		return Token{Kind: TokenDecimal, Raw: raw, Text: raw, Pos: start, Source: l.source}
	default:
		return Token{Kind: TokenInteger, Raw: raw, Text: raw, Pos: start, Source: l.source}
	}
}

// isIdentStart reports whether b may begin an identifier: letter or
// underscore. A leading '$' never reaches this check: Next routes it
// to lexVariable, which also lexes unterminated variable forms.
func isIdentStart(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_'
}

// isIdentCont reports whether b may continue an identifier: letters,
// digits, underscore, dot, colon, dash.
func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b) || b == '.' || b == ':' || b == '-'
}

// lexIdentifierLike lexes identifiers and the boolean keywords yes/no,
// which are identifiers that the parser/extractor treat specially.
func (l *Lexer) lexIdentifierLike(start Position) Token {
	begin := l.pos
	for !l.eof() && isIdentCont(l.cur()) {
		l.advance()
	}
	raw := string(l.src[begin:l.pos])
	if raw == "yes" || raw == "no" {
		return Token{Kind: TokenBoolean, Raw: raw, Text: raw, Pos: start, Source: l.source}
	}
	return Token{Kind: TokenIdentifier, Raw: raw, Text: raw, Pos: start, Source: l.source}
}

// runeLen returns the byte length of the UTF-8 rune starting at b, or
// 1 if b does not begin a valid encoding (so the lexer always makes
// forward progress on malformed input).
func runeLen(b []byte) int {
	if len(b) == 0 {
		return 1
	}
	_, size := utf8.DecodeRune(b)
	if size <= 0 {
		return 1
	}
	return size
}
