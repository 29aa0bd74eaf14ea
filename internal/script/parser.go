// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

// Parser is a recursive-descent parser over a pre-lexed token stream.
// It never aborts on recoverable mistakes: every error path records a
// Diagnostic and keeps producing a best-effort tree, per spec.md §4.2/§7.
type Parser struct {
	toks []Token
	pos  int
	diag []Diagnostic
}

// Parse tokenizes src and parses it into a Root. The returned Root
// always carries a (possibly empty) Diagnostics slice; parsing never
// returns a Go error, matching the "structured outcomes, not thrown
// exceptions" propagation policy in spec.md §7.
func Parse(src []byte, sourceName string) *Root {
	toks := Tokenize(src, sourceName)
	p := &Parser{toks: toks}
	return p.parseRoot()
}

func (p *Parser) peek() Token {
	// Skip comments and newlines for grammar purposes; they carry no
	// grammatical weight per spec.md §4.1.
	i := p.pos
	for i < len(p.toks) {
		k := p.toks[i].Kind
		if k != TokenComment && k != TokenNewline {
			return p.toks[i]
		}
		i++
	}
	return p.toks[len(p.toks)-1] // EOF
}

func (p *Parser) peekAt(skip int) Token {
	count := 0
	i := p.pos
	for i < len(p.toks) {
		k := p.toks[i].Kind
		if k != TokenComment && k != TokenNewline {
			if count == skip {
				return p.toks[i]
			}
			count++
		}
		i++
	}
	return p.toks[len(p.toks)-1]
}

// advance skips any leading comments/newlines and consumes the next
// significant token, returning it.
func (p *Parser) advance() Token {
	for p.pos < len(p.toks) {
		k := p.toks[p.pos].Kind
		if k != TokenComment && k != TokenNewline {
			tok := p.toks[p.pos]
			p.pos++
			return tok
		}
		p.pos++
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) addDiag(kind DiagnosticKind, pos Position, msg string) {
	p.diag = append(p.diag, Diagnostic{Kind: kind, Message: msg, Pos: pos})
}

func (p *Parser) parseRoot() *Root {
	root := &Root{Pos: Position{Line: 1, Column: 1}}
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			break
		}
		if tok.Kind == TokenBraceClose {
			p.addDiag(DiagStrayCloseBrace, tok.Pos, "unexpected '}' at root level")
			p.advance()
			continue
		}
		entry := p.parseEntry()
		if entry != nil {
			root.Entries = append(root.Entries, entry)
		}
	}
	root.Diagnostics = p.diag
	return root
}

// parseEntry parses one Root/Block entry: an Assignment if the
// current token is a name-capable scalar followed by an operator,
// otherwise a bare Value.
func (p *Parser) parseEntry() Node {
	tok := p.peek()

	if isNameCapable(tok) {
		opTok := p.peekAt(1)
		if opTok.Kind == TokenOperator {
			return p.parseAssignment()
		}
		if opTok.Kind == TokenInvalid && looksLikeOperatorAttempt(opTok) {
			return p.parseUnknownOperatorAssignment()
		}
	}

	return p.parseValue()
}

// isNameCapable reports whether tok could serve as the "name" on the
// left of an assignment: identifiers, quoted strings and the boolean
// keywords yes/no, per the
// grammar sketch's `name op rhs`.
func isNameCapable(tok Token) bool {
	return tok.Kind == TokenIdentifier || tok.Kind == TokenString || tok.Kind == TokenBoolean
}

func (p *Parser) parseAssignment() Node {
	nameTok := p.advance()
	opTok := p.advance()
	pos := nameTok.Pos

	// Skip newlines/comments between operator and value.
	valTok := p.peek()
	if valTok.Kind == TokenEOF {
		p.addDiag(DiagUnexpectedToken, opTok.Pos, "assignment has no value")
		return &Assignment{Name: nameTok.Raw, Op: opTok.Raw, Value: &Scalar{ScalarKind: ScalarIdentifier, Pos: opTok.Pos}, Pos: pos}
	}
	value := p.parseValue()
	return &Assignment{Name: nameTok.Raw, Op: opTok.Raw, Value: value, Pos: pos}
}

// looksLikeOperatorAttempt reports whether an INVALID token appears in
// operator position and should be treated as an unknown-operator
// attempt rather than an unrelated stray byte.
func looksLikeOperatorAttempt(tok Token) bool {
	return tok.Kind == TokenInvalid && len(tok.Raw) > 0
}

// parseUnknownOperatorAssignment handles `name <bad-op> ...`: the
// enclosing assignment becomes a diagnostic-bearing node that still
// occupies a position in its parent, per spec.md §4.2.
func (p *Parser) parseUnknownOperatorAssignment() Node {
	nameTok := p.advance()
	badOp := p.advance()
	p.addDiag(DiagUnknownOperator, badOp.Pos, "unknown operator '"+badOp.Raw+"'")
	return &Assignment{
		Name:  nameTok.Raw,
		Op:    badOp.Raw,
		Value: &Scalar{ScalarKind: ScalarIdentifier, Pos: badOp.Pos},
		Pos:   nameTok.Pos,
	}
}

// parseValue parses a scalar or block value.
func (p *Parser) parseValue() Node {
	tok := p.peek()

	if tok.Kind == TokenBraceOpen {
		return p.parseBlock()
	}

	if sk, ok := scalarKindFor(tok.Kind); ok {
		p.advance()
		return &Scalar{
			ScalarKind: sk,
			Raw:        tok.Raw,
			Value:      tok.Text,
			Negate:     tok.Negate,
			Pos:        tok.Pos,
		}
	}

	// The lexer always emits `<=` as an operator; standing where a value
	// is expected it is a scalar carrying its source text.
	if tok.Kind == TokenOperator && tok.Raw == "<=" {
		p.advance()
		return &Scalar{ScalarKind: ScalarIdentifier, Raw: tok.Raw, Value: tok.Raw, Pos: tok.Pos}
	}

	// Unexpected token where a value was required: report and consume
	// one token to guarantee forward progress, producing a placeholder
	// scalar so the parent still has a child occupying this position.
	p.addDiag(DiagUnexpectedToken, tok.Pos, "unexpected token where a value was expected")
	if tok.Kind != TokenEOF {
		p.advance()
	}
	return &Scalar{ScalarKind: ScalarIdentifier, Raw: tok.Raw, Value: tok.Text, Pos: tok.Pos}
}

func scalarKindFor(k TokenKind) (ScalarKind, bool) {
	switch k {
	case TokenIdentifier:
		return ScalarIdentifier, true
	case TokenString:
		return ScalarString, true
	case TokenInteger:
		return ScalarInteger, true
	case TokenDecimal:
		return ScalarDecimal, true
	case TokenPercentage:
		return ScalarPercentage, true
	case TokenBoolean:
		return ScalarBoolean, true
	case TokenVariable:
		return ScalarVariable, true
	default:
		return 0, false
	}
}

// parseBlock parses `{ entry* }`. An unclosed brace at end-of-input
// closes implicitly with a single diagnostic, per spec.md §4.2/§8.
func (p *Parser) parseBlock() Node {
	open := p.advance() // consume '{'
	var entries []Node

	for {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			p.addDiag(DiagUnclosedBlock, open.Pos, "unclosed '{' at end of input")
			break
		}
		if tok.Kind == TokenBraceClose {
			p.advance()
			break
		}
		entry := p.parseEntry()
		if entry != nil {
			entries = append(entries, entry)
		}
	}

	return &Block{Entries: entries, Form: DetermineBlockForm(entries), Pos: open.Pos}
}
