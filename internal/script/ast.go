// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package script

import (
	"fmt"
	"strings"
)

// NodeKind identifies which of the four AST node kinds a Node is.
type NodeKind int

const (
	NodeRoot NodeKind = iota
	NodeAssignment
	NodeBlock
	NodeScalar
)

func (k NodeKind) String() string {
	switch k {
	case NodeRoot:
		return "Root"
	case NodeAssignment:
		return "Assignment"
	case NodeBlock:
		return "Block"
	case NodeScalar:
		return "Scalar"
	default:
		return "Unknown"
	}
}

// BlockForm classifies a Block's children as the parser found them.
type BlockForm int

const (
	BlockEmpty BlockForm = iota
	BlockList
	BlockMap
	BlockMixed
)

func (f BlockForm) String() string {
	switch f {
	case BlockEmpty:
		return "empty"
	case BlockList:
		return "list"
	case BlockMap:
		return "map"
	case BlockMixed:
		return "mixed"
	default:
		return "unknown"
	}
}

// ScalarKind classifies the literal form of a Scalar node.
type ScalarKind int

const (
	ScalarIdentifier ScalarKind = iota
	ScalarString
	ScalarInteger
	ScalarDecimal
	ScalarPercentage
	ScalarBoolean
	ScalarVariable
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarIdentifier:
		return "identifier"
	case ScalarString:
		return "string"
	case ScalarInteger:
		return "integer"
	case ScalarDecimal:
		return "decimal"
	case ScalarPercentage:
		return "percentage"
	case ScalarBoolean:
		return "boolean"
	case ScalarVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Node is implemented by Root, Assignment, Block, and Scalar. It is a
// closed set by design: spec.md models the AST as exactly four node
// kinds, so new node kinds are a deliberate grammar change, not an
// open extension point.
type Node interface {
	Kind() NodeKind
	Position() Position
	// Serialize renders the node into a canonical textual form used by
	// the round-trip property: parsing the same bytes at the same
	// parser version must always yield the same serialization.
	Serialize(sb *strings.Builder)
}

// Root is the top-level container: an ordered sequence of entries,
// each either an Assignment or a bare Scalar/Block (the list form).
type Root struct {
	Entries     []Node
	Diagnostics []Diagnostic
	Pos         Position
}

func (r *Root) Kind() NodeKind     { return NodeRoot }
func (r *Root) Position() Position { return r.Pos }
func (r *Root) Serialize(sb *strings.Builder) {
	for i, e := range r.Entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		e.Serialize(sb)
	}
}

// Assignment is `name OP value`, where value is a Scalar or a Block.
type Assignment struct {
	Name  string
	Op    string
	Value Node
	Pos   Position
}

func (a *Assignment) Kind() NodeKind     { return NodeAssignment }
func (a *Assignment) Position() Position { return a.Pos }
func (a *Assignment) Serialize(sb *strings.Builder) {
	sb.WriteString(a.Name)
	sb.WriteByte(' ')
	sb.WriteString(a.Op)
	sb.WriteByte(' ')
	a.Value.Serialize(sb)
}

// Block is `{ entries… }`. Form records whether the parser saw a
// list-form, map-form, or mixed block; consumers decide semantics
// rather than the parser collapsing the distinction.
type Block struct {
	Entries []Node
	Form    BlockForm
	Pos     Position
}

func (b *Block) Kind() NodeKind     { return NodeBlock }
func (b *Block) Position() Position { return b.Pos }
func (b *Block) Serialize(sb *strings.Builder) {
	sb.WriteByte('{')
	for i, e := range b.Entries {
		if i > 0 {
			sb.WriteByte(' ')
		}
		e.Serialize(sb)
	}
	sb.WriteByte('}')
}

// Scalar is a leaf literal: identifier, quoted string, integer,
// decimal, percentage, boolean, or variable reference.
type Scalar struct {
	ScalarKind ScalarKind
	Raw        string // exact source text, quotes/sign/dollar included
	Value      string // normalized value (quotes stripped, etc.)
	Negate     bool   // sign-prefixed variable reference
	Pos        Position
}

func (s *Scalar) Kind() NodeKind     { return NodeScalar }
func (s *Scalar) Position() Position { return s.Pos }
func (s *Scalar) Serialize(sb *strings.Builder) {
	sb.WriteString(s.Raw)
}

// DetermineBlockForm classifies entries the way the parser does: all
// bare values => list; all assignments => map; both => mixed; no
// entries => empty.
func DetermineBlockForm(entries []Node) BlockForm {
	if len(entries) == 0 {
		return BlockEmpty
	}
	hasAssignment, hasValue := false, false
	for _, e := range entries {
		if _, ok := e.(*Assignment); ok {
			hasAssignment = true
		} else {
			hasValue = true
		}
	}
	switch {
	case hasAssignment && hasValue:
		return BlockMixed
	case hasAssignment:
		return BlockMap
	default:
		return BlockList
	}
}

// DiagnosticKind classifies a parser diagnostic.
type DiagnosticKind int

const (
	DiagUnexpectedToken DiagnosticKind = iota
	DiagUnclosedBlock
	DiagStrayCloseBrace
	DiagUnknownOperator
	DiagInvalidByte
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagUnexpectedToken:
		return "unexpected_token"
	case DiagUnclosedBlock:
		return "unclosed_block"
	case DiagStrayCloseBrace:
		return "stray_close_brace"
	case DiagUnknownOperator:
		return "unknown_operator"
	case DiagInvalidByte:
		return "invalid_byte"
	default:
		return "unknown"
	}
}

// Diagnostic is a non-fatal parse-time observation: the parser always
// produces a best-effort AST alongside its diagnostics, per spec.md §7.
type Diagnostic struct {
	Kind    DiagnosticKind
	Message string
	Pos     Position
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Line, d.Pos.Column, d.Kind, d.Message)
}

// Serialize renders a Root to its canonical string form, used both by
// tests asserting the round-trip property and by callers needing a
// stable textual key.
func Serialize(n Node) string {
	var sb strings.Builder
	n.Serialize(&sb)
	return sb.String()
}
