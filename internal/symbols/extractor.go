// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package symbols walks a parsed file's AST once, per the folder
// schema that matched its relpath, and emits the definition (Symbol)
// and use-site (Reference) records spec.md §4.5 describes. Extraction
// never fails: a folder schema's expectations not being met by a
// particular file yields zero emissions for that location, not an
// error.
package symbols

import (
	"github.com/modcore/modcore/internal/schema"
	"github.com/modcore/modcore/internal/script"
)

// Symbol is one definition site: a unit_key's top-level (or
// second-level, for defines) appearance in one file.
type Symbol struct {
	SymbolType string
	Scope      string
	Name       string
	RelPath    string
	Line       int
}

// Reference is one use-site of a named symbol found inside a unit's
// AST subtree at a position the folder schema marks as a reference.
type Reference struct {
	RefType string
	Name    string
	RelPath string
	Line    int
}

// Extract walks root once and returns every Symbol and Reference the
// matched schema's unit-key rule and reference patterns produce for
// this file.
func Extract(root *script.Root, relpath string, s schema.FolderSchema) ([]Symbol, []Reference) {
	scope := s.ScopeFor(root)
	units := s.ExtractUnits(root)

	symbolsOut := make([]Symbol, 0, len(units))
	var referencesOut []Reference

	for _, u := range units {
		symbolsOut = append(symbolsOut, Symbol{
			SymbolType: s.SymbolType,
			Scope:      scope,
			Name:       u.Key,
			RelPath:    relpath,
			Line:       u.Node.Position().Line,
		})

		for _, pattern := range s.References {
			for _, name := range findChildValues(u.Node, pattern.ChildKey) {
				referencesOut = append(referencesOut, Reference{
					RefType: pattern.RefType,
					Name:    name.Value,
					RelPath: relpath,
					Line:    name.Pos.Line,
				})
			}
		}
	}

	return symbolsOut, referencesOut
}

// findChildValues recursively searches node for every assignment
// named childKey and collects the scalar names it references: a bare
// scalar value is one reference, a block value's scalar entries are
// each a reference (the list form), non-scalar entries are skipped.
func findChildValues(node script.Node, childKey string) []*script.Scalar {
	var out []*script.Scalar

	var walk func(n script.Node)
	walk = func(n script.Node) {
		switch v := n.(type) {
		case *script.Block:
			for _, e := range v.Entries {
				walk(e)
			}
		case *script.Assignment:
			if v.Name == childKey {
				out = append(out, scalarsOf(v.Value)...)
			}
			walk(v.Value)
		}
	}
	walk(node)

	return out
}

// scalarsOf returns n itself if it's a Scalar, or the Scalar entries
// of a Block (the list form) — the two shapes a reference-bearing
// child key's value can take.
func scalarsOf(n script.Node) []*script.Scalar {
	switch v := n.(type) {
	case *script.Scalar:
		return []*script.Scalar{v}
	case *script.Block:
		var out []*script.Scalar
		for _, e := range v.Entries {
			if sc, ok := e.(*script.Scalar); ok {
				out = append(out, sc)
			}
		}
		return out
	default:
		return nil
	}
}
