// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package schema declares the closed set of recognized folder
// patterns and, for each, the symbol_type, scope rule, merge policy,
// reference-emission patterns, and unit_key extraction rule that the
// symbol extractor and resolver apply to files under that folder.
package schema

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/modcore/modcore/internal/policy"
	"github.com/modcore/modcore/internal/script"
)

// ScopeKind classifies how a symbol's disambiguating scope is derived.
type ScopeKind int

const (
	// ScopeConstant uses the folder's symbol_type as the scope: two
	// symbols of different types never collide even with the same name.
	ScopeConstant ScopeKind = iota
	// ScopeNamespace derives the scope from a `namespace = ...`
	// declaration found elsewhere in the same file (events).
	ScopeNamespace
)

// UnitKeyKind selects how ExtractUnits computes a unit_key for entries
// matched by a folder pattern (spec.md §6).
type UnitKeyKind int

const (
	// UnitKeyTopLevelName uses the top-level assignment's name.
	UnitKeyTopLevelName UnitKeyKind = iota
	// UnitKeyInnerIDOrName prefers a nested `id = ...` scalar over the
	// top-level name, used by decisions.
	UnitKeyInnerIDOrName
	// UnitKeyEventNamespaced distinguishes a `namespace = value`
	// declaration (key "namespace:value") from individual event
	// definitions (key "event:<name>").
	UnitKeyEventNamespaced
	// UnitKeyDefine walks one level deeper: the top-level entries are
	// namespace blocks, and each nested assignment is its own unit
	// keyed "<namespace>.<key>".
	UnitKeyDefine
	// UnitKeyLiteral uses the assignment name verbatim (localization).
	UnitKeyLiteral
	// UnitKeyGUI formats "gui:<category>:<name>" using the schema's
	// GUICategory.
	UnitKeyGUI
)

// ReferencePattern describes a child key within a unit's AST whose
// values are use-sites of a named symbol rather than fresh
// definitions (spec.md §4.5).
type ReferencePattern struct {
	ChildKey string
	RefType  string
}

// FolderSchema is one row of the folder→behavior table.
type FolderSchema struct {
	Pattern     string
	SymbolType  string
	Scope       ScopeKind
	Policy      policy.Kind
	References  []ReferencePattern
	UnitKey     UnitKeyKind
	GUICategory string // only meaningful when UnitKey == UnitKeyGUI

	compiled glob.Glob
}

// Unit is one extracted definition site within a file: its logical
// identity within the folder and the AST subtree that defines it.
type Unit struct {
	Key  string
	Name string
	Node script.Node
}

// Registry holds the compiled, ordered folder schema table. Patterns
// are matched in declaration order; the first match wins, mirroring a
// total function over the closed set of recognized folders with
// OVERRIDE as the fallback policy for anything unmatched.
type Registry struct {
	schemas []FolderSchema
}

// NewRegistry compiles the built-in folder schema table.
func NewRegistry() (*Registry, error) {
	return newRegistry(defaultSchemas())
}

func newRegistry(schemas []FolderSchema) (*Registry, error) {
	r := &Registry{schemas: make([]FolderSchema, len(schemas))}
	for i, s := range schemas {
		compiled, err := glob.Compile(s.Pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("schema: compiling pattern %q: %w", s.Pattern, err)
		}
		s.compiled = compiled
		r.schemas[i] = s
	}
	return r, nil
}

// FallbackPattern is the Pattern value of the schema Match returns for
// a relpath no registered folder pattern recognizes. Callers that need
// to tell a real match from the fallback (rather than just using its
// OVERRIDE/"unknown" behavior) compare against this constant.
const FallbackPattern = "*"

// fallback is returned by Match when no pattern matches relpath: it
// carries OVERRIDE and a generic symbol_type, so the rest of the
// pipeline has a total function to call even on unrecognized content.
var fallback = FolderSchema{
	Pattern:    FallbackPattern,
	SymbolType: "unknown",
	Scope:      ScopeConstant,
	Policy:     policy.Override,
	UnitKey:    UnitKeyTopLevelName,
}

// Match returns the first folder schema whose pattern matches relpath,
// or the fallback schema (OVERRIDE, symbol_type "unknown") if none do.
func (r *Registry) Match(relpath string) FolderSchema {
	for _, s := range r.schemas {
		if s.compiled.Match(relpath) {
			return s
		}
	}
	return fallback
}

// Schemas returns the registered schemas in match order, excluding the
// fallback.
func (r *Registry) Schemas() []FolderSchema {
	out := make([]FolderSchema, len(r.schemas))
	copy(out, r.schemas)
	return out
}

// Lookup returns the registered schema whose Pattern equals pattern
// exactly, used by callers that already know which folder pattern
// they want resolved rather than matching it from a relpath.
func (r *Registry) Lookup(pattern string) (FolderSchema, bool) {
	for _, s := range r.schemas {
		if s.Pattern == pattern {
			return s, true
		}
	}
	return FolderSchema{}, false
}

// ExtractUnits computes the unit_key and defining subtree for every
// top-level (or, for UnitKeyDefine, second-level) entry of root,
// according to s.UnitKey.
func (s FolderSchema) ExtractUnits(root *script.Root) []Unit {
	switch s.UnitKey {
	case UnitKeyInnerIDOrName:
		return extractInnerIDOrName(root)
	case UnitKeyEventNamespaced:
		return extractEventNamespaced(root)
	case UnitKeyDefine:
		return extractDefines(root)
	case UnitKeyLiteral:
		return extractTopLevelNames(root)
	case UnitKeyGUI:
		return extractGUI(root, s.GUICategory)
	default:
		return extractTopLevelNames(root)
	}
}

func extractTopLevelNames(root *script.Root) []Unit {
	var units []Unit
	for _, e := range root.Entries {
		a, ok := e.(*script.Assignment)
		if !ok {
			continue
		}
		units = append(units, Unit{Key: a.Name, Name: a.Name, Node: a.Value})
	}
	return units
}

func extractInnerIDOrName(root *script.Root) []Unit {
	var units []Unit
	for _, e := range root.Entries {
		a, ok := e.(*script.Assignment)
		if !ok {
			continue
		}
		key := a.Name
		if block, ok := a.Value.(*script.Block); ok {
			for _, inner := range block.Entries {
				if ia, ok := inner.(*script.Assignment); ok && ia.Name == "id" {
					if sc, ok := ia.Value.(*script.Scalar); ok {
						key = sc.Value
					}
				}
			}
		}
		units = append(units, Unit{Key: key, Name: a.Name, Node: a.Value})
	}
	return units
}

func extractEventNamespaced(root *script.Root) []Unit {
	var units []Unit
	for _, e := range root.Entries {
		a, ok := e.(*script.Assignment)
		if !ok {
			continue
		}
		if a.Name == "namespace" {
			if sc, ok := a.Value.(*script.Scalar); ok {
				units = append(units, Unit{Key: "namespace:" + sc.Value, Name: a.Name, Node: a.Value})
				continue
			}
		}
		units = append(units, Unit{Key: "event:" + a.Name, Name: a.Name, Node: a.Value})
	}
	return units
}

func extractDefines(root *script.Root) []Unit {
	var units []Unit
	for _, e := range root.Entries {
		ns, ok := e.(*script.Assignment)
		if !ok {
			continue
		}
		block, ok := ns.Value.(*script.Block)
		if !ok {
			continue
		}
		for _, inner := range block.Entries {
			ia, ok := inner.(*script.Assignment)
			if !ok {
				continue
			}
			units = append(units, Unit{
				Key:  ns.Name + "." + ia.Name,
				Name: ia.Name,
				Node: ia.Value,
			})
		}
	}
	return units
}

func extractGUI(root *script.Root, category string) []Unit {
	var units []Unit
	for _, e := range root.Entries {
		a, ok := e.(*script.Assignment)
		if !ok {
			continue
		}
		units = append(units, Unit{
			Key:  fmt.Sprintf("gui:%s:%s", category, a.Name),
			Name: a.Name,
			Node: a.Value,
		})
	}
	return units
}

// ScopeFor computes a Symbol's scope value for this schema. Constant
// scope is simply the symbol_type; namespace scope looks for a
// `namespace = value` declaration among root's entries, falling back
// to the symbol_type if the file never declares one (malformed input
// still gets a usable, if wrong, scope rather than failing).
func (s FolderSchema) ScopeFor(root *script.Root) string {
	if s.Scope == ScopeConstant {
		return s.SymbolType
	}
	for _, e := range root.Entries {
		a, ok := e.(*script.Assignment)
		if !ok || a.Name != "namespace" {
			continue
		}
		if sc, ok := a.Value.(*script.Scalar); ok {
			return sc.Value
		}
	}
	return s.SymbolType
}
