// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store implements the content-addressed storage layer: byte
// content keyed by SHA-256 hash, file membership within a content
// version, sealed content versions, ordered playsets, and the symbol
// and reference tables the extractor populates.
package store

import (
	"time"

	"github.com/modcore/modcore/internal/ids"
)

// Content is an immutable, deduplicated blob identified by the SHA-256
// hash of its normalized bytes.
type Content struct {
	Hash      string
	ByteSize  int64
	CreatedAt time.Time
}

// File declares that, within a content version, a relative path
// resolves to a content hash (or is marked deleted).
type File struct {
	ContentVersionID ids.ContentVersionID
	RelPath          string
	ContentHash      string
	Deleted          bool
}

// ContentVersion is a sealed snapshot of one source — the base game at
// a version, or a mod at a specific revision.
type ContentVersion struct {
	ID        ids.ContentVersionID
	SourceName string
	VersionTag string
	RootHash   string
	SealedAt   time.Time
}

// PlaysetRole labels the part a content version plays within a
// playset's load order.
type PlaysetRole string

const (
	RoleBase PlaysetRole = "base"
	RoleMod  PlaysetRole = "mod"
)

// PlaysetEntry is one element of a playset's ordered load list.
// RootHash snapshots the content version's root hash as observed when
// the playset was built; it is compared against the version's current
// root hash to detect playset drift (spec.md §7 item 5, §8 scenario 6).
type PlaysetEntry struct {
	Position         int
	ContentVersionID ids.ContentVersionID
	Role             PlaysetRole
	RootHash         string
}

// Playset is an ordered sequence of content versions, the base game
// first, with a stable hash derived from the ordered version roots.
type Playset struct {
	ID          ids.PlaysetID
	PlaysetHash string
	CreatedAt   time.Time
	Entries     []PlaysetEntry
}

// Symbol is a named definition extracted from a file: (symbol_type,
// scope, name) is its identity; multiple files may share an identity,
// which is override, not duplication.
type Symbol struct {
	ID               int64
	SymbolType       string
	Scope            string
	Name             string
	ContentVersionID ids.ContentVersionID
	RelPath          string
	Line             int
}

// Reference is a use-site of a named symbol encountered during
// extraction.
type Reference struct {
	ID               int64
	RefType          string
	Name             string
	ContentVersionID ids.ContentVersionID
	RelPath          string
	Line             int
}
