// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package modcore is the resolver's query surface: the entry point
// collaborators (editor extension, daemon, CLI) hold to ingest
// sources, assemble playsets, resolve folders, search a playset's
// symbol corpus, and inspect conflicts — everything spec.md §6
// external interfaces names, wired together over the lower-level
// internal/* packages.
package modcore

import (
	"context"
	"sync"

	"github.com/modcore/modcore/internal/astcache"
	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/observability"
	"github.com/modcore/modcore/internal/schema"
	"github.com/modcore/modcore/internal/script"
	"github.com/modcore/modcore/internal/search"
	"github.com/modcore/modcore/internal/store"
)

// ContentStore is the subset of *store.ContentStore the engine needs.
// Narrowed to an interface so tests can substitute a fake or a
// pgxmock-backed store without a live database.
type ContentStore interface {
	GetContent(ctx context.Context, hash string) ([]byte, error)
	GetFile(ctx context.Context, versionID ids.ContentVersionID, relpath string) (*store.File, error)
	ListFiles(ctx context.Context, versionID ids.ContentVersionID) ([]store.File, error)
	GetContentVersion(ctx context.Context, id ids.ContentVersionID) (*store.ContentVersion, error)
	GetPlayset(ctx context.Context, id ids.PlaysetID) (*store.Playset, error)
	CreatePlayset(ctx context.Context, entries []store.PlaysetEntry) (*store.Playset, error)
	InsertSymbols(ctx context.Context, symbols []store.Symbol) error
	InsertReferences(ctx context.Context, refs []store.Reference) error
	ListSymbols(ctx context.Context, versionIDs []ids.ContentVersionID) ([]store.Symbol, error)
	AllSymbolNames(ctx context.Context, versionIDs []ids.ContentVersionID) ([]string, error)
	PutContent(ctx context.Context, normalized []byte) (string, error)
	CreateContentVersion(ctx context.Context, sourceName, versionTag string) (ids.ContentVersionID, error)
	RecordFile(ctx context.Context, versionID ids.ContentVersionID, relpath, contentHash string, deleted bool) error
	VersionRoot(ctx context.Context, versionID ids.ContentVersionID) (string, error)
}

// Engine wires the content store, AST cache, and folder schema
// registry into the operations spec.md §6 describes, plus a
// per-playset search index rebuilt on demand (spec.md §4.8).
type Engine struct {
	store    ContentStore
	cache    *astcache.Cache
	registry *schema.Registry
	workers  int

	indexMu sync.Mutex
	indexes map[string]*search.Index

	metrics          *observability.Metrics
	fuzzyMaxDistance int
}

// SetMetrics attaches the Prometheus counters Ingest/Resolve/Search
// record against. Never called, the engine runs with metrics as a
// no-op — callers that don't start an observability server simply
// don't get counters.
func (e *Engine) SetMetrics(m *observability.Metrics) {
	e.metrics = m
}

// SetFuzzyMaxDistance overrides the edit-distance threshold ad hoc
// Fuzzy queries use; n <= 0 is ignored. The exhaustive
// ConfirmNotExists sweep always uses spec.md §4.8's fixed distance of
// 2 regardless of this override, since its "nothing exists" guarantee
// depends on a pinned exhaustiveness bound.
func (e *Engine) SetFuzzyMaxDistance(n int) {
	if n > 0 {
		e.fuzzyMaxDistance = n
	}
}

// New creates an Engine backed by cs, compiling the built-in folder
// schema registry. workers bounds the resolver's worker pool
// (spec.md §5); values less than 1 are treated as 1.
func New(cs ContentStore, workers int) (*Engine, error) {
	registry, err := schema.NewRegistry()
	if err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	return &Engine{
		store:            cs,
		cache:            astcache.New(),
		registry:         registry,
		workers:          workers,
		indexes:          make(map[string]*search.Index),
		fuzzyMaxDistance: defaultFuzzyMaxDistance,
	}, nil
}

// ParserVersion returns the parser version the engine's AST cache is
// keyed on (spec.md §4.4).
func (e *Engine) ParserVersion() int {
	return script.ParserVersion
}

// parse returns the AST for a file's content, consulting the engine's
// single-flight cache before parsing.
func (e *Engine) parse(src []byte, contentHash, sourceName string) *script.Root {
	return e.cache.Get(astcache.Key{ContentHash: contentHash, ParserVersion: script.ParserVersion}, src, sourceName)
}
