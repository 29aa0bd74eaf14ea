// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package modcore

import (
	"context"

	"github.com/samber/oops"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/observability"
	"github.com/modcore/modcore/internal/search"
)

// defaultFuzzyMaxDistance is the edit-distance threshold spec.md §4.8
// fixes for fuzzy queries. Hosts may override it for Search.Fuzzy via
// config.Config.FuzzyMaxDistance/SetFuzzyMaxDistance for tuning; the
// confirm-not-exists sweep always uses the search index's own fixed
// distance of 2. Every default deployment runs at the spec value.
const defaultFuzzyMaxDistance = 2

// RefreshSearchIndex rebuilds and caches the search index for a
// playset from its current symbol table. Callers should call this
// after ingesting new content versions or rebuilding a playset;
// Search/ConfirmNotExists serve from whatever index was last built.
func (e *Engine) RefreshSearchIndex(ctx context.Context, playsetID ids.PlaysetID) error {
	versionIDs, err := e.playsetVersionIDs(ctx, playsetID)
	if err != nil {
		return err
	}

	symbols, err := e.store.ListSymbols(ctx, versionIDs)
	if err != nil {
		return oops.With("operation", "refresh search index").With("playset_id", playsetID.String()).Wrap(err)
	}

	entries := make([]search.Entry, len(symbols))
	for i, sym := range symbols {
		entries[i] = search.Entry{
			SymbolType: sym.SymbolType,
			Scope:      sym.Scope,
			Name:       sym.Name,
			RelPath:    sym.RelPath,
			Line:       sym.Line,
		}
	}

	idx := e.searchIndex(playsetID)
	idx.Reload(entries)
	return nil
}

// searchIndex returns the cached Index for a playset, creating an
// empty one on first use.
func (e *Engine) searchIndex(playsetID ids.PlaysetID) *search.Index {
	e.indexMu.Lock()
	defer e.indexMu.Unlock()
	idx, ok := e.indexes[playsetID.String()]
	if !ok {
		idx = search.New()
		e.indexes[playsetID.String()] = idx
	}
	return idx
}

// Search runs one of the query modes spec.md §4.8 describes — exact,
// prefix, token, flex, or fuzzy — over a playset's cached search
// index. Call RefreshSearchIndex first; Search never touches the
// store itself.
type Search struct {
	idx              *search.Index
	metrics          *observability.Metrics
	fuzzyMaxDistance int
}

// Search returns a Search handle for playsetID's currently cached
// index (building an empty one if RefreshSearchIndex was never
// called).
func (e *Engine) Search(playsetID ids.PlaysetID) Search {
	return Search{idx: e.searchIndex(playsetID), metrics: e.metrics, fuzzyMaxDistance: e.fuzzyMaxDistance}
}

func (s Search) record(mode string, hit bool) {
	if s.metrics == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(mode, outcome).Inc()
}

func (s Search) Exact(symbolType, name string) []search.Entry {
	out := s.idx.Exact(symbolType, name)
	s.record("exact", len(out) > 0)
	return out
}

func (s Search) Prefix(prefix string) []string {
	out := s.idx.Prefix(prefix)
	s.record("prefix", len(out) > 0)
	return out
}

func (s Search) Token(query string) []string {
	out := s.idx.Token(query)
	s.record("token", len(out) > 0)
	return out
}

func (s Search) Flex(pattern string) []string {
	out := s.idx.Flex(pattern)
	s.record("flex", len(out) > 0)
	return out
}

func (s Search) Fuzzy(query string) []string {
	out := s.idx.Fuzzy(query, s.fuzzyMaxDistance)
	s.record("fuzzy", len(out) > 0)
	return out
}

func (s Search) Expand(query string) []string { return s.idx.Expand(query) }

// ConfirmNotExists runs the exhaustive pattern sweep spec.md §4.8 and
// §8 scenario 5 describe and returns true only if every tier —
// exact, prefix, token, flex, and fuzzy — returns zero hits.
func (s Search) ConfirmNotExists(symbolType, name string) bool {
	confirmed := s.idx.ConfirmNotExists(symbolType, name)
	s.record("confirm_not_exists", !confirmed)
	return confirmed
}
