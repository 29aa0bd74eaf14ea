// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package search implements the exact / prefix / token / flex / fuzzy
// query modes spec.md §4.8 describes over the symbol names a playset's
// corpus defines, plus the exhaustive confirm-not-exists sweep.
package search

import (
	"sort"
	"strings"
	"sync"

	"github.com/gobwas/glob"
)

// Entry is one definition site the index can return: enough of
// store.Symbol's shape to identify and locate it, kept as a narrow
// local type so this package has no store dependency.
type Entry struct {
	SymbolType string
	Scope      string
	Name       string
	RelPath    string
	Line       int
}

// snapshot is the immutable structure an Index swaps under its write
// lock; readers never block each other (spec.md §5: "readers are
// wait-free once the key is committed"), grounded on the teacher's
// policy.Cache Snapshot/Reload pattern.
type snapshot struct {
	names      []string // sorted, deduplicated
	byName     map[string][]Entry
	tokenIndex map[string]map[string]struct{} // token -> set of names
}

// Index is a full-text index over a playset's symbol corpus, rebuilt
// wholesale on every Reload rather than mutated incrementally — the
// corpus it serves (one playset's symbol table) is small enough that
// a snapshot rebuild is simpler than incremental maintenance, and
// readers hold the read lock only long enough to take the snapshot.
type Index struct {
	mu   sync.RWMutex
	snap *snapshot
}

// New creates an empty Index.
func New() *Index {
	return &Index{snap: emptySnapshot()}
}

func emptySnapshot() *snapshot {
	return &snapshot{byName: map[string][]Entry{}, tokenIndex: map[string]map[string]struct{}{}}
}

// Reload rebuilds the index from entries and atomically swaps it in.
// Concurrent readers observe either the old or the new snapshot in
// full, never a partially rebuilt one.
func (idx *Index) Reload(entries []Entry) {
	snap := emptySnapshot()
	seen := map[string]struct{}{}
	for _, e := range entries {
		snap.byName[e.Name] = append(snap.byName[e.Name], e)
		if _, ok := seen[e.Name]; !ok {
			seen[e.Name] = struct{}{}
			snap.names = append(snap.names, e.Name)
		}
		for _, tok := range tokenize(e.Name) {
			if snap.tokenIndex[tok] == nil {
				snap.tokenIndex[tok] = map[string]struct{}{}
			}
			snap.tokenIndex[tok][e.Name] = struct{}{}
		}
	}
	sort.Strings(snap.names)

	idx.mu.Lock()
	idx.snap = snap
	idx.mu.Unlock()
}

func (idx *Index) current() *snapshot {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.snap
}

// tokenize splits a symbol name into lowercase tokens on the
// delimiters the script grammar's identifiers allow (dot, colon,
// dash, underscore) — the same separators spec.md §4.1 lists as legal
// identifier characters beyond letters/digits.
func tokenize(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		switch r {
		case '.', ':', '-', '_':
			return true
		default:
			return false
		}
	})
}

// Exact returns every definition whose (symbol_type, name) matches —
// multiple results are override, not duplication, per spec.md §3.
// An empty symbolType matches any type.
func (idx *Index) Exact(symbolType, name string) []Entry {
	snap := idx.current()
	var out []Entry
	for _, e := range snap.byName[name] {
		if symbolType == "" || e.SymbolType == symbolType {
			out = append(out, e)
		}
	}
	return out
}

// Prefix returns every distinct symbol name beginning with prefix, in
// sorted order.
func (idx *Index) Prefix(prefix string) []string {
	snap := idx.current()
	i := sort.SearchStrings(snap.names, prefix)
	var out []string
	for ; i < len(snap.names) && strings.HasPrefix(snap.names[i], prefix); i++ {
		out = append(out, snap.names[i])
	}
	return out
}

// Token returns every distinct symbol name sharing at least one
// tokenized component with query — decomposing "on_yearly_pulse" into
// ["on", "yearly", "pulse"] lets "yearly_pulse" and "on_yearly" both
// match it.
func (idx *Index) Token(query string) []string {
	snap := idx.current()
	matched := map[string]struct{}{}
	for _, tok := range tokenize(query) {
		for name := range snap.tokenIndex[tok] {
			matched[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(matched))
	for name := range matched {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Flex matches pattern (which may contain `*` and `?` wildcards)
// against every distinct symbol name using glob semantics, the same
// library the folder schema registry uses to match relpaths.
func (idx *Index) Flex(pattern string) []string {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil
	}
	snap := idx.current()
	var out []string
	for _, name := range snap.names {
		if g.Match(name) {
			out = append(out, name)
		}
	}
	return out
}

// Fuzzy returns every distinct symbol name within Levenshtein distance
// maxDistance of query.
func (idx *Index) Fuzzy(query string, maxDistance int) []string {
	snap := idx.current()
	var out []string
	for _, name := range snap.names {
		if levenshteinWithin(query, name, maxDistance) {
			out = append(out, name)
		}
	}
	return out
}

// levenshteinWithin reports whether the edit distance between a and b
// is at most maxDistance, short-circuiting on the trivial length-gap
// case before running the full dynamic-programming table.
func levenshteinWithin(a, b string, maxDistance int) bool {
	ra, rb := []rune(a), []rune(b)
	if abs(len(ra)-len(rb)) > maxDistance {
		return false
	}
	if len(ra) == 0 {
		return len(rb) <= maxDistance
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)] <= maxDistance
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// fuzzyMaxDistance is the edit-distance threshold spec.md §4.8 fixes
// for the fuzzy query mode and the confirm-not-exists sweep.
const fuzzyMaxDistance = 2

// ConfirmNotExists runs the full exhaustive pattern sweep spec.md §4.8
// and §8 scenario 5 describe — exact, prefix, token, flex, and
// edit-distance-≤-2 fuzzy — and returns true only if every one of them
// returns zero hits. Unlike Expand, it never short-circuits: a
// definitive "does not exist" answer requires exhausting the whole
// list, not stopping at the first empty tier.
func (idx *Index) ConfirmNotExists(symbolType, name string) bool {
	if len(idx.Exact(symbolType, name)) > 0 {
		return false
	}
	if len(idx.Prefix(name)) > 0 {
		return false
	}
	if len(idx.Token(name)) > 0 {
		return false
	}
	if len(idx.Flex(flexPattern(name))) > 0 {
		return false
	}
	if len(idx.Fuzzy(name, fuzzyMaxDistance)) > 0 {
		return false
	}
	return true
}

// flexPattern turns a literal query into the wildcard pattern Flex
// expects, replacing each token delimiter with `*` so "on_yearly"
// also matches "on.yearly" or "on-yearly-pulse".
func flexPattern(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch r {
		case '.', ':', '-', '_':
			sb.WriteByte('*')
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Expand applies the fixed-order pattern expansion spec.md §4.8
// describes for a single user query — prefix, then token
// decomposition, then flex wildcards — returning the first tier that
// produces results. Exact and fuzzy are separate, explicit query
// modes rather than expansion tiers, since spec.md lists them as
// distinct entry points (exact name lookup; fuzzy edit-distance
// search) rather than part of the pattern-expansion chain.
func (idx *Index) Expand(query string) []string {
	if out := idx.Prefix(query); len(out) > 0 {
		return out
	}
	if out := idx.Token(query); len(out) > 0 {
		return out
	}
	return idx.Flex(flexPattern(query))
}
