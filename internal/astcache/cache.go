// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package astcache caches parsed ASTs keyed by (content_hash,
// parser_version), coalescing concurrent parse requests for the same
// key into a single parse.
package astcache

import (
	"sync"

	"github.com/modcore/modcore/internal/script"
)

// Key identifies a cached AST: the content it was parsed from and the
// parser version that produced it. Bumping the parser version
// invalidates lookups against prior entries without mutating them —
// they simply stop being found.
type Key struct {
	ContentHash   string
	ParserVersion int
}

// entry holds either a completed AST or an in-flight parse that other
// callers are waiting on.
type entry struct {
	done chan struct{}
	root *script.Root
}

// Cache maps Key to a parsed AST. At most one parse is in flight per
// key; concurrent Get calls for the same key collapse into one parse
// and all callers receive the same result.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
}

// New creates an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[Key]*entry)}
}

// Get returns the AST for key, parsing src via parse only if key is
// not already cached or in flight. Concurrent calls for the same key
// block on the same underlying parse rather than each doing their own.
func (c *Cache) Get(key Key, src []byte, sourceName string) *script.Root {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok {
		c.mu.Unlock()
		<-e.done
		return e.root
	}

	e := &entry{done: make(chan struct{})}
	c.entries[key] = e
	c.mu.Unlock()

	e.root = script.Parse(src, sourceName)
	close(e.done)
	return e.root
}

// Len reports the number of cached (or in-flight) entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Invalidate removes a single key from the cache, used when a parser
// bug fix requires forcing a reparse without bumping the global
// parser version.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}
