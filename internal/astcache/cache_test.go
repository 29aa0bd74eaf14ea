// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package astcache

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestCache_MissThenHit(t *testing.T) {
	c := New()
	key := Key{ContentHash: "abc123", ParserVersion: 1}

	root1 := c.Get(key, []byte("owner = ROM"), "test.txt")
	require.NotNil(t, root1)
	require.NotEmpty(t, root1.Entries)

	root2 := c.Get(key, []byte("owner = ROM"), "test.txt")
	assert.Same(t, root1, root2, "second Get for the same key must return the cached AST, not reparse")
	assert.Equal(t, 1, c.Len())
}

func TestCache_DistinctContentHashesAreSeparateEntries(t *testing.T) {
	c := New()
	a := c.Get(Key{ContentHash: "aaa", ParserVersion: 1}, []byte("owner = ROM"), "a.txt")
	b := c.Get(Key{ContentHash: "bbb", ParserVersion: 1}, []byte("owner = GER"), "b.txt")
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, c.Len())
}

func TestCache_ParserVersionBumpIsSeparateKey(t *testing.T) {
	c := New()
	v1 := c.Get(Key{ContentHash: "abc123", ParserVersion: 1}, []byte("owner = ROM"), "test.txt")
	v2 := c.Get(Key{ContentHash: "abc123", ParserVersion: 2}, []byte("owner = ROM"), "test.txt")
	assert.NotSame(t, v1, v2, "bumping parser_version must not reuse the prior version's cached AST")
	assert.Equal(t, 2, c.Len())
}

// Only one caller can win the map-insert race and actually run the
// parse; every other concurrent caller blocks on e.done and receives
// the same *Root. Asserting pointer identity across all callers is
// only possible if exactly one parse happened.
func TestCache_ConcurrentGetsForSameKeyCoalesce(t *testing.T) {
	c := New()
	key := Key{ContentHash: "concurrent", ParserVersion: 1}

	const n = 50
	results := make([]interface{}, n)
	var wg sync.WaitGroup
	var started int32
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			atomic.AddInt32(&started, 1)
			results[i] = c.Get(key, []byte("owner = ROM"), "test.txt")
		}(i)
	}
	wg.Wait()

	first := results[0]
	for i := 1; i < n; i++ {
		assert.Same(t, first, results[i], "all concurrent callers for the same key must observe the same parsed AST")
	}
	assert.Equal(t, 1, c.Len())
}

func TestCache_Invalidate(t *testing.T) {
	c := New()
	key := Key{ContentHash: "abc123", ParserVersion: 1}

	root1 := c.Get(key, []byte("owner = ROM"), "test.txt")
	c.Invalidate(key)
	assert.Equal(t, 0, c.Len())

	root2 := c.Get(key, []byte("owner = ROM"), "test.txt")
	assert.NotSame(t, root1, root2, "after Invalidate, Get must reparse rather than return the stale pointer")
}

// TestCache_ConcurrentGetsLeaveNoGoroutinesBehind guards the coalescing
// path in Get: once every blocked caller has observed e.done closing,
// nothing should still be parked on it.
func TestCache_ConcurrentGetsLeaveNoGoroutinesBehind(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := New()
	key := Key{ContentHash: "concurrent-goleak", ParserVersion: 1}

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			c.Get(key, []byte("owner = ROM"), "test.txt")
		}()
	}
	wg.Wait()
}
