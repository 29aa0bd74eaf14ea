//go:build integration

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/store"
)

func newTestStore(t *testing.T) (*store.ContentStore, func()) {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("modcore_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	migrator, err := store.NewMigrator(connStr)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	s, err := store.NewContentStore(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		s.Close()
		_ = pgContainer.Terminate(ctx)
	}
	return s, cleanup
}

func TestContentStore_PutAndGetContent(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	hash, err := s.PutContent(ctx, []byte("owner = ROM"))
	require.NoError(t, err)

	data, err := s.GetContent(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, []byte("owner = ROM"), data)

	// Idempotent: re-putting the same bytes yields the same hash.
	hash2, err := s.PutContent(ctx, []byte("owner = ROM"))
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}

func TestContentStore_ContentVersionLifecycle(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	versionID, err := s.CreateContentVersion(ctx, "base_game", "1.0.0")
	require.NoError(t, err)

	hashA, err := s.PutContent(ctx, []byte("owner = ROM"))
	require.NoError(t, err)
	hashB, err := s.PutContent(ctx, []byte("owner = GER"))
	require.NoError(t, err)

	require.NoError(t, s.RecordFile(ctx, versionID, "b.txt", hashB, false))
	require.NoError(t, s.RecordFile(ctx, versionID, "a.txt", hashA, false))

	root, err := s.VersionRoot(ctx, versionID)
	require.NoError(t, err)
	assert.Len(t, root, 64)

	cv, err := s.GetContentVersion(ctx, versionID)
	require.NoError(t, err)
	assert.Equal(t, root, cv.RootHash)
	assert.Equal(t, "base_game", cv.SourceName)

	files, err := s.ListFiles(ctx, versionID)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].RelPath) // lexicographic order
	assert.Equal(t, "b.txt", files[1].RelPath)
}

func TestContentStore_FileOverwriteAndDeletion(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	versionID, err := s.CreateContentVersion(ctx, "base_game", "1.0.0")
	require.NoError(t, err)

	hashA, err := s.PutContent(ctx, []byte("first"))
	require.NoError(t, err)
	hashB, err := s.PutContent(ctx, []byte("second"))
	require.NoError(t, err)

	require.NoError(t, s.RecordFile(ctx, versionID, "a.txt", hashA, false))
	require.NoError(t, s.RecordFile(ctx, versionID, "a.txt", hashB, false)) // overwrite, same relpath

	files, err := s.ListFiles(ctx, versionID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, hashB, files[0].ContentHash)

	require.NoError(t, s.RecordFile(ctx, versionID, "a.txt", "", true)) // deleted
	files, err = s.ListFiles(ctx, versionID)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestContentStore_CreateAndGetPlayset(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	baseID, err := s.CreateContentVersion(ctx, "base_game", "1.0.0")
	require.NoError(t, err)
	_, err = s.VersionRoot(ctx, baseID)
	require.NoError(t, err)

	modID, err := s.CreateContentVersion(ctx, "better_traits_mod", "2.1.0")
	require.NoError(t, err)
	_, err = s.VersionRoot(ctx, modID)
	require.NoError(t, err)

	playset, err := s.CreatePlayset(ctx, []store.PlaysetEntry{
		{Position: 0, ContentVersionID: baseID, Role: store.RoleBase},
		{Position: 1, ContentVersionID: modID, Role: store.RoleMod},
	})
	require.NoError(t, err)
	assert.Len(t, playset.PlaysetHash, 64)

	fetched, err := s.GetPlayset(ctx, playset.ID)
	require.NoError(t, err)
	assert.Equal(t, playset.PlaysetHash, fetched.PlaysetHash)
	require.Len(t, fetched.Entries, 2)
	assert.Equal(t, store.RoleBase, fetched.Entries[0].Role)
	assert.Equal(t, store.RoleMod, fetched.Entries[1].Role)
}

func TestContentStore_SymbolsAndReferences(t *testing.T) {
	s, cleanup := newTestStore(t)
	defer cleanup()
	ctx := context.Background()

	versionID, err := s.CreateContentVersion(ctx, "base_game", "1.0.0")
	require.NoError(t, err)
	hash, err := s.PutContent(ctx, []byte("brave = { ... }"))
	require.NoError(t, err)
	require.NoError(t, s.RecordFile(ctx, versionID, "common/traits/00_traits.txt", hash, false))

	err = s.InsertSymbols(ctx, []store.Symbol{
		{SymbolType: "trait", Name: "brave", ContentVersionID: versionID, RelPath: "common/traits/00_traits.txt", Line: 1},
	})
	require.NoError(t, err)

	err = s.InsertReferences(ctx, []store.Reference{
		{RefType: "trait", Name: "brave", ContentVersionID: versionID, RelPath: "common/traits/00_traits.txt", Line: 4},
	})
	require.NoError(t, err)

	matches, err := s.SymbolsByIdentity(ctx, []ids.ContentVersionID{versionID}, "trait", "", "brave")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "brave", matches[0].Name)

	names, err := s.AllSymbolNames(ctx, []ids.ContentVersionID{versionID})
	require.NoError(t, err)
	assert.Contains(t, names, "brave")
}
