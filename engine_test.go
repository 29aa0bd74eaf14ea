// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package modcore

import (
	"context"
	"sort"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/store"
)

// fakeStore is a minimal in-memory ContentStore stand-in, grounded on
// internal/playset's and internal/ingest's own fakeStore fixtures
// (hand-written maps backing the narrow interface a package needs,
// rather than a mocking framework) so the facade's query surface can
// be exercised without a live database.
type fakeStore struct {
	content  map[string][]byte
	versions map[ids.ContentVersionID]*store.ContentVersion
	files    map[ids.ContentVersionID]map[string]store.File
	playsets map[ids.PlaysetID]*store.Playset
	symbols  []store.Symbol
	refs     []store.Reference
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		content:  map[string][]byte{},
		versions: map[ids.ContentVersionID]*store.ContentVersion{},
		files:    map[ids.ContentVersionID]map[string]store.File{},
		playsets: map[ids.PlaysetID]*store.Playset{},
	}
}

func (f *fakeStore) PutContent(_ context.Context, normalized []byte) (string, error) {
	hash := store.HashContent(normalized)
	f.content[hash] = normalized
	return hash, nil
}

func (f *fakeStore) GetContent(_ context.Context, hash string) ([]byte, error) {
	data, ok := f.content[hash]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (f *fakeStore) CreateContentVersion(_ context.Context, sourceName, versionTag string) (ids.ContentVersionID, error) {
	id := ids.NewContentVersionID()
	f.files[id] = map[string]store.File{}
	f.versions[id] = &store.ContentVersion{ID: id, SourceName: sourceName, VersionTag: versionTag}
	return id, nil
}

func (f *fakeStore) RecordFile(_ context.Context, versionID ids.ContentVersionID, relpath, contentHash string, deleted bool) error {
	f.files[versionID][relpath] = store.File{
		ContentVersionID: versionID,
		RelPath:          relpath,
		ContentHash:      contentHash,
		Deleted:          deleted,
	}
	return nil
}

func (f *fakeStore) VersionRoot(_ context.Context, versionID ids.ContentVersionID) (string, error) {
	var pairs []string
	for relpath, file := range f.files[versionID] {
		pairs = append(pairs, relpath+"\x00"+file.ContentHash)
	}
	sort.Strings(pairs)
	root := store.HashContent([]byte(joinLines(pairs)))
	cv := f.versions[versionID]
	cv.RootHash = root
	return root, nil
}

func joinLines(ss []string) string {
	var out []byte
	for _, s := range ss {
		out = append(out, s...)
		out = append(out, '\n')
	}
	return string(out)
}

func (f *fakeStore) GetContentVersion(_ context.Context, id ids.ContentVersionID) (*store.ContentVersion, error) {
	cv, ok := f.versions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cv, nil
}

func (f *fakeStore) ListFiles(_ context.Context, versionID ids.ContentVersionID) ([]store.File, error) {
	var out []store.File
	for _, file := range f.files[versionID] {
		if file.Deleted {
			continue
		}
		out = append(out, file)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func (f *fakeStore) GetFile(_ context.Context, versionID ids.ContentVersionID, relpath string) (*store.File, error) {
	file, ok := f.files[versionID][relpath]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &file, nil
}

func (f *fakeStore) CreatePlayset(_ context.Context, entries []store.PlaysetEntry) (*store.Playset, error) {
	roots := make([]string, len(entries))
	sealed := make([]store.PlaysetEntry, len(entries))
	for i, e := range entries {
		cv := f.versions[e.ContentVersionID]
		roots[i] = cv.RootHash
		e.RootHash = cv.RootHash
		sealed[i] = e
	}
	p := &store.Playset{
		ID:          ids.NewPlaysetID(),
		PlaysetHash: store.ComputePlaysetHash(roots),
		Entries:     sealed,
	}
	f.playsets[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetPlayset(_ context.Context, id ids.PlaysetID) (*store.Playset, error) {
	p, ok := f.playsets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) InsertSymbols(_ context.Context, symbols []store.Symbol) error {
	f.symbols = append(f.symbols, symbols...)
	return nil
}

func (f *fakeStore) InsertReferences(_ context.Context, refs []store.Reference) error {
	f.refs = append(f.refs, refs...)
	return nil
}

func (f *fakeStore) ListSymbols(_ context.Context, versionIDs []ids.ContentVersionID) ([]store.Symbol, error) {
	wanted := make(map[ids.ContentVersionID]struct{}, len(versionIDs))
	for _, id := range versionIDs {
		wanted[id] = struct{}{}
	}
	var out []store.Symbol
	for _, s := range f.symbols {
		if _, ok := wanted[s.ContentVersionID]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) AllSymbolNames(_ context.Context, versionIDs []ids.ContentVersionID) ([]string, error) {
	wanted := make(map[ids.ContentVersionID]struct{}, len(versionIDs))
	for _, id := range versionIDs {
		wanted[id] = struct{}{}
	}
	seen := map[string]struct{}{}
	var out []string
	for _, s := range f.symbols {
		if _, ok := wanted[s.ContentVersionID]; !ok {
			continue
		}
		if _, dup := seen[s.Name]; dup {
			continue
		}
		seen[s.Name] = struct{}{}
		out = append(out, s.Name)
	}
	return out, nil
}
