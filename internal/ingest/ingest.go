// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package ingest orchestrates the sequence spec.md's §4.3 store
// primitives describe but never ties together: given a source name, a
// version tag, and the bytes of every file a source supplies, it
// normalizes each file, computes its content hash, records its
// membership, and seals the resulting content version by computing
// its root hash.
package ingest

import (
	"context"
	"log/slog"
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/store"
)

// ContentStore is the subset of *store.ContentStore Ingest needs,
// narrowed to an interface so callers can substitute a fake in tests
// without a database.
type ContentStore interface {
	PutContent(ctx context.Context, normalized []byte) (string, error)
	CreateContentVersion(ctx context.Context, sourceName, versionTag string) (ids.ContentVersionID, error)
	RecordFile(ctx context.Context, versionID ids.ContentVersionID, relpath, contentHash string, deleted bool) error
	VersionRoot(ctx context.Context, versionID ids.ContentVersionID) (string, error)
	GetContentVersion(ctx context.Context, id ids.ContentVersionID) (*store.ContentVersion, error)
}

// FileSet is the raw input for one source: every relpath a source
// supplies, and the relpaths it deletes relative to an earlier
// version of the same source (spec.md §3: "a file is deleted in
// version v+1").
type FileSet struct {
	Files   map[string][]byte
	Deleted []string
}

// Ingest walks fs, normalizes every file's bytes, stores them
// content-addressed, records file membership for versionID's content
// version, and seals it by computing its root hash. Files are
// processed in lexicographic relpath order so logging and partial
// failure are deterministic and reproducible.
func Ingest(ctx context.Context, cs ContentStore, sourceName, versionTag string, fs FileSet) (*store.ContentVersion, error) {
	if _, err := semver.NewVersion(versionTag); err != nil {
		return nil, oops.Code("INVALID_VERSION_TAG").With("source", sourceName).With("version_tag", versionTag).Wrap(err)
	}

	versionID, err := cs.CreateContentVersion(ctx, sourceName, versionTag)
	if err != nil {
		return nil, oops.With("operation", "ingest").With("source", sourceName).Wrap(err)
	}

	relpaths := make([]string, 0, len(fs.Files))
	for relpath := range fs.Files {
		relpaths = append(relpaths, relpath)
	}
	sort.Strings(relpaths)

	for _, relpath := range relpaths {
		normalized := Normalize(fs.Files[relpath])
		hash, err := cs.PutContent(ctx, normalized)
		if err != nil {
			return nil, oops.With("operation", "ingest").With("relpath", relpath).Wrap(err)
		}
		if err := cs.RecordFile(ctx, versionID, relpath, hash, false); err != nil {
			return nil, oops.With("operation", "ingest").With("relpath", relpath).Wrap(err)
		}
		slog.Debug("ingested file", "source", sourceName, "relpath", relpath, "hash", hash)
	}

	deleted := append([]string(nil), fs.Deleted...)
	sort.Strings(deleted)
	for _, relpath := range deleted {
		if err := cs.RecordFile(ctx, versionID, relpath, "", true); err != nil {
			return nil, oops.With("operation", "ingest").With("relpath", relpath).Wrap(err)
		}
	}

	if _, err := cs.VersionRoot(ctx, versionID); err != nil {
		return nil, oops.With("operation", "ingest").With("source", sourceName).Wrap(err)
	}

	cv, err := cs.GetContentVersion(ctx, versionID)
	if err != nil {
		return nil, oops.With("operation", "ingest").With("source", sourceName).Wrap(err)
	}
	slog.Info("sealed content version", "source", sourceName, "version_tag", versionTag, "root_hash", cv.RootHash, "files", len(relpaths))
	return cv, nil
}

// Normalize applies the script-file byte normalization spec.md §6
// mandates before hashing: a leading UTF-8 BOM is stripped, and CR
// bytes are removed so that CRLF and LF line endings hash identically.
func Normalize(raw []byte) []byte {
	raw = stripBOM(raw)
	out := make([]byte, 0, len(raw))
	for _, b := range raw {
		if b == '\r' {
			continue
		}
		out = append(out, b)
	}
	return out
}

var bom = []byte{0xEF, 0xBB, 0xBF}

func stripBOM(raw []byte) []byte {
	if len(raw) >= 3 && raw[0] == bom[0] && raw[1] == bom[1] && raw[2] == bom[2] {
		return raw[3:]
	}
	return raw
}
