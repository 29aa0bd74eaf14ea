// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package modcore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/samber/oops"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/ingest"
	"github.com/modcore/modcore/internal/schema"
	"github.com/modcore/modcore/internal/store"
	"github.com/modcore/modcore/internal/symbols"
)

// Ingest walks rootDir, reads every regular file beneath it, and
// seals the result as a new content version for sourceName at
// versionTag — the orchestration spec.md §4.3's store primitives
// describe but don't tie together themselves (SPEC_FULL.md §11).
// Relpaths are slash-separated and relative to rootDir regardless of
// host OS path separator.
func (e *Engine) Ingest(ctx context.Context, sourceName, versionTag, rootDir string) (*store.ContentVersion, error) {
	files := make(map[string][]byte)

	err := filepath.WalkDir(rootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = data
		return nil
	})
	if err != nil {
		return nil, oops.Code("INGEST_WALK_FAILED").With("root_dir", rootDir).Wrap(err)
	}

	return e.IngestFileSet(ctx, sourceName, versionTag, ingest.FileSet{Files: files})
}

// IngestFileSet seals a new content version from an already-collected
// set of files, skipping the filesystem walk — used when the caller
// already has files in memory (tests, or a host that stages uploads).
// Once the version is sealed, every file matching a registered folder
// schema is parsed and its symbols/references are extracted and
// persisted (spec.md §4.5), so the version is immediately searchable
// and resolvable without a separate indexing pass.
func (e *Engine) IngestFileSet(ctx context.Context, sourceName, versionTag string, fs ingest.FileSet) (*store.ContentVersion, error) {
	cv, err := ingest.Ingest(ctx, e.store, sourceName, versionTag, fs)
	if e.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.IngestFilesTotal.WithLabelValues(sourceName, outcome).Add(float64(len(fs.Files)))
	}
	if err != nil {
		return nil, err
	}

	if err := e.extractAndStoreSymbols(ctx, cv.ID, fs); err != nil {
		return nil, err
	}
	return cv, nil
}

// extractAndStoreSymbols walks every non-deleted file in fs that
// matches a registered folder schema, parses it via the engine's AST
// cache, and persists the symbols and references symbols.Extract
// produces for versionID.
func (e *Engine) extractAndStoreSymbols(ctx context.Context, versionID ids.ContentVersionID, fs ingest.FileSet) error {
	var syms []store.Symbol
	var refs []store.Reference

	for relpath, raw := range fs.Files {
		s := e.registry.Match(relpath)
		if s.Pattern == schema.FallbackPattern {
			continue
		}

		normalized := ingest.Normalize(raw)
		hash := store.HashContent(normalized)
		root := e.parse(normalized, hash, relpath)

		fileSyms, fileRefs := symbols.Extract(root, relpath, s)
		for _, sym := range fileSyms {
			syms = append(syms, store.Symbol{
				SymbolType:       sym.SymbolType,
				Scope:            sym.Scope,
				Name:             sym.Name,
				ContentVersionID: versionID,
				RelPath:          sym.RelPath,
				Line:             sym.Line,
			})
		}
		for _, ref := range fileRefs {
			refs = append(refs, store.Reference{
				RefType:          ref.RefType,
				Name:             ref.Name,
				ContentVersionID: versionID,
				RelPath:          ref.RelPath,
				Line:             ref.Line,
			})
		}
	}

	if err := e.store.InsertSymbols(ctx, syms); err != nil {
		return oops.With("operation", "extract symbols").With("content_version_id", versionID.String()).Wrap(err)
	}
	if err := e.store.InsertReferences(ctx, refs); err != nil {
		return oops.With("operation", "extract references").With("content_version_id", versionID.String()).Wrap(err)
	}
	return nil
}
