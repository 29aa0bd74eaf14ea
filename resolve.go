// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package modcore

import (
	"context"
	"sort"
	"time"

	"github.com/samber/oops"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/resolver"
	"github.com/modcore/modcore/internal/schema"
)

// Resolve resolves one registered folder pattern (e.g.
// "common/traits/*") across every content version in playsetID's
// load order, applying the folder's merge policy (spec.md §4.7).
func (e *Engine) Resolve(ctx context.Context, playsetID ids.PlaysetID, folderPattern string) ([]resolver.ResolvedUnit, []resolver.ConflictUnit, error) {
	s, ok := e.registry.Lookup(folderPattern)
	if !ok {
		return nil, nil, oops.Code("UNKNOWN_FOLDER_PATTERN").With("pattern", folderPattern).
			Errorf("folder pattern %q is not registered", folderPattern)
	}

	inputs, err := e.collectFolderInputs(ctx, playsetID, s)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	resolved, conflicts := resolver.ResolveFolder(s, inputs)
	e.recordResolveDuration(s, start)
	return resolved, conflicts, nil
}

// recordResolveDuration observes a folder's resolution wall time
// against the resolve-duration histogram, when metrics are attached.
func (e *Engine) recordResolveDuration(s schema.FolderSchema, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.ResolveDuration.WithLabelValues(s.Pattern, s.Policy.String()).Observe(time.Since(start).Seconds())
}

// ResolveAll resolves every registered folder pattern for a playset in
// parallel, bounded by the engine's configured worker count (spec.md
// §5: "parallelism is bounded by a fixed worker count configured by
// the host").
func (e *Engine) ResolveAll(ctx context.Context, playsetID ids.PlaysetID) ([]resolver.FolderResult, error) {
	var jobs []resolver.FolderJob
	for _, s := range e.registry.Schemas() {
		inputs, err := e.collectFolderInputs(ctx, playsetID, s)
		if err != nil {
			return nil, err
		}
		if len(inputs) == 0 {
			continue
		}
		jobs = append(jobs, resolver.FolderJob{Schema: s, Files: inputs})
	}
	return resolver.ResolveAll(ctx, jobs, e.workers), nil
}

// collectFolderInputs loads every file matching s across playsetID's
// content versions, in playset load order, and parses each via the
// engine's AST cache.
func (e *Engine) collectFolderInputs(ctx context.Context, playsetID ids.PlaysetID, s schema.FolderSchema) ([]resolver.FileInput, error) {
	p, err := e.store.GetPlayset(ctx, playsetID)
	if err != nil {
		return nil, oops.With("operation", "resolve").With("playset_id", playsetID.String()).Wrap(err)
	}

	var inputs []resolver.FileInput
	for _, entry := range p.Entries {
		files, err := e.store.ListFiles(ctx, entry.ContentVersionID)
		if err != nil {
			return nil, oops.With("operation", "resolve").
				With("content_version_id", entry.ContentVersionID.String()).Wrap(err)
		}
		sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })

		for _, f := range files {
			if classified := e.registry.Match(f.RelPath); classified.Pattern != s.Pattern {
				continue
			}

			content, err := e.store.GetContent(ctx, f.ContentHash)
			if err != nil {
				return nil, oops.With("operation", "resolve").With("relpath", f.RelPath).Wrap(err)
			}
			root := e.parse(content, f.ContentHash, f.RelPath)

			inputs = append(inputs, resolver.FileInput{
				SourceID:        entry.ContentVersionID.String(),
				PlaysetPosition: entry.Position,
				RelPath:         f.RelPath,
				Root:            root,
			})
		}
	}

	return inputs, nil
}
