// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package resolver

import (
	"context"
	"sync"

	"github.com/modcore/modcore/internal/schema"
)

// FolderJob is one folder's worth of resolution work: its schema and
// the files that matched it.
type FolderJob struct {
	Schema schema.FolderSchema
	Files  []FileInput
}

// FolderResult is ResolveFolder's output for one FolderJob.
type FolderResult struct {
	Folder    string
	Resolved  []ResolvedUnit
	Conflicts []ConflictUnit
}

// ResolveAll fans jobs out across a bounded pool of workers — the
// parser, extractor, and resolver are pure functions, so the only
// coordination needed is distributing work and collecting results
// (spec.md §5: "parallelism is bounded by a fixed worker count
// configured by the host"). Worker interleaving never affects the
// result: each job writes only to its own slot, and ResolveFolder
// itself is deterministic given its inputs.
//
// Cancelling ctx stops handing out new jobs and discards results for
// jobs not yet started; jobs already in flight run to completion.
func ResolveAll(ctx context.Context, jobs []FolderJob, workers int) []FolderResult {
	if workers < 1 {
		workers = 1
	}

	results := make([]FolderResult, len(jobs))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexes {
				job := jobs[idx]
				resolved, conflicts := ResolveFolder(job.Schema, job.Files)
				results[idx] = FolderResult{
					Folder:    job.Schema.Pattern,
					Resolved:  resolved,
					Conflicts: conflicts,
				}
			}
		}()
	}

	go func() {
		defer close(indexes)
		for i := range jobs {
			select {
			case indexes <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	return results
}
