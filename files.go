// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package modcore

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/store"
)

// GetFileAt returns the bytes a single content version records for
// relpath, or store.ErrNotFound if that version never mentions it.
func (e *Engine) GetFileAt(ctx context.Context, versionID ids.ContentVersionID, relpath string) ([]byte, error) {
	f, err := e.store.GetFile(ctx, versionID, relpath)
	if err != nil {
		return nil, err
	}
	if f.Deleted {
		return nil, store.ErrNotFound
	}
	return e.store.GetContent(ctx, f.ContentHash)
}

// GetFile resolves relpath against a playset's load order: the
// highest-load-order content version that records anything for
// relpath — present or deleted — determines the answer, matching the
// same load-order precedence the resolver applies to folder contents
// (spec.md §4.7 item 2).
func (e *Engine) GetFile(ctx context.Context, playsetID ids.PlaysetID, relpath string) ([]byte, error) {
	p, err := e.store.GetPlayset(ctx, playsetID)
	if err != nil {
		return nil, oops.With("operation", "get file").With("playset_id", playsetID.String()).Wrap(err)
	}

	for i := len(p.Entries) - 1; i >= 0; i-- {
		entry := p.Entries[i]
		f, err := e.store.GetFile(ctx, entry.ContentVersionID, relpath)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, oops.With("operation", "get file").With("relpath", relpath).Wrap(err)
		}
		if f.Deleted {
			return nil, store.ErrNotFound
		}
		return e.store.GetContent(ctx, f.ContentHash)
	}

	return nil, store.ErrNotFound
}
