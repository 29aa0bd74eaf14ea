// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package modcore

import (
	"context"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/playset"
	"github.com/modcore/modcore/internal/store"
)

// BuildPlayset assembles and persists a playset from an ordered list
// of (content version, role) pairs, the base game first (spec.md §3,
// SPEC_FULL.md §11).
func (e *Engine) BuildPlayset(ctx context.Context, elements []playset.Element) (*store.Playset, error) {
	return playset.BuildPlayset(ctx, e.store, elements)
}

// PlaysetIdentity returns the playset's stable hash — SHA-256 of the
// ordered list of its content versions' root hashes (spec.md §3).
func (e *Engine) PlaysetIdentity(ctx context.Context, id ids.PlaysetID) (string, error) {
	p, err := e.store.GetPlayset(ctx, id)
	if err != nil {
		return "", err
	}
	return p.PlaysetHash, nil
}

// DetectDrift reports whether a playset's recorded identity still
// matches the current root hashes of the content versions it
// references (spec.md §7 item 5, §8 scenario 6).
func (e *Engine) DetectDrift(ctx context.Context, id ids.PlaysetID) (*playset.Drift, error) {
	return playset.DetectDrift(ctx, e.store, id)
}
