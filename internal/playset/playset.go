// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package playset builds playsets from ordered content versions and
// detects drift between a playset's recorded identity and the current
// state of the content versions it references (spec.md §3 Playset,
// §7 item 5, §8 scenario 6).
package playset

import (
	"context"
	"errors"

	"github.com/samber/oops"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/store"
)

// ErrPlaysetDrift names the playset_drift outcome: the playset's
// recorded hash no longer matches the current root hashes of its
// content versions. DetectDrift does not return it; it reports drift
// through Drift.Drifted, with Drift carrying the detail, and a nil error.
var ErrPlaysetDrift = errors.New("playset_drift")

// ErrNotBaseFirst is returned when BuildPlayset's entries don't place
// a store.RoleBase version at position zero, violating spec.md §3's
// "the base-game version is element zero" invariant.
var ErrNotBaseFirst = errors.New("base-game version must be element zero")

// ContentStore is the subset of *store.ContentStore playset needs.
type ContentStore interface {
	CreatePlayset(ctx context.Context, entries []store.PlaysetEntry) (*store.Playset, error)
	GetPlayset(ctx context.Context, id ids.PlaysetID) (*store.Playset, error)
	GetContentVersion(ctx context.Context, id ids.ContentVersionID) (*store.ContentVersion, error)
}

// Element is one input to BuildPlayset: a content version and the role
// it plays in the load order, in the order the caller wants them
// loaded.
type Element struct {
	ContentVersionID ids.ContentVersionID
	Role             store.PlaysetRole
}

// BuildPlayset assembles a Playset from an ordered list of (content
// version, role) pairs (SPEC_FULL.md §11), validating that the base
// game occupies load-order position zero before delegating to the
// store.
func BuildPlayset(ctx context.Context, cs ContentStore, elements []Element) (*store.Playset, error) {
	if len(elements) == 0 {
		return nil, oops.Code("EMPTY_PLAYSET").Errorf("a playset must contain at least one content version")
	}
	if elements[0].Role != store.RoleBase {
		return nil, oops.Code("PLAYSET_BASE_NOT_FIRST").Wrap(ErrNotBaseFirst)
	}

	entries := make([]store.PlaysetEntry, len(elements))
	for i, e := range elements {
		entries[i] = store.PlaysetEntry{
			Position:         i,
			ContentVersionID: e.ContentVersionID,
			Role:             e.Role,
		}
	}

	p, err := cs.CreatePlayset(ctx, entries)
	if err != nil {
		return nil, oops.With("operation", "build playset").Wrap(err)
	}
	return p, nil
}

// ChangedVersion describes one content version whose current root
// hash no longer matches the root hash recorded when the playset was
// built.
type ChangedVersion struct {
	Position         int
	ContentVersionID ids.ContentVersionID
	OldRootHash      string
	NewRootHash      string
}

// Drift is DetectDrift's result: whether the playset's recorded hash
// still matches its content versions' current roots, and which
// versions changed if not.
type Drift struct {
	Drifted        bool
	OldHash        string
	NewHash        string
	ChangedEntries []ChangedVersion
}

// DetectDrift recomputes the playset hash from its content versions'
// current root hashes and compares it against the hash recorded at
// build time. A content version's root hash only changes if its
// source gained or lost files and was resealed after the playset was
// built (spec.md §8 scenario 6: "a mod at load order 3 gains a
// file"). DetectDrift never errors on drift itself — drift is a
// normal, expected outcome reported in the return value — but an
// error querying the store is propagated, wrapped with the operation
// and the id of the playset or content version that failed.
func DetectDrift(ctx context.Context, cs ContentStore, playsetID ids.PlaysetID) (*Drift, error) {
	p, err := cs.GetPlayset(ctx, playsetID)
	if err != nil {
		return nil, oops.With("operation", "detect drift").With("playset_id", playsetID.String()).Wrap(err)
	}

	result := &Drift{OldHash: p.PlaysetHash}
	roots := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		cv, err := cs.GetContentVersion(ctx, e.ContentVersionID)
		if err != nil {
			return nil, oops.With("operation", "detect drift").
				With("content_version_id", e.ContentVersionID.String()).Wrap(err)
		}
		roots[i] = cv.RootHash
		if cv.RootHash != e.RootHash {
			result.ChangedEntries = append(result.ChangedEntries, ChangedVersion{
				Position:         e.Position,
				ContentVersionID: e.ContentVersionID,
				OldRootHash:      e.RootHash,
				NewRootHash:      cv.RootHash,
			})
		}
	}

	result.NewHash = store.ComputePlaysetHash(roots)
	result.Drifted = result.NewHash != result.OldHash
	return result, nil
}
