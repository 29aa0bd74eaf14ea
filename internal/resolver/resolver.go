// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package resolver groups a folder's contributions across a playset's
// load order, applies the folder's merge policy, and emits the
// resulting ResolvedUnits and ConflictUnits (spec.md §4.7).
package resolver

import (
	"sort"

	"github.com/modcore/modcore/internal/policy"
	"github.com/modcore/modcore/internal/schema"
	"github.com/modcore/modcore/internal/script"
)

// FileInput is one parsed file under consideration for a folder
// resolution: which source supplied it, where it sits in the
// playset's load order, and its relpath (which governs intra-version
// ordering when a mod spreads a folder across multiple files).
type FileInput struct {
	SourceID        string
	PlaysetPosition int
	RelPath         string
	Root            *script.Root
}

// ResolvedUnit is the resolver's output for one unit_key within a
// folder: the winning contribution, the ordered losers, and the
// policy that produced the outcome.
type ResolvedUnit struct {
	Folder       string
	UnitKey      string
	Policy       policy.Kind
	Winner       policy.Contribution
	Losers       []policy.Contribution
	Residual     script.Node
	ResidualKeys []policy.KeyResolution
}

// ConflictUnit groups the contributions competing for one unit_key.
// Under PER_KEY_OVERRIDE that unit_key is already one atomic key
// within its file (spec.md §4.7 point 5: "conflicts are per key, not
// per unit") — the atomicity comes from how the folder schema's
// ExtractUnits splits the file, not from a second split here.
type ConflictUnit struct {
	Folder        string
	UnitKey       string
	Policy        policy.Kind
	Contributions []policy.Contribution
}

// ResolveFolder resolves every unit_key s.ExtractUnits finds across
// files, after ordering files by playset position (ascending = later
// in load order) and, within one position, by relpath lexicographic
// order. Resolution is deterministic: the same files in the same
// order always produce ResolvedUnits and ConflictUnits in the same
// order, with the same losers[] ordering.
func ResolveFolder(s schema.FolderSchema, files []FileInput) ([]ResolvedUnit, []ConflictUnit) {
	sorted := make([]FileInput, len(files))
	copy(sorted, files)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PlaysetPosition != sorted[j].PlaysetPosition {
			return sorted[i].PlaysetPosition < sorted[j].PlaysetPosition
		}
		return sorted[i].RelPath < sorted[j].RelPath
	})

	byUnit := make(map[string][]policy.Contribution)
	var unitOrder []string

	for loadOrderIndex, f := range sorted {
		for _, u := range s.ExtractUnits(f.Root) {
			c := policy.Contribution{
				SourceID:       f.SourceID,
				LoadOrderIndex: loadOrderIndex,
				UnitKey:        u.Key,
				RelPath:        f.RelPath,
				AST:            u.Node,
			}
			if _, seen := byUnit[u.Key]; !seen {
				unitOrder = append(unitOrder, u.Key)
			}
			byUnit[u.Key] = append(byUnit[u.Key], c)
		}
	}

	resolved := make([]ResolvedUnit, 0, len(unitOrder))
	var conflicts []ConflictUnit

	for _, key := range unitOrder {
		contributions := byUnit[key]

		// s.ExtractUnits already splits PER_KEY_OVERRIDE folders
		// (defines, localization) down to one already-atomic key per
		// unit_key, so resolving one is last-load-order-wins, same as
		// OVERRIDE — the "per key, not per unit" behavior spec.md
		// §4.7 point 5 describes comes from that atomic grouping, not
		// from a second split inside the policy. ResidualKeys still
		// carries one entry mirroring Winner/Losers so callers that
		// read it don't need to special-case the atomic vs.
		// multi-key-container shape internal/policy also supports.
		applyKind := s.Policy
		if s.Policy == policy.PerKeyOverride {
			applyKind = policy.Override
		}
		result := policy.Apply(applyKind, contributions)

		residualKeys := result.ResidualKeys
		if s.Policy == policy.PerKeyOverride {
			residualKeys = []policy.KeyResolution{{
				Key:            key,
				Value:          result.Residual,
				SourceID:       result.Winner.SourceID,
				LoadOrderIndex: result.Winner.LoadOrderIndex,
				Losers:         result.Losers,
			}}
		}

		resolved = append(resolved, ResolvedUnit{
			Folder:       s.Pattern,
			UnitKey:      key,
			Policy:       s.Policy,
			Winner:       result.Winner,
			Losers:       result.Losers,
			Residual:     result.Residual,
			ResidualKeys: residualKeys,
		})

		if len(contributions) > 1 {
			conflicts = append(conflicts, ConflictUnit{
				Folder:        s.Pattern,
				UnitKey:       key,
				Policy:        s.Policy,
				Contributions: contributions,
			})
		}
	}

	return resolved, conflicts
}
