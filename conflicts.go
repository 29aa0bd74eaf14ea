// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package modcore

import (
	"context"

	"github.com/samber/oops"

	"github.com/modcore/modcore/internal/conflict"
	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/policy"
	"github.com/modcore/modcore/internal/resolver"
	"github.com/modcore/modcore/internal/schema"
	"github.com/modcore/modcore/internal/script"
)

// ConflictReport pairs a resolver.ConflictUnit with the advisory risk
// analysis spec.md §4.7/§8 describes.
type ConflictReport struct {
	Folder          string
	UnitKey         string
	Policy          policy.Kind
	Contributions   []policy.Contribution
	RiskScore       int
	MergeCapability string
	Uncertainty     string
}

// GetConflicts resolves folderPattern for playsetID and scores every
// resulting conflict unit.
func (e *Engine) GetConflicts(ctx context.Context, playsetID ids.PlaysetID, folderPattern string) ([]ConflictReport, error) {
	s, ok := e.registry.Lookup(folderPattern)
	if !ok {
		return nil, oops.Code("UNKNOWN_FOLDER_PATTERN").With("pattern", folderPattern).
			Errorf("folder pattern %q is not registered", folderPattern)
	}

	_, conflicts, err := e.Resolve(ctx, playsetID, folderPattern)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, nil
	}

	versionIDs, err := e.playsetVersionIDs(ctx, playsetID)
	if err != nil {
		return nil, err
	}
	known, err := e.store.AllSymbolNames(ctx, versionIDs)
	if err != nil {
		return nil, oops.With("operation", "get conflicts").Wrap(err)
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, n := range known {
		knownSet[n] = struct{}{}
	}

	reports := make([]ConflictReport, 0, len(conflicts))
	for _, cu := range conflicts {
		in := conflict.Input{
			Domain:                 s.SymbolType,
			ContributionCount:      len(cu.Contributions),
			EffectBlockReplacement: effectBlockReplacement(s, cu),
			Policy:                 cu.Policy,
		}
		for _, c := range cu.Contributions {
			for _, name := range referencedNames(c.AST, s.References) {
				if _, ok := knownSet[name]; !ok {
					in.UnknownReferenceIntroduced = true
				}
			}
		}

		score := conflict.Score(in)
		reports = append(reports, ConflictReport{
			Folder:          cu.Folder,
			UnitKey:         cu.UnitKey,
			Policy:          cu.Policy,
			Contributions:   cu.Contributions,
			RiskScore:       score,
			MergeCapability: conflict.MergeCapability(in),
			Uncertainty:     conflict.Uncertainty(score),
		})
	}
	return reports, nil
}

// effectBlockReplacement reports whether any contribution to a
// conflict is a block-valued definition — the hotspot spec.md §4.7/§8
// calls out. It does not consult the folder schema, so it fires for
// block-valued conflicts in every folder, not only effect-bearing ones
// (on_action, scripted_effect and similar). It fires regardless of
// merge policy: under OVERRIDE/FIOS a
// later contribution discards the earlier block outright, while under
// CONTAINER_MERGE the blocks are merged rather than discarded, but
// conflicting effect logic carries the same operational risk either
// way (spec.md §8 scenario 2 pins this for an on_action CONTAINER_MERGE
// conflict).
func effectBlockReplacement(_ schema.FolderSchema, cu resolver.ConflictUnit) bool {
	for _, c := range cu.Contributions {
		if _, ok := c.AST.(*script.Block); ok {
			return true
		}
	}
	return false
}

// referencedNames walks node looking for assignments named one of
// patterns' child keys and collects the scalar names they reference —
// the same shape symbols.Extract uses to emit references, applied
// here to a single contribution's subtree to test conflict risk's
// "unknown reference introduced" hotspot.
func referencedNames(node script.Node, patterns []schema.ReferencePattern) []string {
	if len(patterns) == 0 {
		return nil
	}
	childKeys := make(map[string]struct{}, len(patterns))
	for _, p := range patterns {
		childKeys[p.ChildKey] = struct{}{}
	}

	var out []string
	var walk func(n script.Node)
	walk = func(n script.Node) {
		switch v := n.(type) {
		case *script.Block:
			for _, e := range v.Entries {
				walk(e)
			}
		case *script.Assignment:
			if _, ok := childKeys[v.Name]; ok {
				out = append(out, scalarNames(v.Value)...)
			}
			walk(v.Value)
		}
	}
	walk(node)
	return out
}

func scalarNames(n script.Node) []string {
	switch v := n.(type) {
	case *script.Scalar:
		return []string{v.Value}
	case *script.Block:
		var out []string
		for _, e := range v.Entries {
			if sc, ok := e.(*script.Scalar); ok {
				out = append(out, sc.Value)
			}
		}
		return out
	default:
		return nil
	}
}

// playsetVersionIDs returns the content version ids a playset
// references, in load order.
func (e *Engine) playsetVersionIDs(ctx context.Context, playsetID ids.PlaysetID) ([]ids.ContentVersionID, error) {
	p, err := e.store.GetPlayset(ctx, playsetID)
	if err != nil {
		return nil, oops.With("operation", "playset version ids").With("playset_id", playsetID.String()).Wrap(err)
	}
	out := make([]ids.ContentVersionID, len(p.Entries))
	for i, entry := range p.Entries {
		out[i] = entry.ContentVersionID
	}
	return out, nil
}
