// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package policy

// keyContribution pairs one contribution's overall source identity
// with the specific assignment it made for one key.
type keyContribution struct {
	contribution Contribution
	key          string
	value        Contribution
}

// applyPerKeyOverride treats each contribution's AST as a flat map
// from assignment name to value; each key resolves independently,
// last-load-order-wins, regardless of how other keys in the same file
// resolved.
func applyPerKeyOverride(contributions []Contribution) Result {
	perKey := make(map[string][]Contribution)
	order := make([]string, 0)

	for _, c := range contributions {
		for _, a := range assignmentsOf(c.AST) {
			leaf := Contribution{
				SourceID:       c.SourceID,
				LoadOrderIndex: c.LoadOrderIndex,
				UnitKey:        a.Name,
				RelPath:        c.RelPath,
				AST:            a.Value,
			}
			if _, seen := perKey[a.Name]; !seen {
				order = append(order, a.Name)
			}
			perKey[a.Name] = append(perKey[a.Name], leaf)
		}
	}

	resolutions := make([]KeyResolution, 0, len(order))
	for _, key := range order {
		leaves := perKey[key]
		winner := leaves[0]
		for _, l := range leaves[1:] {
			if l.LoadOrderIndex > winner.LoadOrderIndex {
				winner = l
			}
		}
		losers := make([]Contribution, 0, len(leaves)-1)
		for _, l := range leaves {
			if l.SourceID == winner.SourceID && l.LoadOrderIndex == winner.LoadOrderIndex {
				continue
			}
			losers = append(losers, l)
		}
		resolutions = append(resolutions, KeyResolution{
			Key:            key,
			Value:          winner.AST,
			SourceID:       winner.SourceID,
			LoadOrderIndex: winner.LoadOrderIndex,
			Losers:         losers,
		})
	}

	return Result{
		Policy:       PerKeyOverride,
		ResidualKeys: resolutions,
	}
}
