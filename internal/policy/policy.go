// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package policy implements the four merge policies that decide, for a
// set of competing definitions of the same unit_key, which contribution
// wins and what the merged result looks like.
package policy

import (
	"github.com/modcore/modcore/internal/script"
)

// Kind identifies one of the four closed-set merge policies. New
// policies are a deliberate schema change, not an open extension
// point, so Kind is an enum rather than a registered-plugin interface.
type Kind int

const (
	Override Kind = iota
	ContainerMerge
	PerKeyOverride
	FIOS
)

func (k Kind) String() string {
	switch k {
	case Override:
		return "OVERRIDE"
	case ContainerMerge:
		return "CONTAINER_MERGE"
	case PerKeyOverride:
		return "PER_KEY_OVERRIDE"
	case FIOS:
		return "FIOS"
	default:
		return "UNKNOWN"
	}
}

// Contribution is one source's definition of a unit_key: the AST
// subtree it supplied, tagged with the source identity and its
// position in load order.
type Contribution struct {
	SourceID       string
	LoadOrderIndex int
	UnitKey        string
	RelPath        string
	AST            script.Node
}

// KeyResolution is one entry of a PER_KEY_OVERRIDE residual: the value
// that won for a single key, which contribution supplied it, and the
// other contributions (in load order) that also defined the key —
// the provenance chain.
type KeyResolution struct {
	Key            string
	Value          script.Node
	SourceID       string
	LoadOrderIndex int
	Losers         []Contribution
}

// Result is the output of applying a policy to a contribution set.
// Residual is the materialized merge result: identical to Winner.AST
// for OVERRIDE/FIOS, a synthesized *script.Block for CONTAINER_MERGE,
// or a []KeyResolution (wrapped as ResidualKeys) for PER_KEY_OVERRIDE.
type Result struct {
	Policy       Kind
	Winner       Contribution
	Losers       []Contribution
	Residual     script.Node
	ResidualKeys []KeyResolution
}

// Apply dispatches contributions to the policy implementation named by
// kind. Contributions must already be ordered by load order index
// ascending; Apply does not re-sort them.
func Apply(kind Kind, contributions []Contribution) Result {
	switch kind {
	case ContainerMerge:
		return applyContainerMerge(contributions)
	case PerKeyOverride:
		return applyPerKeyOverride(contributions)
	case FIOS:
		return applyFIOS(contributions)
	default:
		return applyOverride(contributions)
	}
}
