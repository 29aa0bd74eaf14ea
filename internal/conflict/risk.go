// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package conflict computes the advisory risk score, merge
// capability, and uncertainty classification for a ConflictUnit
// (spec.md §4.7, §8). These are pure functions over small inputs; no
// AST or store access is needed once the resolver has already
// determined which contributions collide.
package conflict

import "github.com/modcore/modcore/internal/policy"

// domainWeight is component (a) of the risk formula: how much trouble
// a bad merge in this symbol_type tends to cause at runtime.
var domainWeight = map[string]int{
	"on_action":        30,
	"event":            25,
	"decision":         25,
	"tradition":        20,
	"culture":          20,
	"faith":            20,
	"trait":            15,
	"building":         15,
	"interaction":      15,
	"government":       15,
	"law":              15,
	"modifier":         10,
	"define":           10,
	"gui_type":         10,
	"gui_template":     10,
	"unknown":          10,
	"localization_key": 5,
}

const (
	// perExtraContributionWeight is component (b): risk added per
	// competing contribution beyond the first two.
	perExtraContributionWeight = 10

	// Component (c) hotspot flag weights.
	effectBlockReplacementWeight = 20
	renamePatternWeight          = 15
	unknownReferenceWeight       = 25

	// Component (d) policy severity weights.
	severityWinnerOnly  = 25
	severityGuidedMerge = 0
	severityAIMerge     = 10
)

// Input bundles the facts the risk formula needs about one conflict.
type Input struct {
	Domain                     string
	ContributionCount          int
	EffectBlockReplacement     bool
	RenamePatternDetected      bool
	UnknownReferenceIntroduced bool
	Policy                     policy.Kind
}

// Score computes the advisory risk score in [0,100]. The formula is
// score = domain_weight + beyond_two_weight + hotspot_weight +
// severity_weight, clamped to 100. For domain on_action, two
// contributions, an effect-block replacement, and no unknown
// reference under CONTAINER_MERGE, this reproduces the pinned value
// 30 + 0 + 20 + 0 = 50 (spec.md §8).
func Score(in Input) int {
	score := domainWeight[in.Domain]

	if in.ContributionCount > 2 {
		score += (in.ContributionCount - 2) * perExtraContributionWeight
	}

	if in.EffectBlockReplacement {
		score += effectBlockReplacementWeight
	}
	if in.RenamePatternDetected {
		score += renamePatternWeight
	}
	if in.UnknownReferenceIntroduced {
		score += unknownReferenceWeight
	}

	score += severityWeight(MergeCapability(in))

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

func severityWeight(capability string) int {
	switch capability {
	case "winner_only":
		return severityWinnerOnly
	case "ai_merge":
		return severityAIMerge
	default:
		return severityGuidedMerge
	}
}

// MergeCapability classifies how automatable resolving this conflict
// is. A policy that picks one contribution wholesale (OVERRIDE, FIOS)
// can never do better than winner_only: the loser's content is
// entirely discarded. CONTAINER_MERGE and PER_KEY_OVERRIDE already
// perform a structural merge, so a human only needs to guide it.
// Introducing a reference to an undefined symbol escalates any policy
// to ai_merge: the merge is structurally fine but semantically
// suspect enough to warrant assisted review.
func MergeCapability(in Input) string {
	if in.UnknownReferenceIntroduced {
		return "ai_merge"
	}
	switch in.Policy {
	case policy.ContainerMerge, policy.PerKeyOverride:
		return "guided_merge"
	default:
		return "winner_only"
	}
}

// Uncertainty buckets a risk score into the closed set spec.md §3
// defines for ConflictUnit.
func Uncertainty(score int) string {
	switch {
	case score >= 75:
		return "high"
	case score >= 50:
		return "medium"
	case score >= 25:
		return "low"
	default:
		return "none"
	}
}
