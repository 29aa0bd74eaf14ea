// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modcore/modcore/internal/script"
)

func parseValue(t *testing.T, src string) script.Node {
	t.Helper()
	root := script.Parse([]byte(src), "test")
	require.Len(t, root.Entries, 1)
	assign, ok := root.Entries[0].(*script.Assignment)
	require.True(t, ok)
	return assign.Value
}

// TestApply_Override_TraitOverrideChain reproduces spec scenario 1:
// base defines brave={index=42}, mod A (order 1) overrides to
// index=99, mod B (order 2) defines nothing.
func TestApply_Override_TraitOverrideChain(t *testing.T) {
	base := Contribution{SourceID: "base_game", LoadOrderIndex: 0, UnitKey: "brave", AST: parseValue(t, "brave = { index = 42 }")}
	modA := Contribution{SourceID: "mod_a", LoadOrderIndex: 1, UnitKey: "brave", AST: parseValue(t, "brave = { index = 99 }")}

	result := Apply(Override, []Contribution{base, modA})
	assert.Equal(t, "mod_a", result.Winner.SourceID)
	require.Len(t, result.Losers, 1)
	assert.Equal(t, "base_game", result.Losers[0].SourceID)
	assert.Same(t, modA.AST, result.Residual)
}

func TestApply_Override_ResidualIsWinnerASTBitExact(t *testing.T) {
	base := Contribution{SourceID: "base", LoadOrderIndex: 0, AST: parseValue(t, "x = 1")}
	mod := Contribution{SourceID: "mod", LoadOrderIndex: 1, AST: parseValue(t, "x = 2")}
	result := Apply(Override, []Contribution{base, mod})
	assert.Equal(t, script.Serialize(mod.AST), script.Serialize(result.Residual))
}

// TestApply_ContainerMerge_OnActionPipeline reproduces spec scenario 2.
func TestApply_ContainerMerge_OnActionPipeline(t *testing.T) {
	base := Contribution{
		SourceID: "base_game", LoadOrderIndex: 0, UnitKey: "on_yearly_pulse",
		AST: parseValue(t, "on_yearly_pulse = { effect = { base_effect = yes } }"),
	}
	modA := Contribution{
		SourceID: "mod_a", LoadOrderIndex: 1, UnitKey: "on_yearly_pulse",
		AST: parseValue(t, "on_yearly_pulse = { effect = { mod_a_effect = yes } }"),
	}

	result := Apply(ContainerMerge, []Contribution{base, modA})
	require.NotNil(t, result.Residual)
	assert.Equal(t, "{effect = {base_effect = yes mod_a_effect = yes}}", script.Serialize(result.Residual))
}

func TestApply_FIOS_GUIType(t *testing.T) {
	base := Contribution{SourceID: "base_game", LoadOrderIndex: 0, UnitKey: "character_window", AST: parseValue(t, "character_window = { a = 1 }")}
	modA := Contribution{SourceID: "mod_a", LoadOrderIndex: 1, UnitKey: "character_window", AST: parseValue(t, "character_window = { a = 2 }")}
	modB := Contribution{SourceID: "mod_b", LoadOrderIndex: 2, UnitKey: "character_window", AST: parseValue(t, "character_window = { a = 3 }")}

	result := Apply(FIOS, []Contribution{base, modA, modB})
	assert.Equal(t, "base_game", result.Winner.SourceID)
	require.Len(t, result.Losers, 2)
}

func TestApply_FIOS_LowestLoadOrderWinsRegardlessOfInputOrder(t *testing.T) {
	a := Contribution{SourceID: "a", LoadOrderIndex: 3, AST: parseValue(t, "x = 1")}
	b := Contribution{SourceID: "b", LoadOrderIndex: 1, AST: parseValue(t, "x = 2")}
	c := Contribution{SourceID: "c", LoadOrderIndex: 2, AST: parseValue(t, "x = 3")}

	result := Apply(FIOS, []Contribution{a, b, c})
	assert.Equal(t, "b", result.Winner.SourceID)
}

// TestApply_PerKeyOverride_Localization reproduces spec scenario 3.
func TestApply_PerKeyOverride_Localization(t *testing.T) {
	modA := Contribution{SourceID: "mod_a", LoadOrderIndex: 1, AST: script.Parse([]byte(`brave = "Bold"`), "a")}
	modB := Contribution{SourceID: "mod_b", LoadOrderIndex: 2, AST: script.Parse([]byte(`brave = "Stalwart"`), "b")}

	result := Apply(PerKeyOverride, []Contribution{modA, modB})
	require.Len(t, result.ResidualKeys, 1)
	res := result.ResidualKeys[0]
	assert.Equal(t, "brave", res.Key)
	assert.Equal(t, "mod_b", res.SourceID)
	assert.Equal(t, `"Stalwart"`, script.Serialize(res.Value))
	require.Len(t, res.Losers, 1)
	assert.Equal(t, "mod_a", res.Losers[0].SourceID)
}

func TestApply_PerKeyOverride_KeysResolveIndependently(t *testing.T) {
	base := Contribution{SourceID: "base", LoadOrderIndex: 0, AST: script.Parse([]byte("a = 1\nb = 1"), "base")}
	mod := Contribution{SourceID: "mod", LoadOrderIndex: 1, AST: script.Parse([]byte("a = 2"), "mod")}

	result := Apply(PerKeyOverride, []Contribution{base, mod})
	byKey := make(map[string]KeyResolution)
	for _, r := range result.ResidualKeys {
		byKey[r.Key] = r
	}
	require.Contains(t, byKey, "a")
	require.Contains(t, byKey, "b")
	assert.Equal(t, "mod", byKey["a"].SourceID)
	assert.Equal(t, "base", byKey["b"].SourceID) // untouched key keeps its only definition
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "OVERRIDE", Override.String())
	assert.Equal(t, "CONTAINER_MERGE", ContainerMerge.String())
	assert.Equal(t, "PER_KEY_OVERRIDE", PerKeyOverride.String())
	assert.Equal(t, "FIOS", FIOS.String())
}

func TestApply_EmptyContributions(t *testing.T) {
	for _, kind := range []Kind{Override, ContainerMerge, PerKeyOverride, FIOS} {
		result := Apply(kind, nil)
		assert.Equal(t, kind, result.Policy)
	}
}
