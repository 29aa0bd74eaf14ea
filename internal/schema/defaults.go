// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package schema

import "github.com/modcore/modcore/internal/policy"

// defaultSchemas is the closed set of recognized folder patterns
// (spec.md §6). Order matters: more specific patterns are listed
// before their broader siblings so the first-match-wins rule in
// Registry.Match picks the intended row.
func defaultSchemas() []FolderSchema {
	return []FolderSchema{
		{
			Pattern:    "common/traits/*",
			SymbolType: "trait",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
			References: []ReferencePattern{
				{ChildKey: "opposites", RefType: "trait"},
			},
		},
		{
			Pattern:    "common/on_action/*",
			SymbolType: "on_action",
			Scope:      ScopeConstant,
			Policy:     policy.ContainerMerge,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/scripted_effects/*",
			SymbolType: "scripted_effect",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/scripted_triggers/*",
			SymbolType: "scripted_trigger",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/decisions/*",
			SymbolType: "decision",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyInnerIDOrName,
		},
		{
			Pattern:    "events/*",
			SymbolType: "event",
			Scope:      ScopeNamespace,
			Policy:     policy.Override,
			UnitKey:    UnitKeyEventNamespaced,
		},
		{
			Pattern:    "common/defines/*",
			SymbolType: "define",
			Scope:      ScopeConstant,
			Policy:     policy.PerKeyOverride,
			UnitKey:    UnitKeyDefine,
		},
		{
			Pattern:    "localization/*/*",
			SymbolType: "localization_key",
			Scope:      ScopeConstant,
			Policy:     policy.PerKeyOverride,
			UnitKey:    UnitKeyLiteral,
		},
		{
			Pattern:    "common/traditions/*",
			SymbolType: "tradition",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
			References: []ReferencePattern{
				{ChildKey: "culture", RefType: "culture"},
				{ChildKey: "parameters", RefType: "trait"},
			},
		},
		{
			Pattern:    "common/buildings/*",
			SymbolType: "building",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/modifiers/*",
			SymbolType: "modifier",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/character_interactions/*",
			SymbolType: "interaction",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/culture/cultures/*",
			SymbolType: "culture",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/religion/religions/*",
			SymbolType: "faith",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/governments/*",
			SymbolType: "government",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:    "common/laws/*",
			SymbolType: "law",
			Scope:      ScopeConstant,
			Policy:     policy.Override,
			UnitKey:    UnitKeyTopLevelName,
		},
		{
			Pattern:     "gui/*_types.gui",
			SymbolType:  "gui_type",
			Scope:       ScopeConstant,
			Policy:      policy.FIOS,
			UnitKey:     UnitKeyGUI,
			GUICategory: "type",
		},
		{
			Pattern:     "gui/*.gui",
			SymbolType:  "gui_template",
			Scope:       ScopeConstant,
			Policy:      policy.FIOS,
			UnitKey:     UnitKeyGUI,
			GUICategory: "template",
		},
	}
}
