// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package policy

import "github.com/modcore/modcore/internal/script"

// taggedBlock is a contribution's container value along with the
// position it occupies in load order, used by the recursive merge.
type taggedBlock struct {
	block          *script.Block
	loadOrderIndex int
}

// applyContainerMerge merges the container key across sources:
// list-valued children are appended in load order, scalar-valued
// children follow OVERRIDE, and map-valued children recurse as
// containers (the source's observed, if undocumented, runtime
// behavior — see spec.md §9).
func applyContainerMerge(contributions []Contribution) Result {
	if len(contributions) == 0 {
		return Result{Policy: ContainerMerge}
	}

	winner := contributions[0]
	for _, c := range contributions[1:] {
		if c.LoadOrderIndex > winner.LoadOrderIndex {
			winner = c
		}
	}
	losers := make([]Contribution, 0, len(contributions)-1)
	for _, c := range contributions {
		if c.SourceID == winner.SourceID && c.LoadOrderIndex == winner.LoadOrderIndex {
			continue
		}
		losers = append(losers, c)
	}

	blocks := make([]taggedBlock, 0, len(contributions))
	for _, c := range contributions {
		if b, ok := c.AST.(*script.Block); ok {
			blocks = append(blocks, taggedBlock{block: b, loadOrderIndex: c.LoadOrderIndex})
		}
	}

	var residual script.Node
	if len(blocks) == 0 {
		residual = winner.AST
	} else {
		residual = mergeBlocks(blocks)
	}

	return Result{
		Policy:   ContainerMerge,
		Winner:   winner,
		Losers:   losers,
		Residual: residual,
	}
}

// childValue is one contribution's value for a single container key,
// tagged with its load-order position.
type childValue struct {
	node           script.Node
	loadOrderIndex int
}

// mergeBlocks merges a set of blocks that all represent the same
// container key across sources, ordered by ascending load order.
func mergeBlocks(blocks []taggedBlock) *script.Block {
	if allListForm(blocks) {
		var entries []script.Node
		for _, b := range blocks {
			entries = append(entries, b.block.Entries...)
		}
		return &script.Block{Entries: entries, Form: script.DetermineBlockForm(entries)}
	}

	byKey := make(map[string][]childValue)
	var order []string
	var bareEntries []script.Node

	for _, b := range blocks {
		for _, e := range b.block.Entries {
			if a, ok := e.(*script.Assignment); ok {
				if _, seen := byKey[a.Name]; !seen {
					order = append(order, a.Name)
				}
				byKey[a.Name] = append(byKey[a.Name], childValue{a.Value, b.loadOrderIndex})
			} else {
				bareEntries = append(bareEntries, e)
			}
		}
	}

	merged := make([]script.Node, 0, len(order)+len(bareEntries))
	for _, key := range order {
		vals := byKey[key]
		merged = append(merged, mergeChildValues(key, vals))
	}
	merged = append(merged, bareEntries...)

	return &script.Block{Entries: merged, Form: script.DetermineBlockForm(merged)}
}

func allListForm(blocks []taggedBlock) bool {
	for _, b := range blocks {
		if b.block.Form != script.BlockList && b.block.Form != script.BlockEmpty {
			return false
		}
	}
	return true
}

// mergeChildValues resolves one key's competing values into a single
// Assignment node: recurse if every value is itself a Block (list-form
// blocks included, which mergeBlocks concatenates), otherwise OVERRIDE
// on the highest load-order value.
func mergeChildValues(key string, vals []childValue) script.Node {
	allBlocks := true
	subBlocks := make([]taggedBlock, 0, len(vals))
	for _, v := range vals {
		b, ok := v.node.(*script.Block)
		if !ok {
			allBlocks = false
			break
		}
		subBlocks = append(subBlocks, taggedBlock{block: b, loadOrderIndex: v.loadOrderIndex})
	}

	var value script.Node
	if allBlocks && len(subBlocks) > 0 {
		value = mergeBlocks(subBlocks)
	} else {
		winner := vals[0]
		for _, v := range vals[1:] {
			if v.loadOrderIndex > winner.loadOrderIndex {
				winner = v
			}
		}
		value = winner.node
	}

	return &script.Assignment{Name: key, Op: "=", Value: value}
}
