// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package policy

import "github.com/modcore/modcore/internal/script"

// entriesOf returns the ordered child entries of a Root or Block node,
// or nil for any other node kind. Contributions may be tagged with
// either kind depending on whether the unit_key is the whole file
// (localization, defines) or one block within it.
func entriesOf(n script.Node) []script.Node {
	switch v := n.(type) {
	case *script.Root:
		return v.Entries
	case *script.Block:
		return v.Entries
	default:
		return nil
	}
}

// assignmentsOf returns only the Assignment entries of n, in order,
// ignoring bare values that a list-form block might carry.
func assignmentsOf(n script.Node) []*script.Assignment {
	var out []*script.Assignment
	for _, e := range entriesOf(n) {
		if a, ok := e.(*script.Assignment); ok {
			out = append(out, a)
		}
	}
	return out
}
