// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/resolver"
)

// NewResolveCmd creates the resolve subcommand.
func NewResolveCmd() *cobra.Command {
	var playsetIDStr, folder string

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a playset's folders into merged units",
		Long:  `With --folder, resolves a single registered folder pattern. Without it, resolves every registered folder pattern the playset has content for.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, _, err := loadEngine(ctx, defaultDeps)
			if err != nil {
				return err
			}

			playsetID, err := ids.ParsePlaysetID(playsetIDStr)
			if err != nil {
				return oops.Code("INVALID_PLAYSET_ID").With("id", playsetIDStr).Wrap(err)
			}

			if folder != "" {
				resolved, conflicts, err := eng.Resolve(ctx, playsetID, folder)
				if err != nil {
					return err
				}
				printResolved(cmd, folder, resolved, conflicts)
				return nil
			}

			results, err := eng.ResolveAll(ctx, playsetID)
			if err != nil {
				return err
			}
			for _, r := range results {
				printResolved(cmd, r.Folder, r.Resolved, r.Conflicts)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&playsetIDStr, "playset", "", "playset id")
	cmd.Flags().StringVar(&folder, "folder", "", "registered folder pattern, e.g. common/traits/*; omit to resolve every folder")
	_ = cmd.MarkFlagRequired("playset")

	return cmd
}

// printResolved writes one folder's resolution to cmd's output:
// winners first, then conflict units that the folder's policy left
// unresolved (spec.md §4.7).
func printResolved(cmd *cobra.Command, folder string, resolved []resolver.ResolvedUnit, conflicts []resolver.ConflictUnit) {
	cmd.Printf("%s: %d resolved, %d conflicts\n", folder, len(resolved), len(conflicts))
	for _, u := range resolved {
		cmd.Printf("  %s (%s) <- %s\n", u.UnitKey, u.Policy, u.Winner.SourceID)
	}
	for _, c := range conflicts {
		cmd.Printf("  CONFLICT %s (%s): %d contributions\n", c.UnitKey, c.Policy, len(c.Contributions))
	}
}
