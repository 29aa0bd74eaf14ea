// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/modcore/modcore/internal/ids"
	"github.com/modcore/modcore/internal/playset"
	"github.com/modcore/modcore/internal/store"
)

// NewPlaysetCmd creates the playset subcommand and its build/drift children.
func NewPlaysetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playset",
		Short: "Assemble and inspect playsets",
	}
	cmd.AddCommand(newPlaysetBuildCmd())
	cmd.AddCommand(newPlaysetDriftCmd())
	return cmd
}

func newPlaysetBuildCmd() *cobra.Command {
	var base string
	var mods []string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble a playset from a base content version and ordered mods",
		Long:  `The base version always occupies load-order position zero; --mod flags are applied in the order given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, _, err := loadEngine(ctx, defaultDeps)
			if err != nil {
				return err
			}

			baseID, err := ids.ParseContentVersionID(base)
			if err != nil {
				return oops.Code("INVALID_CONTENT_VERSION_ID").With("id", base).Wrap(err)
			}
			elements := []playset.Element{{ContentVersionID: baseID, Role: store.RoleBase}}
			for _, m := range mods {
				modID, err := ids.ParseContentVersionID(m)
				if err != nil {
					return oops.Code("INVALID_CONTENT_VERSION_ID").With("id", m).Wrap(err)
				}
				elements = append(elements, playset.Element{ContentVersionID: modID, Role: store.RoleMod})
			}

			p, err := eng.BuildPlayset(ctx, elements)
			if err != nil {
				return err
			}
			cmd.Printf("playset %s built (hash=%s entries=%d)\n", p.ID.String(), p.PlaysetHash, len(p.Entries))
			return nil
		},
	}

	cmd.Flags().StringVar(&base, "base", "", "base-game content version id")
	cmd.Flags().StringArrayVar(&mods, "mod", nil, "mod content version id, repeatable, applied in load order")
	_ = cmd.MarkFlagRequired("base")

	return cmd
}

func newPlaysetDriftCmd() *cobra.Command {
	var playsetIDStr string

	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Report whether a playset's content versions have been resealed since it was built",
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

			drift, err := eng.DetectDrift(ctx, playsetID)
			if err != nil {
				return err
			}

			if !drift.Drifted {
				cmd.Println("no drift: playset hash still matches its content versions")
				return nil
			}

			cmd.Printf("drift detected: recorded hash %s, current hash %s\n", drift.OldHash, drift.NewHash)
			for _, c := range drift.ChangedEntries {
				cmd.Printf("  position %d (%s): %s -> %s\n", c.Position, c.ContentVersionID.String(), c.OldRootHash, c.NewRootHash)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&playsetIDStr, "playset", "", "playset id")
	_ = cmd.MarkFlagRequired("playset")

	return cmd
}
