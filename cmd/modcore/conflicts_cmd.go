// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/modcore/modcore/internal/ids"
)

// NewConflictsCmd creates the conflicts subcommand.
func NewConflictsCmd() *cobra.Command {
	var playsetIDStr, folder string

	cmd := &cobra.Command{
		Use:   "conflicts",
		Short: "Report scored conflicts for one of a playset's folders",
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

			reports, err := eng.GetConflicts(ctx, playsetID, folder)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				cmd.Println("no conflicts")
				return nil
			}
			for _, r := range reports {
				cmd.Printf("%s %s: risk=%d capability=%s uncertainty=%s contributions=%d\n",
					r.Folder, r.UnitKey, r.RiskScore, r.MergeCapability, r.Uncertainty, len(r.Contributions))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&playsetIDStr, "playset", "", "playset id")
	cmd.Flags().StringVar(&folder, "folder", "", "registered folder pattern, e.g. common/traits/*")
	_ = cmd.MarkFlagRequired("playset")
	_ = cmd.MarkFlagRequired("folder")

	return cmd
}
