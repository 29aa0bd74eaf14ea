// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"
)

// NewIngestCmd creates the ingest subcommand.
func NewIngestCmd() *cobra.Command {
	var sourceName, versionTag, dir string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest a source tree into the content store",
		Long:  `Walks a directory, hashes and stores every file, and seals the result as a new content version.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			eng, _, err := loadEngine(ctx, defaultDeps)
			if err != nil {
				return err
			}
			cv, err := eng.Ingest(ctx, sourceName, versionTag, dir)
			if err != nil {
				return err
			}
			cmd.Printf("sealed content version %s (source=%s tag=%s root=%s)\n",
				cv.ID.String(), cv.SourceName, cv.VersionTag, cv.RootHash)
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceName, "source", "", "source name (e.g. base game or mod name)")
	cmd.Flags().StringVar(&versionTag, "version-tag", "", "semver-ish version tag for this source snapshot")
	cmd.Flags().StringVar(&dir, "dir", "", "directory to walk and ingest")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("version-tag")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}
