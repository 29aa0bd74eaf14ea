// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/modcore/modcore/internal/logging"
)

// Global flags available to all subcommands.
var configFile string

// buildVersion is stamped via -ldflags at release build time; left as
// "dev" for local builds.
var buildVersion = "dev"

// NewRootCmd creates the root command for the modcore CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modcore",
		Short: "modcore - mod-content resolver for a moddable grand-strategy game",
		Long: `modcore parses a moddable game's script language, ingests content
under a content-addressed store, and resolves a load-ordered playset into a
merged view with per-definition provenance and conflict reports.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := defaultDeps.ConfigLoader(configFile)
			if err != nil {
				return err
			}
			logging.SetDefault("modcore", buildVersion, cfg.LogFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewPlaysetCmd())
	cmd.AddCommand(NewResolveCmd())
	cmd.AddCommand(NewConflictsCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
