// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/modcore/modcore/internal/ids"
)

// NewSearchCmd creates the search subcommand.
func NewSearchCmd() *cobra.Command {
	var playsetIDStr, mode, symbolType, query string
	var refresh bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query a playset's symbol index",
		Long: `Modes: exact, prefix, token, flex, fuzzy, expand, confirm-not-exists.
exact and confirm-not-exists also require --symbol-type.`,
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

			if refresh {
				if err := eng.RefreshSearchIndex(ctx, playsetID); err != nil {
					return err
				}
			}

			s := eng.Search(playsetID)
			switch mode {
			case "exact":
				for _, e := range s.Exact(symbolType, query) {
					cmd.Printf("%s:%d %s\n", e.RelPath, e.Line, e.Name)
				}
			case "prefix":
				for _, n := range s.Prefix(query) {
					cmd.Println(n)
				}
			case "token":
				for _, n := range s.Token(query) {
					cmd.Println(n)
				}
			case "flex":
				for _, n := range s.Flex(query) {
					cmd.Println(n)
				}
			case "fuzzy":
				for _, n := range s.Fuzzy(query) {
					cmd.Println(n)
				}
			case "expand":
				for _, n := range s.Expand(query) {
					cmd.Println(n)
				}
			case "confirm-not-exists":
				if s.ConfirmNotExists(symbolType, query) {
					cmd.Println("confirmed: no match in any tier")
				} else {
					cmd.Println("a match exists in at least one tier")
				}
			default:
				return oops.Code("INVALID_SEARCH_MODE").With("mode", mode).
					Errorf("unknown search mode %q", mode)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&playsetIDStr, "playset", "", "playset id")
	cmd.Flags().StringVar(&mode, "mode", "exact", "query mode: exact, prefix, token, flex, fuzzy, expand, confirm-not-exists")
	cmd.Flags().StringVar(&symbolType, "symbol-type", "", "symbol type, required for exact and confirm-not-exists")
	cmd.Flags().StringVar(&query, "query", "", "query string")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild the playset's search index before querying")
	_ = cmd.MarkFlagRequired("playset")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}
