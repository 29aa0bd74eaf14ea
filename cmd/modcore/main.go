// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package main is the entry point for the modcore CLI.
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		slog.Error("modcore failed", "error", err)
		os.Exit(1)
	}
}
