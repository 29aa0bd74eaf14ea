// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads modcore's runtime configuration — storage DSN,
// worker-pool size, search-index tuning, log format, and metrics address —
// layering a YAML file under CLI flags with koanf/v2, the way the
// ecosystem this pack draws from typically composes cobra + pflag +
// koanf. The teacher lists koanf in its dependency set but never
// wires it; this repo is where it gets used.
package config

import (
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Config is modcore's resolved runtime configuration.
type Config struct {
	// DatabaseURL is the PostgreSQL DSN the content store connects to.
	DatabaseURL string `koanf:"database_url"`
	// Workers bounds the resolver's worker pool (spec.md §5).
	Workers int `koanf:"workers"`
	// FuzzyMaxDistance is the edit-distance threshold ad hoc fuzzy
	// searches use (Engine.SetFuzzyMaxDistance); the confirm-not-exists
	// sweep keeps its own fixed distance of 2.
	FuzzyMaxDistance int `koanf:"fuzzy_max_distance"`
	// LogFormat is "json" or "text", passed to internal/logging.Setup.
	LogFormat string `koanf:"log_format"`
	// MetricsAddr is the listen address for the Prometheus metrics and
	// health-probe endpoints (internal/observability.NewServer). Empty
	// disables the observability server.
	MetricsAddr string `koanf:"metrics_addr"`
}

// defaults returns the configuration in effect before any file or
// flag overrides it.
func defaults() *koanf.Koanf {
	k := koanf.New(".")
	_ = k.Load(confmap.Provider(map[string]interface{}{
		"workers":            4,
		"fuzzy_max_distance": 2,
		"log_format":         "json",
	}, "."), nil)
	return k
}

// Load builds a Config by layering, in increasing priority: built-in
// defaults, an optional YAML file at path (skipped if path is empty; a
// path that cannot be read is an error), and any flags set on fs. Each layer
// overrides only the keys it actually sets, matching koanf's standard
// merge semantics.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := defaults()

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_FILE_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_FLAG_LOAD_FAILED").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}
	return &cfg, nil
}
