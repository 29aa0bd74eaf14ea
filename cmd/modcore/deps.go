// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"

	"github.com/modcore/modcore"
	"github.com/modcore/modcore/internal/config"
	"github.com/modcore/modcore/internal/observability"
	"github.com/modcore/modcore/internal/store"
)

// CommonDeps contains injectable dependencies shared by every
// subcommand. A nil field uses its default implementation; tests
// override fields to avoid a live database.
type CommonDeps struct {
	// ConfigLoader loads the resolved configuration for a run.
	// Default: config.Load
	ConfigLoader func(path string) (*config.Config, error)

	// StoreFactory opens a content store against a database URL.
	// Default: store.NewContentStore
	StoreFactory func(ctx context.Context, databaseURL string) (*store.ContentStore, error)

	// EngineFactory builds an Engine over an already-open store.
	// Default: modcore.New
	EngineFactory func(cs modcore.ContentStore, workers int) (*modcore.Engine, error)
}

var defaultDeps = CommonDeps{
	ConfigLoader: func(path string) (*config.Config, error) {
		return config.Load(path, nil)
	},
	StoreFactory:  store.NewContentStore,
	EngineFactory: modcore.New,
}

func loadEngine(ctx context.Context, deps CommonDeps) (*modcore.Engine, *config.Config, error) {
	if deps.ConfigLoader == nil {
		deps.ConfigLoader = defaultDeps.ConfigLoader
	}
	if deps.StoreFactory == nil {
		deps.StoreFactory = defaultDeps.StoreFactory
	}
	if deps.EngineFactory == nil {
		deps.EngineFactory = defaultDeps.EngineFactory
	}

	cfg, err := deps.ConfigLoader(configFile)
	if err != nil {
		return nil, nil, err
	}

	cs, err := deps.StoreFactory(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}

	eng, err := deps.EngineFactory(cs, cfg.Workers)
	if err != nil {
		return nil, nil, err
	}
	eng.SetFuzzyMaxDistance(cfg.FuzzyMaxDistance)

	if cfg.MetricsAddr != "" {
		obsServer := observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		if err := obsServer.Start(); err != nil {
			return nil, nil, err
		}
		eng.SetMetrics(obsServer.Metrics())
	}

	return eng, cfg, nil
}
