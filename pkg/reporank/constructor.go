// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package reporank

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/petar-djukic/reporank/internal/cache"
	"github.com/petar-djukic/reporank/internal/config"
	"github.com/petar-djukic/reporank/internal/runner"
)

// New validates the config, opens the caches and returns a ready-to-use
// Ranker. It does not read the repository; that happens in Rank.
func New(cfg Config) (Ranker, error) {
	ic := toInternal(cfg)
	if err := ic.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if info, err := os.Stat(ic.WorkDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: WorkDir %q does not exist or is not a directory", ErrInvalidConfig, ic.WorkDir)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm, err := cache.Open(cache.Options{
		Dir:    cacheDir(ic),
		L1Size: ic.CacheL1Size,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	r, err := runner.NewRunner(runner.Deps{Config: ic, Cache: cm, Logger: logger})
	if err != nil {
		cm.Close()
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &rankerAdapter{runner: r, cache: cm}, nil
}

// rankerAdapter adapts internal/runner.Runner to the public Ranker interface.
type rankerAdapter struct {
	runner *runner.Runner
	cache  *cache.Manager
}

func (a *rankerAdapter) Rank(ctx context.Context, req Request) (*Result, error) {
	rr, err := a.runner.Run(ctx, runner.Request{
		Focus:       req.Focus,
		TokenBudget: req.TokenBudget,
		Limit:       req.Limit,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrRankFailure, err)
	}
	return &Result{
		Map:         rr.Map.Map,
		TokensUsed:  rr.Map.TokensUsed,
		Files:       rr.Files,
		Definitions: rr.Definitions,
		Metrics:     rr.Metrics,
		CacheHit:    rr.CacheHit,
	}, nil
}

func (a *rankerAdapter) Close() error {
	return a.cache.Close()
}

// toInternal fills zero-value fields with their defaults.
func toInternal(cfg Config) config.Config {
	c := config.Default()
	c.WorkDir = cfg.WorkDir
	c.MaxFiles = cfg.MaxFiles
	c.Languages = cfg.Languages
	c.NoCache = cfg.NoCache
	if cfg.MapTokenBudget != 0 {
		c.MapTokenBudget = cfg.MapTokenBudget
	}
	if cfg.MaxFileSize != 0 {
		c.MaxFileSize = cfg.MaxFileSize
	}
	if cfg.Boost != 0 {
		c.Boost = cfg.Boost
	}
	if cfg.Damping != 0 {
		c.Damping = cfg.Damping
	}
	if cfg.MaxIterations != 0 {
		c.MaxIterations = cfg.MaxIterations
	}
	if cfg.Tolerance != 0 {
		c.Tolerance = cfg.Tolerance
	}
	if cfg.Backend != "" {
		c.Backend = cfg.Backend
	}
	if cfg.CacheDir != "" {
		c.CacheDir = cfg.CacheDir
	}
	if cfg.CacheL1Size != 0 {
		c.CacheL1Size = cfg.CacheL1Size
	}
	if cfg.Timeout != 0 {
		c.Timeout = cfg.Timeout
	}
	return c
}

// cacheDir resolves the cache directory, or returns "" for memory-only
// caches.
func cacheDir(c config.Config) string {
	if c.NoCache || c.CacheDir == "" {
		return ""
	}
	if filepath.IsAbs(c.CacheDir) {
		return c.CacheDir
	}
	return filepath.Join(c.WorkDir, c.CacheDir)
}
