// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package reporank ranks the files and definitions of a source repository
// by how central they are to its cross-file symbol graph, and renders the
// result as a token-budgeted repository map.
package reporank

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/petar-djukic/reporank/internal/repomap"
	"github.com/petar-djukic/reporank/pkg/types"
)

// Error types for the reporank API.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrRankFailure   = errors.New("ranking failed")
)

// Config configures a Ranker. Zero values take the defaults of
// internal/config.Default.
type Config struct {
	WorkDir        string        // Repository root (required)
	MapTokenBudget int           // Token budget for the rendered map (default 1024)
	MaxFiles       int           // Ranked files to report, 0 for all
	MaxFileSize    int64         // Larger files are not parsed (default 1 MiB)
	Languages      []string      // Restrict discovery to these languages
	Boost          float64       // Personalization boost (default 100)
	Damping        float64       // PageRank damping factor (default 0.85)
	MaxIterations  int           // PageRank iteration cap (default 100)
	Tolerance      float64       // PageRank convergence tolerance (default 1e-6)
	Backend        string        // "power" (default) or "gonum"
	CacheDir       string        // Relative to WorkDir unless absolute (default .reporank.cache)
	CacheL1Size    int           // In-memory entries per cache (default 1000)
	NoCache        bool          // Keep caches in memory only
	Timeout        time.Duration // Upper bound for one Rank call (default 60s)
	Logger         *zap.Logger   // nil disables logging
}

// Request selects what a Rank call focuses on.
type Request struct {
	Focus       types.Focus
	TokenBudget int // Overrides Config.MapTokenBudget when positive
	Limit       int // Overrides Config.MaxFiles when positive
}

// Metrics describes the graph and the ranking run.
type Metrics = repomap.GraphMetrics

// Result holds the outcome of a Ranker.Rank invocation.
type Result struct {
	Map         string                 `json:"map"`
	TokensUsed  float64                `json:"tokens_used"`
	Files       []types.FileRank       `json:"files"`
	Definitions []types.DefinitionRank `json:"definitions"`
	Metrics     Metrics                `json:"metrics"`
	CacheHit    bool                   `json:"cache_hit"`
}

// Ranker ranks one repository.
type Ranker interface {
	// Rank discovers files, extracts tags, builds the dependency graph,
	// runs personalized PageRank and renders the map.
	Rank(ctx context.Context, req Request) (*Result, error)

	// Close releases the cache database.
	Close() error
}

// RankTags ranks caller-supplied tags without touching the filesystem.
// It returns the top files and definitions, limited to limit entries when
// limit is positive.
func RankTags(tags []types.Tag, focus types.Focus, limit int) (*repomap.Result, error) {
	return repomap.RankTags(tags, focus, limit, repomap.Options{})
}
