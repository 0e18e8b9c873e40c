// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runner wires discovery, extraction, ranking, rendering and
// caching into one request.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/petar-djukic/reporank/internal/cache"
	"github.com/petar-djukic/reporank/internal/config"
	"github.com/petar-djukic/reporank/internal/discover"
	"github.com/petar-djukic/reporank/internal/extract"
	"github.com/petar-djukic/reporank/internal/render"
	"github.com/petar-djukic/reporank/internal/repomap"
	"github.com/petar-djukic/reporank/pkg/types"
)

// Request is one ranking request.
type Request struct {
	Focus       types.Focus
	TokenBudget int // Overrides the configured map budget when positive
	Limit       int // Overrides the configured max files when positive
}

// RunResult holds the outcome of a Runner.Run invocation.
type RunResult struct {
	Map         *types.RepoMapResult   `json:"map"`
	Files       []types.FileRank       `json:"files"`
	Definitions []types.DefinitionRank `json:"definitions"`
	Metrics     repomap.GraphMetrics   `json:"metrics"`
	Extract     extract.ExtractStats   `json:"extract"`
	CacheHit    bool                   `json:"cache_hit"`
}

// Deps holds injected dependencies for the runner.
type Deps struct {
	Config config.Config
	Cache  *cache.Manager // nil disables caching
	Logger *zap.Logger
}

// Runner executes ranking requests against one repository.
type Runner struct {
	cfg       config.Config
	cache     *cache.Manager
	backend   repomap.Backend
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(deps Deps) (*Runner, error) {
	backend, err := repomap.BackendByName(deps.Config.Backend)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []extract.Option{extract.WithLogger(logger)}
	if deps.Cache != nil {
		opts = append(opts, extract.WithStore(deps.Cache.Tags()))
	}

	return &Runner{
		cfg:       deps.Config,
		cache:     deps.Cache,
		backend:   backend,
		extractor: extract.NewExtractor(opts...),
		logger:    logger.With(zap.String("component", "runner")),
	}, nil
}

// Run discovers the repository's files, extracts tags, ranks them and
// renders the map. A cached result is returned when neither the request
// nor any file changed.
func (r *Runner) Run(ctx context.Context, req Request) (*RunResult, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}
	start := time.Now()

	budget := r.cfg.MapTokenBudget
	if req.TokenBudget > 0 {
		budget = req.TokenBudget
	}
	limit := r.cfg.MaxFiles
	if req.Limit > 0 {
		limit = req.Limit
	}
	focus := r.normalizeFocus(req.Focus)

	// Step 1: Discover files.
	found, err := discover.Files(ctx, r.cfg.WorkDir, discover.Options{
		Languages:   r.cfg.Languages,
		MaxFileSize: r.cfg.MaxFileSize,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	var files []discover.File
	for _, f := range found {
		if extract.Supported(f.Language) {
			files = append(files, f)
		}
	}
	allFiles := discover.Paths(files)

	// Step 2: Serve from the map cache when possible.
	key := r.mapKey(focus, files, budget, limit)
	if r.cache != nil {
		if payload, ok := r.cache.Maps().Get(key); ok {
			var res RunResult
			if err := json.Unmarshal(payload, &res); err == nil {
				res.CacheHit = true
				r.logger.Debug("map cache hit", zap.Int("files", len(files)))
				return &res, nil
			}
		}
	}

	// Step 3: Extract tags.
	tags, stats, err := r.extractor.ExtractAll(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("extracting tags: %w", err)
	}

	// Step 4: Rank, abandoning the computation if ctx ends first.
	type rankOut struct {
		res *RunResult
		err error
	}
	done := make(chan rankOut, 1)
	go func() {
		res, err := r.rank(tags, focus, allFiles, limit)
		done <- rankOut{res, err}
	}()

	var res *RunResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("ranking: %w", ctx.Err())
	case out := <-done:
		if out.err != nil {
			return nil, fmt.Errorf("ranking: %w", out.err)
		}
		res = out.res
	}
	res.Extract = stats

	// Step 5: Render.
	res.Map = render.Render(render.Input{
		Files:       res.Files,
		Definitions: res.Definitions,
		Tags:        tags,
		AllFiles:    allFiles,
		Exclude:     focus.Files,
	}, render.Config{TokenBudget: float64(budget)})

	if limit > 0 && len(res.Files) > limit {
		res.Files = res.Files[:limit]
	}
	res.Definitions = repomap.TopDefinitions(res.Definitions, limit)

	// Step 6: Store.
	if r.cache != nil {
		if payload, err := json.Marshal(res); err == nil {
			if err := r.cache.Maps().Put(key, payload); err != nil {
				r.logger.Warn("caching map", zap.Error(err))
			}
		}
	}

	r.logger.Info("repository ranked",
		zap.Int("files", len(files)),
		zap.Int("tags", len(tags)),
		zap.String("tier", res.Metrics.Tier),
		zap.Int("map_files", res.Map.FileCount),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// rank runs the ranking stages. The personalization universe is every
// discovered file, not only the files that produced tags.
func (r *Runner) rank(tags []types.Tag, focus types.Focus, allFiles []string, limit int) (*RunResult, error) {
	rk := repomap.NewRanker(repomap.Options{
		Backend: r.backend,
		Rank: repomap.RankConfig{
			Damping:       r.cfg.Damping,
			MaxIterations: r.cfg.MaxIterations,
			Tolerance:     r.cfg.Tolerance,
		},
		Boost:  r.cfg.Boost,
		Logger: r.logger,
	})

	if _, err := rk.BuildGraph(tags, focus.Files, focus.MentionedIdents); err != nil {
		return nil, err
	}
	if _, err := rk.CalculateRanks(rk.Personalize(focus, allFiles)); err != nil {
		return nil, err
	}
	defs, err := rk.DistributeRanks()
	if err != nil {
		return nil, err
	}
	top, err := rk.TopFiles(focus.Files, 0)
	if err != nil {
		return nil, err
	}
	return &RunResult{Files: top, Definitions: defs, Metrics: rk.Metrics()}, nil
}

// normalizeFocus rewrites focus paths relative to the work directory with
// forward slashes, matching discovered paths.
func (r *Runner) normalizeFocus(f types.Focus) types.Focus {
	root, err := filepath.Abs(r.cfg.WorkDir)
	if err != nil {
		root = r.cfg.WorkDir
	}
	norm := func(paths []string) []string {
		out := make([]string, 0, len(paths))
		for _, p := range paths {
			if filepath.IsAbs(p) {
				if rel, err := filepath.Rel(root, p); err == nil {
					p = rel
				}
			}
			out = append(out, filepath.ToSlash(filepath.Clean(p)))
		}
		return out
	}
	return types.Focus{
		Files:           norm(f.Files),
		MentionedFiles:  norm(f.MentionedFiles),
		MentionedIdents: f.MentionedIdents,
	}
}

func (r *Runner) mapKey(focus types.Focus, files []discover.File, budget, limit int) cache.MapKey {
	stamps := make([]string, len(files))
	for i, f := range files {
		stamps[i] = f.RelPath + "@" + strconv.FormatInt(f.ModTime.UnixNano(), 10) + ":" + strconv.FormatInt(f.Size, 10)
	}
	opts := strings.Join([]string{
		r.backend.Name(),
		strconv.FormatFloat(r.cfg.Damping, 'g', -1, 64),
		strconv.Itoa(r.cfg.MaxIterations),
		strconv.FormatFloat(r.cfg.Tolerance, 'g', -1, 64),
		strconv.FormatFloat(r.cfg.Boost, 'g', -1, 64),
		strconv.Itoa(limit),
	}, ",")
	return cache.MapKey{Focus: focus, Files: stamps, TokenBudget: budget, Options: opts}
}
