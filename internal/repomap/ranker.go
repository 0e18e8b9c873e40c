// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/petar-djukic/reporank/pkg/types"
)

var (
	// ErrGraphNotBuilt is returned when ranks are requested before a graph
	// has been built.
	ErrGraphNotBuilt = errors.New("dependency graph not built")

	// ErrRanksNotCalculated is returned when ranked results are requested
	// before ranks have been calculated.
	ErrRanksNotCalculated = errors.New("ranks not calculated")
)

// Options configures a Ranker.
type Options struct {
	Model   IdentifierModel // Identifier importance model (default DefaultIdentifierModel)
	Backend Backend         // PageRank solver (default PowerIteration)
	Rank    RankConfig      // Solver parameters
	Boost   float64         // Personalization boost (default DefaultBoost)
	Logger  *zap.Logger
}

// Ranker runs the ranking stages for one request and enforces their
// order. It holds per-request state and is not safe for concurrent use.
type Ranker struct {
	builder    *Builder
	calculator *Calculator
	boost      float64
	logger     *zap.Logger

	graph   *Graph
	outcome *Outcome
	metrics GraphMetrics
}

// NewRanker creates a Ranker.
func NewRanker(opts Options) *Ranker {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	boost := opts.Boost
	if boost == 0 {
		boost = DefaultBoost
	}
	return &Ranker{
		builder:    NewBuilder(opts.Model, logger),
		calculator: NewCalculator(opts.Backend, opts.Rank, logger),
		boost:      boost,
		logger:     logger,
	}
}

// BuildGraph builds the dependency graph and discards any earlier ranks.
func (r *Ranker) BuildGraph(tags []types.Tag, focusedFiles, mentionedIdents []string) (*Graph, error) {
	start := time.Now()
	g, err := r.builder.Build(tags, focusedFiles, mentionedIdents)
	if err != nil {
		return nil, err
	}
	r.graph = g
	r.outcome = nil
	r.metrics = Measure(g)
	r.metrics.BuildTime = time.Since(start)
	return g, nil
}

// Personalize builds the personalization vector with the ranker's boost.
func (r *Ranker) Personalize(focus types.Focus, allFiles []string) map[string]float64 {
	return Personalize(focus, allFiles, r.boost)
}

// CalculateRanks runs PageRank over the current graph.
func (r *Ranker) CalculateRanks(personalization map[string]float64) (map[string]float64, error) {
	if r.graph == nil {
		return nil, ErrGraphNotBuilt
	}
	start := time.Now()
	out := r.calculator.CalculateOutcome(r.graph, personalization)
	r.outcome = &out
	r.metrics.RankTime = time.Since(start)
	r.metrics.Tier = out.Tier.String()
	r.metrics.Iterations = out.Iterations
	r.metrics.Converged = out.Converged
	return out.Ranks, nil
}

// DistributeRanks attributes the calculated file ranks to definitions.
func (r *Ranker) DistributeRanks() ([]types.DefinitionRank, error) {
	if r.outcome == nil {
		return nil, ErrRanksNotCalculated
	}
	return Distribute(r.graph, r.outcome.Ranks), nil
}

// TopFiles returns the highest ranked files not in exclude.
func (r *Ranker) TopFiles(exclude []string, limit int) ([]types.FileRank, error) {
	if r.outcome == nil {
		return nil, ErrRanksNotCalculated
	}
	return TopFiles(r.outcome.Ranks, exclude, limit), nil
}

// Metrics returns the metrics of the latest build and rank.
func (r *Ranker) Metrics() GraphMetrics {
	return r.metrics
}

// Reset clears all per-request state.
func (r *Ranker) Reset() {
	r.graph = nil
	r.outcome = nil
	r.metrics = GraphMetrics{}
}

// Result is the output of RankTags.
type Result struct {
	Files       []types.FileRank       `json:"files"`
	Definitions []types.DefinitionRank `json:"definitions"`
	Metrics     GraphMetrics           `json:"metrics"`
}

// RankTags runs every stage over tags. The file universe is the set of
// files the tags come from, and focused files are left out of the file
// ranking. A limit of zero or less keeps every entry.
func RankTags(tags []types.Tag, focus types.Focus, limit int, opts Options) (*Result, error) {
	r := NewRanker(opts)
	if _, err := r.BuildGraph(tags, focus.Files, focus.MentionedIdents); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	for _, t := range tags {
		if !seen[t.RelPath] {
			seen[t.RelPath] = true
			files = append(files, t.RelPath)
		}
	}

	if _, err := r.CalculateRanks(r.Personalize(focus, files)); err != nil {
		return nil, err
	}
	defs, err := r.DistributeRanks()
	if err != nil {
		return nil, err
	}
	top, err := r.TopFiles(focus.Files, limit)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("ranked tags",
		zap.Int("files", len(files)),
		zap.Int("definitions", len(defs)),
		zap.String("tier", r.metrics.Tier),
	)
	return &Result{
		Files:       top,
		Definitions: TopDefinitions(defs, limit),
		Metrics:     r.metrics,
	}, nil
}
