// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

const (
	defaultDamping   = 0.85
	defaultMaxIter   = 100
	defaultTolerance = 1e-6
)

var (
	// ErrDegenerate is returned by a backend when the graph or the
	// personalization vector cannot produce a valid ranking.
	ErrDegenerate = errors.New("degenerate ranking input")

	// ErrUnknownBackend is returned when no backend has the requested name.
	ErrUnknownBackend = errors.New("unknown ranking backend")
)

// RankConfig configures PageRank computation.
type RankConfig struct {
	Damping       float64 // Damping factor (default 0.85)
	MaxIterations int     // Maximum iterations (default 100)
	Tolerance     float64 // Convergence tolerance on the L1 change (default 1e-6)
}

// DefaultRankConfig returns the standard PageRank parameters.
func DefaultRankConfig() RankConfig {
	return RankConfig{
		Damping:       defaultDamping,
		MaxIterations: defaultMaxIter,
		Tolerance:     defaultTolerance,
	}
}

func (c RankConfig) withDefaults() RankConfig {
	if c.Damping == 0 {
		c.Damping = defaultDamping
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = defaultMaxIter
	}
	if c.Tolerance == 0 {
		c.Tolerance = defaultTolerance
	}
	return c
}

// Solution is the output of one backend run.
type Solution struct {
	Ranks      map[string]float64
	Iterations int
	Converged  bool
}

// Backend computes PageRank over a dependency graph. A nil or empty
// personalization means uniform restart. Backends report unusable input
// with an error wrapping ErrDegenerate.
type Backend interface {
	Name() string
	PageRank(g *Graph, personalization map[string]float64, cfg RankConfig) (Solution, error)
}

// BackendByName resolves a configured backend name.
func BackendByName(name string) (Backend, error) {
	switch name {
	case "", "power":
		return PowerIteration{}, nil
	case "gonum":
		return GonumBackend{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// PowerIteration is the built-in weighted, personalized PageRank solver.
// The personalization vector doubles as the distribution for rank that
// leaks out of files without outgoing edges.
type PowerIteration struct{}

// Name implements Backend.
func (PowerIteration) Name() string { return "power" }

// PageRank implements Backend.
func (PowerIteration) PageRank(g *Graph, personalization map[string]float64, cfg RankConfig) (Solution, error) {
	cfg = cfg.withDefaults()
	n := g.NodeCount()
	if n == 0 {
		return Solution{Ranks: map[string]float64{}, Converged: true}, nil
	}

	nodes := g.nodes
	idx := make(map[string]int, n)
	for i, node := range nodes {
		idx[node] = i
	}

	p := make([]float64, n)
	if len(personalization) == 0 {
		for i := range p {
			p[i] = 1.0 / float64(n)
		}
	} else {
		var sum float64
		for i, node := range nodes {
			v := personalization[node]
			if v < 0 || math.IsNaN(v) {
				return Solution{}, fmt.Errorf("%w: personalization of %s is %v", ErrDegenerate, node, v)
			}
			p[i] = v
			sum += v
		}
		if !(sum > 0) || math.IsInf(sum, 0) {
			return Solution{}, fmt.Errorf("%w: personalization mass is %v", ErrDegenerate, sum)
		}
		for i := range p {
			p[i] /= sum
		}
	}

	// Outgoing links per node, parallel edges kept separate.
	type link struct {
		to     int
		weight float64
	}
	links := make([][]link, n)
	outWeight := make([]float64, n)
	for i, node := range nodes {
		for _, e := range g.OutEdges(node) {
			links[i] = append(links[i], link{to: idx[e.To], weight: e.Weight})
			outWeight[i] += e.Weight
		}
	}

	rank := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	d := cfg.Damping
	next := make([]float64, n)
	sol := Solution{}
	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		clear(next)

		var dangling float64
		for i := 0; i < n; i++ {
			if outWeight[i] == 0 {
				dangling += rank[i]
				continue
			}
			for _, l := range links[i] {
				next[l.to] += d * rank[i] * l.weight / outWeight[i]
			}
		}
		for i := range next {
			next[i] += (d*dangling + (1 - d)) * p[i]
		}

		diff := 0.0
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		rank, next = next, rank
		sol.Iterations = iter
		if diff < cfg.Tolerance {
			sol.Converged = true
			break
		}
	}

	sol.Ranks = make(map[string]float64, n)
	for i, node := range nodes {
		if math.IsNaN(rank[i]) || math.IsInf(rank[i], 0) {
			return Solution{}, fmt.Errorf("%w: non-finite rank for %s", ErrDegenerate, node)
		}
		sol.Ranks[node] = rank[i]
	}
	return sol, nil
}

// Tier identifies which stage of the fallback cascade produced a ranking.
type Tier int

const (
	TierNone         Tier = iota // No ranking could be computed
	TierUniform                  // Unpersonalized PageRank
	TierPersonalized             // Personalized PageRank
)

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case TierPersonalized:
		return "personalized"
	case TierUniform:
		return "uniform"
	default:
		return "none"
	}
}

// Outcome is a ranking together with how it was obtained.
type Outcome struct {
	Ranks      map[string]float64
	Tier       Tier
	Iterations int
	Converged  bool
}

// Calculator runs a Backend with a fallback cascade: personalized, then
// unpersonalized, then an empty ranking. It never returns an error.
type Calculator struct {
	backend Backend
	cfg     RankConfig
	logger  *zap.Logger
}

// NewCalculator creates a Calculator. A nil backend selects PowerIteration
// and a nil logger discards output.
func NewCalculator(backend Backend, cfg RankConfig, logger *zap.Logger) *Calculator {
	if backend == nil {
		backend = PowerIteration{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{backend: backend, cfg: cfg.withDefaults(), logger: logger}
}

// Calculate returns the PageRank of every node in g, or an empty map when
// no ranking can be computed.
func (c *Calculator) Calculate(g *Graph, personalization map[string]float64) map[string]float64 {
	return c.CalculateOutcome(g, personalization).Ranks
}

// CalculateOutcome is Calculate with the tier and solver statistics.
func (c *Calculator) CalculateOutcome(g *Graph, personalization map[string]float64) Outcome {
	if g == nil || g.NodeCount() == 0 {
		return Outcome{Ranks: map[string]float64{}, Tier: TierNone, Converged: true}
	}

	// Keep only positive entries for files that are graph nodes.
	valid := make(map[string]float64, len(personalization))
	for file, v := range personalization {
		if v > 0 && g.HasNode(file) {
			valid[file] = v
		}
	}

	if len(valid) > 0 {
		sol, err := c.run(g, valid)
		if err == nil {
			return c.outcome(sol, TierPersonalized)
		}
		c.logger.Warn("personalized pagerank failed, retrying without personalization",
			zap.String("backend", c.backend.Name()), zap.Error(err))
	}

	sol, err := c.run(g, nil)
	if err == nil {
		return c.outcome(sol, TierUniform)
	}
	c.logger.Warn("pagerank failed, returning empty ranking",
		zap.String("backend", c.backend.Name()), zap.Error(err))
	return Outcome{Ranks: map[string]float64{}, Tier: TierNone}
}

func (c *Calculator) outcome(sol Solution, tier Tier) Outcome {
	if !sol.Converged {
		c.logger.Debug("pagerank stopped before converging",
			zap.Int("iterations", sol.Iterations))
	}
	return Outcome{Ranks: sol.Ranks, Tier: tier, Iterations: sol.Iterations, Converged: sol.Converged}
}

// run invokes the backend and turns panics into ErrDegenerate.
func (c *Calculator) run(g *Graph, personalization map[string]float64) (sol Solution, err error) {
	defer func() {
		if r := recover(); r != nil {
			sol, err = Solution{}, fmt.Errorf("%w: backend %s panicked: %v", ErrDegenerate, c.backend.Name(), r)
		}
	}()
	return c.backend.PageRank(g, personalization, c.cfg)
}
