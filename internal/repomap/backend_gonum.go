// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph/network"
)

// ErrPersonalizationUnsupported is returned by backends that can only
// compute plain PageRank.
var ErrPersonalizationUnsupported = fmt.Errorf("%w: personalization not supported", ErrDegenerate)

// GonumBackend delegates to gonum's sparse PageRank. Parallel edges count
// with their summed weight. It does not personalize, so a Calculator using
// it always answers with the unpersonalized tier.
//
// gonum iterates until the tolerance is met and has no iteration cap, so
// RankConfig.MaxIterations is ignored. A returned Solution is always
// converged and reports zero Iterations because gonum does not expose the
// count.
type GonumBackend struct{}

// Name implements Backend.
func (GonumBackend) Name() string { return "gonum" }

// PageRank implements Backend.
func (GonumBackend) PageRank(g *Graph, personalization map[string]float64, cfg RankConfig) (Solution, error) {
	if len(personalization) > 0 {
		return Solution{}, ErrPersonalizationUnsupported
	}
	cfg = cfg.withDefaults()
	if g.NodeCount() == 0 {
		return Solution{Ranks: map[string]float64{}, Converged: true}, nil
	}

	scores := network.PageRankSparse(g.g, cfg.Damping, cfg.Tolerance)

	ranks := make(map[string]float64, len(g.ids))
	for path, id := range g.ids {
		s := scores[id]
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return Solution{}, fmt.Errorf("%w: non-finite rank for %s", ErrDegenerate, path)
		}
		ranks[path] = s
	}
	return Solution{Ranks: ranks, Converged: true}, nil
}
