// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"cmp"
	"slices"

	"github.com/petar-djukic/reporank/pkg/types"
)

type defKey struct {
	file, symbol string
}

// Distribute spreads each file's rank over its outgoing edges in
// proportion to edge weight and sums the shares per (defining file,
// symbol). Each edge's share is also stored on the graph's Edge.Rank,
// replacing any earlier share; edges of unranked files carry zero.
// The result is ordered by rank, highest first, then by file and symbol.
func Distribute(g *Graph, ranks map[string]float64) []types.DefinitionRank {
	if g == nil {
		return nil
	}
	for i := range g.edges {
		g.edges[i].Rank = 0
	}
	if len(ranks) == 0 {
		return nil
	}

	totals := make(map[defKey]float64)
	for _, src := range g.nodes {
		rank := ranks[src]
		if !(rank > 0) {
			continue
		}
		total := g.OutWeight(src)
		if !(total > 0) {
			continue
		}
		for _, j := range g.out[src] {
			e := &g.edges[j]
			e.Rank = rank * e.Weight / total
			totals[defKey{file: e.To, symbol: e.Symbol}] += e.Rank
		}
	}

	defs := make([]types.DefinitionRank, 0, len(totals))
	for k, r := range totals {
		defs = append(defs, types.DefinitionRank{File: k.file, Symbol: k.symbol, Rank: r})
	}
	slices.SortFunc(defs, func(a, b types.DefinitionRank) int {
		if c := cmp.Compare(b.Rank, a.Rank); c != 0 {
			return c
		}
		if c := cmp.Compare(a.File, b.File); c != 0 {
			return c
		}
		return cmp.Compare(a.Symbol, b.Symbol)
	})
	return defs
}
