// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"time"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/topo"
)

// GraphMetrics summarizes one ranking run.
type GraphMetrics struct {
	Nodes            int           `json:"nodes"`
	Edges            int           `json:"edges"`
	SelfLoops        int           `json:"self_loops"`
	Components       int           `json:"components"`
	WeaklyConnected  bool          `json:"weakly_connected"`
	Density          float64       `json:"density"`
	IsolatedSymbols  int           `json:"isolated_symbols"`
	ConnectedSymbols int           `json:"connected_symbols"`
	BuildTime        time.Duration `json:"build_time"`
	RankTime         time.Duration `json:"rank_time"`
	Tier             string        `json:"tier"`
	Iterations       int           `json:"iterations"`
	Converged        bool          `json:"converged"`
}

// Measure computes the structural metrics of g. Density counts parallel
// edges, so a multigraph can exceed 1.
func Measure(g *Graph) GraphMetrics {
	m := GraphMetrics{}
	if g == nil {
		return m
	}
	m.Nodes = g.NodeCount()
	m.Edges = g.EdgeCount()
	m.IsolatedSymbols = g.Stats.IsolatedSymbols
	m.ConnectedSymbols = g.Stats.ConnectedSymbols

	for _, e := range g.edges {
		if e.From == e.To {
			m.SelfLoops++
		}
	}
	if m.Nodes > 1 {
		m.Density = float64(m.Edges) / float64(m.Nodes*(m.Nodes-1))
	}
	if m.Nodes > 0 {
		m.Components = len(topo.ConnectedComponents(graph.Undirect{G: g.g}))
		m.WeaklyConnected = m.Components == 1
	}
	return m
}
