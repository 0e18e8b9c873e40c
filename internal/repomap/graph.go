// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package repomap ranks the files and definitions of a repository by how
// central they are to its cross-file symbol references.
package repomap

import (
	"maps"
	"math"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/petar-djukic/reporank/pkg/types"
)

const (
	isolatedWeight   = 0.1
	crowdedThreshold = 5
	crowdedFactor    = 0.1
	focusedFactor    = 50.0
)

// Edge is one symbol-specific directed edge of the dependency graph. Two
// files linked by several symbols have several edges.
type Edge struct {
	From   string  // Referencing file
	To     string  // Defining file
	Symbol string  // Symbol that links the two files
	Weight float64 // Always positive
	Rank   float64 // Share of From's rank carried by this edge, set by Distribute
}

// symbolLine mirrors an Edge inside the gonum multigraph.
type symbolLine struct {
	multi.WeightedLine
	edge int
}

// BuildStats holds diagnostic counters collected while building a graph.
type BuildStats struct {
	Edges            int
	IsolatedSymbols  int // Defined but never referenced
	ConnectedSymbols int // Defined and referenced
	UndefinedSymbols int // Referenced but never defined
	DroppedEdges     int // Non-positive weights from a custom model
}

// Graph is a directed multigraph whose nodes are file paths and whose
// edges are symbol references. Nodes and edges are iterated in a fixed
// order so that everything computed from a graph is reproducible.
type Graph struct {
	g     *multi.WeightedDirectedGraph
	ids   map[string]int64
	nodes []string
	edges []Edge
	out   map[string][]int

	Stats BuildStats
}

func newGraph() *Graph {
	return &Graph{
		g:   multi.NewWeightedDirectedGraph(),
		ids: make(map[string]int64),
		out: make(map[string][]int),
	}
}

func (g *Graph) node(path string) graph.Node {
	if id, ok := g.ids[path]; ok {
		return g.g.Node(id)
	}
	n := g.g.NewNode()
	g.g.AddNode(n)
	g.ids[path] = n.ID()
	g.nodes = append(g.nodes, path)
	return n
}

func (g *Graph) addEdge(from, to, symbol string, weight float64) {
	f, t := g.node(from), g.node(to)
	idx := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Symbol: symbol, Weight: weight})
	g.out[from] = append(g.out[from], idx)

	l := g.g.NewWeightedLine(f, t, weight).(multi.WeightedLine)
	g.g.SetWeightedLine(symbolLine{WeightedLine: l, edge: idx})
	g.Stats.Edges++
}

// Nodes returns the file paths of the graph in ascending order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// NodeCount returns the number of files in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, counting parallel edges separately.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// HasNode reports whether path is a node of the graph.
func (g *Graph) HasNode(path string) bool {
	_, ok := g.ids[path]
	return ok
}

// OutEdges returns the edges leaving path in insertion order.
func (g *Graph) OutEdges(path string) []Edge {
	idx := g.out[path]
	edges := make([]Edge, len(idx))
	for i, j := range idx {
		edges[i] = g.edges[j]
	}
	return edges
}

// OutWeight returns the total weight of the edges leaving path.
func (g *Graph) OutWeight(path string) float64 {
	var w float64
	for _, j := range g.out[path] {
		w += g.edges[j].Weight
	}
	return w
}

// Builder turns tags into a dependency graph.
type Builder struct {
	model  IdentifierModel
	logger *zap.Logger
}

// NewBuilder creates a Builder. A nil model selects DefaultIdentifierModel
// and a nil logger discards output.
func NewBuilder(model IdentifierModel, logger *zap.Logger) *Builder {
	if model == nil {
		model = DefaultIdentifierModel{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{model: model, logger: logger}
}

// Build constructs the dependency graph. Every referencing file gets an
// edge to every file defining the symbol, weighted by the identifier
// multiplier, a penalty for symbols defined in many files, a boost for
// focused referencers, and the square root of the reference count.
// Symbols nobody references give each defining file a weak self-edge so
// it still takes part in ranking.
func (b *Builder) Build(tags []types.Tag, focusedFiles, mentionedIdents []string) (*Graph, error) {
	defines := make(map[string]map[string]bool)
	references := make(map[string]map[string]int)

	for _, t := range tags {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		switch t.Kind {
		case types.Definition:
			if defines[t.Name] == nil {
				defines[t.Name] = make(map[string]bool)
			}
			defines[t.Name][t.RelPath] = true
		case types.Reference:
			if references[t.Name] == nil {
				references[t.Name] = make(map[string]int)
			}
			references[t.Name][t.RelPath]++
		}
	}

	focused := toSet(focusedFiles)
	mentioned := toSet(mentionedIdents)
	g := newGraph()

	for _, sym := range slices.Sorted(maps.Keys(defines)) {
		definers := slices.Sorted(maps.Keys(defines[sym]))

		refs, ok := references[sym]
		if !ok {
			for _, f := range definers {
				g.addEdge(f, f, sym, isolatedWeight)
			}
			g.Stats.IsolatedSymbols++
			continue
		}
		g.Stats.ConnectedSymbols++

		base := b.model.Multiplier(sym, mentioned)
		if len(definers) > crowdedThreshold {
			base *= crowdedFactor
		}

		for _, referencer := range slices.Sorted(maps.Keys(refs)) {
			mul := base
			if focused[referencer] {
				mul *= focusedFactor
			}
			weight := mul * math.Sqrt(float64(refs[referencer]))
			if !(weight > 0) || math.IsInf(weight, 0) {
				g.Stats.DroppedEdges += len(definers)
				continue
			}
			for _, definer := range definers {
				g.addEdge(referencer, definer, sym, weight)
			}
		}
	}

	for sym := range references {
		if _, ok := defines[sym]; !ok {
			g.Stats.UndefinedSymbols++
		}
	}

	slices.Sort(g.nodes)

	b.logger.Debug("dependency graph built",
		zap.Int("tags", len(tags)),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
		zap.Int("isolated_symbols", g.Stats.IsolatedSymbols),
		zap.Int("connected_symbols", g.Stats.ConnectedSymbols),
	)
	return g, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, s := range items {
		set[s] = true
	}
	return set
}
