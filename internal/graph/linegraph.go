package graph

import (
	"fmt"

	"github.com/relay-ml/relay/internal/tensor"
)

// LineGraph constructs the line graph of g: a derived graph whose node set
// is g's edge set, with line-graph node i corresponding to edge i of the
// original graph (the correspondence is the identity on IDs).
//
// For every pair of original edges a = (u, v) and b = (v, w) sharing the
// intermediate node v, the line graph contains an edge from node a to
// node b. When backtracking is false, pairs where b reverses a (w == u)
// are excluded; this implements the non-backtracking operator used by
// line-graph neural networks. A self-loop (u, u) pairs with itself and is
// likewise excluded under the non-backtracking rule.
//
// Edge features of g are carried over as node features of the line graph,
// sharing the underlying tensors.
//
// The result is a snapshot: it does not track later mutations of g's edge
// set, and callers must rebuild it after changing the original topology.
func LineGraph[B tensor.Backend](g *Graph[B], backtracking bool) *Graph[B] {
	// Bucket edge IDs by source node so each edge a = (u, v) only pairs
	// with edges leaving v, giving O(M * avg out-degree of v) work.
	bySrc := make([][]int, g.NumNodes())
	for id, src := range g.Srcs() {
		bySrc[src] = append(bySrc[src], id)
	}

	var lineEdges []Edge
	for a, e := range g.Edges() {
		for _, b := range bySrc[e.Dst] {
			if !backtracking && g.Edge(b).Dst == e.Src {
				continue
			}
			lineEdges = append(lineEdges, Edge{Src: a, Dst: b})
		}
	}

	lg, err := New(g.NumEdges(), lineEdges, g.Backend())
	if err != nil {
		// Unreachable: every endpoint is an edge ID of g by construction.
		panic(fmt.Sprintf("line graph construction: %v", err))
	}

	for _, key := range g.EdgeFrame().Keys() {
		value, _ := g.EdgeFrame().Get(key)
		if err := lg.SetNodeFeature(key, value); err != nil {
			panic(fmt.Sprintf("line graph feature transfer: %v", err))
		}
	}

	return lg
}
