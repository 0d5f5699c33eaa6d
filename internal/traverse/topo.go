// Package traverse computes node orderings for schedule-driven
// propagation over directed acyclic graphs.
package traverse

import (
	"errors"
	"fmt"
	"sort"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// ErrCyclicGraph reports a topological layering request on a graph that
// contains a directed cycle.
var ErrCyclicGraph = errors.New("graph contains a cycle")

// TopologicalLayers partitions the nodes of a DAG into generations:
// layer 0 holds every node with in-degree zero, and each following layer
// holds the nodes whose remaining in-degree drops to zero once all
// earlier layers are removed. Every node therefore appears in a strictly
// later layer than all of its predecessors.
//
// Node IDs within a layer are in ascending order. Fails with
// ErrCyclicGraph if the graph contains a cycle.
//
// Callers drive bottom-up (leaves-to-root) propagation by feeding the
// layers one at a time into the message-passing executor's pull-style
// update.
func TopologicalLayers[B tensor.Backend](g *graph.Graph[B]) ([][]int, error) {
	remaining := make([]int, g.NumNodes())
	for v := range remaining {
		remaining[v] = g.InDegree(v)
	}

	frontier := make([]int, 0)
	for v, d := range remaining {
		if d == 0 {
			frontier = append(frontier, v)
		}
	}

	succs := successors(g)

	var layers [][]int
	assigned := 0
	for len(frontier) > 0 {
		sort.Ints(frontier)
		layers = append(layers, frontier)
		assigned += len(frontier)

		var next []int
		for _, v := range frontier {
			for _, w := range succs[v] {
				remaining[w]--
				if remaining[w] == 0 {
					next = append(next, w)
				}
			}
		}
		frontier = next
	}

	if assigned != g.NumNodes() {
		return nil, fmt.Errorf("%w: %d of %d nodes unreachable from any zero-in-degree node",
			ErrCyclicGraph, g.NumNodes()-assigned, g.NumNodes())
	}
	return layers, nil
}

// ReverseLayers returns the layers of TopologicalLayers in reverse order,
// the root-to-leaf schedule for top-down propagation.
func ReverseLayers[B tensor.Backend](g *graph.Graph[B]) ([][]int, error) {
	layers, err := TopologicalLayers(g)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(layers)-1; i < j; i, j = i+1, j-1 {
		layers[i], layers[j] = layers[j], layers[i]
	}
	return layers, nil
}

// successors builds per-node successor lists, with multiplicity for
// parallel edges so each one decrements the in-degree it contributed.
func successors[B tensor.Backend](g *graph.Graph[B]) [][]int {
	succs := make([][]int, g.NumNodes())
	for _, e := range g.Edges() {
		succs[e.Src] = append(succs[e.Src], e.Dst)
	}
	return succs
}
