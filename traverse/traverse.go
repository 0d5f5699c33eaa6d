// Copyright 2026 Relay Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package traverse provides the public API for schedule-driven traversal
// of directed acyclic graphs.
package traverse

import (
	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/traverse"
	"github.com/relay-ml/relay/tensor"
)

// ErrCyclicGraph reports a topological layering request on a graph that
// contains a directed cycle.
var ErrCyclicGraph = traverse.ErrCyclicGraph

// TopologicalLayers partitions the nodes of a DAG into generations:
// layer 0 holds the zero-in-degree nodes, and every node appears in a
// strictly later layer than all of its predecessors. Fails with
// ErrCyclicGraph if the graph contains a cycle.
//
// Feed the layers one at a time into propagate.UpdateNodes for bottom-up
// (leaves-to-root) tree aggregation.
func TopologicalLayers[B tensor.Backend](g *graph.Graph[B]) ([][]int, error) {
	return traverse.TopologicalLayers(g)
}

// ReverseLayers returns the layers of TopologicalLayers in reverse order,
// the root-to-leaf schedule for top-down propagation.
func ReverseLayers[B tensor.Backend](g *graph.Graph[B]) ([][]int, error) {
	return traverse.ReverseLayers(g)
}
