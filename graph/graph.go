// Copyright 2026 Relay Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API for the directed multigraph
// store: topology, node and edge feature tables, and line-graph
// construction.
//
// Example:
//
//	backend := cpu.New()
//	g, err := graph.New(3, []graph.Edge{{Src: 0, Dst: 2}, {Src: 1, Dst: 2}}, backend)
package graph

import (
	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/tensor"
)

// Edge is a directed edge from Src to Dst.
type Edge = graph.Edge

// Graph is a directed multigraph with node and edge feature tables, bound
// to a single compute backend.
type Graph[B tensor.Backend] = graph.Graph[B]

// Frame is a feature table mapping string keys to tensors with one row
// per node or edge.
type Frame = graph.Frame

// Errors surfaced by graph operations.
var (
	ErrInvalidTopology  = graph.ErrInvalidTopology
	ErrShapeMismatch    = graph.ErrShapeMismatch
	ErrKeyNotFound      = graph.ErrKeyNotFound
	ErrUndefinedFeature = graph.ErrUndefinedFeature
)

// New constructs a graph from an explicit node count and edge list.
// Fails with ErrInvalidTopology if any endpoint is negative or >= numNodes.
func New[B tensor.Backend](numNodes int, edges []Edge, backend B) (*Graph[B], error) {
	return graph.New(numNodes, edges, backend)
}

// LineGraph constructs the line graph of g: one node per edge of g, with
// an edge between every pair of original edges (u, v), (v, w) sharing the
// intermediate node v. When backtracking is false, the pair is skipped if
// it reverses itself (w == u), implementing the non-backtracking
// operator. Line-graph node i corresponds to original edge i, and g's
// edge features carry over as line-graph node features.
func LineGraph[B tensor.Backend](g *Graph[B], backtracking bool) *Graph[B] {
	return graph.LineGraph(g, backtracking)
}
