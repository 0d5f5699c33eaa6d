// Package graph implements the directed multigraph store underlying the
// Relay framework: topology, per-node and per-edge feature tables, and
// derived-graph construction.
//
// Node IDs are contiguous in [0, NumNodes) and stable for the graph's
// lifetime; edge IDs are contiguous in [0, NumEdges) and assigned in
// insertion order. Self-loops and parallel edges are permitted.
//
// A graph is bound to a single compute backend at construction time and
// assumes single-writer access: feature tables may be mutated between
// message-passing calls, not during them, and the store provides no
// locking of its own.
package graph

import (
	"fmt"

	"github.com/relay-ml/relay/internal/tensor"
)

// Edge is a directed edge from Src to Dst.
type Edge struct {
	Src int
	Dst int
}

// Graph is a directed multigraph with node and edge feature tables.
type Graph[B tensor.Backend] struct {
	backend  B
	numNodes int
	edges    []Edge

	srcs []int // srcs[e] = edges[e].Src
	dsts []int // dsts[e] = edges[e].Dst

	inEdges [][]int // per node, incoming edge IDs in ascending order
	outDeg  []int

	nodeFrame *Frame
	edgeFrame *Frame
}

// New constructs a graph from an explicit node count and edge list.
// Fails with ErrInvalidTopology if any endpoint is negative or >= numNodes.
// The edge slice is copied; edge ID i corresponds to edges[i].
func New[B tensor.Backend](numNodes int, edges []Edge, backend B) (*Graph[B], error) {
	if numNodes < 0 {
		return nil, fmt.Errorf("%w: negative node count %d", ErrInvalidTopology, numNodes)
	}

	g := &Graph[B]{
		backend:   backend,
		numNodes:  numNodes,
		edges:     make([]Edge, len(edges)),
		srcs:      make([]int, len(edges)),
		dsts:      make([]int, len(edges)),
		inEdges:   make([][]int, numNodes),
		outDeg:    make([]int, numNodes),
		nodeFrame: newFrame("node", numNodes),
		edgeFrame: newFrame("edge", len(edges)),
	}
	copy(g.edges, edges)

	for i, e := range g.edges {
		if e.Src < 0 || e.Src >= numNodes {
			return nil, fmt.Errorf("%w: edge %d has source %d, graph has %d nodes",
				ErrInvalidTopology, i, e.Src, numNodes)
		}
		if e.Dst < 0 || e.Dst >= numNodes {
			return nil, fmt.Errorf("%w: edge %d has destination %d, graph has %d nodes",
				ErrInvalidTopology, i, e.Dst, numNodes)
		}
		g.srcs[i] = e.Src
		g.dsts[i] = e.Dst
		g.inEdges[e.Dst] = append(g.inEdges[e.Dst], i)
		g.outDeg[e.Src]++
	}

	return g, nil
}

// Backend returns the compute backend this graph is bound to.
func (g *Graph[B]) Backend() B {
	return g.backend
}

// NumNodes returns the number of nodes.
func (g *Graph[B]) NumNodes() int {
	return g.numNodes
}

// NumEdges returns the number of edges.
func (g *Graph[B]) NumEdges() int {
	return len(g.edges)
}

// InDegree returns the number of edges whose destination is node v.
func (g *Graph[B]) InDegree(v int) int {
	return len(g.inEdges[v])
}

// OutDegree returns the number of edges whose source is node v.
func (g *Graph[B]) OutDegree(v int) int {
	return g.outDeg[v]
}

// Edges returns the edges in insertion order: edge ID i is the i-th entry.
// The returned slice is shared and must not be modified.
func (g *Graph[B]) Edges() []Edge {
	return g.edges
}

// Edge returns the edge with the given ID.
func (g *Graph[B]) Edge(id int) Edge {
	return g.edges[id]
}

// InEdges returns the IDs of edges entering node v, in ascending edge-ID
// order. The returned slice is shared and must not be modified.
func (g *Graph[B]) InEdges(v int) []int {
	return g.inEdges[v]
}

// Srcs returns the per-edge source node array (index = edge ID).
// The returned slice is shared and must not be modified.
func (g *Graph[B]) Srcs() []int {
	return g.srcs
}

// Dsts returns the per-edge destination node array (index = edge ID).
// The returned slice is shared and must not be modified.
func (g *Graph[B]) Dsts() []int {
	return g.dsts
}

// NodeFrame returns the node feature table.
func (g *Graph[B]) NodeFrame() *Frame {
	return g.nodeFrame
}

// EdgeFrame returns the edge feature table.
func (g *Graph[B]) EdgeFrame() *Frame {
	return g.edgeFrame
}

// SetNodeFeature assigns a node feature table entry.
// Fails with ErrShapeMismatch if the leading dimension is not NumNodes.
func (g *Graph[B]) SetNodeFeature(key string, value *tensor.RawTensor) error {
	return g.nodeFrame.Set(key, value)
}

// SetEdgeFeature assigns an edge feature table entry.
// Fails with ErrShapeMismatch if the leading dimension is not NumEdges.
func (g *Graph[B]) SetEdgeFeature(key string, value *tensor.RawTensor) error {
	return g.edgeFrame.Set(key, value)
}

// NodeFeature returns the node feature stored under key.
// Fails with ErrKeyNotFound if absent.
func (g *Graph[B]) NodeFeature(key string) (*tensor.RawTensor, error) {
	return g.nodeFrame.Get(key)
}

// EdgeFeature returns the edge feature stored under key.
// Fails with ErrKeyNotFound if absent.
func (g *Graph[B]) EdgeFeature(key string) (*tensor.RawTensor, error) {
	return g.edgeFrame.Get(key)
}

// String returns a short description of the graph.
func (g *Graph[B]) String() string {
	return fmt.Sprintf("Graph(%d nodes, %d edges, %s)", g.numNodes, len(g.edges), g.backend.Name())
}
