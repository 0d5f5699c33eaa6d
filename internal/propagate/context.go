package propagate

import (
	"fmt"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// EdgeContext is the read-only view handed to message and edge-apply
// functions. It exposes batched features for one set of edges: gathered
// source-node rows, gathered destination-node rows, and edge rows, all
// with leading dimension equal to the batch's edge count and ordered by
// edge ID.
//
// Gathers are performed lazily and cached per key, so a function reading
// the same feature twice pays for one gather.
type EdgeContext[B tensor.Backend] struct {
	g       *graph.Graph[B]
	edgeIDs []int
	srcIdx  []int
	dstIdx  []int

	srcCache  map[string]*tensor.RawTensor
	dstCache  map[string]*tensor.RawTensor
	edgeCache map[string]*tensor.RawTensor
}

func newEdgeContext[B tensor.Backend](g *graph.Graph[B], edgeIDs []int) *EdgeContext[B] {
	srcIdx := make([]int, len(edgeIDs))
	dstIdx := make([]int, len(edgeIDs))
	for i, e := range edgeIDs {
		srcIdx[i] = g.Edge(e).Src
		dstIdx[i] = g.Edge(e).Dst
	}
	return &EdgeContext[B]{
		g:         g,
		edgeIDs:   edgeIDs,
		srcIdx:    srcIdx,
		dstIdx:    dstIdx,
		srcCache:  make(map[string]*tensor.RawTensor),
		dstCache:  make(map[string]*tensor.RawTensor),
		edgeCache: make(map[string]*tensor.RawTensor),
	}
}

// NumEdges returns the number of edges in the batch.
func (c *EdgeContext[B]) NumEdges() int {
	return len(c.edgeIDs)
}

// Backend returns the graph's compute backend.
func (c *EdgeContext[B]) Backend() B {
	return c.g.Backend()
}

// Src returns the source-node rows of the given node feature, one row per
// edge in the batch. Fails with ErrUndefinedFeature if the key was never
// set.
func (c *EdgeContext[B]) Src(key string) (*tensor.RawTensor, error) {
	if cached, ok := c.srcCache[key]; ok {
		return cached, nil
	}
	feat, err := c.g.NodeFeature(key)
	if err != nil {
		return nil, fmt.Errorf("%w: source node feature %q", graph.ErrUndefinedFeature, key)
	}
	gathered := c.g.Backend().TakeRows(feat, c.srcIdx)
	c.srcCache[key] = gathered
	return gathered, nil
}

// Dst returns the destination-node rows of the given node feature, one row
// per edge in the batch. Fails with ErrUndefinedFeature if the key was
// never set.
func (c *EdgeContext[B]) Dst(key string) (*tensor.RawTensor, error) {
	if cached, ok := c.dstCache[key]; ok {
		return cached, nil
	}
	feat, err := c.g.NodeFeature(key)
	if err != nil {
		return nil, fmt.Errorf("%w: destination node feature %q", graph.ErrUndefinedFeature, key)
	}
	gathered := c.g.Backend().TakeRows(feat, c.dstIdx)
	c.dstCache[key] = gathered
	return gathered, nil
}

// Edge returns the edge rows of the given edge feature, one row per edge
// in the batch. Fails with ErrUndefinedFeature if the key was never set.
func (c *EdgeContext[B]) Edge(key string) (*tensor.RawTensor, error) {
	if cached, ok := c.edgeCache[key]; ok {
		return cached, nil
	}
	feat, err := c.g.EdgeFeature(key)
	if err != nil {
		return nil, fmt.Errorf("%w: edge feature %q", graph.ErrUndefinedFeature, key)
	}
	gathered := c.g.Backend().TakeRows(feat, c.edgeIDs)
	c.edgeCache[key] = gathered
	return gathered, nil
}

// ReduceContext is the view handed to reduce functions for one in-degree
// bucket. All nodes in a bucket share the same in-degree, so each message
// key maps to a dense mailbox tensor of shape [numNodes, degree, ...],
// with the degree axis in ascending edge-ID order.
//
// Reduce functions must be invariant to permutations of the degree axis;
// the executor fixes edge-ID order for determinism only.
type ReduceContext[B tensor.Backend] struct {
	backend B
	degree  int
	nodes   []int
	mailbox func(key string) (*tensor.RawTensor, bool)
}

// NumNodes returns the number of destination nodes in the bucket.
func (c *ReduceContext[B]) NumNodes() int {
	return len(c.nodes)
}

// Degree returns the shared in-degree of the bucket; always >= 1.
func (c *ReduceContext[B]) Degree() int {
	return c.degree
}

// Backend returns the graph's compute backend.
func (c *ReduceContext[B]) Backend() B {
	return c.backend
}

// Mailbox returns the grouped messages for the given message key as a
// [numNodes, degree, ...] tensor. Fails with ErrUndefinedFeature if the
// message function produced no such key.
func (c *ReduceContext[B]) Mailbox(key string) (*tensor.RawTensor, error) {
	m, ok := c.mailbox(key)
	if !ok {
		return nil, fmt.Errorf("%w: message key %q", graph.ErrUndefinedFeature, key)
	}
	return m, nil
}

// NodeContext is the view handed to apply functions. It exposes the
// current node features (after any reduction ran) for the update's target
// nodes, one row per target node.
type NodeContext[B tensor.Backend] struct {
	g     *graph.Graph[B]
	nodes []int // nil means all nodes
	cache map[string]*tensor.RawTensor
}

func newNodeContext[B tensor.Backend](g *graph.Graph[B], nodes []int) *NodeContext[B] {
	return &NodeContext[B]{g: g, nodes: nodes, cache: make(map[string]*tensor.RawTensor)}
}

// NumNodes returns the number of target nodes.
func (c *NodeContext[B]) NumNodes() int {
	if c.nodes == nil {
		return c.g.NumNodes()
	}
	return len(c.nodes)
}

// Backend returns the graph's compute backend.
func (c *NodeContext[B]) Backend() B {
	return c.g.Backend()
}

// Has reports whether the node feature key is present.
func (c *NodeContext[B]) Has(key string) bool {
	return c.g.NodeFrame().Has(key)
}

// Feature returns the rows of the given node feature for the target
// nodes. Fails with ErrUndefinedFeature if the key was never set.
func (c *NodeContext[B]) Feature(key string) (*tensor.RawTensor, error) {
	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}
	feat, err := c.g.NodeFeature(key)
	if err != nil {
		return nil, fmt.Errorf("%w: node feature %q", graph.ErrUndefinedFeature, key)
	}
	if c.nodes != nil {
		feat = c.g.Backend().TakeRows(feat, c.nodes)
	}
	c.cache[key] = feat
	return feat, nil
}
