// Package propagate implements the message-passing executor: generalized
// gather-scatter over a graph's feature tables.
//
// One update is a single logical step. All per-edge messages are computed
// first, then grouped by destination node into constant-degree mailboxes,
// then reduced, and finally an optional apply function rewrites node
// state. Messages for different destinations are independent, which is
// what allows the mailbox grouping to be processed bucket-by-bucket using
// dense tensors.
//
// The executor performs no implicit normalization: mean aggregation,
// attention weighting and similar schemes must be expressed explicitly by
// the message and reduce functions.
package propagate

import (
	"fmt"
	"sort"

	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// UpdateAll sends a message along every edge and reduces each node's
// mailbox into its feature table: the gather-scatter step
//
//	msg(e) for all edges -> group by destination -> reduce per node
//
// Nodes without incoming edges are left untouched; use UpdateAllApply to
// run per-node logic that covers them.
func UpdateAll[B tensor.Backend](g *graph.Graph[B], msg MessageFunc[B], reduce ReduceFunc[B]) error {
	return UpdateAllApply(g, msg, reduce, nil)
}

// UpdateAllApply is UpdateAll followed by an apply step. The apply
// function runs once over all nodes, including nodes whose mailbox was
// empty, after every reduction has been written back.
func UpdateAllApply[B tensor.Backend](g *graph.Graph[B], msg MessageFunc[B], reduce ReduceFunc[B], apply ApplyFunc[B]) error {
	edgeIDs := make([]int, g.NumEdges())
	for i := range edgeIDs {
		edgeIDs[i] = i
	}
	return run(g, edgeIDs, nil, msg, reduce, apply, func(e int) int { return e })
}

// UpdateNodes is the pull-style variant: only the given destination nodes
// receive and reduce messages, considering exactly the edges that enter
// them, and the apply step runs over those nodes only. Callers drive
// layer-by-layer propagation (tree aggregation, topological sweeps) by
// invoking this once per layer.
//
// Node IDs must be unique and in range.
func UpdateNodes[B tensor.Backend](g *graph.Graph[B], nodes []int, msg MessageFunc[B], reduce ReduceFunc[B], apply ApplyFunc[B]) error {
	targets := make([]int, len(nodes))
	copy(targets, nodes)
	sort.Ints(targets)

	for i, v := range targets {
		if v < 0 || v >= g.NumNodes() {
			return fmt.Errorf("%w: target node %d, graph has %d nodes",
				graph.ErrInvalidTopology, v, g.NumNodes())
		}
		if i > 0 && targets[i-1] == v {
			return fmt.Errorf("%w: duplicate target node %d", graph.ErrInvalidTopology, v)
		}
	}

	edgeIDs := make([]int, 0)
	for _, v := range targets {
		edgeIDs = append(edgeIDs, g.InEdges(v)...)
	}
	sort.Ints(edgeIDs)
	pos := make(map[int]int, len(edgeIDs))
	for i, e := range edgeIDs {
		pos[e] = i
	}

	return run(g, edgeIDs, targets, msg, reduce, apply, func(e int) int { return pos[e] })
}

// ApplyEdges recomputes edge features from batched source, destination
// and edge views: every key the function returns is stored in the edge
// feature table, one row per edge.
func ApplyEdges[B tensor.Backend](g *graph.Graph[B], fn MessageFunc[B]) error {
	edgeIDs := make([]int, g.NumEdges())
	for i := range edgeIDs {
		edgeIDs[i] = i
	}

	out, err := fn(newEdgeContext(g, edgeIDs))
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(out) {
		value := out[key]
		if value.Shape().Leading() != len(edgeIDs) {
			return fmt.Errorf("%w: edge result %q has leading dimension %d, graph has %d edges",
				graph.ErrShapeMismatch, key, value.Shape().Leading(), len(edgeIDs))
		}
		if err := g.SetEdgeFeature(key, value); err != nil {
			return err
		}
	}
	return nil
}

// run is the shared core of UpdateAll and UpdateNodes. targets == nil
// means all nodes. pos maps an edge ID to its row in the message batch.
//
// Ordering guarantee: all messages are computed before any reduction, and
// all reductions are written back before apply runs.
func run[B tensor.Backend](g *graph.Graph[B], edgeIDs []int, targets []int,
	msg MessageFunc[B], reduce ReduceFunc[B], apply ApplyFunc[B], pos func(edgeID int) int) error {

	backend := g.Backend()

	// Phase 1: messages for the whole edge batch.
	var msgs map[string]*tensor.RawTensor
	if msg != nil && reduce != nil && len(edgeIDs) > 0 {
		var err error
		msgs, err = msg(newEdgeContext(g, edgeIDs))
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(msgs) {
			if msgs[key].Shape().Leading() != len(edgeIDs) {
				return fmt.Errorf("%w: message %q has leading dimension %d, batch has %d edges",
					graph.ErrShapeMismatch, key, msgs[key].Shape().Leading(), len(edgeIDs))
			}
		}
	}

	// Phase 2: group by destination into constant-degree buckets and
	// reduce. Buckets touch disjoint nodes, so their results land in
	// disjoint rows of the output tensors.
	if reduce != nil && len(msgs) > 0 {
		targetList := targets
		if targetList == nil {
			targetList = make([]int, g.NumNodes())
			for i := range targetList {
				targetList[i] = i
			}
		}

		results := make(map[string]*tensor.RawTensor)
		for _, bk := range bucketByInDegree(g, targetList, pos) {
			rctx := &ReduceContext[B]{
				backend: backend,
				degree:  bk.degree,
				nodes:   bk.nodes,
				mailbox: mailboxFor(backend, msgs, bk),
			}
			reduced, err := reduce(rctx)
			if err != nil {
				return err
			}

			for _, key := range sortedKeys(reduced) {
				value := reduced[key]
				if value.Shape().Leading() != len(bk.nodes) {
					return fmt.Errorf("%w: reduced %q has leading dimension %d, bucket has %d nodes",
						graph.ErrShapeMismatch, key, value.Shape().Leading(), len(bk.nodes))
				}
				base, ok := results[key]
				if !ok {
					base = resultBase(g, key, value)
					results[key] = base
				}
				backend.ScatterRows(base, bk.nodes, value)
			}
		}

		for _, key := range sortedKeys(results) {
			if err := g.SetNodeFeature(key, results[key]); err != nil {
				return err
			}
		}
	}

	// Phase 3: apply, over every target node regardless of mailbox size.
	if apply != nil {
		nctx := newNodeContext(g, targets)
		out, err := apply(nctx)
		if err != nil {
			return err
		}
		for _, key := range sortedKeys(out) {
			value := out[key]
			if value.Shape().Leading() != nctx.NumNodes() {
				return fmt.Errorf("%w: applied %q has leading dimension %d, update targets %d nodes",
					graph.ErrShapeMismatch, key, value.Shape().Leading(), nctx.NumNodes())
			}
			if targets != nil {
				base := resultBase(g, key, value)
				backend.ScatterRows(base, targets, value)
				value = base
			}
			if err := g.SetNodeFeature(key, value); err != nil {
				return err
			}
		}
	}

	return nil
}

// mailboxFor returns the lazy mailbox accessor for one bucket: gather the
// bucket's message rows and view them as [nodes, degree, ...].
func mailboxFor[B tensor.Backend](backend B, msgs map[string]*tensor.RawTensor, bk bucket) func(string) (*tensor.RawTensor, bool) {
	cache := make(map[string]*tensor.RawTensor)
	return func(key string) (*tensor.RawTensor, bool) {
		if m, ok := cache[key]; ok {
			return m, true
		}
		src, ok := msgs[key]
		if !ok {
			return nil, false
		}
		gathered := backend.TakeRows(src, bk.flat)
		shape := append(tensor.Shape{len(bk.nodes), bk.degree}, src.Shape().RowShape()...)
		m := backend.Reshape(gathered, shape)
		cache[key] = m
		return m, true
	}
}

// resultBase produces the full-size tensor a partial update scatters
// into: a clone of the existing feature when its row shape and dtype are
// compatible, otherwise fresh zeros. Rows of nodes that receive no update
// therefore keep their previous value where possible.
func resultBase[B tensor.Backend](g *graph.Graph[B], key string, rowSrc *tensor.RawTensor) *tensor.RawTensor {
	rows := g.NumNodes()
	rowShape := rowSrc.Shape().RowShape()

	if existing, err := g.NodeFeature(key); err == nil &&
		existing.DType() == rowSrc.DType() &&
		existing.Shape().RowShape().Equal(rowShape) {
		return existing.Clone()
	}

	base, err := tensor.NewRaw(append(tensor.Shape{rows}, rowShape...), rowSrc.DType(), g.Backend().Device())
	if err != nil {
		panic(fmt.Sprintf("result allocation: %v", err))
	}
	return base
}

func sortedKeys(m map[string]*tensor.RawTensor) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
