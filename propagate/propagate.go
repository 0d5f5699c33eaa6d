// Copyright 2026 Relay Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package propagate provides the public API of the message-passing
// executor: generalized gather-scatter over a graph's feature tables.
//
// Example:
//
//	// Sum each node's incoming neighbor features.
//	err := propagate.UpdateAll(g,
//	    propagate.CopySrc[*cpu.Backend]("h", "m"),
//	    propagate.Sum[*cpu.Backend]("m", "h"))
package propagate

import (
	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/propagate"
	"github.com/relay-ml/relay/tensor"
)

// EdgeContext is the batched, read-only view handed to message and
// edge-apply functions.
type EdgeContext[B tensor.Backend] = propagate.EdgeContext[B]

// ReduceContext is the per-bucket view handed to reduce functions; its
// mailboxes have shape [nodes, degree, ...].
type ReduceContext[B tensor.Backend] = propagate.ReduceContext[B]

// NodeContext is the view handed to apply functions.
type NodeContext[B tensor.Backend] = propagate.NodeContext[B]

// MessageFunc computes per-edge messages for a batch of edges.
type MessageFunc[B tensor.Backend] = propagate.MessageFunc[B]

// ReduceFunc aggregates one in-degree bucket's mailbox.
type ReduceFunc[B tensor.Backend] = propagate.ReduceFunc[B]

// ApplyFunc post-processes node state after reduction.
type ApplyFunc[B tensor.Backend] = propagate.ApplyFunc[B]

// UpdateAll sends a message along every edge and reduces each node's
// mailbox into its feature table.
func UpdateAll[B tensor.Backend](g *graph.Graph[B], msg MessageFunc[B], reduce ReduceFunc[B]) error {
	return propagate.UpdateAll(g, msg, reduce)
}

// UpdateAllApply is UpdateAll followed by an apply step over all nodes,
// including nodes that received no messages.
func UpdateAllApply[B tensor.Backend](g *graph.Graph[B], msg MessageFunc[B], reduce ReduceFunc[B], apply ApplyFunc[B]) error {
	return propagate.UpdateAllApply(g, msg, reduce, apply)
}

// UpdateNodes is the pull-style variant restricted to the given
// destination nodes and the edges entering them.
func UpdateNodes[B tensor.Backend](g *graph.Graph[B], nodes []int, msg MessageFunc[B], reduce ReduceFunc[B], apply ApplyFunc[B]) error {
	return propagate.UpdateNodes(g, nodes, msg, reduce, apply)
}

// ApplyEdges recomputes edge features from batched source, destination
// and edge views.
func ApplyEdges[B tensor.Backend](g *graph.Graph[B], fn MessageFunc[B]) error {
	return propagate.ApplyEdges(g, fn)
}

// EdgeSoftmax normalizes the edge feature inKey over each destination
// node's incoming edges, storing the result as outKey.
func EdgeSoftmax[B tensor.Backend](g *graph.Graph[B], inKey, outKey string) error {
	return propagate.EdgeSoftmax(g, inKey, outKey)
}

// Built-in message functions.

// CopySrc forwards the source node's feature srcKey as message msgKey.
func CopySrc[B tensor.Backend](srcKey, msgKey string) MessageFunc[B] {
	return propagate.CopySrc[B](srcKey, msgKey)
}

// CopyEdge forwards the edge feature edgeKey as message msgKey.
func CopyEdge[B tensor.Backend](edgeKey, msgKey string) MessageFunc[B] {
	return propagate.CopyEdge[B](edgeKey, msgKey)
}

// SrcMulEdge multiplies the source feature with the edge feature (with
// broadcasting) and sends the product as msgKey.
func SrcMulEdge[B tensor.Backend](srcKey, edgeKey, msgKey string) MessageFunc[B] {
	return propagate.SrcMulEdge[B](srcKey, edgeKey, msgKey)
}

// Built-in reduce functions. All are well-defined for a mailbox of size 1
// and invariant to message order.

// Sum sums the mailbox for msgKey into node feature outKey.
func Sum[B tensor.Backend](msgKey, outKey string) ReduceFunc[B] {
	return propagate.Sum[B](msgKey, outKey)
}

// Mean averages the mailbox for msgKey into node feature outKey.
func Mean[B tensor.Backend](msgKey, outKey string) ReduceFunc[B] {
	return propagate.Mean[B](msgKey, outKey)
}

// Max takes the element-wise maximum of the mailbox for msgKey into node
// feature outKey.
func Max[B tensor.Backend](msgKey, outKey string) ReduceFunc[B] {
	return propagate.Max[B](msgKey, outKey)
}
