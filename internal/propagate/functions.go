package propagate

import (
	"github.com/relay-ml/relay/internal/tensor"
)

// MessageFunc computes per-edge messages for a batch of edges. It returns
// a mapping of message key to tensor with one row per edge in the batch.
// Messages are ephemeral: they exist only for the duration of a single
// update call and are never stored in the graph.
type MessageFunc[B tensor.Backend] func(e *EdgeContext[B]) (map[string]*tensor.RawTensor, error)

// ReduceFunc aggregates the mailbox of one in-degree bucket. It returns a
// mapping of node feature key to tensor with one row per node in the
// bucket; the executor writes these rows into the node feature table.
//
// The executor never invokes a ReduceFunc for nodes without incoming
// messages, so mailboxes always have degree >= 1.
type ReduceFunc[B tensor.Backend] func(r *ReduceContext[B]) (map[string]*tensor.RawTensor, error)

// ApplyFunc post-processes node state. It runs once per update over all
// target nodes, including nodes that received no messages, and returns a
// mapping of node feature key to tensor with one row per target node.
type ApplyFunc[B tensor.Backend] func(n *NodeContext[B]) (map[string]*tensor.RawTensor, error)

// CopySrc returns a message function that forwards the source node's
// feature srcKey as the message msgKey.
func CopySrc[B tensor.Backend](srcKey, msgKey string) MessageFunc[B] {
	return func(e *EdgeContext[B]) (map[string]*tensor.RawTensor, error) {
		src, err := e.Src(srcKey)
		if err != nil {
			return nil, err
		}
		return map[string]*tensor.RawTensor{msgKey: src}, nil
	}
}

// CopyEdge returns a message function that forwards the edge feature
// edgeKey as the message msgKey.
func CopyEdge[B tensor.Backend](edgeKey, msgKey string) MessageFunc[B] {
	return func(e *EdgeContext[B]) (map[string]*tensor.RawTensor, error) {
		edge, err := e.Edge(edgeKey)
		if err != nil {
			return nil, err
		}
		return map[string]*tensor.RawTensor{msgKey: edge}, nil
	}
}

// SrcMulEdge returns a message function that multiplies the source node's
// feature srcKey with the edge feature edgeKey (with broadcasting) and
// sends the product as msgKey. This is the weighted-message primitive used
// by attention and routing layers.
func SrcMulEdge[B tensor.Backend](srcKey, edgeKey, msgKey string) MessageFunc[B] {
	return func(e *EdgeContext[B]) (map[string]*tensor.RawTensor, error) {
		src, err := e.Src(srcKey)
		if err != nil {
			return nil, err
		}
		edge, err := e.Edge(edgeKey)
		if err != nil {
			return nil, err
		}
		return map[string]*tensor.RawTensor{msgKey: e.Backend().Mul(src, edge)}, nil
	}
}

// Sum returns a reduce function that sums the mailbox for msgKey along
// the degree axis and stores the result as node feature outKey.
// It is well-defined for a mailbox of size 1 and invariant to message
// order.
func Sum[B tensor.Backend](msgKey, outKey string) ReduceFunc[B] {
	return func(r *ReduceContext[B]) (map[string]*tensor.RawTensor, error) {
		m, err := r.Mailbox(msgKey)
		if err != nil {
			return nil, err
		}
		return map[string]*tensor.RawTensor{outKey: r.Backend().SumDim(m, 1, false)}, nil
	}
}

// Mean returns a reduce function that averages the mailbox for msgKey
// along the degree axis and stores the result as node feature outKey.
func Mean[B tensor.Backend](msgKey, outKey string) ReduceFunc[B] {
	return func(r *ReduceContext[B]) (map[string]*tensor.RawTensor, error) {
		m, err := r.Mailbox(msgKey)
		if err != nil {
			return nil, err
		}
		return map[string]*tensor.RawTensor{outKey: r.Backend().MeanDim(m, 1, false)}, nil
	}
}

// Max returns a reduce function that takes the element-wise maximum of
// the mailbox for msgKey along the degree axis and stores the result as
// node feature outKey.
func Max[B tensor.Backend](msgKey, outKey string) ReduceFunc[B] {
	return func(r *ReduceContext[B]) (map[string]*tensor.RawTensor, error) {
		m, err := r.Mailbox(msgKey)
		if err != nil {
			return nil, err
		}
		return map[string]*tensor.RawTensor{outKey: r.Backend().MaxDim(m, 1, false)}, nil
	}
}
