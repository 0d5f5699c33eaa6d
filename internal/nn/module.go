// Package nn implements graph neural network layers for the Relay
// framework.
//
// This package provides forward-only building blocks expressed through
// the message-passing executor:
//   - Module interface: base interface for graph layers
//   - Parameter: named weight tensors
//   - Linear: fully connected transform
//   - GCN: graph convolution with explicit symmetric degree normalization
//   - GAT: single-head additive graph attention
//
// Layers do not track gradients; differentiation is the responsibility of
// an external engine. Layers must not mutate graph features they did not
// create, and they remove their own scratch features before returning.
package nn

import (
	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/tensor"
)

// Module is the base interface for graph neural network layers.
//
// Forward consumes a graph and a per-node input feature tensor with
// shape [NumNodes, inFeatures] and produces a per-node output tensor.
// The graph provides topology and any persistent edge state; the input
// tensor is never stored in the graph beyond the call.
type Module[B tensor.Backend] interface {
	Forward(g *graph.Graph[B], input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error)

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without parameters
	// return an empty slice.
	Parameters() []*Parameter[B]
}
