package nn

import (
	"github.com/relay-ml/relay/internal/graph"
	"github.com/relay-ml/relay/internal/propagate"
	"github.com/relay-ml/relay/internal/tensor"
)

// Scratch feature keys. Underscore-prefixed keys are reserved for layer
// internals and removed before Forward returns.
const (
	gcnFeatKey = "_gcn_h"
	gcnMsgKey  = "_gcn_m"
)

// GCN implements a graph convolution layer:
//
//	H' = D^(-1/2) A D^(-1/2) H W
//
// realized as an explicit pre-scale by 1/sqrt(in-degree), a copy-source /
// sum message-passing step, a post-scale, and a linear transform. The
// symmetric normalization assumes the graph stores both directions of
// every undirected edge; isolated nodes get a zero output row.
type GCN[B tensor.Backend] struct {
	linear  *Linear[B]
	backend B
}

// NewGCN creates a graph convolution layer.
func NewGCN[B tensor.Backend](inFeatures, outFeatures int, backend B) *GCN[B] {
	return &GCN[B]{
		linear:  NewLinear(inFeatures, outFeatures, backend),
		backend: backend,
	}
}

// Forward runs one convolution over the graph.
// Input shape: [NumNodes, inFeatures]; output: [NumNodes, outFeatures].
func (l *GCN[B]) Forward(g *graph.Graph[B], input *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	norm := invSqrtInDegree(g, l.backend) // [N, 1]

	h := input.Mul(norm)
	if err := g.SetNodeFeature(gcnFeatKey, h.Raw()); err != nil {
		return nil, err
	}
	defer g.NodeFrame().Pop(gcnFeatKey)

	err := propagate.UpdateAll(g,
		propagate.CopySrc[B](gcnFeatKey, gcnMsgKey),
		propagate.Sum[B](gcnMsgKey, gcnFeatKey))
	if err != nil {
		return nil, err
	}

	summed, err := g.NodeFeature(gcnFeatKey)
	if err != nil {
		return nil, err
	}

	out := tensor.New[float32](summed, l.backend).Mul(norm)
	return l.linear.Forward(out), nil
}

// Parameters returns the linear transform's parameters.
func (l *GCN[B]) Parameters() []*Parameter[B] {
	return l.linear.Parameters()
}

// invSqrtInDegree builds the [N, 1] tensor of 1/sqrt(in-degree), with
// zero rows for isolated nodes.
func invSqrtInDegree[B tensor.Backend](g *graph.Graph[B], backend B) *tensor.Tensor[float32, B] {
	deg := tensor.Zeros[float32](tensor.Shape{g.NumNodes(), 1}, backend)
	data := deg.Data()
	for v := range data {
		data[v] = float32(g.InDegree(v))
	}
	return deg.Rsqrt()
}
